// Package mockbridge serves a stand-in for the EEG bridge: it speaks the
// bridge's websocket protocol and streams synthetic predictions while a
// session is started.
package mockbridge

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/neural-sync/tui/internal/client"
	"pkt.systems/pslog"
)

const sendBuffer = 64

var emotions = []client.Emotion{client.EmotionNegative, client.EmotionNeutral, client.EmotionPositive}

// Server is a mock bridge serving any number of clients, each with its
// own generator.
type Server struct {
	interval time.Duration
	seed     int64
	log      pslog.Logger
	now      func() time.Time

	mu      sync.Mutex
	clients int
	served  int64
}

// New creates a mock bridge that emits one prediction per interval.
// Connections get independent generators seeded from seed.
func New(interval time.Duration, seed int64, log pslog.Logger) *Server {
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &Server{interval: interval, seed: seed, log: log, now: time.Now}
}

// SetupRoutes registers the bridge endpoint on mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
}

// Handler returns an http.Handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("mock bridge listening", "addr", addr, "interval", s.interval.String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		if e := <-errCh; !errors.Is(e, http.ErrServerClosed) && err == nil {
			err = e
		}
		return err
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("mock bridge upgrade failed", "err", err)
		return
	}

	s.mu.Lock()
	s.clients++
	s.served++
	seed := s.seed + s.served - 1
	s.mu.Unlock()

	log := s.log.With("remote", r.RemoteAddr)
	log.Info("mock bridge client connected")
	c := newSession(conn, s.interval, rand.New(rand.NewSource(seed)), s.now, log)
	defer func() {
		c.close()
		s.mu.Lock()
		s.clients--
		s.mu.Unlock()
		log.Info("mock bridge client disconnected")
	}()

	c.push(client.MsgStatus, "Ready")
	c.readLoop()
}

// session is one connected client and its prediction generator.
type session struct {
	conn     *websocket.Conn
	interval time.Duration
	rng      *rand.Rand
	now      func() time.Time
	log      pslog.Logger

	send chan []byte
	done chan struct{}
	once sync.Once

	mu     sync.Mutex
	cancel context.CancelFunc
}

func newSession(conn *websocket.Conn, interval time.Duration, rng *rand.Rand, now func() time.Time, log pslog.Logger) *session {
	c := &session{
		conn:     conn,
		interval: interval,
		rng:      rng,
		now:      now,
		log:      log,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
	go c.writePump()
	return c
}

func (c *session) writePump() {
	defer c.conn.Close()
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *session) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd client.CommandFrame
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.log.Debug("mock bridge bad command", "err", err)
			continue
		}
		switch cmd.Command {
		case client.CommandStart:
			c.start()
		case client.CommandStop:
			c.stop()
		default:
			c.log.Debug("mock bridge unknown command", "command", cmd.Command)
		}
	}
}

func (c *session) start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.log.Info("mock bridge session started")
	c.push(client.MsgMood, string(client.MoodAnalyzing))
	go c.generate(ctx)
}

func (c *session) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
	c.log.Info("mock bridge session stopped")
}

func (c *session) generate(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			e := emotions[c.rng.Intn(len(emotions))]
			c.push(client.MsgMood, string(e))
			c.push(client.MsgPredictionList, client.Prediction{
				Time:    c.now().Format("15:04:05"),
				Emotion: e,
			})
		}
	}
}

func (c *session) push(t client.MessageType, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	frame, err := json.Marshal(client.WSMessage{Type: t, Data: raw})
	if err != nil {
		return
	}
	select {
	case c.send <- frame:
	case <-c.done:
	}
}

func (c *session) close() {
	c.stop()
	c.once.Do(func() { close(c.done) })
}
