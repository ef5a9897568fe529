package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"
	"pkt.systems/pslog"
)

const (
	DefaultReconnectDelay = 3 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultPongTimeout    = 60 * time.Second
	defaultPingInterval   = 30 * time.Second
	eventBuffer           = 64
)

// ErrClosed is returned by operations on a client after Close.
var ErrClosed = errors.New("client closed")

// Options tunes a WSClient. Zero values select the defaults; a negative
// PingInterval disables keepalive pings and read deadlines.
type Options struct {
	ReconnectDelay time.Duration
	PingInterval   time.Duration
	PongTimeout    time.Duration
	WriteTimeout   time.Duration
	Dialer         *websocket.Dialer
	Logger         pslog.Logger
}

// WSClient owns the single websocket connection to the bridge and the
// reconnect timer. Lifecycle changes and classified frames are delivered,
// in order, on Events.
type WSClient struct {
	url    string
	opts   Options
	log    pslog.Logger
	dialer *websocket.Dialer

	events chan Event
	done   chan struct{}

	mu         sync.Mutex
	writeMu    sync.Mutex // serialises all conn writes (ping, commands, close)
	ctx        context.Context
	conn       *websocket.Conn
	state      LinkState
	gen        uint64 // bumped on every connection attempt
	retry      *time.Timer
	retrySeq   uint64
	pingCancel context.CancelFunc
	closed     bool
}

// NewWSClient creates a client for the given bridge URL. It does not dial
// until Start is called.
func NewWSClient(url string, opts Options) *WSClient {
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.PingInterval == 0 {
		opts.PingInterval = defaultPingInterval
	}
	if opts.PongTimeout <= 0 {
		opts.PongTimeout = defaultPongTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	log := opts.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &WSClient{
		url:    url,
		opts:   opts,
		log:    log.With("bridge", url),
		dialer: dialer,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// WSEventMsg wraps a client event for delivery to a Bubble Tea program.
type WSEventMsg struct{ Event Event }

// Events returns the inbound event queue.
func (c *WSClient) Events() <-chan Event {
	return c.events
}

// Next returns a Bubble Tea command that waits for the next event. It
// returns nil once the client is closed.
func (c *WSClient) Next() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-c.events:
			return WSEventMsg{Event: ev}
		case <-c.done:
			return nil
		}
	}
}

// State returns the current link state.
func (c *WSClient) State() LinkState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports whether a reconnect attempt is scheduled.
func (c *WSClient) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retry != nil
}

// Start opens a connection unless one is already open or being opened.
// A scheduled reconnect is cancelled in favour of the fresh attempt.
func (c *WSClient) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != LinkDisconnected {
		c.mu.Unlock()
		return nil
	}
	c.stopRetryLocked()
	c.ctx = ctx
	c.gen++
	gen := c.gen
	c.state = LinkConnecting
	c.mu.Unlock()

	go c.dial(ctx, gen)
	return nil
}

func (c *WSClient) dial(ctx context.Context, gen uint64) {
	c.emit(LinkEvent{State: LinkConnecting})

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.log.Debug("bridge dial failed", "err", err)
		c.disconnect(gen, nil, err)
		return
	}

	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		conn.Close()
		return
	}
	pingCtx, pingCancel := context.WithCancel(ctx)
	c.conn = conn
	c.state = LinkReady
	c.pingCancel = pingCancel
	c.mu.Unlock()

	c.log.Info("bridge connected")
	c.emit(LinkEvent{State: LinkReady})

	if c.opts.PingInterval > 0 {
		go c.pingLoop(pingCtx, conn)
	}
	c.readLoop(conn, gen)
}

// readLoop classifies frames until the connection fails. Malformed frames
// are dropped here and never reach the controller.
func (c *WSClient) readLoop(conn *websocket.Conn, gen uint64) {
	keepalive := c.opts.PingInterval > 0
	if keepalive {
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
		})
		conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.disconnect(gen, conn, err)
			return
		}
		if keepalive {
			conn.SetReadDeadline(time.Now().Add(c.opts.PongTimeout))
		}

		ev, err := Classify(data)
		if err != nil {
			c.log.Debug("bridge frame dropped", "err", err, "len", len(data))
			continue
		}
		if ig, ok := ev.(IgnoredEvent); ok {
			c.log.Trace("bridge frame ignored", "type", string(ig.Type))
			continue
		}
		c.emit(ev)
	}
}

// disconnect records the loss of the connection identified by gen and arms
// exactly one reconnect. Errors and closes are handled the same way.
func (c *WSClient) disconnect(gen uint64, conn *websocket.Conn, cause error) {
	if conn != nil {
		conn.Close()
	}

	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.state = LinkDisconnected
	if c.pingCancel != nil {
		c.pingCancel()
		c.pingCancel = nil
	}
	c.mu.Unlock()

	c.log.Warn("bridge disconnected", "err", cause, "retry_in", c.opts.ReconnectDelay.String())
	c.emit(LinkEvent{State: LinkDisconnected, Err: cause})

	c.mu.Lock()
	if !c.closed && c.gen == gen && c.state == LinkDisconnected {
		c.armRetryLocked()
	}
	c.mu.Unlock()
}

func (c *WSClient) armRetryLocked() {
	c.stopRetryLocked()
	c.retrySeq++
	seq := c.retrySeq
	ctx := c.ctx
	c.retry = time.AfterFunc(c.opts.ReconnectDelay, func() {
		c.mu.Lock()
		if c.retrySeq != seq || c.retry == nil {
			c.mu.Unlock()
			return
		}
		c.retry = nil
		c.mu.Unlock()
		if err := c.Start(ctx); err != nil {
			c.log.Debug("bridge reconnect abandoned", "err", err)
		}
	})
}

func (c *WSClient) stopRetryLocked() {
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	c.retrySeq++
}

// pingLoop sends periodic pings on the given connection. It exits when the
// context is cancelled or the connection changes.
func (c *WSClient) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			cc := c.conn
			c.mu.Unlock()
			if cc != conn {
				return
			}
			c.writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// Send transmits a command frame if the link is Ready. Otherwise the
// command is dropped without queueing and Send reports false.
func (c *WSClient) Send(command string) bool {
	c.mu.Lock()
	conn := c.conn
	state := c.state
	c.mu.Unlock()
	if state != LinkReady || conn == nil {
		c.log.Debug("bridge command dropped", "command", command, "link", state.String())
		return false
	}

	data, err := json.Marshal(CommandFrame{Command: command})
	if err != nil {
		return false
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.log.Warn("bridge command failed", "command", command, "err", err)
		return false
	}
	c.log.Debug("bridge command sent", "command", command)
	return true
}

// Close tears the client down: the pending reconnect is cancelled, the
// socket closed, and no further events are delivered. Safe to call twice.
func (c *WSClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.stopRetryLocked()
	conn := c.conn
	c.conn = nil
	c.state = LinkDisconnected
	if c.pingCancel != nil {
		c.pingCancel()
		c.pingCancel = nil
	}
	c.mu.Unlock()
	close(c.done)

	if conn == nil {
		return nil
	}
	c.writeMu.Lock()
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return conn.Close()
}

func (c *WSClient) emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}
