package session

import (
	"context"
	"time"

	"github.com/neural-sync/tui/internal/client"
	"github.com/neural-sync/tui/internal/export"
	"pkt.systems/pslog"
)

// Sender transmits outbound commands. Implementations drop commands they
// cannot deliver and report false.
type Sender interface {
	Send(command string) bool
}

// State is the collection state.
type State int

const (
	Idle State = iota
	Collecting
)

func (s State) String() string {
	if s == Collecting {
		return "Collecting"
	}
	return "Idle"
}

// Controller is the Idle/Collecting state machine. It is not safe for
// concurrent use; all calls must come from one event loop.
type Controller struct {
	sender Sender
	log    pslog.Logger
	now    func() time.Time

	state  State
	link   client.LinkState
	status string
	mood   client.Mood
	record *Log
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides the clock used to name export artifacts.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithLogger sets the controller's logger.
func WithLogger(log pslog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// NewController returns an Idle controller with an empty log.
func NewController(sender Sender, opts ...Option) *Controller {
	c := &Controller{
		sender: sender,
		now:    time.Now,
		link:   client.LinkDisconnected,
		status: client.LinkDisconnected.String(),
		mood:   client.MoodUnknown,
		record: NewLog(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = pslog.Ctx(context.Background())
	}
	return c
}

// State returns Idle or Collecting.
func (c *Controller) State() State { return c.state }

// Collecting reports whether a session is active.
func (c *Controller) Collecting() bool { return c.state == Collecting }

// Link returns the last link state reported by the client.
func (c *Controller) Link() client.LinkState { return c.link }

// Status returns the status text for display: the link state, or the last
// status string sent by the bridge while connected.
func (c *Controller) Status() string { return c.status }

// Mood returns the current display mood.
func (c *Controller) Mood() client.Mood { return c.mood }

// Entries returns a newest-first snapshot of the session log.
func (c *Controller) Entries() []client.Prediction { return c.record.Newest() }

// Len returns the number of recorded predictions.
func (c *Controller) Len() int { return c.record.Len() }

// Start begins a new session: the log is cleared, the mood set to
// Analyzing and a start command sent. The command is dropped if the link
// is not Ready; the session starts regardless. Start while Collecting is a
// no-op.
func (c *Controller) Start() {
	if c.state == Collecting {
		return
	}
	c.record.Reset()
	c.mood = client.MoodAnalyzing
	sent := c.sender.Send(client.CommandStart)
	c.state = Collecting
	c.log.Info("session started", "link", c.link.String(), "command_sent", sent)
}

// Stop ends the active session on user request. It returns the CSV
// artifact when predictions were recorded, and nil when nothing was
// recorded or no session was active.
func (c *Controller) Stop() *export.Artifact {
	return c.stop(false)
}

func (c *Controller) stop(forced bool) *export.Artifact {
	if c.state != Collecting {
		return nil
	}
	if !forced {
		c.sender.Send(client.CommandStop)
	}
	c.state = Idle
	c.record.Freeze()
	c.mood = client.MoodUnknown

	n := c.record.Len()
	c.log.Info("session stopped", "forced", forced, "entries", n)
	if n == 0 {
		return nil
	}
	return export.NewArtifact(c.record.Newest(), c.now())
}

// Handle applies one client event. A link loss while Collecting forces a
// stop, and the artifact for the data collected so far is returned.
func (c *Controller) Handle(ev client.Event) *export.Artifact {
	switch ev := ev.(type) {
	case client.LinkEvent:
		c.link = ev.State
		c.status = ev.State.String()
		if ev.State == client.LinkDisconnected {
			art := c.stop(true)
			c.mood = client.MoodUnknown
			return art
		}

	case client.StatusEvent:
		c.status = ev.Value

	case client.MoodEvent:
		c.mood = ev.Mood

	case client.PredictionEvent:
		if c.state != Collecting {
			c.log.Debug("prediction outside session dropped", "time", ev.Entry.Time)
			return nil
		}
		c.record.Add(ev.Entry)
	}
	return nil
}
