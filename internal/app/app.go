// Package app is the root Bubble Tea model. It feeds bridge events into the
// session controller, saves exports and composes the views.
package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/neural-sync/tui/internal/client"
	"github.com/neural-sync/tui/internal/export"
	"github.com/neural-sync/tui/internal/session"
	"github.com/neural-sync/tui/internal/theme"
	"github.com/neural-sync/tui/internal/views/core"
	"github.com/neural-sync/tui/internal/views/debug"
	"github.com/neural-sync/tui/internal/views/guide"
	"github.com/neural-sync/tui/internal/views/status"
	"github.com/neural-sync/tui/internal/views/trend"
	"github.com/neural-sync/tui/internal/views/visual"
	"pkt.systems/pslog"
)

// Bridge is the connection the model drives. *client.WSClient implements
// it.
type Bridge interface {
	session.Sender
	Start(ctx context.Context) error
	Next() tea.Cmd
	Close() error
}

// View identifies the main panel.
type View int

const (
	ViewCore View = iota
	ViewAnalytics
	ViewVisual
	viewCount
)

func (v View) String() string {
	switch v {
	case ViewAnalytics:
		return "Analytics"
	case ViewVisual:
		return "Visual"
	default:
		return "Core"
	}
}

// Overlay identifies which modal is active.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayDebug
)

type exportSavedMsg struct {
	path string
	rows int
}

type exportFailedMsg struct {
	name string
	err  error
}

type bridgeErrMsg struct{ err error }

// Model is the root Bubble Tea model.
type Model struct {
	bridge Bridge
	ctrl   *session.Controller
	store  *export.Store
	log    pslog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	view    View
	overlay Overlay
	footer  string

	spinner   spinner.Model
	statusBar status.Model
	guide     guide.Model
	core      core.Model
	trend     trend.Model
	visual    visual.Model
	debug     debug.Model
}

// New creates the root model. Session options are passed to the
// controller.
func New(bridge Bridge, store *export.Store, log pslog.Logger, opts ...session.Option) Model {
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	ctx, cancel := context.WithCancel(context.Background())
	ctx = pslog.ContextWithLogger(ctx, log)

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = lipgloss.NewStyle().Foreground(theme.ColorGold)

	opts = append([]session.Option{session.WithLogger(log.With("component", "session"))}, opts...)
	return Model{
		bridge:    bridge,
		ctrl:      session.NewController(bridge, opts...),
		store:     store,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		spinner:   spin,
		statusBar: status.New(),
		guide:     guide.New(),
		core:      core.New(),
		trend:     trend.New(),
		visual:    visual.New(),
		debug:     debug.New(),
	}
}

// Init starts the bridge connection and the animations.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.connect(),
		m.bridge.Next(),
		m.spinner.Tick,
		visual.Tick(),
	)
}

func (m Model) connect() tea.Cmd {
	bridge, ctx := m.bridge, m.ctx
	return func() tea.Msg {
		if err := bridge.Start(ctx); err != nil {
			return bridgeErrMsg{err: err}
		}
		return nil
	}
}

func (m Model) saveExport(a *export.Artifact) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		path, err := store.Save(a)
		if err != nil {
			return exportFailedMsg{name: a.Filename, err: err}
		}
		return exportSavedMsg{path: path, rows: a.Rows}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		m.core.Width = msg.Width
		m.trend.Width = msg.Width
		m.visual.Width = msg.Width
		m.guide.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case client.WSEventMsg:
		m.record(msg.Event)
		cmds := []tea.Cmd{m.bridge.Next()}
		if art := m.ctrl.Handle(msg.Event); art != nil {
			m.footer = fmt.Sprintf("Link lost, saving %s", art.Filename)
			cmds = append(cmds, m.saveExport(art))
		}
		m.refresh()
		return m, tea.Batch(cmds...)

	case exportSavedMsg:
		m.footer = fmt.Sprintf("Saved %d rows to %s", msg.rows, msg.path)
		m.debug.Addf(debug.KindExport, "saved %d rows to %s", msg.rows, msg.path)
		m.log.Info("session exported", "path", msg.path, "rows", msg.rows)
		return m, nil

	case exportFailedMsg:
		m.footer = fmt.Sprintf("Export of %s failed: %v", msg.name, msg.err)
		m.debug.Addf(debug.KindError, "export %s: %v", msg.name, msg.err)
		m.log.Error("session export failed", "file", msg.name, "err", msg.err)
		return m, nil

	case bridgeErrMsg:
		m.debug.Addf(debug.KindError, "bridge start: %v", msg.err)
		m.log.Warn("bridge start failed", "err", msg.err)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case visual.FrameMsg:
		var cmd tea.Cmd
		m.visual, cmd = m.visual.Update(msg)
		m.core.Frame = m.visual.Frame() / 15
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}

	if m.overlay == OverlayDebug {
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Debug):
			m.overlay = OverlayNone
		case key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Start):
		if !m.canStart() {
			m.debug.Addf(debug.KindCmd, "start ignored: link %s, %s", m.ctrl.Link(), m.ctrl.State())
			return m, nil
		}
		m.ctrl.Start()
		m.footer = ""
		m.debug.Add(debug.KindCmd, "start")
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		if !m.ctrl.Collecting() {
			return m, nil
		}
		m.debug.Add(debug.KindCmd, "stop")
		art := m.ctrl.Stop()
		m.refresh()
		if art == nil {
			m.footer = "Session ended with no data"
			return m, nil
		}
		m.footer = "Saving " + art.Filename
		return m, m.saveExport(art)

	case key.Matches(msg, m.keys.Core):
		m.view = ViewCore
	case key.Matches(msg, m.keys.Analytics):
		m.view = ViewAnalytics
	case key.Matches(msg, m.keys.Visual):
		m.view = ViewVisual
	case key.Matches(msg, m.keys.Tab):
		m.view = (m.view + 1) % viewCount
	case key.Matches(msg, m.keys.Debug):
		m.overlay = OverlayDebug
	}
	return m, nil
}

// canStart mirrors the disabled state of the start control.
func (m Model) canStart() bool {
	return m.ctrl.Link() == client.LinkReady && !m.ctrl.Collecting()
}

// quit ends an active session, writes its export before the program exits
// and tears the bridge down.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if art := m.ctrl.Stop(); art != nil {
		if path, err := m.store.Save(art); err != nil {
			m.log.Error("session export failed", "file", art.Filename, "err", err)
		} else {
			m.log.Info("session exported", "path", path, "rows", art.Rows)
		}
	}
	m.cancel()
	if err := m.bridge.Close(); err != nil {
		m.log.Debug("bridge close", "err", err)
	}
	return m, tea.Quit
}

// record mirrors an event into the debug log.
func (m *Model) record(ev client.Event) {
	switch ev := ev.(type) {
	case client.LinkEvent:
		if ev.Err != nil {
			m.debug.Addf(debug.KindLink, "%s: %v", ev.State, ev.Err)
		} else {
			m.debug.Addf(debug.KindLink, "%s", ev.State)
		}
	case client.StatusEvent:
		m.debug.Addf(debug.KindFrame, "status %q", ev.Value)
	case client.MoodEvent:
		m.debug.Addf(debug.KindFrame, "mood %s", ev.Mood)
	case client.PredictionEvent:
		m.debug.Addf(debug.KindFrame, "prediction %s %s", ev.Entry.Time, ev.Entry.Emotion)
	case client.IgnoredEvent:
		m.debug.Addf(debug.KindFrame, "ignored type %q", ev.Type)
	}
}

// refresh copies controller state into the views.
func (m *Model) refresh() {
	entries := m.ctrl.Entries()
	collecting := m.ctrl.Collecting()

	m.statusBar.Link = m.ctrl.Link().String()
	m.statusBar.Status = m.ctrl.Status()
	m.statusBar.Collecting = collecting
	m.statusBar.Entries = len(entries)

	m.core.Active = collecting
	m.core.SetMood(m.ctrl.Mood())
	m.core.SetEntries(entries)

	m.trend.SetSeries(export.Series(entries))

	m.visual.Active = collecting
	m.visual.SetMood(m.ctrl.Mood())
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	header := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGold).Render("NEURAL SYNC")

	if m.overlay == OverlayDebug {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.debug.View(m.width, m.height-1))
	}

	bar := m.statusBar
	bar.Spinner = m.spinner.View()

	sections := []string{header, bar.View()}
	if m.ctrl.Link() == client.LinkDisconnected {
		g := m.guide
		sections = append(sections, g.View())
	}
	sections = append(sections, m.renderControls(), m.renderTabs())

	switch m.view {
	case ViewAnalytics:
		sections = append(sections, m.trend.View())
	case ViewVisual:
		sections = append(sections, m.visual.View())
	default:
		sections = append(sections, m.core.View())
	}

	if m.footer != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.ColorLavender).Render("  "+m.footer))
	}
	sections = append(sections, theme.StyleDimmed.Render("  s:scan  x:terminate  1/2/3,tab:view  d:events  q:quit"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderControls() string {
	button := func(label string, enabled bool, color lipgloss.Color) string {
		style := lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder())
		if enabled {
			style = style.Bold(true).Foreground(color).BorderForeground(color)
		} else {
			style = style.Foreground(theme.ColorDimmed).BorderForeground(theme.ColorBorder)
		}
		return style.Render(label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		button("[s] INITIATE SCAN", m.canStart(), theme.ColorHealthy),
		" ",
		button("[x] TERMINATE", m.ctrl.Collecting(), theme.ColorDanger),
	)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, viewCount)
	for v := ViewCore; v < viewCount; v++ {
		label := fmt.Sprintf(" %d %s ", int(v)+1, v)
		if v == m.view {
			tabs = append(tabs, theme.StyleSelected.Underline(true).Render(label))
		} else {
			tabs = append(tabs, theme.StyleDimmed.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
