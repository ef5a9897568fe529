// Package visual renders the mood face with a spring-driven pulse.
package visual

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	"github.com/neural-sync/tui/internal/client"
	"github.com/neural-sync/tui/internal/theme"
)

const (
	fps       = 30
	maxHalo   = 8
	settleEps = 0.02
	restLevel = 0.25
)

// FrameMsg advances the animation by one frame.
type FrameMsg struct{}

// Tick schedules the next frame.
func Tick() tea.Cmd {
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg { return FrameMsg{} })
}

// Model animates a halo around the mood face. While a session is active
// the halo springs between rest and full size; otherwise it settles at
// zero.
type Model struct {
	Width  int
	Active bool

	mood   client.Mood
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
	frame  int
}

// New creates a visualizer at rest with an unknown mood.
func New() Model {
	return Model{
		mood:   client.MoodUnknown,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.35),
	}
}

func (m *Model) SetMood(mood client.Mood) {
	m.mood = mood
}

// Frame returns the number of frames advanced so far.
func (m Model) Frame() int { return m.frame }

// Level returns the current halo size in [0, 1].
func (m Model) Level() float64 {
	return min(max(m.pos, 0), 1)
}

// Update steps the spring on FrameMsg and schedules the next frame.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if _, ok := msg.(FrameMsg); !ok {
		return m, nil
	}
	m.frame++

	switch {
	case !m.Active:
		m.target = 0
	case m.target == 0:
		m.target = 1
	case abs(m.pos-m.target) < settleEps && abs(m.vel) < settleEps:
		if m.target == 1 {
			m.target = restLevel
		} else {
			m.target = 1
		}
	}
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, m.target)
	return m, Tick()
}

func (m Model) View() string {
	width := max(m.Width, 40)
	mood := string(m.mood)
	color := theme.MoodColor(mood)

	halo := int(m.Level()*maxHalo + 0.5)
	ring := lipgloss.NewStyle().Foreground(color).Faint(true)
	face := lipgloss.NewStyle().Foreground(color).Bold(true).Render(theme.MoodFace(mood))
	line := ring.Render(strings.Repeat("·", halo)) + "  " + face + "  " + ring.Render(strings.Repeat("·", halo))

	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.StyleHeader.Render("Mood Visualizer"),
		"",
		line,
		"",
		lipgloss.NewStyle().Foreground(color).Render(mood),
	)
	return theme.Panel(width).Align(lipgloss.Center).Render(body)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
