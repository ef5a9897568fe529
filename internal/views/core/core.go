// Package core renders the main screen: the brain glyph, the current mood
// and the newest log rows.
package core

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/neural-sync/tui/internal/client"
	"github.com/neural-sync/tui/internal/theme"
)

// RecentRows is how many log rows the table shows.
const RecentRows = 5

var brainArt = []string{
	"   .-~~~-.|.-~~~-.   ",
	"  /   _   |   _   \\  ",
	" |   ( )  %s  ( )   | ",
	" |    ~   |   ~    | ",
	" |   ( )  %s  ( )   | ",
	"  \\       |       /  ",
	"   '-___-'|'-___-'   ",
}

// Model holds the state shown on the core screen.
type Model struct {
	Width  int
	Active bool // a session is collecting
	Frame  int  // animation frame, advances the node blink
	mood   client.Mood
	recent []client.Prediction
}

// New creates an idle core screen.
func New() Model {
	return Model{mood: client.MoodUnknown}
}

// SetMood sets the mood shown in the mood box.
func (m *Model) SetMood(mood client.Mood) {
	m.mood = mood
}

// SetEntries keeps the first RecentRows entries of a newest-first log.
func (m *Model) SetEntries(newestFirst []client.Prediction) {
	n := min(len(newestFirst), RecentRows)
	m.recent = append(m.recent[:0], newestFirst[:n]...)
}

func (m Model) View() string {
	width := max(m.Width, 40)
	half := max(width/2-2, 24)

	brain := m.renderBrain()
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.renderMood(half),
		m.renderTable(half),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, brain, "  ", right)
}

func (m Model) renderBrain() string {
	lobe := lipgloss.NewStyle().Foreground(theme.ColorBright).Faint(true)
	if m.Active {
		lobe = lipgloss.NewStyle().Foreground(theme.ColorGold).Bold(true)
	}

	top, bottom := "·", "·"
	if m.Active {
		// The two center nodes blink out of phase while scanning.
		if m.Frame%4 < 2 {
			top = "✦"
		}
		if m.Frame%3 == 0 {
			bottom = "✦"
		}
	}
	node := lipgloss.NewStyle().Foreground(theme.ColorGold)

	lines := make([]string, len(brainArt))
	for i, l := range brainArt {
		switch i {
		case 2:
			l = fmt.Sprintf(l, node.Render(top))
		case 4:
			l = fmt.Sprintf(l, node.Render(bottom))
		}
		lines[i] = lobe.Render(l)
	}

	label := theme.StyleDimmed.Render("  neural link idle")
	if m.Active {
		label = lipgloss.NewStyle().Foreground(theme.ColorGold).Render("  scanning...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(lines, "", label)...)
}

func (m Model) renderMood(width int) string {
	mood := string(m.mood)
	box := lipgloss.NewStyle().
		Width(width-4).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.MoodColor(mood)).
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(theme.MoodColor(mood)).
		Render(mood)
	return theme.Panel(width).Render(
		lipgloss.JoinVertical(lipgloss.Left, theme.StyleHeader.Render("Current State"), box))
}

func (m Model) renderTable(width int) string {
	var b strings.Builder
	b.WriteString(theme.StyleHeader.Render("Neural Logs"))
	b.WriteByte('\n')

	if len(m.recent) == 0 {
		b.WriteString(theme.StyleDimmed.Render("No data synced."))
		return theme.Panel(width).Render(b.String())
	}

	b.WriteString(theme.StyleDimmed.Render(fmt.Sprintf("%-12s %s", "Timestamp", "State")))
	for _, p := range m.recent {
		b.WriteByte('\n')
		b.WriteString(fmt.Sprintf("%-12s ", p.Time))
		b.WriteString(lipgloss.NewStyle().Foreground(theme.MoodColor(string(p.Emotion))).Render(string(p.Emotion)))
	}
	return theme.Panel(width).Render(b.String())
}
