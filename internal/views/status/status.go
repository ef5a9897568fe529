// Package status renders the link and session status bar.
package status

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/neural-sync/tui/internal/theme"
)

// Model holds the status bar state.
type Model struct {
	Link       string // Disconnected, Connecting or Ready
	Status     string // last status text, from the link or the bridge
	Collecting bool
	Entries    int
	Spinner    string
	Width      int
}

// New creates a status bar model for a client that has not connected yet.
func New() Model {
	return Model{Link: "Disconnected", Status: "Disconnected"}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	linkColor := theme.LinkColor(m.Link)
	var connStr string
	switch m.Link {
	case "Ready":
		connStr = lipgloss.NewStyle().Foreground(linkColor).Render("● Ready")
	case "Connecting":
		connStr = lipgloss.NewStyle().Foreground(linkColor).Render("◌ Connecting...")
	default:
		connStr = lipgloss.NewStyle().Foreground(linkColor).Render("○ Disconnected")
	}

	statusStr := "System Status: " + lipgloss.NewStyle().Foreground(theme.LinkColor(m.Status)).Render(m.Status)

	var sessionStr string
	if m.Collecting {
		sessionStr = lipgloss.NewStyle().Foreground(theme.ColorGold).Render(
			fmt.Sprintf("%s SCANNING  %d samples", m.Spinner, m.Entries))
	} else {
		sessionStr = theme.StyleDimmed.Render(fmt.Sprintf("idle  %d samples", m.Entries))
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr + sep + statusStr + sep + sessionStr

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)
}
