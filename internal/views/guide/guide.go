// Package guide renders the setup steps shown while the bridge is
// unreachable.
package guide

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/neural-sync/tui/internal/theme"
)

// DownloadURL points at the bridge bundle for Windows headsets.
const DownloadURL = "https://drive.google.com/file/d/1tGc3_5BkNtKcSppOqPk-0YfAbxhkD1xQ/view?usp=sharing"

const markdown = `## ⚠ Neural Bridge Offline

1. **Get Bridge**: %s
2. **Run .bat** from the bridge folder
3. **Sync Headset** and wait for the status to turn Ready
`

// Model caches the rendered banner per width.
type Model struct {
	width    int
	rendered string
}

// New creates a banner model; the banner renders on first use.
func New() Model {
	return Model{}
}

// SetWidth re-renders the banner when the width changes.
func (m *Model) SetWidth(width int) {
	if width == m.width && m.rendered != "" {
		return
	}
	m.width = width
	m.rendered = render(max(width-6, 30))
}

func render(wrap int) string {
	md := fmt.Sprintf(markdown, DownloadURL)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if out, err := r.Render(md); err == nil {
			return out
		}
	}
	return md
}

// View renders the banner panel.
func (m *Model) View() string {
	if m.rendered == "" {
		m.SetWidth(80)
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.ColorWarning).
		Padding(0, 1).
		Render(m.rendered)
}
