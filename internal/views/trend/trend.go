// Package trend renders the session series as a text area chart.
package trend

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/neural-sync/tui/internal/export"
	"github.com/neural-sync/tui/internal/theme"
)

// WaitingText is shown until the series has enough points to draw.
const WaitingText = "Synchronizing Neural Data..."

const (
	dotGlyph  = "●"
	fillGlyph = "░"
	refGlyph  = "┄"
	gutter    = 4 // width of the "+1 │" axis labels
)

// levels are the chart rows, top to bottom.
var levels = []struct {
	value int
	label string
	color lipgloss.Color
}{
	{1, "+1", theme.ColorPositive},
	{0, " 0", theme.ColorNeutral},
	{-1, "-1", theme.ColorNegative},
}

// Model holds the chart series.
type Model struct {
	Width  int
	points []export.Point
}

// New creates a chart with no points.
func New() Model {
	return Model{}
}

// SetSeries replaces the chronological series.
func (m *Model) SetSeries(points []export.Point) {
	m.points = points
}

// Visible returns the newest points that fit in width columns.
func (m Model) Visible(width int) []export.Point {
	cols := max(width-gutter-2, 1)
	if len(m.points) <= cols {
		return m.points
	}
	return m.points[len(m.points)-cols:]
}

func (m Model) View() string {
	width := max(m.Width, 40)
	title := theme.StyleHeader.Render("Neural Trend")

	if len(m.points) < 2 {
		body := theme.StyleDimmed.Render(WaitingText)
		return theme.Panel(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
	}

	pts := m.Visible(width - 4)
	line := lipgloss.NewStyle().Foreground(theme.ColorGold)
	fill := lipgloss.NewStyle().Foreground(theme.ColorGold).Faint(true)
	axis := lipgloss.NewStyle().Foreground(theme.ColorLavender)

	rows := make([]string, 0, len(levels)+2)
	for _, lv := range levels {
		ref := lipgloss.NewStyle().Foreground(lv.color).Faint(true)
		var b strings.Builder
		b.WriteString(axis.Render(lv.label + " │"))
		for _, p := range pts {
			switch {
			case p.Value == lv.value:
				b.WriteString(line.Render(dotGlyph))
			case p.Value > lv.value:
				b.WriteString(fill.Render(fillGlyph))
			default:
				b.WriteString(ref.Render(refGlyph))
			}
		}
		rows = append(rows, b.String())
	}

	rows = append(rows, axis.Render("   └"+strings.Repeat("─", len(pts))))
	rows = append(rows, axis.Render(timeAxis(pts)))

	return theme.Panel(width).Render(lipgloss.JoinVertical(lipgloss.Left, append([]string{title, ""}, rows...)...))
}

// timeAxis puts the first point's label under the first column and
// right-aligns the last point's label to the last column. Short plots push
// the end label past the plot so both labels stay readable.
func timeAxis(pts []export.Point) string {
	first, last := pts[0].Time, pts[len(pts)-1].Time
	end := max(len(pts), len(first)+1+len(last))
	return strings.Repeat(" ", gutter) + first + strings.Repeat(" ", end-len(first)-len(last)) + last
}
