// Package theme provides the Lip Gloss color palette and reusable styles
// for the neuralsync TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Brand colors.
var (
	ColorGold     = lipgloss.Color("#ffd700")
	ColorLavender = lipgloss.Color("#bba2be")
)

// Mood colors.
var (
	ColorPositive  = lipgloss.Color("#28a745")
	ColorNeutral   = lipgloss.Color("#ffd700")
	ColorNegative  = lipgloss.Color("#dc3545")
	ColorAnalyzing = lipgloss.Color("#bba2be")
	ColorDefault   = lipgloss.Color("#9ca3af")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorInfo    = lipgloss.Color("#2563eb")
)

// MoodColor returns the color for a mood or emotion label.
func MoodColor(mood string) lipgloss.Color {
	switch mood {
	case "POSITIVE":
		return ColorPositive
	case "NEUTRAL":
		return ColorNeutral
	case "NEGATIVE":
		return ColorNegative
	case "Analyzing":
		return ColorAnalyzing
	default:
		return ColorDefault
	}
}

// LinkColor returns the color for a link state name.
func LinkColor(state string) lipgloss.Color {
	switch state {
	case "Ready":
		return ColorHealthy
	case "Connecting":
		return ColorWarning
	case "Disconnected":
		return ColorDanger
	default:
		return ColorInfo
	}
}

// MoodFace returns a small text face for a mood label.
func MoodFace(mood string) string {
	switch mood {
	case "POSITIVE":
		return "(^‿^)"
	case "NEUTRAL":
		return "(•_•)"
	case "NEGATIVE":
		return "(╥﹏╥)"
	case "Analyzing":
		return "(o_o)?"
	default:
		return "(-_-)"
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorLavender)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGold)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)
)

// Panel returns the shared bordered panel style at the given width.
func Panel(width int) lipgloss.Style {
	return StyleBorder.
		Width(width).
		Padding(0, 1)
}
