package style

import (
	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

// Header styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Background(palette.Background).
			Foreground(palette.Primary).
			Bold(true).
			Padding(0, 2).
			Margin(0, 0, 1, 0)

	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0)
)

// Tab styles
var (
	TabStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Padding(0, 2)

	TabActiveStyle = lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Bold(true).
			Padding(0, 2)

	TabCountStyle = lipgloss.NewStyle().
			Foreground(palette.TextSecondary)
)

// Dialog styles
var (
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Secondary).
			Padding(1, 3)

	FormLabelStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Width(14)

	FormValueStyle = lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Secondary).
			Padding(0, 2).
			Bold(true)
)

// Status styles
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(palette.Up).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Down).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(palette.Warning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)
)

// AdaptiveWidth leaves a margin on narrow terminals
func AdaptiveWidth(width, percentage int) int {
	if width < 80 {
		return width - 4
	}
	return (width * percentage) / 100
}
