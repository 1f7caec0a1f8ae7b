package style

import "github.com/charmbracelet/lipgloss"

var (
	// Primary colors
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent / buttons
	Yellow  = lipgloss.Color("#FFB500") // Warnings
	Green   = lipgloss.Color("#2AFFAA") // Price up
	Red     = lipgloss.Color("#FF5555") // Price down
	Blue    = lipgloss.Color("#3B82F6") // Info / links
	Purple  = lipgloss.Color("#8B5CF6") // Secondary accent

	// Base colors
	Base03 = lipgloss.Color("#1B1D23") // Background
	Base02 = lipgloss.Color("#262831") // Darker background
	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text

	// Flash background behind a freshly changed 24h cell
	FlashUp   = lipgloss.Color("#0F3D2E")
	FlashDown = lipgloss.Color("#4A1A1F")
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Up        lipgloss.Color
	Down      lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color

	FlashUp   lipgloss.Color
	FlashDown lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Up:        Green,
		Down:      Red,
		Warning:   Yellow,
		Info:      Blue,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,

		FlashUp:   FlashUp,
		FlashDown: FlashDown,
	}
}

// Change styles a 24h change cell: green above zero, red otherwise. A
// highlighted cell also gets a flash background.
func (p Palette) Change(value float64, highlighted bool) lipgloss.Style {
	s := lipgloss.NewStyle().Foreground(p.Down)
	bg := p.FlashDown
	if value > 0 {
		s = s.Foreground(p.Up)
		bg = p.FlashUp
	}
	if highlighted {
		s = s.Background(bg).Bold(true)
	}
	return s
}

// Percent styles a holder percentage. Concentration above warn is flagged.
func (p Palette) Percent(value, warn float64) lipgloss.Style {
	if value > warn {
		return lipgloss.NewStyle().Foreground(p.Warning)
	}
	return lipgloss.NewStyle().Foreground(p.TextSecondary)
}
