package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/token-pulse/internal/ui/style"
)

// HelpBar shows keyboard shortcuts, one line by default or grouped columns
// when expanded
type HelpBar struct {
	keyBindings []key.Binding
	groups      [][]key.Binding
	width       int
	expanded    bool

	// Styling
	keyStyle       lipgloss.Style
	descStyle      lipgloss.Style
	sepStyle       lipgloss.Style
	containerStyle lipgloss.Style
}

// NewHelpBar creates a new help bar component
func NewHelpBar() *HelpBar {
	palette := style.DefaultPalette()

	return &HelpBar{
		width: 80,

		keyStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		descStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		sepStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		containerStyle: lipgloss.NewStyle().
			Padding(0, 1),
	}
}

// SetKeyBindings sets the bindings of the short view
func (h *HelpBar) SetKeyBindings(bindings []key.Binding) *HelpBar {
	h.keyBindings = bindings
	return h
}

// SetGroups sets the columns of the expanded view
func (h *HelpBar) SetGroups(groups [][]key.Binding) *HelpBar {
	h.groups = groups
	return h
}

// SetWidth sets the help bar width
func (h *HelpBar) SetWidth(width int) *HelpBar {
	h.width = width
	return h
}

// Toggle switches between the short and the expanded view
func (h *HelpBar) Toggle() *HelpBar {
	h.expanded = !h.expanded
	return h
}

// Expanded reports whether the grouped view is shown
func (h *HelpBar) Expanded() bool {
	return h.expanded
}

// View renders the help bar
func (h *HelpBar) View() string {
	if h.expanded && len(h.groups) > 0 {
		return h.containerStyle.Render(h.renderGroups())
	}
	if len(h.keyBindings) == 0 {
		return ""
	}

	items := h.items(h.keyBindings)
	separator := h.sepStyle.Render(" • ")
	availableWidth := h.width - 2
	content := strings.Join(items, separator)
	if lipgloss.Width(content) > availableWidth {
		content = h.wrapContent(items, availableWidth, separator)
	}

	return h.containerStyle.Render(content)
}

func (h *HelpBar) item(b key.Binding) string {
	help := b.Help()
	return h.keyStyle.Render(help.Key) + " " + h.descStyle.Render(help.Desc)
}

func (h *HelpBar) items(bindings []key.Binding) []string {
	out := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() || b.Help().Key == "" {
			continue
		}
		out = append(out, h.item(b))
	}
	return out
}

func (h *HelpBar) renderGroups() string {
	cols := make([]string, 0, len(h.groups))
	for _, g := range h.groups {
		items := h.items(g)
		if len(items) == 0 {
			continue
		}
		cols = append(cols, lipgloss.NewStyle().MarginRight(4).Render(strings.Join(items, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// wrapContent wraps content to fit within the available width
func (h *HelpBar) wrapContent(items []string, maxWidth int, separator string) string {
	var lines []string
	var currentLine []string
	currentWidth := 0
	sepWidth := lipgloss.Width(separator)

	for _, item := range items {
		itemWidth := lipgloss.Width(item) + sepWidth

		if currentWidth+itemWidth > maxWidth && len(currentLine) > 0 {
			lines = append(lines, strings.Join(currentLine, separator))
			currentLine = []string{item}
			currentWidth = itemWidth
		} else {
			currentLine = append(currentLine, item)
			currentWidth += itemWidth
		}
	}

	if len(currentLine) > 0 {
		lines = append(lines, strings.Join(currentLine, separator))
	}

	return strings.Join(lines, "\n")
}
