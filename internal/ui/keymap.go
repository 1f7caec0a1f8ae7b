package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global
	Quit key.Binding
	Back key.Binding
	Help key.Binding

	// Table navigation
	Up   key.Binding
	Down key.Binding

	// Tabs
	NextTab  key.Binding
	PrevTab  key.Binding
	NewPairs key.Binding
	Final    key.Binding
	Migrated key.Binding

	// View
	Filter   key.Binding
	SortNext key.Binding
	SortPrev key.Binding
	Flip     key.Binding
	Export   key.Binding

	// Quick buy
	QuickBuy key.Binding
	Confirm  key.Binding

	// Logs
	Logs  key.Binding
	Level key.Binding
	Tail  key.Binding
	Clear key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),

		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/→", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab/←", "prev tab"),
		),
		NewPairs: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "new pairs"),
		),
		Final: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "final stretch"),
		),
		Migrated: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "migrated"),
		),

		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		SortNext: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort column"),
		),
		SortPrev: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "prev column"),
		),
		Flip: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "order"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export"),
		),

		QuickBuy: key.NewBinding(
			key.WithKeys("enter", "b"),
			key.WithHelp("enter/b", "quick buy"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "buy"),
		),

		Logs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logs"),
		),
		Level: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "level"),
		),
		Tail: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "tail"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear"),
		),
	}
}

// ShortHelp returns key help text for the current context
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns extended help text for the current context
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextTab, k.PrevTab},
		{k.NewPairs, k.Final, k.Migrated},
		{k.Filter, k.SortNext, k.SortPrev, k.Flip, k.Export},
		{k.QuickBuy, k.Logs, k.Help, k.Quit},
	}
}

// ContextualHelp returns help text based on the current route
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RoutePulse:
		return []key.Binding{k.Up, k.Down, k.NextTab, k.Filter, k.SortNext, k.Flip, k.QuickBuy, k.Quit}
	case RouteQuickBuy:
		return []key.Binding{k.Confirm, k.Back}
	case RouteLogs:
		return []key.Binding{k.Up, k.Down, k.Level, k.Tail, k.Clear, k.Back}
	default:
		return k.ShortHelp()
	}
}
