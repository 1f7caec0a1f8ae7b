package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/events"
)

// Tea message types for UI communication

// TokensLoadedMsg is sent once the initial load filled the store
type TokensLoadedMsg struct {
	Counts map[domain.Category]int
}

// LoadFailedMsg is sent when the initial load gave up
type LoadFailedMsg struct {
	Err error
}

// TokenMutatedMsg is sent after each applied feed tick
type TokenMutatedMsg struct {
	Category domain.Category
	ID       string
}

// CategoryChangedMsg is sent when the active tab changed
type CategoryChangedMsg struct {
	From domain.Category
	To   domain.Category
}

// QuickBuyMsg confirms a recorded quick buy intent
type QuickBuyMsg struct {
	Intent domain.QuickBuyIntent
}

// ErrorMsg represents error conditions
type ErrorMsg struct {
	Error error
	Title string
}

// ListenBus returns a tea.Cmd that waits for the next message on ch.
// Re-issue it from Update after every delivery.
func ListenBus(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Subscriber is the part of the engine Forward needs
type Subscriber interface {
	Subscribe(eventType events.EventType, handler events.Handler) events.Subscription
}

// Forward turns engine events into tea messages on the sender. The returned
// func unsubscribes everything.
func Forward(src Subscriber, sender *UpdateSender) func() {
	subs := []events.Subscription{
		src.Subscribe(events.TokensLoaded, events.On(func(_ context.Context, e events.TokensLoadedEvent) error {
			sender.SendUpdate(TokensLoadedMsg{Counts: e.Counts})
			return nil
		})),
		src.Subscribe(events.LoadFailed, events.On(func(_ context.Context, e events.LoadFailedEvent) error {
			sender.SendUpdate(LoadFailedMsg{Err: e.Error})
			return nil
		})),
		src.Subscribe(events.TokenMutated, events.On(func(_ context.Context, e events.TokenMutatedEvent) error {
			sender.SendUpdate(TokenMutatedMsg{Category: e.Category, ID: e.After.ID})
			return nil
		})),
		src.Subscribe(events.CategoryChanged, events.On(func(_ context.Context, e events.CategoryChangedEvent) error {
			sender.SendUpdate(CategoryChangedMsg{From: e.From, To: e.To})
			return nil
		})),
		src.Subscribe(events.QuickBuyRequested, events.On(func(_ context.Context, e events.QuickBuyRequestedEvent) error {
			sender.SendUpdate(QuickBuyMsg{Intent: e.Intent})
			return nil
		})),
	}
	return func() {
		for _, s := range subs {
			s.Unsubscribe()
		}
	}
}

// Route represents different screens in the application
type Route int

const (
	RoutePulse Route = iota
	RouteQuickBuy
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RoutePulse:
		return "pulse"
	case RouteQuickBuy:
		return "quick_buy"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}
