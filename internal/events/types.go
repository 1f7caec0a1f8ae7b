// internal/events/types.go
package events

import (
	"time"

	"github.com/rovshanmuradov/token-pulse/internal/domain"
)

// EventType represents the type of event.
type EventType string

const (
	// Data lifecycle
	TokensLoaded EventType = "tokens.loaded"
	LoadFailed   EventType = "tokens.load_failed"

	// Feed
	TokenMutated EventType = "token.mutated"

	// Navigation
	CategoryChanged EventType = "category.changed"

	// Hand-off to an external executor
	QuickBuyRequested EventType = "quickbuy.requested"
)

// Event is the base interface for all events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	EventType EventType
	EventTime time.Time
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.EventTime
}

// NewBase stamps an event header
func NewBase(t EventType, at time.Time) BaseEvent {
	return BaseEvent{EventType: t, EventTime: at}
}

// TokensLoadedEvent is emitted once the initial data source has filled every category.
type TokensLoadedEvent struct {
	BaseEvent
	Counts map[domain.Category]int
}

// LoadFailedEvent is emitted when the initial load gave up.
type LoadFailedEvent struct {
	BaseEvent
	Error error
}

// TokenMutatedEvent is emitted after each applied feed tick.
type TokenMutatedEvent struct {
	BaseEvent
	Category domain.Category
	Before   domain.Token
	After    domain.Token
	Clamped  bool
}

// CategoryChangedEvent is emitted when the active tab changes.
type CategoryChangedEvent struct {
	BaseEvent
	From domain.Category
	To   domain.Category
}

// QuickBuyRequestedEvent carries a quick buy intent to whoever executes trades.
type QuickBuyRequestedEvent struct {
	BaseEvent
	Intent domain.QuickBuyIntent
}
