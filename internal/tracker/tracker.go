// Package tracker remembers the value a field held before its most recent
// mutation so consumers can render a short-lived change highlight.
package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andres-erbsen/clock"
	"go.uber.org/zap"
)

// Key identifies a tracked value
type Key struct {
	ID    string
	Field string
}

// TokenKey scopes a token id to its category. Ids are only unique within a
// category, so callers track tokens under this key.
func TokenKey(category, id string) string {
	return category + "/" + id
}

// Record is the previous value and when it was replaced
type Record struct {
	Value      float64
	RecordedAt time.Time
}

// Tracker is a (token id, field) -> previous value map. Entries older than
// the caller's window are treated as absent; Sweep reclaims them.
type Tracker struct {
	mu      sync.RWMutex
	entries map[Key]Record
	logger  *zap.Logger
	clock   clock.Clock

	stopCh  chan struct{}
	done    chan struct{}
	stopped bool

	recorded uint64
	swept    uint64
}

// New creates an empty tracker. A nil clock means wall time.
func New(logger *zap.Logger, clk clock.Clock) *Tracker {
	if clk == nil {
		clk = clock.New()
	}
	return &Tracker{
		entries: make(map[Key]Record, 64),
		logger:  logger.Named("tracker"),
		clock:   clk,
	}
}

// RecordPrevious stores value as the previous value of (id, field),
// replacing any earlier entry.
func (t *Tracker) RecordPrevious(id, field string, value float64, now time.Time) {
	t.mu.Lock()
	t.entries[Key{ID: id, Field: field}] = Record{Value: value, RecordedAt: now}
	t.mu.Unlock()
	atomic.AddUint64(&t.recorded, 1)
}

// Get returns the stored previous value regardless of age.
func (t *Tracker) Get(id, field string) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.entries[Key{ID: id, Field: field}]
	return r, ok
}

// IsRecent reports whether (id, field) changed less than window before now.
func (t *Tracker) IsRecent(id, field string, now time.Time, window time.Duration) bool {
	r, ok := t.Get(id, field)
	if !ok {
		return false
	}
	return now.Sub(r.RecordedAt) < window
}

// Lookup returns the record only while it is still within window.
func (t *Tracker) Lookup(id, field string, now time.Time, window time.Duration) (Record, bool) {
	r, ok := t.Get(id, field)
	if !ok || now.Sub(r.RecordedAt) >= window {
		return Record{}, false
	}
	return r, true
}

// Sweep removes entries at least window old and returns how many it removed
func (t *Tracker) Sweep(now time.Time, window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for k, r := range t.entries {
		if now.Sub(r.RecordedAt) >= window {
			delete(t.entries, k)
			removed++
		}
	}

	if removed > 0 {
		atomic.AddUint64(&t.swept, uint64(removed))
		t.logger.Debug("Swept expired change records",
			zap.Int("removed", removed),
			zap.Int("remaining", len(t.entries)))
	}
	return removed
}

// Len returns the number of stored entries, expired or not
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Stats returns lifetime counters
func (t *Tracker) Stats() (recorded, swept uint64) {
	return atomic.LoadUint64(&t.recorded), atomic.LoadUint64(&t.swept)
}

// StartJanitor sweeps expired entries every interval until ctx is done or
// Close is called. It is a no-op when already running or every <= 0.
func (t *Tracker) StartJanitor(ctx context.Context, every, window time.Duration) {
	if every <= 0 {
		return
	}

	t.mu.Lock()
	if t.stopCh != nil {
		t.mu.Unlock()
		return
	}
	t.stopCh = make(chan struct{})
	t.done = make(chan struct{})
	t.stopped = false
	stopCh, done := t.stopCh, t.done
	t.mu.Unlock()

	go t.janitor(ctx, every, window, stopCh, done)
}

func (t *Tracker) janitor(ctx context.Context, every, window time.Duration, stopCh, done chan struct{}) {
	defer close(done)

	ticker := t.clock.Ticker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			t.Sweep(t.clock.Now(), window)
		}
	}
}

// Close stops the janitor and waits for it to exit. Safe to call more than once.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.stopCh == nil || t.stopped {
		t.mu.Unlock()
		return
	}
	close(t.stopCh)
	t.stopped = true
	done := t.done
	t.mu.Unlock()

	<-done
}
