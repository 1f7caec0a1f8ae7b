// Package state keeps per-tab view state so switching tabs returns to the
// same filter, sort and selection.
package state

import (
	"sync"
	"sync/atomic"

	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/view"
	"go.uber.org/zap"
)

// TabState is what a tab remembers while inactive
type TabState struct {
	Spec view.Spec
	// id of the selected token, kept by id so a re-sort does not move the cursor
	Selected string
}

// ViewCache provides thread-safe per-tab state
type ViewCache struct {
	tabs     map[domain.Category]TabState
	defaults view.Spec
	mu       sync.RWMutex
	logger   *zap.Logger

	// Statistics (accessed atomically)
	reads  uint64
	writes uint64
}

// NewViewCache creates a cache whose tabs start from defaults
func NewViewCache(logger *zap.Logger, defaults view.Spec) *ViewCache {
	return &ViewCache{
		tabs:     make(map[domain.Category]TabState),
		defaults: defaults,
		logger:   logger,
	}
}

// Get returns the state of a tab, or the defaults for an untouched tab
func (c *ViewCache) Get(category domain.Category) TabState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	atomic.AddUint64(&c.reads, 1)
	st, ok := c.tabs[category]
	if !ok {
		spec := c.defaults
		spec.Category = category
		return TabState{Spec: spec}
	}
	return st
}

// Save stores the state of a tab. The spec category is forced to category.
func (c *ViewCache) Save(category domain.Category, st TabState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st.Spec.Category = category
	c.tabs[category] = st
	atomic.AddUint64(&c.writes, 1)
}

// SetFilter applies the same filter text to every tab
func (c *ViewCache) SetFilter(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cat := range domain.AllCategories() {
		st, ok := c.tabs[cat]
		if !ok {
			st = TabState{Spec: c.defaults}
			st.Spec.Category = cat
		}
		st.Spec.Filter = text
		c.tabs[cat] = st
	}
	atomic.AddUint64(&c.writes, 1)
	c.logger.Debug("Filter applied", zap.String("filter", text))
}

// Clear forgets every tab
func (c *ViewCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tabs = make(map[domain.Category]TabState)
	atomic.AddUint64(&c.writes, 1)
}

// GetStats returns cache statistics
func (c *ViewCache) GetStats() (tabs, reads, writes uint64) {
	c.mu.RLock()
	tabs = uint64(len(c.tabs))
	c.mu.RUnlock()

	reads = atomic.LoadUint64(&c.reads)
	writes = atomic.LoadUint64(&c.writes)
	return tabs, reads, writes
}
