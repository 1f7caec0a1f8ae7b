package tabs

import (
	"fmt"
	"sync"

	"github.com/rovshanmuradov/token-pulse/internal/domain"
)

// ChangeFunc is called after the active category changed
type ChangeFunc func(from, to domain.Category)

// Controller holds the active category. Filter text and sort order live in
// the consumer's view spec and are not touched when tabs change.
type Controller struct {
	mu        sync.RWMutex
	order     []domain.Category
	active    domain.Category
	listeners []ChangeFunc
}

// New creates a controller with initial as the active tab.
func New(initial domain.Category) (*Controller, error) {
	if !initial.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, initial)
	}
	return &Controller{
		order:  domain.AllCategories(),
		active: initial,
	}, nil
}

// Active returns the current category
func (c *Controller) Active() domain.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// SetActive switches to category. Setting the already active category is
// not a change and notifies nobody.
func (c *Controller) SetActive(category domain.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}

	c.mu.Lock()
	from := c.active
	if from == category {
		c.mu.Unlock()
		return nil
	}
	c.active = category
	listeners := append([]ChangeFunc(nil), c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(from, category)
	}
	return nil
}

// Next activates the following tab, wrapping around
func (c *Controller) Next() domain.Category {
	return c.step(1)
}

// Prev activates the preceding tab, wrapping around
func (c *Controller) Prev() domain.Category {
	return c.step(-1)
}

func (c *Controller) step(delta int) domain.Category {
	c.mu.RLock()
	idx := 0
	for i, cat := range c.order {
		if cat == c.active {
			idx = i
			break
		}
	}
	n := len(c.order)
	next := c.order[((idx+delta)%n+n)%n]
	c.mu.RUnlock()

	// next is always valid
	_ = c.SetActive(next)
	return next
}

// OnChange registers fn to be called on every category switch
func (c *Controller) OnChange(fn ChangeFunc) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Categories returns the tab order
func (c *Controller) Categories() []domain.Category {
	return append([]domain.Category(nil), c.order...)
}
