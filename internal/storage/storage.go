// internal/storage/storage.go
package storage

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"go.uber.org/zap"
)

// Reader is the read side of the store used by projections.
type Reader interface {
	Get(category domain.Category) []domain.Token
}

// MutationHook observes a mutation inside the store's write section. Hooks
// must not call back into the store.
type MutationHook func(before, after domain.Token)

// MutationResult describes one applied mutation
type MutationResult struct {
	Category domain.Category
	Before   domain.Token
	After    domain.Token
	Clamped  bool
}

type collection struct {
	tokens []domain.Token
	index  map[string]int
}

// Store holds the categorized token collections. It is the single source of
// truth and ApplyMutation is its only write path after loading.
type Store struct {
	mu          sync.RWMutex
	collections map[domain.Category]*collection
	logger      *zap.Logger

	// Statistics (accessed atomically)
	reads     uint64
	writes    uint64
	mutations uint64
}

// New creates an empty store with one collection per category
func New(logger *zap.Logger) *Store {
	s := &Store{
		collections: make(map[domain.Category]*collection, 3),
		logger:      logger.Named("storage"),
	}
	for _, c := range domain.AllCategories() {
		s.collections[c] = &collection{index: make(map[string]int)}
	}
	return s
}

// Load replaces the collection of a category. The whole batch is rejected
// if any token is invalid or an id repeats.
func (s *Store) Load(category domain.Category, tokens []domain.Token) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCategory, category)
	}

	next := &collection{
		tokens: make([]domain.Token, 0, len(tokens)),
		index:  make(map[string]int, len(tokens)),
	}
	for _, t := range tokens {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("load %s: %w", category, err)
		}
		if _, dup := next.index[t.ID]; dup {
			return fmt.Errorf("load %s: %w: duplicate id %q", category, domain.ErrInvalidToken, t.ID)
		}
		next.index[t.ID] = len(next.tokens)
		next.tokens = append(next.tokens, t)
	}

	s.mu.Lock()
	s.collections[category] = next
	s.mu.Unlock()

	atomic.AddUint64(&s.writes, 1)
	s.logger.Debug("Category loaded",
		zap.String("category", string(category)),
		zap.Int("tokens", len(tokens)))
	return nil
}

// Get returns a copy of the category's collection in insertion order
func (s *Store) Get(category domain.Category) []domain.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddUint64(&s.reads, 1)
	c, ok := s.collections[category]
	if !ok {
		return nil
	}
	out := make([]domain.Token, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// Token returns a single record
func (s *Store) Token(category domain.Category, id string) (domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	atomic.AddUint64(&s.reads, 1)
	c, ok := s.collections[category]
	if !ok {
		return domain.Token{}, &domain.NotFoundError{Category: category, ID: id}
	}
	i, ok := c.index[id]
	if !ok {
		return domain.Token{}, &domain.NotFoundError{Category: category, ID: id}
	}
	return c.tokens[i], nil
}

// Len returns the number of tokens in a category
func (s *Store) Len(category domain.Category) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.collections[category]; ok {
		return len(c.tokens)
	}
	return 0
}

// ApplyMutation replaces the record (category, id) with the result of
// applying delta. Hooks run before the write lock is released, so anything
// they record is visible no later than the new record.
func (s *Store) ApplyMutation(category domain.Category, id string, delta domain.Delta, hooks ...MutationHook) (MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[category]
	if !ok {
		return MutationResult{}, &domain.NotFoundError{Category: category, ID: id}
	}
	i, ok := c.index[id]
	if !ok {
		return MutationResult{}, &domain.NotFoundError{Category: category, ID: id}
	}

	before := c.tokens[i]
	after, clamped := before.Apply(delta)

	for _, h := range hooks {
		h(before, after)
	}
	c.tokens[i] = after

	atomic.AddUint64(&s.writes, 1)
	atomic.AddUint64(&s.mutations, 1)
	if clamped {
		s.logger.Debug("Mutation clamped",
			zap.String("category", string(category)),
			zap.String("id", id))
	}

	return MutationResult{
		Category: category,
		Before:   before,
		After:    after,
		Clamped:  clamped,
	}, nil
}

// Stats is a point-in-time view of store counters
type Stats struct {
	Tokens    map[domain.Category]int
	Reads     uint64
	Writes    uint64
	Mutations uint64
}

// Stats returns store statistics
func (s *Store) Stats() Stats {
	s.mu.RLock()
	tokens := make(map[domain.Category]int, len(s.collections))
	for cat, c := range s.collections {
		tokens[cat] = len(c.tokens)
	}
	s.mu.RUnlock()

	return Stats{
		Tokens:    tokens,
		Reads:     atomic.LoadUint64(&s.reads),
		Writes:    atomic.LoadUint64(&s.writes),
		Mutations: atomic.LoadUint64(&s.mutations),
	}
}
