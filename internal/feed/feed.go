// Package feed perturbs one token of the active category per tick.
package feed

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/events"
	"github.com/rovshanmuradov/token-pulse/internal/storage"
	"github.com/rovshanmuradov/token-pulse/internal/tracker"
	"github.com/rovshanmuradov/token-pulse/internal/utils/metrics"
	"go.uber.org/zap"
)

// MaxDeltaPct bounds both the price and the volume perturbation: each is
// drawn from [-MaxDeltaPct, +MaxDeltaPct).
const MaxDeltaPct = 5.0

// Store is the part of the token store the feed needs
type Store interface {
	Get(category domain.Category) []domain.Token
	ApplyMutation(category domain.Category, id string, delta domain.Delta, hooks ...storage.MutationHook) (storage.MutationResult, error)
}

// Recorder receives the pre-mutation value of the highlighted field
type Recorder interface {
	RecordPrevious(id, field string, value float64, now time.Time)
}

// ActiveCategory reports which tab the feed acts on
type ActiveCategory interface {
	Active() domain.Category
}

// Publisher forwards mutation events
type Publisher interface {
	Publish(event events.Event) error
}

// Rand is the randomness the feed draws from
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// Result is the outcome of one tick
type Result struct {
	Category domain.Category
	Applied  bool
	Mutation storage.MutationResult
	Delta    domain.Delta
}

// Feed applies random bounded mutations. Tick is safe for concurrent use
// but the scheduler calls it from a single goroutine.
type Feed struct {
	store     Store
	recorder  Recorder
	active    ActiveCategory
	publisher Publisher
	metrics   *metrics.Collector
	clock     clock.Clock
	logger    *zap.Logger

	mu  sync.Mutex
	rng Rand
}

// Options configures a Feed. Publisher, Metrics, Clock and Rand are optional.
type Options struct {
	Store     Store
	Recorder  Recorder
	Active    ActiveCategory
	Publisher Publisher
	Metrics   *metrics.Collector
	Clock     clock.Clock
	Rand      Rand
	Logger    *zap.Logger
}

// New creates a feed
func New(opts Options) (*Feed, error) {
	if opts.Store == nil || opts.Recorder == nil || opts.Active == nil {
		return nil, errors.New("feed: store, recorder and active category are required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Feed{
		store:     opts.Store,
		recorder:  opts.Recorder,
		active:    opts.Active,
		publisher: opts.Publisher,
		metrics:   opts.Metrics,
		clock:     opts.Clock,
		rng:       opts.Rand,
		logger:    opts.Logger.Named("feed"),
	}, nil
}

// Tick mutates one uniformly chosen token of the category active right now.
// An empty category is a no-op. A token that vanished between selection and
// mutation skips the tick and the NotFoundError is returned for logging only.
func (f *Feed) Tick(ctx context.Context) (Result, error) {
	category := f.active.Active()
	res := Result{Category: category}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	tokens := f.store.Get(category)
	if len(tokens) == 0 {
		f.metrics.RecordTick(metrics.TickEmpty)
		return res, nil
	}

	f.mu.Lock()
	target := tokens[f.rng.IntN(len(tokens))]
	delta := domain.Delta{
		PriceDeltaPct:  (f.rng.Float64() - 0.5) * 2 * MaxDeltaPct,
		VolumeDeltaPct: (f.rng.Float64() - 0.5) * 2 * MaxDeltaPct,
	}
	f.mu.Unlock()
	res.Delta = delta

	now := f.clock.Now()
	mut, err := f.store.ApplyMutation(category, target.ID, delta, func(before, _ domain.Token) {
		f.recorder.RecordPrevious(tracker.TokenKey(string(category), before.ID), domain.FieldPriceChange24h, before.PriceChange24h, now)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			f.metrics.RecordTick(metrics.TickNotFound)
			f.logger.Warn("Mutation target vanished, skipping tick",
				zap.String("category", string(category)),
				zap.String("id", target.ID))
		}
		return res, err
	}

	res.Applied = true
	res.Mutation = mut
	f.metrics.RecordTick(metrics.TickApplied)
	f.metrics.RecordMutation(category, mut.Clamped)

	f.logger.Debug("Token mutated",
		zap.String("category", string(category)),
		zap.String("id", mut.After.ID),
		zap.Float64("price_delta_pct", delta.PriceDeltaPct),
		zap.Float64("price", mut.After.Price),
		zap.Float64("price_change_24h", mut.After.PriceChange24h))

	if f.publisher != nil {
		_ = f.publisher.Publish(events.TokenMutatedEvent{
			BaseEvent: events.NewBase(events.TokenMutated, now),
			Category:  category,
			Before:    mut.Before,
			After:     mut.After,
			Clamped:   mut.Clamped,
		})
	}

	return res, nil
}
