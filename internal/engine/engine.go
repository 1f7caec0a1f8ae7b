// Package engine assembles the token table state machine: store, change
// tracker, mutation feed, tabs and the two schedulers that drive them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/google/uuid"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/events"
	"github.com/rovshanmuradov/token-pulse/internal/feed"
	"github.com/rovshanmuradov/token-pulse/internal/scheduler"
	"github.com/rovshanmuradov/token-pulse/internal/source"
	"github.com/rovshanmuradov/token-pulse/internal/storage"
	"github.com/rovshanmuradov/token-pulse/internal/tabs"
	"github.com/rovshanmuradov/token-pulse/internal/tracker"
	"github.com/rovshanmuradov/token-pulse/internal/utils/metrics"
	"github.com/rovshanmuradov/token-pulse/internal/view"
	"go.uber.org/zap"
)

const (
	DefaultSeedDelay       = 800 * time.Millisecond
	DefaultTickInterval    = 3000 * time.Millisecond
	DefaultHighlightWindow = 500 * time.Millisecond
	DefaultJanitorInterval = 1000 * time.Millisecond
)

// ErrInvalidAmount is returned for a quick buy amount that is not a positive number
var ErrInvalidAmount = errors.New("quick buy amount must be positive")

// Trend is the direction of the last recorded change
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

func (t Trend) String() string {
	switch t {
	case TrendUp:
		return "up"
	case TrendDown:
		return "down"
	default:
		return "flat"
	}
}

// Row is one projected token with its change annotation
type Row struct {
	Token domain.Token
	// Previous is the priceChange24h before the last mutation while that
	// mutation is inside the highlight window.
	Previous    float64
	HasPrevious bool
	Highlighted bool
	Trend       Trend
}

// Options configures an Engine. Only Source is required.
type Options struct {
	Source          source.DataSource
	Logger          *zap.Logger
	Clock           clock.Clock
	Rand            feed.Rand
	Metrics         *metrics.Collector
	InitialCategory domain.Category
	SeedDelay       time.Duration
	TickInterval    time.Duration
	HighlightWindow time.Duration
	JanitorInterval time.Duration
	LoadRetries     int
	BusBuffer       int
}

func (o *Options) applyDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.InitialCategory == "" {
		o.InitialCategory = domain.CategoryNewPairs
	}
	if o.SeedDelay <= 0 {
		o.SeedDelay = DefaultSeedDelay
	}
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.HighlightWindow <= 0 {
		o.HighlightWindow = DefaultHighlightWindow
	}
	if o.JanitorInterval <= 0 {
		o.JanitorInterval = DefaultJanitorInterval
	}
	if o.LoadRetries <= 0 {
		o.LoadRetries = source.DefaultRetries
	}
}

// Engine owns all token table state. Its methods are safe for concurrent use.
type Engine struct {
	store   *storage.Store
	tracker *tracker.Tracker
	tabs    *tabs.Controller
	feed    *feed.Feed
	bus     *events.Bus
	loader  *source.Loader
	metrics *metrics.Collector
	clock   clock.Clock
	logger  *zap.Logger

	window          time.Duration
	janitorInterval time.Duration
	seedTimer       *scheduler.Timer
	tickTimer       *scheduler.Timer

	loaded   atomic.Bool
	seedMu   sync.Mutex
	started  atomic.Bool
	stopOnce sync.Once
}

// New wires an engine. Nothing runs until Start.
func New(opts Options) (*Engine, error) {
	if opts.Source == nil {
		return nil, errors.New("engine: data source is required")
	}
	opts.applyDefaults()
	logger := opts.Logger.Named("engine")

	ctrl, err := tabs.New(opts.InitialCategory)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e := &Engine{
		store:           storage.New(logger),
		tracker:         tracker.New(logger, opts.Clock),
		tabs:            ctrl,
		bus:             events.NewBus(logger, opts.BusBuffer),
		metrics:         opts.Metrics,
		clock:           opts.Clock,
		logger:          logger,
		window:          opts.HighlightWindow,
		janitorInterval: opts.JanitorInterval,
	}
	e.loader = source.NewLoader(opts.Source, logger,
		source.WithRetries(opts.LoadRetries),
		source.WithMetrics(opts.Metrics))

	e.feed, err = feed.New(feed.Options{
		Store:     e.store,
		Recorder:  e.tracker,
		Active:    e.tabs,
		Publisher: e.bus,
		Metrics:   opts.Metrics,
		Clock:     opts.Clock,
		Rand:      opts.Rand,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	e.seedTimer, err = scheduler.NewOnce("seed", opts.Clock, opts.SeedDelay, e.runSeed, logger)
	if err != nil {
		return nil, err
	}
	e.tickTimer, err = scheduler.NewInterval("feed", opts.Clock, opts.TickInterval, e.runTick, logger)
	if err != nil {
		return nil, err
	}

	e.tabs.OnChange(func(from, to domain.Category) {
		_ = e.bus.Publish(events.CategoryChangedEvent{
			BaseEvent: events.NewBase(events.CategoryChanged, e.clock.Now()),
			From:      from,
			To:        to,
		})
	})

	return e, nil
}

// Start arms the seed timer, the feed timer and the tracker janitor.
func (e *Engine) Start(ctx context.Context) error {
	if !e.started.CompareAndSwap(false, true) {
		return scheduler.ErrAlreadyStarted
	}

	e.tracker.StartJanitor(ctx, e.janitorInterval, e.window)
	if err := e.seedTimer.Start(ctx); err != nil {
		return err
	}
	if err := e.tickTimer.Start(ctx); err != nil {
		e.seedTimer.Stop()
		return err
	}

	e.logger.Info("Engine started", zap.String("active", string(e.tabs.Active())))
	return nil
}

// Stop halts both timers, waiting for a running task, then the janitor and
// the event bus. No mutation happens after Stop returns.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.seedTimer.Stop()
		e.tickTimer.Stop()
		e.tracker.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.bus.Shutdown(ctx); err != nil {
			e.logger.Warn("Event bus shutdown incomplete", zap.Error(err))
		}
		e.logger.Info("Engine stopped")
	})
}

func (e *Engine) runSeed(ctx context.Context) {
	_ = e.Seed(ctx)
}

func (e *Engine) runTick(ctx context.Context) {
	if _, err := e.Tick(ctx); err != nil && ctx.Err() == nil && !errors.Is(err, domain.ErrNotFound) {
		e.logger.Error("Feed tick failed", zap.Error(err))
	}
}

// Seed loads every category from the data source. Once it succeeded later
// calls are no-ops.
func (e *Engine) Seed(ctx context.Context) error {
	e.seedMu.Lock()
	defer e.seedMu.Unlock()

	if e.loaded.Load() {
		return nil
	}

	counts, err := e.loader.LoadAll(ctx, e.store)
	if err != nil {
		e.logger.Error("Initial load failed", zap.Error(err))
		_ = e.bus.Publish(events.LoadFailedEvent{
			BaseEvent: events.NewBase(events.LoadFailed, e.clock.Now()),
			Error:     err,
		})
		return err
	}

	for category, n := range counts {
		e.metrics.SetTokens(category, n)
	}
	e.loaded.Store(true)

	_ = e.bus.Publish(events.TokensLoadedEvent{
		BaseEvent: events.NewBase(events.TokensLoaded, e.clock.Now()),
		Counts:    counts,
	})
	return nil
}

// Tick runs one feed step. Before the seed finished it does nothing.
func (e *Engine) Tick(ctx context.Context) (feed.Result, error) {
	if !e.loaded.Load() {
		e.metrics.RecordTick(metrics.TickIdle)
		return feed.Result{Category: e.tabs.Active()}, nil
	}

	res, err := e.feed.Tick(ctx)
	e.metrics.SetTrackerEntries(e.tracker.Len())
	return res, err
}

// Rows projects spec and annotates every row with its tracked change while
// that change is inside the highlight window. An empty spec category means
// the active tab.
func (e *Engine) Rows(spec view.Spec) ([]Row, error) {
	if spec.Category == "" {
		spec.Category = e.tabs.Active()
	}

	started := time.Now()
	tokens, err := view.Project(e.store, spec)
	e.metrics.RecordProjection(time.Since(started), err)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	rows := make([]Row, len(tokens))
	for i, t := range tokens {
		row := Row{Token: t}
		key := tracker.TokenKey(string(spec.Category), t.ID)
		if rec, ok := e.tracker.Lookup(key, domain.FieldPriceChange24h, now, e.window); ok {
			row.Previous = rec.Value
			row.HasPrevious = true
			row.Highlighted = true
			switch {
			case t.PriceChange24h > rec.Value:
				row.Trend = TrendUp
			case t.PriceChange24h < rec.Value:
				row.Trend = TrendDown
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// Active returns the active category
func (e *Engine) Active() domain.Category { return e.tabs.Active() }

// SetActive switches the tab the feed mutates
func (e *Engine) SetActive(category domain.Category) error {
	return e.tabs.SetActive(category)
}

// NextCategory moves to the next tab, wrapping around
func (e *Engine) NextCategory() domain.Category { return e.tabs.Next() }

// PrevCategory moves to the previous tab, wrapping around
func (e *Engine) PrevCategory() domain.Category { return e.tabs.Prev() }

// Categories returns the tabs in display order
func (e *Engine) Categories() []domain.Category { return e.tabs.Categories() }

// Loaded reports whether the seed finished
func (e *Engine) Loaded() bool { return e.loaded.Load() }

// Counts returns the number of tokens per category
func (e *Engine) Counts() map[domain.Category]int {
	return e.store.Stats().Tokens
}

// Token returns a single record
func (e *Engine) Token(category domain.Category, id string) (domain.Token, error) {
	return e.store.Token(category, id)
}

// RequestQuickBuy publishes a quick buy intent for an existing token. The
// engine does not execute trades.
func (e *Engine) RequestQuickBuy(category domain.Category, id string, amount float64) (domain.QuickBuyIntent, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return domain.QuickBuyIntent{}, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	tok, err := e.store.Token(category, id)
	if err != nil {
		return domain.QuickBuyIntent{}, err
	}

	intent := domain.QuickBuyIntent{
		ID:          uuid.New().String(),
		Category:    category,
		Token:       tok,
		AmountSOL:   amount,
		RequestedAt: e.clock.Now(),
	}
	e.metrics.RecordQuickBuy()
	e.logger.Info("Quick buy requested",
		zap.String("intent_id", intent.ID),
		zap.String("token", tok.Symbol),
		zap.String("contract", tok.ContractAddress),
		zap.Float64("amount_sol", amount))

	if err := e.bus.Publish(events.QuickBuyRequestedEvent{
		BaseEvent: events.NewBase(events.QuickBuyRequested, intent.RequestedAt),
		Intent:    intent,
	}); err != nil {
		e.logger.Warn("Quick buy event not delivered", zap.Error(err))
	}
	return intent, nil
}

// Subscribe registers handler for engine events
func (e *Engine) Subscribe(eventType events.EventType, handler events.Handler) events.Subscription {
	return e.bus.Subscribe(eventType, handler)
}

// Metrics returns the collector the engine records into, possibly nil
func (e *Engine) Metrics() *metrics.Collector { return e.metrics }

// HighlightWindow is how long a change stays highlighted
func (e *Engine) HighlightWindow() time.Duration { return e.window }
