package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/token-pulse/internal/domain"
	"github.com/rovshanmuradov/token-pulse/internal/utils/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultRetries is the number of attempts per category
const DefaultRetries = 3

// Sink receives the loaded batches
type Sink interface {
	Load(category domain.Category, tokens []domain.Token) error
}

// Loader fetches every category concurrently and hands the batches to a
// Sink only once all of them arrived, so a failed seed leaves the sink
// untouched.
type Loader struct {
	source  DataSource
	retries uint
	backoff func() backoff.BackOff
	metrics *metrics.Collector
	logger  *zap.Logger
}

// LoaderOption customizes a Loader
type LoaderOption func(*Loader)

// WithRetries sets the attempts per category. Values below 1 mean one attempt.
func WithRetries(n int) LoaderOption {
	return func(l *Loader) {
		if n < 1 {
			n = 1
		}
		l.retries = uint(n)
	}
}

// WithBackOff replaces the exponential policy between attempts
func WithBackOff(fn func() backoff.BackOff) LoaderOption {
	return func(l *Loader) { l.backoff = fn }
}

// WithMetrics records per-category load outcomes
func WithMetrics(c *metrics.Collector) LoaderOption {
	return func(l *Loader) { l.metrics = c }
}

// NewLoader creates a loader for src
func NewLoader(src DataSource, logger *zap.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:  src,
		retries: DefaultRetries,
		backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
		logger: logger.Named("loader"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll fetches all categories and loads them into sink. It returns the
// number of tokens per category.
func (l *Loader) LoadAll(ctx context.Context, sink Sink) (map[domain.Category]int, error) {
	categories := domain.AllCategories()
	batches := make([][]domain.Token, len(categories))

	g, gctx := errgroup.WithContext(ctx)
	for i, category := range categories {
		g.Go(func() error {
			tokens, err := l.fetch(gctx, category)
			l.metrics.RecordSourceLoad(category, err)
			if err != nil {
				return fmt.Errorf("load %s: %w", category, err)
			}
			batches[i] = tokens
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(map[domain.Category]int, len(categories))
	for i, category := range categories {
		if err := sink.Load(category, batches[i]); err != nil {
			return nil, err
		}
		counts[category] = len(batches[i])
	}

	l.logger.Info("Initial tokens loaded",
		zap.Int("new_pairs", counts[domain.CategoryNewPairs]),
		zap.Int("final_stretch", counts[domain.CategoryFinalStretch]),
		zap.Int("migrated", counts[domain.CategoryMigrated]))
	return counts, nil
}

func (l *Loader) fetch(ctx context.Context, category domain.Category) ([]domain.Token, error) {
	attempt := 0
	op := func() ([]domain.Token, error) {
		attempt++
		tokens, err := l.source.Load(ctx, category)
		if err != nil {
			if errors.Is(err, ErrPermanent) || ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		for _, t := range tokens {
			if err := t.Validate(); err != nil {
				return nil, backoff.Permanent(err)
			}
		}
		return tokens, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(l.backoff()),
		backoff.WithMaxTries(l.retries),
		backoff.WithNotify(func(err error, next time.Duration) {
			l.logger.Warn("Source load failed, retrying",
				zap.String("category", string(category)),
				zap.Int("attempt", attempt),
				zap.Duration("next", next),
				zap.Error(err))
		}))
}
