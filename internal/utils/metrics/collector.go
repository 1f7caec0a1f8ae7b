// internal/utils/metrics/collector.go
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricType names a metric inside the collector
type MetricType string

const (
	FeedTicksType          MetricType = "feed_ticks"
	MutationsType          MetricType = "mutations"
	MutationClampsType     MetricType = "mutation_clamps"
	ProjectionsType        MetricType = "projections"
	ProjectionDurationType MetricType = "projection_duration"
	TrackerEntriesType     MetricType = "tracker_entries"
	TokensType             MetricType = "tokens"
	QuickBuyIntentsType    MetricType = "quickbuy_intents"
	SourceLoadsType        MetricType = "source_loads"
	UIDroppedUpdatesType   MetricType = "ui_dropped_updates"
)

// Tick results
const (
	TickApplied  = "applied"
	TickEmpty    = "empty"
	TickNotFound = "not_found"
	TickIdle     = "idle"
)

// Collector owns a private Prometheus registry so several engines (and
// tests) never collide on the global one. A nil *Collector is a no-op.
type Collector struct {
	registry *prometheus.Registry
	metrics  sync.Map

	feedTicks          *prometheus.CounterVec
	mutations          *prometheus.CounterVec
	mutationClamps     prometheus.Counter
	projections        *prometheus.CounterVec
	projectionDuration prometheus.Histogram
	trackerEntries     prometheus.Gauge
	tokens             *prometheus.GaugeVec
	quickBuyIntents    prometheus.Counter
	sourceLoads        *prometheus.CounterVec
	uiDropped          prometheus.Counter
}

// NewCollector creates a collector with every metric registered under namespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "token_pulse"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		feedTicks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "ticks_total",
			Help:      "Mutation feed ticks by result",
		}, []string{"result"}),
		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Applied token mutations by category",
		}, []string{"category"}),
		mutationClamps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "mutation_clamps_total",
			Help:      "Mutations whose result had to be clamped into range",
		}),
		projections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "projections_total",
			Help:      "View projections by result",
		}, []string{"result"}),
		projectionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "view",
			Name:      "projection_duration_seconds",
			Help:      "Time spent filtering and sorting a category",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		trackerEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tracker",
			Name:      "entries",
			Help:      "Change records currently held",
		}),
		tokens: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "tokens",
			Help:      "Tokens loaded per category",
		}, []string{"category"}),
		quickBuyIntents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quickbuy",
			Name:      "intents_total",
			Help:      "Quick buy intents handed off",
		}),
		sourceLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "loads_total",
			Help:      "Initial data source load attempts by category and result",
		}, []string{"category", "result"}),
		uiDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ui",
			Name:      "dropped_updates_total",
			Help:      "UI refresh messages dropped because the program was busy",
		}),
	}

	metricsMap := map[MetricType]prometheus.Collector{
		FeedTicksType:          c.feedTicks,
		MutationsType:          c.mutations,
		MutationClampsType:     c.mutationClamps,
		ProjectionsType:        c.projections,
		ProjectionDurationType: c.projectionDuration,
		TrackerEntriesType:     c.trackerEntries,
		TokensType:             c.tokens,
		QuickBuyIntentsType:    c.quickBuyIntents,
		SourceLoadsType:        c.sourceLoads,
		UIDroppedUpdatesType:   c.uiDropped,
	}
	for metricType, metric := range metricsMap {
		c.metrics.Store(metricType, metric)
	}

	return c
}

// Registry exposes the private registry, mainly for tests
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Get returns the raw collector registered as metricType
func (c *Collector) Get(metricType MetricType) (prometheus.Collector, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.metrics.Load(metricType)
	if !ok {
		return nil, false
	}
	return v.(prometheus.Collector), true
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Reset clears all vector metrics (useful for tests)
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.metrics.Range(func(_, value interface{}) bool {
		switch m := value.(type) {
		case *prometheus.CounterVec:
			m.Reset()
		case *prometheus.GaugeVec:
			m.Reset()
		case *prometheus.HistogramVec:
			m.Reset()
		}
		return true
	})
}
