// internal/utils/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/rovshanmuradov/token-pulse/internal/domain"
)

// RecordTick counts one feed tick with its result
func (c *Collector) RecordTick(result string) {
	if c == nil {
		return
	}
	c.feedTicks.WithLabelValues(result).Inc()
}

// RecordMutation counts an applied mutation and whether it was clamped
func (c *Collector) RecordMutation(category domain.Category, clamped bool) {
	if c == nil {
		return
	}
	c.mutations.WithLabelValues(string(category)).Inc()
	if clamped {
		c.mutationClamps.Inc()
	}
}

// RecordProjection records one projection call
func (c *Collector) RecordProjection(duration time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.projections.WithLabelValues(result).Inc()
	c.projectionDuration.Observe(duration.Seconds())
}

// SetTrackerEntries updates the tracker size gauge
func (c *Collector) SetTrackerEntries(n int) {
	if c == nil {
		return
	}
	c.trackerEntries.Set(float64(n))
}

// SetTokens updates the per-category token gauge
func (c *Collector) SetTokens(category domain.Category, n int) {
	if c == nil {
		return
	}
	c.tokens.WithLabelValues(string(category)).Set(float64(n))
}

// RecordQuickBuy counts a handed-off quick buy intent
func (c *Collector) RecordQuickBuy() {
	if c == nil {
		return
	}
	c.quickBuyIntents.Inc()
}

// RecordSourceLoad counts one initial data source attempt
func (c *Collector) RecordSourceLoad(category domain.Category, err error) {
	if c == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	c.sourceLoads.WithLabelValues(string(category), result).Inc()
}

// RecordUIDropped counts UI refresh messages that were dropped
func (c *Collector) RecordUIDropped() {
	if c == nil {
		return
	}
	c.uiDropped.Inc()
}
