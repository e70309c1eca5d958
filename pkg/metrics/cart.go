package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeNotFound   = "not_found"
	OutcomeError      = "error"
)

// CartMetrics counts cart store operations by outcome.
type CartMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on reg. A nil reg yields a no-op recorder.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_operation_duration_seconds",
		Help:    "Duration of cart store operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart store operations by outcome.",
	}, []string{"operation", "outcome"})
	reg.MustRegister(duration, total)
	return &CartMetrics{duration: duration, total: total}
}

// Observe records one finished operation.
func (c *CartMetrics) Observe(operation, outcome string, elapsed time.Duration) {
	if c == nil || c.total == nil {
		return
	}
	operation = normalizeLabel(operation)
	c.total.WithLabelValues(operation, normalizeLabel(outcome)).Inc()
	c.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
