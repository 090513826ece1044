package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart operation outcomes and catalog lookups.
type CartMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	catalog  *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_operation_duration_seconds",
		Help:    "Duration of cart operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations by outcome.",
	}, []string{"operation", "outcome"})
	catalog := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_requests_total",
		Help: "Catalog service requests by resource and result.",
	}, []string{"resource", "result"})
	reg.MustRegister(duration, outcomes, catalog)
	return &CartMetrics{
		duration: duration,
		outcomes: outcomes,
		catalog:  catalog,
	}
}

// ObserveOperation records the duration and outcome of a single cart operation.
func (c *CartMetrics) ObserveOperation(operation, outcome string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	op := normalizeLabel(operation)
	c.duration.WithLabelValues(op).Observe(duration.Seconds())
	c.outcomes.WithLabelValues(op, normalizeLabel(outcome)).Inc()
}

// IncCatalogRequest counts a catalog request for resource ("stock" or "product").
func (c *CartMetrics) IncCatalogRequest(resource, result string) {
	if c == nil || c.catalog == nil {
		return
	}
	c.catalog.WithLabelValues(normalizeLabel(resource), normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
