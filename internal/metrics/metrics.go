// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OccurrencesCreated counts expenses materialized from recurring series.
	OccurrencesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookkeeper_recurring_occurrences_created_total",
		Help: "Number of recurring expense occurrences created by backfill.",
	})

	// DivisionValidationFailures counts rejected user supplied divisions by leg.
	DivisionValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookkeeper_division_validation_failures_total",
		Help: "Number of expense divisions rejected during validation.",
	}, []string{"leg"})

	// RequestDuration observes HTTP request latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookkeeper_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
