package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Sub-query outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	subqueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "user_service",
			Subsystem: "aggregator",
			Name:      "subquery_total",
			Help:      "Sub-queries issued by the aggregator, by store, capability and outcome.",
		},
		[]string{"store", "capability", "outcome"},
	)

	subqueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "user_service",
			Subsystem: "aggregator",
			Name:      "subquery_duration_seconds",
			Help:      "Duration of individual store queries.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"store"},
	)

	aggregations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "user_service",
			Subsystem: "aggregator",
			Name:      "aggregations_total",
			Help:      "Completed aggregation requests, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(
		subqueries,
		subqueryDuration,
		aggregations,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordSubquery counts one isolated sub-query outcome.
func RecordSubquery(store, capability, outcome string) {
	subqueries.WithLabelValues(store, capability, outcome).Inc()
}

// ObserveQuery records the wall time of a single store round trip.
func ObserveQuery(store string, d time.Duration) {
	subqueryDuration.WithLabelValues(store).Observe(d.Seconds())
}

// RecordAggregation counts one finished aggregation.
func RecordAggregation(outcome string) {
	aggregations.WithLabelValues(outcome).Inc()
}
