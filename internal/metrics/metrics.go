// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "spendwise"

var (
	httpResponseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_time_seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"method", "status"},
	)

	persistWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Snapshot writes to the blob store by key and outcome.",
		},
		[]string{"key", "success"},
	)

	persistLoadFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "load_fallbacks_total",
			Help:      "Snapshots that could not be decoded at startup and were replaced by defaults.",
		},
		[]string{"key"},
	)

	ledgerSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "items",
			Help:      "Number of records held per collection.",
		},
		[]string{"key"},
	)

	insightsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "insights",
			Name:      "call_duration_seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)

	snapshotsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "amqp",
			Name:      "snapshots_published_total",
		},
		[]string{"key", "success"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		},
		[]string{"method"},
	)
)

// ObserveHTTP records one served request.
func ObserveHTTP(method string, status int, elapsed time.Duration) {
	httpResponseTime.
		WithLabelValues(method, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

// RecordWrite counts a snapshot write attempt.
func RecordWrite(key string, ok bool) {
	persistWrites.WithLabelValues(key, strconv.FormatBool(ok)).Inc()
}

// RecordLoadFallback counts a malformed snapshot replaced at startup.
func RecordLoadFallback(key string) {
	persistLoadFallbacks.WithLabelValues(key).Inc()
}

// SetItems publishes the current size of a collection.
func SetItems(key string, n int) {
	ledgerSize.WithLabelValues(key).Set(float64(n))
}

// ObserveInsights records a summarization call by outcome (ok, error, cached).
func ObserveInsights(outcome string, elapsed time.Duration) {
	insightsDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordPublish counts a change notification sent to the broker.
func RecordPublish(key string, ok bool) {
	snapshotsPublished.WithLabelValues(key, strconv.FormatBool(ok)).Inc()
}

// RecordRateLimited counts a request rejected with 429.
func RecordRateLimited(method string) {
	rateLimited.WithLabelValues(method).Inc()
}
