package lib

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// MetricsRegistry holds the service collectors exposed on /metrics.
	MetricsRegistry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vrs",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vrs",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	LifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vrs",
			Subsystem: "lifecycle",
			Name:      "transitions_total",
			Help:      "Rental lifecycle transitions by entity and target status.",
		},
		[]string{"entity", "status"},
	)

	LocationSamples = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vrs",
			Subsystem: "kiosk",
			Name:      "location_samples_total",
			Help:      "Location samples recorded for active sessions.",
		},
	)
)

func init() {
	MetricsRegistry.MustRegister(
		HTTPRequests,
		HTTPDuration,
		LifecycleTransitions,
		LocationSamples,
		collectors.NewGoCollector(),
	)
}

func RecordTransition(entity string, status string) {
	LifecycleTransitions.WithLabelValues(entity, status).Inc()
}
