package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "entity_layer",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entity_layer",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "entity_layer",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entity_layer",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Total number of entity submissions.",
		},
		[]string{"status"},
	)

	providerFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entity_layer",
			Subsystem: "providers",
			Name:      "fetches_total",
			Help:      "Total number of provider catalog fetches.",
		},
		[]string{"category", "result"},
	)

	draftOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "entity_layer",
			Subsystem: "drafts",
			Name:      "operations_total",
			Help:      "Total number of draft store operations.",
		},
		[]string{"op"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		submissions,
		providerFetches,
		draftOps,
	)
}

// Handler exposes the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one handled request.
func ObserveHTTPRequest(method, path, status string, seconds float64) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// HTTPInFlight tracks in-flight request counts.
func HTTPInFlight(delta float64) {
	httpInFlight.Add(delta)
}

// RecordSubmission counts a submission outcome ("success" or "failure").
func RecordSubmission(status string) {
	submissions.WithLabelValues(status).Inc()
}

// RecordProviderFetch counts a catalog fetch for a category.
func RecordProviderFetch(category, result string) {
	providerFetches.WithLabelValues(category, result).Inc()
}

// RecordDraftOp counts a draft operation ("save", "load", "clear", "sweep").
func RecordDraftOp(op string) {
	draftOps.WithLabelValues(op).Inc()
}
