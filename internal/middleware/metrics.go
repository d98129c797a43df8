package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/FolioWorks/entity_layer/internal/app/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Metrics records request counts, durations and in-flight gauges.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.HTTPInFlight(1)
		defer metrics.HTTPInFlight(-1)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.ObserveHTTPRequest(r.Method, routePattern(r.URL.Path), strconv.Itoa(rec.status), time.Since(start).Seconds())
	})
}

// routePattern collapses resource IDs so the label cardinality stays bounded.
func routePattern(path string) string {
	switch {
	case path == "/entities" || path == "/invites" || path == "/drafts" || path == "/healthz":
		return path
	case len(path) > len("/entities/") && path[:len("/entities/")] == "/entities/":
		return "/entities/{id}"
	case len(path) > len("/providers/category/") && path[:len("/providers/category/")] == "/providers/category/":
		return "/providers/category/{key}"
	default:
		return "other"
	}
}
