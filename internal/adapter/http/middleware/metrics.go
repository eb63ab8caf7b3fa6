package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iho/caseledger/internal/infrastructure/metrics"
)

// idCollections are the path segments followed by a record ID.
var idCollections = map[string]bool{
	"cases":    true,
	"payments": true,
	"expenses": true,
}

// Metrics records request counts, durations and in-flight requests on m.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPInFlight.Inc()
			defer m.HTTPInFlight.Dec()

			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			path := normalizePath(r.URL.Path)
			m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath replaces record IDs with :id to bound label cardinality.
// /api/v1/cases/01ABC/summary -> /api/v1/cases/:id/summary
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		if idCollections[segments[i-1]] && segments[i] != "" {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
