package ops

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/logging"
	"github.com/jorgecardleitao/private-jets/internal/metrics"
)

// MetricsMiddleware records HTTP metrics and a structured log line for
// each request against the ops surface. The ops router only serves fixed
// paths, so the path is a bounded label.
func MetricsMiddleware(reg *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			endpoint := r.URL.Path

			reg.HTTPRequestsInFlight.WithLabelValues(endpoint).Inc()
			defer reg.HTTPRequestsInFlight.WithLabelValues(endpoint).Dec()

			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, statusCode: 200}
			next.ServeHTTP(wrapped, r)
			duration := time.Since(start).Seconds()

			reg.HTTPRequestsTotal.WithLabelValues(
				endpoint,
				r.Method,
				strconv.Itoa(wrapped.statusCode),
			).Inc()
			reg.HTTPRequestDuration.WithLabelValues(
				endpoint,
				r.Method,
			).Observe(duration)

			logging.Info("HTTP request completed",
				"method", r.Method,
				"endpoint", endpoint,
				"status_code", wrapped.statusCode,
				"duration_ms", int(duration*1000),
			)
		})
	}
}

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}
