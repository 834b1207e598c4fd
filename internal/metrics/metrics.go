package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all Prometheus metrics of the ETL pipeline
type Registry struct {
	// Upstream fetches
	FetchesTotal      prometheus.CounterVec
	FetchRetriesTotal prometheus.Counter
	FetchDuration     prometheus.Histogram

	// Cache store
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.Counter
	CacheWritesTotal prometheus.CounterVec

	// ETL units
	UnitsTotal    prometheus.CounterVec
	UnitsInFlight prometheus.Gauge
	LegsWritten   prometheus.Counter
	JobDuration   prometheus.HistogramVec

	// Ops HTTP surface
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec
}

var (
	once     sync.Once
	registry *Registry
)

// Default returns the process-wide metrics registry, registering all
// collectors on first use. Collectors register against the default
// Prometheus registerer, so promhttp exposes them as-is.
func Default() *Registry {
	once.Do(func() {
		registry = &Registry{
			FetchesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "privatejets_fetches_total",
					Help: "Total outbound fetches to the telemetry source by outcome",
				},
				[]string{"outcome"},
			),
			FetchRetriesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "privatejets_fetch_retries_total",
					Help: "Total retries of outbound fetches",
				},
			),
			FetchDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "privatejets_fetch_duration_seconds",
					Help:    "Latency distribution of outbound fetches in seconds",
					Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
			),

			CacheHitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "privatejets_cache_hits_total",
					Help: "Total cache hits by backend origin",
				},
				[]string{"origin"},
			),
			CacheMissesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "privatejets_cache_misses_total",
					Help: "Total cache misses that triggered a fetch",
				},
			),
			CacheWritesTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "privatejets_cache_writes_total",
					Help: "Total cache writes by backend",
				},
				[]string{"backend"},
			),

			UnitsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "privatejets_units_total",
					Help: "Total ETL work units by job and final state",
				},
				[]string{"job", "state"},
			),
			UnitsInFlight: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "privatejets_units_in_flight",
					Help: "Number of ETL work units currently being processed",
				},
			),
			LegsWritten: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "privatejets_legs_written_total",
					Help: "Total leg rows written to the datasets",
				},
			),
			JobDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "privatejets_job_duration_seconds",
					Help:    "ETL job execution time in seconds",
					Buckets: []float64{1, 5, 10, 30, 60, 300, 900, 3600, 14400},
				},
				[]string{"job_name"},
			),

			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "privatejets_http_requests_total",
					Help: "Total ops HTTP requests by endpoint, method and status",
				},
				[]string{"endpoint", "method", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "privatejets_http_request_duration_seconds",
					Help:    "Ops HTTP request latency in seconds",
					Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
				},
				[]string{"endpoint", "method"},
			),
			HTTPRequestsInFlight: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "privatejets_http_requests_in_flight",
					Help: "Ops HTTP requests currently being served",
				},
				[]string{"endpoint"},
			),
		}
	})
	return registry
}
