package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// All metrics register with the default registry through promauto and are
// exposed on /metrics.

var (
	// ==================== HTTP METRICS ====================

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// ==================== CACHE METRICS ====================

	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"key"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"key"},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05},
		},
		[]string{"operation"}, // get, set, delete
	)

	// ==================== RATE LIMITING METRICS ====================

	RateLimitedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of rate-limited requests",
		},
	)

	RateLimitAllowedRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_allowed_requests_total",
			Help: "Total number of requests allowed by rate limiter",
		},
	)

	// ==================== ANALYTICS METRICS ====================

	// EventSnapshotSize is how many raw events each session listing scanned.
	// A value pinned at the scan limit means totals are sampled.
	EventSnapshotSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_event_snapshot_size",
			Help:    "Number of raw events scanned per session listing",
			Buckets: []float64{0, 10, 50, 100, 250, 500, 1000, 2500, 5000},
		},
	)

	SessionAggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_aggregation_duration_seconds",
			Help:    "Time spent grouping, sorting and paginating events",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1},
		},
		[]string{"group_by"},
	)

	// ==================== BUSINESS METRICS ====================

	BrandsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "brands_created_total",
			Help: "Total number of brands created from the dashboard",
		},
	)

	LinksCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "links_created_total",
			Help: "Total number of links created through the link API",
		},
	)

	LinkAPIErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "link_api_errors_total",
			Help: "Errors returned by the external link API",
		},
		[]string{"kind"}, // auth, rate_limit, upstream, transport
	)

	// ==================== DATABASE METRICS ====================

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	DatabaseErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_errors_total",
			Help: "Total number of database errors",
		},
		[]string{"operation"},
	)
)

func RecordCacheHit(key string) {
	CacheHitsTotal.WithLabelValues(key).Inc()
}

func RecordCacheMiss(key string) {
	CacheMissesTotal.WithLabelValues(key).Inc()
}

func RecordRateLimited() {
	RateLimitedRequestsTotal.Inc()
}

func RecordRateLimitAllowed() {
	RateLimitAllowedRequestsTotal.Inc()
}

func RecordBrandCreated() {
	BrandsCreatedTotal.Inc()
}

func RecordLinkCreated() {
	LinksCreatedTotal.Inc()
}

func RecordLinkAPIError(kind string) {
	LinkAPIErrorsTotal.WithLabelValues(kind).Inc()
}

// ObserveQuery records the duration of a database operation started at
// start, and counts it as an error when err is non-nil.
func ObserveQuery(operation string, start time.Time, err error) {
	DatabaseQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		DatabaseErrorsTotal.WithLabelValues(operation).Inc()
	}
}
