package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// AgriTech API call rate per operation. Watch for: error vs success ratio.
	GatewayCallsTotal *prometheus.CounterVec

	// AgriTech API latency per call. Watch for: p95 > 2s (upstream degradation).
	GatewayCallDuration *prometheus.HistogramVec

	// Retry attempts against the AgriTech API. High retries = unstable network or backend.
	GatewayRetriesTotal prometheus.Counter

	// Circuit breaker rejections (calls short-circuited without hitting the network).
	GatewayBreakerOpenTotal prometheus.Counter

	// Session cache hits/misses per cache kind (month_weather, crop_threshold, recommendation).
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Forecast refresh cycles started and discarded-as-stale completions.
	RefreshCyclesTotal      prometheus.Counter
	StaleRefreshesDiscarded prometheus.Counter

	// Auth operations by outcome (success, validation_error, bad_response, unexpected).
	AuthOperationsTotal *prometheus.CounterVec

	// Dev server request rate and latency per route.
	DevServerRequestsTotal   *prometheus.CounterVec
	DevServerRequestDuration *prometheus.HistogramVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	GatewayCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatewayCallsTotal",
			Help: "Total number of AgriTech API calls",
		},
		[]string{"operation", "status"},
	)
	GatewayCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatewayCallDurationSeconds",
			Help:    "AgriTech API latency in seconds (per call)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "status"},
	)
	GatewayRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatewayRetriesTotal",
			Help: "Total number of retry attempts for AgriTech API calls",
		},
	)
	GatewayBreakerOpenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gatewayBreakerOpenTotal",
			Help: "Calls rejected because the circuit breaker was open",
		},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Session cache hits by cache kind",
		},
		[]string{"cacheType"},
	)
	CacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheMissesTotal",
			Help: "Session cache misses by cache kind",
		},
		[]string{"cacheType"},
	)
	RefreshCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "refreshCyclesTotal",
			Help: "Forecast refresh cycles started",
		},
	)
	StaleRefreshesDiscarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "staleRefreshesDiscardedTotal",
			Help: "Refresh completions discarded because a newer selection superseded them",
		},
	)
	AuthOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authOperationsTotal",
			Help: "Auth operations by outcome",
		},
		[]string{"operation", "outcome"},
	)
	DevServerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devserverRequestsTotal",
			Help: "Dev server HTTP requests by method, route, and status class",
		},
		[]string{"method", "route", "status"},
	)
	DevServerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "devserverRequestDurationSeconds",
			Help:    "Dev server HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	registry.MustRegister(
		GatewayCallsTotal,
		GatewayCallDuration,
		GatewayRetriesTotal,
		GatewayBreakerOpenTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		RefreshCyclesTotal,
		StaleRefreshesDiscarded,
		AuthOperationsTotal,
		DevServerRequestsTotal,
		DevServerRequestDuration,
	)
}

// StatusLabel maps an HTTP status code to a stable metric label.
func StatusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == http.StatusTooManyRequests:
		return "rate_limited"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	default:
		return "error"
	}
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
// Mounted by the dev server; a production mobile shell would not expose it.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
