package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestMetrics_Usable verifies that all Prometheus metrics can be used without
// panic, ensuring label dimensions match usage across gateway, cache, forecast, and auth packages.
func TestMetrics_Usable(t *testing.T) {
	GatewayCallsTotal.WithLabelValues("month_weather", "success").Inc()
	GatewayCallsTotal.WithLabelValues("login", "client_error").Inc()
	GatewayCallDuration.WithLabelValues("month_weather", "success").Observe(0.1)
	GatewayRetriesTotal.Inc()
	GatewayBreakerOpenTotal.Inc()
	CacheHitsTotal.WithLabelValues("month_weather").Inc()
	CacheMissesTotal.WithLabelValues("crop_threshold").Inc()
	RefreshCyclesTotal.Inc()
	StaleRefreshesDiscarded.Inc()
	AuthOperationsTotal.WithLabelValues("login", "success").Inc()
}

// TestStatusLabel verifies status code to metric label mapping.
func TestStatusLabel(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "success"},
		{204, "success"},
		{429, "rate_limited"},
		{404, "client_error"},
		{500, "server_error"},
		{100, "error"},
	}
	for _, tc := range tests {
		if got := StatusLabel(tc.code); got != tc.want {
			t.Errorf("StatusLabel(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

// TestMetricsHandler_ServesPrometheusFormat verifies that MetricsHandler serves
// Prometheus text exposition format with correct HTTP status and metric output.
func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	handler := MetricsHandler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("MetricsHandler status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "gatewayCallsTotal") {
		t.Error("MetricsHandler response should contain metric output")
	}
}
