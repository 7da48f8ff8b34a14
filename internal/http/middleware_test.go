package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TestCorrelationIDMiddleware verifies an inbound ID is echoed and a
// missing one is generated.
func TestCorrelationIDMiddleware(t *testing.T) {
	h := NewHandler(zap.NewNop())
	srv := httptest.NewServer(NewRouter(h, zap.NewNop(), nil))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Correlation-ID"); got != "abc-123" {
		t.Errorf("correlation ID = %q, want abc-123", got)
	}

	resp, err = http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.Header.Get("X-Correlation-ID") == "" {
		t.Error("no correlation ID generated")
	}
}

// TestRateLimitMiddleware verifies requests beyond the burst are rejected
// with 429 and that /health stays reachable.
func TestRateLimitMiddleware(t *testing.T) {
	h := NewHandler(zap.NewNop())
	limiter := rate.NewLimiter(rate.Limit(0.0001), 2)
	srv := httptest.NewServer(NewRouter(h, zap.NewNop(), limiter))
	defer srv.Close()

	var rejected int
	for i := 0; i < 5; i++ {
		resp, err := http.Get(srv.URL + "/all-locations")
		if err != nil {
			t.Fatalf("GET /all-locations: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			rejected++
		}
	}
	if rejected != 3 {
		t.Errorf("rejected = %d, want 3", rejected)
	}

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/health status = %d, want 200 despite limiter", resp.StatusCode)
	}
}
