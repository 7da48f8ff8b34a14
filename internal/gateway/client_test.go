package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/agritech/agriclient/internal/models"
	"github.com/agritech/agriclient/internal/session"
)

func newTestGateway(t *testing.T, handler http.Handler) (*HTTPGateway, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	tokens := session.NewMemoryStore()
	g, err := NewHTTPGateway(srv.URL, tokens, nil, Options{
		Timeout:        2 * time.Second,
		RetryAttempts:  3,
		RetryBaseDelay: time.Millisecond,
		RetryMaxDelay:  5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewHTTPGateway() error = %v", err)
	}
	return g, tokens
}

// TestHTTPGateway_Locations verifies a plain GET decodes the location list.
func TestHTTPGateway_Locations(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all-locations" {
			t.Errorf("path = %q, want /all-locations", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]string{"kericho_kenya", "nakuru_kenya"})
	}))

	got, err := g.Locations(context.Background())
	if err != nil {
		t.Fatalf("Locations() error = %v", err)
	}
	if len(got) != 2 || got[0] != "kericho_kenya" {
		t.Errorf("Locations() = %v", got)
	}
}

// TestHTTPGateway_AuthHeaders verifies the transport injects the persisted
// bearer token, Content-Type, and a correlation ID on every request.
func TestHTTPGateway_AuthHeaders(t *testing.T) {
	var gotAuth, gotContentType, gotCorrID string
	g, tokens := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotCorrID = r.Header.Get("X-Correlation-ID")
		json.NewEncoder(w).Encode([]string{})
	}))

	if err := tokens.Save(session.Record{AccessToken: "tok-123"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := g.Locations(context.Background()); err != nil {
		t.Fatalf("Locations() error = %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}
	if gotCorrID == "" {
		t.Error("X-Correlation-ID header missing")
	}
}

// TestHTTPGateway_NoTokenNoHeader verifies no Authorization header is sent
// when the session is unauthenticated.
func TestHTTPGateway_NoTokenNoHeader(t *testing.T) {
	var sawAuth bool
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode([]string{})
	}))

	if _, err := g.Locations(context.Background()); err != nil {
		t.Fatalf("Locations() error = %v", err)
	}
	if sawAuth {
		t.Error("Authorization header sent for unauthenticated session")
	}
}

// TestHTTPGateway_Login_BadResponse verifies a non-2xx body with a msg
// field surfaces as a BadResponseError carrying the server message.
func TestHTTPGateway_Login_BadResponse(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(models.MessageResponse{Msg: "bad credentials"})
	}))

	_, err := g.Login(context.Background(), models.LoginRequest{Email: "bob@x.com", Password: "secret1"})
	bre, ok := AsBadResponse(err)
	if !ok {
		t.Fatalf("Login() error = %v, want BadResponseError", err)
	}
	if bre.Message != "bad credentials" {
		t.Errorf("Message = %q, want %q", bre.Message, "bad credentials")
	}
	if bre.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", bre.StatusCode)
	}
}

// TestHTTPGateway_Login_Success verifies the login payload round trip and
// access token decoding.
func TestHTTPGateway_Login_Success(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode login request: %v", err)
		}
		if req.Email != "bob@x.com" {
			t.Errorf("email = %q", req.Email)
		}
		json.NewEncoder(w).Encode(models.LoginResponse{Msg: "ok", AccessToken: "T"})
	}))

	resp, err := g.Login(context.Background(), models.LoginRequest{Email: "bob@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken != "T" {
		t.Errorf("AccessToken = %q, want %q", resp.AccessToken, "T")
	}
}

// TestHTTPGateway_RetriesOn5xx verifies 5xx responses are retried and a
// later success wins.
func TestHTTPGateway_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode([]string{"kericho_kenya"})
	}))

	got, err := g.Locations(context.Background())
	if err != nil {
		t.Fatalf("Locations() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Locations() = %v", got)
	}
	if calls.Load() != 3 {
		t.Errorf("server calls = %d, want 3", calls.Load())
	}
}

// TestHTTPGateway_NoRetryOnBadResponse verifies a 4xx with a server
// message is returned immediately without retrying.
func TestHTTPGateway_NoRetryOnBadResponse(t *testing.T) {
	var calls atomic.Int32
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.MessageResponse{Msg: "email taken"})
	}))

	_, err := g.SignUp(context.Background(), models.SignUpRequest{Username: "user", Email: "a@b.com", Password: "secret1"})
	if _, ok := AsBadResponse(err); !ok {
		t.Fatalf("SignUp() error = %v, want BadResponseError", err)
	}
	if calls.Load() != 1 {
		t.Errorf("server calls = %d, want 1 (no retry on bad response)", calls.Load())
	}
}

// TestHTTPGateway_WeekWeather_PathAndDates verifies path construction and
// wire-format date decoding for the week endpoint.
func TestHTTPGateway_WeekWeather_PathAndDates(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather/kericho_kenya/7/14" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`[{"date":"2025-07-16T00:00:00.000","temp":21.04,"conditions":"partially_cloudy"}]`))
	}))

	got, err := g.WeekWeather(context.Background(), "kericho_kenya", 7, 14)
	if err != nil {
		t.Fatalf("WeekWeather() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("WeekWeather() len = %d, want 1", len(got))
	}
	if got[0].Date.Day() != 16 || got[0].Date.Month() != time.July {
		t.Errorf("date = %v, want July 16", got[0].Date.Time)
	}
	if got[0].Conditions != "partially_cloudy" {
		t.Errorf("conditions = %q", got[0].Conditions)
	}
}

// TestHTTPGateway_Recommendations_Query verifies the crop query parameter.
func TestHTTPGateway_Recommendations_Query(t *testing.T) {
	g, _ := newTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("crop"); got != "tea" {
			t.Errorf("crop query = %q, want tea", got)
		}
		json.NewEncoder(w).Encode(models.RecommendationResponse{Crop: "tea", Recommendations: []string{"Mulch young bushes."}})
	}))

	got, err := g.WeeklyRecommendations(context.Background(), "kericho_kenya", 7, 14, "tea")
	if err != nil {
		t.Fatalf("WeeklyRecommendations() error = %v", err)
	}
	if len(got.Recommendations) != 1 {
		t.Errorf("recommendations = %v", got.Recommendations)
	}
}
