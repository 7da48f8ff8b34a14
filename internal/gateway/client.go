package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/agritech/agriclient/internal/models"
	"github.com/agritech/agriclient/internal/observability"
	"github.com/agritech/agriclient/internal/session"
)

// Options tunes the HTTP gateway's resilience behavior. Zero values fall
// back to the defaults below.
type Options struct {
	Timeout        time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

const (
	defaultTimeout        = 5 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 100 * time.Millisecond
	defaultRetryMaxDelay  = 2 * time.Second
)

// HTTPGateway implements Gateway against the AgriTech HTTP API with
// retries, client-side rate limiting, and a circuit breaker. The token
// store is consulted per request by the authorizing transport.
type HTTPGateway struct {
	baseURL        string
	client         *http.Client
	limiter        *rate.Limiter
	breaker        *gobreaker.CircuitBreaker
	logger         *zap.Logger
	timeout        time.Duration
	retryAttempts  int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
}

// NewHTTPGateway builds an HTTPGateway for baseURL. The token store is
// required; a nil logger is replaced with a no-op one.
func NewHTTPGateway(baseURL string, tokens session.Store, logger *zap.Logger, opts Options) (*HTTPGateway, error) {
	if baseURL == "" {
		return nil, errors.New("gateway: base URL is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("gateway: invalid base URL: %w", err)
	}
	if tokens == nil {
		return nil, errors.New("gateway: token store is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := opts.RetryAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	baseDelay := opts.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}
	maxDelay := opts.RetryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		burst := opts.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), burst)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "agritech_api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &HTTPGateway{
		baseURL:        strings.TrimRight(baseURL, "/"),
		client:         &http.Client{Transport: newAuthTransport(nil, tokens)},
		limiter:        limiter,
		breaker:        breaker,
		logger:         logger,
		timeout:        timeout,
		retryAttempts:  attempts,
		retryBaseDelay: baseDelay,
		retryMaxDelay:  maxDelay,
	}, nil
}

func (g *HTTPGateway) Locations(ctx context.Context) ([]string, error) {
	var out []string
	err := g.do(ctx, "locations", http.MethodGet, "/all-locations", nil, nil, &out)
	return out, err
}

func (g *HTTPGateway) Crops(ctx context.Context) ([]models.CropThreshold, error) {
	var out []models.CropThreshold
	err := g.do(ctx, "crops", http.MethodGet, "/all-crops", nil, nil, &out)
	return out, err
}

func (g *HTTPGateway) CropThreshold(ctx context.Context, crop string) (models.CropThreshold, error) {
	var out models.CropThreshold
	err := g.do(ctx, "crop_threshold", http.MethodGet, "/crop_thresholds/"+url.PathEscape(crop), nil, nil, &out)
	return out, err
}

func (g *HTTPGateway) SuitableCrops(ctx context.Context, location string) ([]models.CropThreshold, error) {
	var out []models.CropThreshold
	err := g.do(ctx, "suitable_crops", http.MethodGet, "/suitable_crops/"+url.PathEscape(location), nil, nil, &out)
	return out, err
}

func (g *HTTPGateway) TodayWeather(ctx context.Context, location string) (models.WeatherRecord, error) {
	var out models.WeatherRecord
	err := g.do(ctx, "today_weather", http.MethodGet, "/weather/today/"+url.PathEscape(location), nil, nil, &out)
	return out, err
}

func (g *HTTPGateway) WeekWeather(ctx context.Context, location string, month, day int) ([]models.WeatherRecord, error) {
	var out []models.WeatherRecord
	p := "/weather/" + url.PathEscape(location) + "/" + strconv.Itoa(month) + "/" + strconv.Itoa(day)
	err := g.do(ctx, "week_weather", http.MethodGet, p, nil, nil, &out)
	return out, err
}

func (g *HTTPGateway) MonthWeather(ctx context.Context, location string, month int) ([]models.WeatherRecord, error) {
	var out []models.WeatherRecord
	p := "/weather/" + url.PathEscape(location) + "/" + strconv.Itoa(month)
	err := g.do(ctx, "month_weather", http.MethodGet, p, nil, nil, &out)
	return out, err
}

func (g *HTTPGateway) WeeklyRecommendations(ctx context.Context, location string, month, day int, crop string) (models.RecommendationResponse, error) {
	var out models.RecommendationResponse
	p := "/recommendations/" + url.PathEscape(location) + "/" + strconv.Itoa(month) + "/" + strconv.Itoa(day)
	q := url.Values{}
	q.Set("crop", crop)
	err := g.do(ctx, "recommendations", http.MethodGet, p, q, nil, &out)
	return out, err
}

func (g *HTTPGateway) SignUp(ctx context.Context, req models.SignUpRequest) (models.MessageResponse, error) {
	var out models.MessageResponse
	err := g.do(ctx, "signup", http.MethodPost, "/auth/register", nil, req, &out)
	return out, err
}

func (g *HTTPGateway) Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error) {
	var out models.LoginResponse
	err := g.do(ctx, "login", http.MethodPost, "/auth/login", nil, req, &out)
	return out, err
}

func (g *HTTPGateway) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (models.MessageResponse, error) {
	var out models.MessageResponse
	err := g.do(ctx, "forgot_password", http.MethodPost, "/auth/forgot-password", nil, req, &out)
	return out, err
}

func (g *HTTPGateway) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (models.MessageResponse, error) {
	var out models.MessageResponse
	err := g.do(ctx, "reset_password", http.MethodPost, "/auth/reset-password", nil, req, &out)
	return out, err
}

// do executes one logical API call with the retry policy. Retries apply
// to rate-limit, 5xx, and timeout failures only; a BadResponseError is
// returned to the caller immediately since retrying a rejected payload
// cannot succeed.
func (g *HTTPGateway) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	var lastErr error

	for attempt := 0; attempt < g.retryAttempts; attempt++ {
		if attempt > 0 {
			observability.GatewayRetriesTotal.Inc()
			delay := g.calculateBackoff(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := g.call(ctx, op, method, path, query, body, out)
		if err == nil {
			return nil
		}

		lastErr = err
		if !isRetryable(err) {
			return err
		}
	}

	return fmt.Errorf("exhausted retries: %w", lastErr)
}

func (g *HTTPGateway) call(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := g.buildRequest(reqCtx, method, path, query, body)
	if err != nil {
		observability.GatewayCallsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("build request: %w", err)
	}

	result, err := g.breaker.Execute(func() (any, error) {
		resp, doErr := g.client.Do(req)
		if doErr != nil {
			return nil, doErr
		}
		// 429 and 5xx count as breaker failures; everything else is
		// handed back for normal response handling.
		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			return nil, ErrRateLimited
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
		}
		return resp, nil
	})

	duration := time.Since(start).Seconds()
	if err != nil {
		observability.GatewayCallsTotal.WithLabelValues(op, "error").Inc()
		observability.GatewayCallDuration.WithLabelValues(op, "error").Observe(duration)

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			observability.GatewayBreakerOpenTotal.Inc()
			return fmt.Errorf("%w: circuit open", ErrUpstreamFailure)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("request timeout: %w", err)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	resp := result.(*http.Response)
	defer resp.Body.Close()

	status := observability.StatusLabel(resp.StatusCode)
	observability.GatewayCallsTotal.WithLabelValues(op, status).Inc()
	observability.GatewayCallDuration.WithLabelValues(op, status).Observe(duration)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return g.errorFromResponse(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}

	g.logger.Debug("gateway call",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (g *HTTPGateway) buildRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := g.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	return http.NewRequestWithContext(ctx, method, u, reader)
}

// errorFromResponse maps a non-2xx body into the error taxonomy: a
// parseable `{"msg": ...}` body becomes a user-visible BadResponseError,
// anything else falls back to a sentinel.
func (g *HTTPGateway) errorFromResponse(statusCode int, body []byte) error {
	var msg models.MessageResponse
	if err := json.Unmarshal(body, &msg); err == nil && msg.Msg != "" {
		return &BadResponseError{StatusCode: statusCode, Message: msg.Msg}
	}
	if statusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, statusCode)
}

func (g *HTTPGateway) calculateBackoff(attempt int) time.Duration {
	delay := float64(g.retryBaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(g.retryMaxDelay) {
		delay = float64(g.retryMaxDelay)
	}

	jitter := delay * 0.1 * rand.Float64()
	return time.Duration(delay + jitter)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := AsBadResponse(err); ok {
		return false
	}
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUpstreamFailure) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "context deadline exceeded") ||
		strings.Contains(errStr, "connection refused")
}
