package gateway

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/agritech/agriclient/internal/session"
)

// authTransport injects the persisted bearer token, Content-Type, and a
// correlation ID into every outgoing request. The token store is read on
// each request, so a login that lands mid-session takes effect on the
// next call without rebuilding the client.
type authTransport struct {
	base   http.RoundTripper
	tokens session.Store
}

func newAuthTransport(base http.RoundTripper, tokens session.Store) *authTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{base: base, tokens: tokens}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Per RoundTripper contract the original request must not be mutated.
	clone := req.Clone(req.Context())
	clone.Header.Set("Content-Type", "application/json")
	clone.Header.Set("Accept", "application/json")
	if clone.Header.Get("X-Correlation-ID") == "" {
		clone.Header.Set("X-Correlation-ID", uuid.New().String())
	}
	if token := session.Token(t.tokens); token != "" {
		clone.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base.RoundTrip(clone)
}
