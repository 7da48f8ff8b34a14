//go:build integration
// +build integration

// Package testhelpers wires up the client stack against a live AgriTech
// backend (normally the devserver binary) for integration tests.
package testhelpers

import (
	"os"
	"testing"

	"github.com/agritech/agriclient/internal/gateway"
	"github.com/agritech/agriclient/internal/observability"
	"github.com/agritech/agriclient/internal/session"
)

// IntegrationConfig holds configuration for integration tests.
type IntegrationConfig struct {
	APIURL string
}

// GetIntegrationConfig loads integration test configuration from the
// environment. Skips the test unless AGRITECH_INTEGRATION is set.
func GetIntegrationConfig(t *testing.T) IntegrationConfig {
	t.Helper()
	if os.Getenv("AGRITECH_INTEGRATION") == "" {
		t.Skip("AGRITECH_INTEGRATION not set, skipping integration test")
	}

	apiURL := os.Getenv("AGRITECH_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:5000"
	}
	return IntegrationConfig{APIURL: apiURL}
}

// SetupIntegrationGateway builds a real HTTP gateway with a throwaway
// in-memory session store. Returns the gateway and the token store so
// tests can assert on persisted credentials.
func SetupIntegrationGateway(t *testing.T, cfg IntegrationConfig) (gateway.Gateway, session.Store) {
	t.Helper()

	logger, err := observability.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	t.Cleanup(func() { _ = logger.Sync() })

	tokens := session.NewMemoryStore()
	gw, err := gateway.NewHTTPGateway(cfg.APIURL, tokens, logger, gateway.Options{})
	if err != nil {
		t.Fatalf("NewHTTPGateway() error = %v", err)
	}
	return gw, tokens
}
