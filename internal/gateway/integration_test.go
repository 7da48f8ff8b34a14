//go:build integration
// +build integration

package gateway_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/agritech/agriclient/internal/models"
	"github.com/agritech/agriclient/internal/session"
	"github.com/agritech/agriclient/internal/testhelpers"
)

// TestIntegration_WeatherEndpoints exercises the read-only endpoints
// against a running backend.
func TestIntegration_WeatherEndpoints(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	gw, _ := testhelpers.SetupIntegrationGateway(t, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	locations, err := gw.Locations(ctx)
	if err != nil {
		t.Fatalf("Locations() error = %v", err)
	}
	if len(locations) == 0 {
		t.Fatal("no locations returned")
	}
	location := locations[0]

	crops, err := gw.Crops(ctx)
	if err != nil {
		t.Fatalf("Crops() error = %v", err)
	}
	if len(crops) == 0 {
		t.Fatal("no crops returned")
	}

	today, err := gw.TodayWeather(ctx, location)
	if err != nil {
		t.Fatalf("TodayWeather(%q) error = %v", location, err)
	}
	if today.Conditions == "" {
		t.Error("today's record has no conditions")
	}

	now := time.Now().UTC()
	week, err := gw.WeekWeather(ctx, location, int(now.Month()), now.Day())
	if err != nil {
		t.Fatalf("WeekWeather() error = %v", err)
	}
	if len(week) != 7 {
		t.Errorf("len(week) = %d, want 7", len(week))
	}

	rec, err := gw.WeeklyRecommendations(ctx, location, int(now.Month()), now.Day(), crops[0].Name)
	if err != nil {
		t.Fatalf("WeeklyRecommendations() error = %v", err)
	}
	if rec.Crop != crops[0].Name {
		t.Errorf("Crop = %q, want %q", rec.Crop, crops[0].Name)
	}
}

// TestIntegration_AuthFlow registers a fresh account, logs in, and
// verifies the bearer token round trip.
func TestIntegration_AuthFlow(t *testing.T) {
	cfg := testhelpers.GetIntegrationConfig(t)
	gw, tokens := testhelpers.SetupIntegrationGateway(t, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	email := fmt.Sprintf("itest-%d@farm.com", time.Now().UnixNano())
	_, err := gw.SignUp(ctx, models.SignUpRequest{
		Username: "itest",
		Email:    email,
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	resp, err := gw.Login(ctx, models.LoginRequest{Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("login returned empty access token")
	}

	if err := tokens.Save(session.Record{Email: email, AccessToken: resp.AccessToken}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Authenticated read; the dev server accepts any bearer token.
	if _, err := gw.Locations(ctx); err != nil {
		t.Fatalf("authenticated Locations() error = %v", err)
	}
}
