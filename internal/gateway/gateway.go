// Package gateway is the typed contract to the remote AgriTech API and
// its HTTP implementation. All weather, crop, and auth round trips in
// the data layer go through the Gateway interface so stores can be
// tested against fakes.
package gateway

import (
	"context"

	"github.com/agritech/agriclient/internal/models"
)

// Gateway is the request/response contract with the AgriTech backend.
// Every call is a potential suspension point: implementations must honor
// context cancellation and never block the caller beyond the configured
// timeout.
type Gateway interface {
	// Locations returns all known location keys (snake_case).
	Locations(ctx context.Context) ([]string, error)

	// Crops returns the threshold entries for every known crop.
	Crops(ctx context.Context) ([]models.CropThreshold, error)

	// CropThreshold returns the threshold entry for a single crop.
	CropThreshold(ctx context.Context, crop string) (models.CropThreshold, error)

	// SuitableCrops returns the crops suitable for a location.
	SuitableCrops(ctx context.Context, location string) ([]models.CropThreshold, error)

	// TodayWeather returns the current day's record for a location.
	TodayWeather(ctx context.Context, location string) (models.WeatherRecord, error)

	// WeekWeather returns the week of records following month/day.
	WeekWeather(ctx context.Context, location string, month, day int) ([]models.WeatherRecord, error)

	// MonthWeather returns the full month series for a location.
	MonthWeather(ctx context.Context, location string, month int) ([]models.WeatherRecord, error)

	// WeeklyRecommendations returns free-text recommendations for the
	// week following month/day, for the given crop.
	WeeklyRecommendations(ctx context.Context, location string, month, day int, crop string) (models.RecommendationResponse, error)

	// SignUp registers a new account.
	SignUp(ctx context.Context, req models.SignUpRequest) (models.MessageResponse, error)

	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, req models.LoginRequest) (models.LoginResponse, error)

	// ForgotPassword requests a password-reset OTP for an email.
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (models.MessageResponse, error)

	// ResetPassword completes a password reset with an OTP.
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) (models.MessageResponse, error)
}
