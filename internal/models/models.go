package models

import (
	"fmt"
	"strings"
	"time"
)

// wireTimeLayout is the timestamp format used by the AgriTech API for all
// date fields, e.g. "2025-07-16T00:00:00.000".
const wireTimeLayout = "2006-01-02T15:04:05.000"

// WireTime wraps time.Time with the API's millisecond-precision JSON format.
type WireTime struct {
	time.Time
}

// MarshalJSON encodes the time in the API wire format.
func (t WireTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(wireTimeLayout) + `"`), nil
}

// UnmarshalJSON parses the API wire format, tolerating a trailing "Z" and
// second-precision timestamps some endpoints emit.
func (t *WireTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range []string{wireTimeLayout, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("parse wire time %q", s)
}

// Date returns the calendar date portion, normalized to midnight UTC.
// Used when comparing records against a forecast window.
func (t WireTime) Date() time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeatherRecord is a single daily weather observation or forecast as
// returned by the AgriTech API. Records are never mutated locally, only
// filtered and aggregated.
type WeatherRecord struct {
	Day        string   `json:"day,omitempty"`
	Date       WireTime `json:"date"`
	TempMax    float64  `json:"tempmax"`
	TempMin    float64  `json:"tempmin"`
	Temp       float64  `json:"temp"`
	Humidity   float64  `json:"humidity"`
	Precip     float64  `json:"precip"`
	WindSpeed  float64  `json:"windspeed"`
	Conditions string   `json:"conditions"`
}

// CropThreshold is the environmental envelope under which a crop is
// considered suitable to grow. Fetched once per crop name and cached.
type CropThreshold struct {
	Name              string  `json:"name"`
	Icon              string  `json:"icon"`
	MinTemp           float64 `json:"min_temp"`
	MaxTemp           float64 `json:"max_temp"`
	MinPrecip         float64 `json:"min_precip"`
	MaxPrecip         float64 `json:"max_precip"`
	MinHumidity       float64 `json:"min_humidity"`
	MaxHumidity       float64 `json:"max_humidity"`
	MinSolarRadiation float64 `json:"min_solarradiation"`
	MaxSolarRadiation float64 `json:"max_solarradiation"`
}

// RecommendationResponse is the weekly recommendation payload for a
// (location, week, crop) triple. An empty Recommendations list is a valid
// "no recommendation" result; the first element, when present, is the
// headline recommendation.
type RecommendationResponse struct {
	Crop            string   `json:"crop"`
	Recommendations []string `json:"recommendations"`
}

// MessageResponse is the generic `{"msg": ...}` body the auth endpoints
// return on both success and error.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// SignUpRequest is the POST /auth/register payload.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the POST /auth/login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token issued on successful login.
type LoginResponse struct {
	Msg         string `json:"msg"`
	AccessToken string `json:"access_token"`
}

// ForgotPasswordRequest is the POST /auth/forgot-password payload.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the POST /auth/reset-password payload.
type ResetPasswordRequest struct {
	Email              string `json:"email"`
	OTP                string `json:"otp"`
	NewPassword        string `json:"new_password"`
	ConfirmNewPassword string `json:"confirm_new_password"`
}
