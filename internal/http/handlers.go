// Package http implements the development API server: a fixture-backed
// stand-in for the production AgriTech backend, serving the same routes
// and payload shapes so the client stack can run end to end locally.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/agritech/agriclient/internal/models"
)

// account is a registered dev-server user. Passwords are stored as-is;
// this server only ever runs on a developer's machine.
type account struct {
	Username string
	Password string
	OTP      string
}

// Handler holds dependencies for the dev API handlers.
type Handler struct {
	logger *zap.Logger

	mu       sync.Mutex
	accounts map[string]*account
}

// NewHandler returns a Handler with an empty account registry.
func NewHandler(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:   logger,
		accounts: make(map[string]*account),
	}
}

// GetLocations handles GET /all-locations.
func (h *Handler) GetLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fixtureLocations)
}

// GetCrops handles GET /all-crops.
func (h *Handler) GetCrops(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fixtureCrops)
}

// GetCropThreshold handles GET /crop_thresholds/{crop}.
func (h *Handler) GetCropThreshold(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["crop"]
	crop, ok := cropByName(name)
	if !ok {
		writeMsg(w, http.StatusNotFound, "Crop not found: "+name)
		return
	}
	writeJSON(w, http.StatusOK, crop)
}

// GetSuitableCrops handles GET /suitable_crops/{location}.
func (h *Handler) GetSuitableCrops(w http.ResponseWriter, r *http.Request) {
	location := mux.Vars(r)["location"]
	if !knownLocation(location) {
		writeMsg(w, http.StatusNotFound, "Location not found: "+location)
		return
	}
	writeJSON(w, http.StatusOK, suitableCrops(location))
}

// GetTodayWeather handles GET /weather/today/{location}.
func (h *Handler) GetTodayWeather(w http.ResponseWriter, r *http.Request) {
	location := mux.Vars(r)["location"]
	if !knownLocation(location) {
		writeMsg(w, http.StatusNotFound, "Location not found: "+location)
		return
	}
	now := nowUTC()
	writeJSON(w, http.StatusOK, weatherFor(location, int(now.Month()), now.Day()))
}

// GetMonthWeather handles GET /weather/{location}/{month}.
func (h *Handler) GetMonthWeather(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	location := vars["location"]
	month, err := strconv.Atoi(vars["month"])
	if err != nil || month < 1 || month > 12 {
		writeMsg(w, http.StatusBadRequest, "Invalid month: "+vars["month"])
		return
	}
	if !knownLocation(location) {
		writeMsg(w, http.StatusNotFound, "Location not found: "+location)
		return
	}
	writeJSON(w, http.StatusOK, monthWeather(location, month))
}

// GetWeekWeather handles GET /weather/{location}/{month}/{day}. The
// response covers the seven days after the given date.
func (h *Handler) GetWeekWeather(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	location := vars["location"]
	month, merr := strconv.Atoi(vars["month"])
	day, derr := strconv.Atoi(vars["day"])
	if merr != nil || derr != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		writeMsg(w, http.StatusBadRequest, "Invalid date")
		return
	}
	if !knownLocation(location) {
		writeMsg(w, http.StatusNotFound, "Location not found: "+location)
		return
	}
	writeJSON(w, http.StatusOK, weekWeather(location, month, day))
}

// GetRecommendations handles GET /recommendations/{location}/{month}/{day}?crop=.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	location := vars["location"]
	month, merr := strconv.Atoi(vars["month"])
	day, derr := strconv.Atoi(vars["day"])
	if merr != nil || derr != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid date")
		return
	}
	cropName := r.URL.Query().Get("crop")
	crop, ok := cropByName(cropName)
	if !ok {
		writeMsg(w, http.StatusNotFound, "Crop not found: "+cropName)
		return
	}
	if !knownLocation(location) {
		writeMsg(w, http.StatusNotFound, "Location not found: "+location)
		return
	}
	writeJSON(w, http.StatusOK, models.RecommendationResponse{
		Crop:            crop.Name,
		Recommendations: recommendationsFor(location, month, day, crop),
	})
}

// PostRegister handles POST /auth/register.
func (h *Handler) PostRegister(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeMsg(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.accounts[email]; exists {
		writeMsg(w, http.StatusConflict, "User already exists")
		return
	}
	h.accounts[email] = &account{Username: req.Username, Password: req.Password}
	h.logger.Info("account registered", zap.String("email", email))
	writeMsg(w, http.StatusCreated, "User created successfully")
}

// PostLogin handles POST /auth/login.
func (h *Handler) PostLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	h.mu.Lock()
	acct, ok := h.accounts[email]
	h.mu.Unlock()
	if !ok || acct.Password != req.Password {
		writeMsg(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Msg:         "Login successful",
		AccessToken: uuid.New().String(),
	})
}

// PostForgotPassword handles POST /auth/forgot-password. The OTP is
// logged instead of emailed.
func (h *Handler) PostForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	h.mu.Lock()
	acct, ok := h.accounts[email]
	if ok {
		acct.OTP = "123456"
	}
	h.mu.Unlock()

	if !ok {
		writeMsg(w, http.StatusNotFound, "No account for that email")
		return
	}
	h.logger.Info("password reset OTP issued", zap.String("email", email), zap.String("otp", "123456"))
	writeMsg(w, http.StatusOK, "OTP sent to email")
}

// PostResetPassword handles POST /auth/reset-password.
func (h *Handler) PostResetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if req.NewPassword != req.ConfirmNewPassword {
		writeMsg(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	acct, ok := h.accounts[email]
	if !ok {
		writeMsg(w, http.StatusNotFound, "No account for that email")
		return
	}
	if acct.OTP == "" || acct.OTP != req.OTP {
		writeMsg(w, http.StatusBadRequest, "Invalid OTP")
		return
	}
	acct.Password = req.NewPassword
	acct.OTP = ""
	writeMsg(w, http.StatusOK, "Password reset successfully")
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "agritech-devserver",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMsg writes the `{"msg": ...}` body the production backend uses for
// both successes and rejections.
func writeMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.MessageResponse{Msg: msg})
}
