package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/agritech/agriclient/internal/observability"
)

// NewRouter builds the dev server route table. The limiter, when non-nil,
// throttles everything except /health and /metrics.
func NewRouter(h *Handler, logger *zap.Logger, limiter *rate.Limiter) *mux.Router {
	router := mux.NewRouter()
	router.Use(CorrelationIDMiddleware())
	router.Use(RequestLogMiddleware(logger))
	router.Use(MetricsMiddleware)

	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	api := router.PathPrefix("/").Subrouter()
	api.Use(RateLimitMiddleware(limiter))

	api.HandleFunc("/all-locations", h.GetLocations).Methods(http.MethodGet)
	api.HandleFunc("/all-crops", h.GetCrops).Methods(http.MethodGet)
	api.HandleFunc("/crop_thresholds/{crop}", h.GetCropThreshold).Methods(http.MethodGet)
	api.HandleFunc("/suitable_crops/{location}", h.GetSuitableCrops).Methods(http.MethodGet)

	api.HandleFunc("/weather/today/{location}", h.GetTodayWeather).Methods(http.MethodGet)
	api.HandleFunc("/weather/{location}/{month:[0-9]+}", h.GetMonthWeather).Methods(http.MethodGet)
	api.HandleFunc("/weather/{location}/{month:[0-9]+}/{day:[0-9]+}", h.GetWeekWeather).Methods(http.MethodGet)
	api.HandleFunc("/recommendations/{location}/{month:[0-9]+}/{day:[0-9]+}", h.GetRecommendations).Methods(http.MethodGet)

	api.HandleFunc("/auth/register", h.PostRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.PostLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/forgot-password", h.PostForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password", h.PostResetPassword).Methods(http.MethodPost)

	return router
}
