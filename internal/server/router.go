package server

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/gophsync/internal/server/handlers"
	"github.com/iudanet/gophsync/internal/server/middleware"
)

// Пути HTTP API
const (
	PathRegister = "/api/v1/auth/register"
	PathLogin    = "/api/v1/auth/login"
	PathRefresh  = "/api/v1/auth/refresh"
	PathLogout   = "/api/v1/auth/logout"
	PathCommands = "/api/v1/commands"
	PathEvents   = "/api/v1/events"
	PathSnapshot = "/api/v1/snapshot"
	PathModels   = "/api/v1/models"
	PathHealth   = "/api/v1/health"
	PathMetrics  = "/metrics"
)

// Handlers собирает все обработчики, из которых строится роутер
type Handlers struct {
	Auth   *handlers.AuthHandler
	Store  *handlers.StoreHandler
	Health *handlers.HealthHandler
}

// NewRouter wires handlers and middleware. Store routes require a valid
// access token; auth, health and metrics routes are public.
func NewRouter(logger *slog.Logger, h Handlers, jwtConfig handlers.JWTConfig, limits *middleware.PathRateLimiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST "+PathRegister, h.Auth.Register)
	mux.HandleFunc("POST "+PathLogin, h.Auth.Login)
	mux.HandleFunc("POST "+PathRefresh, h.Auth.Refresh)
	mux.HandleFunc("POST "+PathLogout, h.Auth.Logout)

	auth := middleware.AuthMiddleware(logger, jwtConfig)
	mux.Handle("POST "+PathCommands, auth(http.HandlerFunc(h.Store.ExecuteCommand)))
	mux.Handle("GET "+PathEvents, auth(http.HandlerFunc(h.Store.Events)))
	mux.Handle("GET "+PathSnapshot, auth(http.HandlerFunc(h.Store.Snapshot)))
	mux.Handle("GET "+PathModels, auth(http.HandlerFunc(h.Store.Models)))

	mux.HandleFunc("GET "+PathHealth, h.Health.Health)
	mux.HandleFunc("GET "+PathMetrics, h.Health.Metrics)

	// Порядок: recovery снаружи, чтобы поймать панику в любом слое
	var handler http.Handler = mux
	if limits != nil {
		handler = limits.Middleware(handler)
	}
	handler = middleware.LoggingWithSkip(logger, []string{PathHealth, PathMetrics})(handler)
	handler = middleware.RecoveryMiddleware(logger)(handler)

	return handler
}
