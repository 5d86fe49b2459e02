// Package server assembles the authoritative store server: SQLite storage,
// the in-memory persistence journaled into it, the store service and the
// HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/server/handlers"
	"github.com/iudanet/gophsync/internal/server/middleware"
	"github.com/iudanet/gophsync/internal/server/storage/sqlite"
	"github.com/iudanet/gophsync/internal/store"
	"github.com/iudanet/gophsync/internal/store/memory"
)

// Config содержит настройки сервера
type Config struct {
	Address    string
	DBPath     string
	Repository models.ID
	Version    string

	JWTSecret       []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Rules задают доступ акторов; пустой список разрешает все
	Rules []store.Rule

	LoginRateLimit  int
	LoginRateWindow time.Duration

	TokenCleanupInterval time.Duration
	ShutdownTimeout      time.Duration
}

// Server is a running store server
type Server struct {
	logger     *slog.Logger
	storage    *sqlite.Storage
	service    *store.Service
	limits     *middleware.PathRateLimiter
	httpServer *http.Server
	cfg        Config
}

// New opens the storage, restores the repository from it and builds the
// HTTP server. Close must be called to release the storage.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Server, error) {
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("jwt secret is required")
	}

	st, err := sqlite.New(ctx, cfg.DBPath, cfg.Repository)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	persistence := memory.New(cfg.Repository, logger, memory.WithJournal(st))
	restored, err := st.Restore(ctx, persistence)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to restore repository: %w", err)
	}
	logger.Info("Repository restored",
		"repository", cfg.Repository,
		"models", restored)

	var gate store.Gate
	if len(cfg.Rules) > 0 {
		gate = store.NewStaticGate(cfg.Rules...)
	}
	service := store.NewService(persistence, st, gate, logger)

	jwtConfig := handlers.JWTConfig{
		Secret:          cfg.JWTSecret,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}

	var limits *middleware.PathRateLimiter
	if cfg.LoginRateLimit > 0 {
		limits = middleware.NewPathRateLimiter([]middleware.PathRateLimit{
			{Path: PathLogin, Rate: cfg.LoginRateLimit, Window: cfg.LoginRateWindow},
			{Path: PathRegister, Rate: cfg.LoginRateLimit, Window: cfg.LoginRateWindow},
		}, logger)
	}

	router := NewRouter(logger, Handlers{
		Auth:   handlers.NewAuthHandler(logger, service, st, jwtConfig),
		Store:  handlers.NewStoreHandler(logger, service),
		Health: handlers.NewHealthHandler(logger, cfg.Version, st),
	}, jwtConfig, limits)

	return &Server{
		cfg:     cfg,
		logger:  logger,
		storage: st,
		service: service,
		limits:  limits,
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Service returns the store service
func (s *Server) Service() *store.Service {
	return s.service
}

// Run serves HTTP on the configured address until ctx is canceled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is canceled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errC := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening", "address", ln.Addr().String())
		errC <- s.httpServer.Serve(ln)
	}()

	if s.cfg.TokenCleanupInterval > 0 {
		go s.cleanupTokens(ctx)
	}

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("Shutting down server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// cleanupTokens периодически удаляет истекшие refresh токены
func (s *Server) cleanupTokens(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := s.storage.DeleteExpiredTokens(ctx)
			if err != nil {
				s.logger.Warn("Failed to delete expired tokens", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("Expired tokens deleted", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the rate limiters and closes the storage
func (s *Server) Close() error {
	if s.limits != nil {
		s.limits.Stop()
	}
	return s.storage.Close()
}
