package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/server"
	"github.com/iudanet/gophsync/internal/store"
	"github.com/iudanet/gophsync/internal/validation"
)

var rootCmd = &cobra.Command{
	Use:   "gophsync-server",
	Short: "GophSync store server",
	Long: `GophSync store server.

Serves one repository over HTTP. Every flag can also be set through an
environment variable GOPHSYNC_<FLAG> (e.g. GOPHSYNC_JWT_SECRET) or a .env file.`,
	SilenceUsage: true,
	PreRunE:      bindConfig,
	RunE:         run,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.Bool("version", false, "Show version information")
	flags.String("address", ":8080", "Address to listen on")
	flags.String("db", "gophsync.db", "Path to the SQLite database")
	flags.String("repository", "repo", "Id of the served repository")
	flags.String("jwt-secret", "", "Secret used to sign access tokens (required)")
	flags.Duration("access-ttl", 15*time.Minute, "Access token lifetime")
	flags.Duration("refresh-ttl", 7*24*time.Hour, "Refresh token lifetime")
	flags.StringSlice("rule", nil, "Access rule ACTOR=MODE:ADDRESS (e.g. alice=rw:/repo), may be repeated; without rules everything is allowed")
	flags.Int("login-rate", 5, "Login and register attempts per window and client, 0 disables the limit")
	flags.Duration("login-window", time.Minute, "Login rate limit window")
	flags.Duration("token-cleanup", time.Hour, "Interval of expired refresh token cleanup")
	flags.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
}

// initConfig загружает .env файлы и переменные окружения
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("gophsync")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func bindConfig(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

// loadConfig собирает конфигурацию сервера из флагов и окружения
func loadConfig() (server.Config, error) {
	repo := models.ID(viper.GetString("repository"))
	if err := validation.ValidateID(repo); err != nil {
		return server.Config{}, fmt.Errorf("invalid repository: %w", err)
	}

	secret := viper.GetString("jwt-secret")
	if secret == "" {
		return server.Config{}, errors.New("jwt secret is required (--jwt-secret or GOPHSYNC_JWT_SECRET)")
	}

	rules, err := store.ParseRules(viper.GetStringSlice("rule"))
	if err != nil {
		return server.Config{}, fmt.Errorf("invalid access rules: %w", err)
	}

	return server.Config{
		Address:              viper.GetString("address"),
		DBPath:               viper.GetString("db"),
		Repository:           repo,
		Version:              Version,
		JWTSecret:            []byte(secret),
		AccessTokenTTL:       viper.GetDuration("access-ttl"),
		RefreshTokenTTL:      viper.GetDuration("refresh-ttl"),
		Rules:                rules,
		LoginRateLimit:       viper.GetInt("login-rate"),
		LoginRateWindow:      viper.GetDuration("login-window"),
		TokenCleanupInterval: viper.GetDuration("token-cleanup"),
		ShutdownTimeout:      viper.GetDuration("shutdown-timeout"),
	}, nil
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

func run(_ *cobra.Command, _ []string) error {
	if viper.GetBool("version") {
		printVersion()
		return nil
	}

	logger, err := newLogger(viper.GetString("log-level"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Failed to close server", "error", err)
		}
	}()

	logger.Info("GophSync server starting",
		"version", Version,
		"address", cfg.Address,
		"repository", cfg.Repository)

	return srv.Run(ctx)
}
