package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iudanet/gophsync/internal/client/api"
	"github.com/iudanet/gophsync/internal/client/auth"
	"github.com/iudanet/gophsync/internal/client/cli"
	"github.com/iudanet/gophsync/internal/client/iocli"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/client/storage/boltdb"
	"github.com/iudanet/gophsync/internal/client/sync"
	"github.com/iudanet/gophsync/internal/models"
)

// app собранные зависимости команды
type app struct {
	storage *boltdb.Storage
	cli     *cli.Cli
}

var (
	current *app

	rootCmd = &cobra.Command{
		Use:   "gophsync",
		Short: "GophSync client",
		Long: `GophSync client.

Keeps local replicas of store models. Changes are applied locally at once
and sent to the server by 'gophsync sync'. Every flag can also be set
through an environment variable GOPHSYNC_<FLAG> (e.g. GOPHSYNC_SERVER) or a
.env file.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("server", "http://localhost:8080", "Server URL")
	flags.String("db", "gophsync-client.db", "Path to the local database")
	flags.String("repository", "repo", "Repository relative addresses are resolved against")
	flags.String("actor", "", "Actor for local changes when not logged in")
	flags.Duration("timeout", 30*time.Second, "HTTP request timeout")
	flags.Int("parallel", 4, "Replicas synchronized at once")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error)")
}

// initConfig загружает .env файлы и переменные окружения
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("gophsync")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// setup открывает локальную базу и собирает клиент
func setup(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if cmd.Annotations["standalone"] == "true" {
		return nil
	}

	logger, err := newLogger(viper.GetString("log-level"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := boltdb.New(ctx, viper.GetString("db"))
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}

	a, err := build(ctx, st, logger)
	if err != nil {
		_ = st.Close()
		return err
	}
	current = a
	return nil
}

// build связывает API клиент, сессию и синхронизатор
func build(ctx context.Context, st *boltdb.Storage, logger *slog.Logger) (*app, error) {
	serverURL := viper.GetString("server")
	actor := models.ID(viper.GetString("actor"))

	var tokens api.Tokens
	session, err := st.GetSession(ctx)
	switch {
	case errors.Is(err, storage.ErrSessionNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to read session: %w", err)
	default:
		actor = session.Actor
		tokens = api.Tokens{AccessToken: session.AccessToken, RefreshToken: session.RefreshToken}
		if !viper.IsSet("server") && session.ServerURL != "" {
			serverURL = session.ServerURL
		}
	}

	var authService *auth.AuthService
	client := api.NewClient(serverURL,
		api.WithTimeout(viper.GetDuration("timeout")),
		api.WithTokens(tokens),
		api.WithTokenHook(func(t api.Tokens) {
			if err := authService.SaveTokens(context.Background(), t); err != nil {
				logger.Warn("Failed to save refreshed tokens", "error", err)
			}
		}),
	)
	authService = auth.NewService(client, st, serverURL, logger)

	synchronizer := sync.NewSynchronizer(client, actor, st, logger,
		sync.WithParallelism(viper.GetInt("parallel")))

	return &app{
		storage: st,
		cli:     cli.New(iocli.NewStdio(), authService, client, synchronizer, models.ID(viper.GetString("repository"))),
	}, nil
}

// closeApp закрывает локальную базу; вызывается и после ошибки команды
func closeApp() error {
	if current == nil {
		return nil
	}
	err := current.storage.Close()
	current = nil
	return err
}
