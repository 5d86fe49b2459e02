package server_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/client/api"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/server"
	"github.com/iudanet/gophsync/internal/store"
)

const repoID models.ID = "repo"

var (
	repoAddr  = models.NewRepositoryAddress(repoID)
	modelAddr = models.NewModelAddress(repoID, "notes")
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(dbPath string) server.Config {
	return server.Config{
		Address:         "127.0.0.1:0",
		DBPath:          dbPath,
		Repository:      repoID,
		Version:         "test",
		JWTSecret:       []byte("test-secret"),
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		LoginRateLimit:  100,
		LoginRateWindow: time.Minute,
	}
}

func startServer(t *testing.T, cfg server.Config) (*server.Server, *httptest.Server) {
	t.Helper()

	srv, err := server.New(t.Context(), cfg, testLogger())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return srv, ts
}

func loggedInClient(t *testing.T, url string, actor models.ID) *api.Client {
	t.Helper()

	ctx := t.Context()
	client := api.NewClient(url)
	require.NoError(t, client.Register(ctx, actor, "credential-"+string(actor)))
	ok, err := client.CheckLogin(ctx, actor, "credential-"+string(actor))
	require.NoError(t, err)
	require.True(t, ok)
	return client
}

func TestServer_EndToEnd(t *testing.T) {
	_, ts := startServer(t, testConfig(filepath.Join(t.TempDir(), "server.db")))
	ctx := t.Context()
	client := loggedInClient(t, ts.URL, "alice")

	rev, err := client.ExecuteCommand(ctx, "alice", models.NewAddCommand(repoAddr, models.RevisionNew, "notes"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rev)

	rev, err = client.ExecuteCommand(ctx, "alice", models.NewAddCommand(modelAddr, models.RevisionNew, "o1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rev)

	// повторное добавление нарушает предусловие
	rev, err = client.ExecuteCommand(ctx, "alice", models.NewAddCommand(modelAddr, models.RevisionNew, "o1"))
	require.NoError(t, err)
	assert.Equal(t, models.RevisionFailed, rev)

	events, err := client.GetEvents(ctx, "alice", modelAddr, 0, -1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[1].RevisionNumber)

	m, ok, err := client.GetModelSnapshot(ctx, "alice", modelAddr)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), m.Revision())

	_, err = client.GetEvents(ctx, "alice", models.NewModelAddress(repoID, "missing"), 0, -1)
	assert.ErrorIs(t, err, store.ErrModelNotFound)

	resp, err := client.Models(ctx)
	require.NoError(t, err)
	assert.Equal(t, repoID, resp.Repository)
	assert.Equal(t, []models.ID{"notes"}, resp.Models)
}

func TestServer_RestoresRepository(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "server.db")
	cfg := testConfig(dbPath)

	srv, err := server.New(t.Context(), cfg, testLogger())
	require.NoError(t, err)

	ctx := t.Context()
	_, err = srv.Service().ExecuteCommand(ctx, "alice", models.NewAddCommand(repoAddr, models.RevisionNew, "notes"))
	require.NoError(t, err)
	_, err = srv.Service().ExecuteCommand(ctx, "alice", models.NewAddCommand(modelAddr, models.RevisionNew, "o1"))
	require.NoError(t, err)
	require.NoError(t, srv.Close())

	srv, err = server.New(ctx, cfg, testLogger())
	require.NoError(t, err)
	defer func() { _ = srv.Close() }()

	m, ok, err := srv.Service().GetModelSnapshot(ctx, "alice", modelAddr)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), m.Revision())
	_, hasObject := m.Object("o1")
	assert.True(t, hasObject)
}

func TestServer_AccessRules(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "server.db"))
	cfg.Rules = []store.Rule{
		{Actor: "alice", Prefix: repoAddr, Write: true},
		{Actor: "bob", Prefix: modelAddr},
	}
	_, ts := startServer(t, cfg)
	ctx := t.Context()

	alice := loggedInClient(t, ts.URL, "alice")
	bob := loggedInClient(t, ts.URL, "bob")

	_, err := alice.ExecuteCommand(ctx, "alice", models.NewAddCommand(repoAddr, models.RevisionNew, "notes"))
	require.NoError(t, err)

	rev, err := bob.ExecuteCommand(ctx, "bob", models.NewAddCommand(modelAddr, models.RevisionNew, "o1"))
	require.NoError(t, err)
	assert.Equal(t, models.RevisionFailed, rev)

	events, err := bob.GetEvents(ctx, "bob", modelAddr, 0, -1)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestServer_Unauthorized(t *testing.T) {
	_, ts := startServer(t, testConfig(filepath.Join(t.TempDir(), "server.db")))

	resp, err := http.Get(ts.URL + server.PathModels)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	health, err := http.Get(ts.URL + server.PathHealth)
	require.NoError(t, err)
	defer func() { _ = health.Body.Close() }()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestServer_LoginRateLimit(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "server.db"))
	cfg.LoginRateLimit = 2
	_, ts := startServer(t, cfg)

	client := api.NewClient(ts.URL)
	ctx := t.Context()
	for range 2 {
		ok, err := client.CheckLogin(ctx, "nobody", "x")
		require.NoError(t, err)
		assert.False(t, ok)
	}

	_, err := client.CheckLogin(ctx, "nobody", "x")
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
}

func TestServer_ServeShutdown(t *testing.T) {
	srv, err := server.New(t.Context(), testConfig(filepath.Join(t.TempDir(), "server.db")), testLogger())
	require.NoError(t, err)
	defer func() { _ = srv.Close() }()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + server.PathHealth)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "server.db"))
	cfg.JWTSecret = nil

	_, err := server.New(t.Context(), cfg, testLogger())
	assert.Error(t, err)
}
