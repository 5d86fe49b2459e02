package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/store"
	"github.com/iudanet/gophsync/internal/tree"
	"github.com/iudanet/gophsync/pkg/api"
)

var modelAddr = models.NewModelAddress("repo", "notes")

func writeJSON(t *testing.T, w http.ResponseWriter, code int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL, WithTimeout(5*time.Second), WithTokens(Tokens{AccessToken: "a", RefreshToken: "r"}))

	assert.Equal(t, baseURL, client.baseURL)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.Equal(t, Tokens{AccessToken: "a", RefreshToken: "r"}, client.Tokens())
}

func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Actor)
		assert.Equal(t, "hash123", req.CredentialHash)

		writeJSON(t, w, http.StatusCreated, api.RegisterResponse{Actor: "alice", Message: "ok"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	require.NoError(t, client.Register(context.Background(), "alice", "hash123"))
}

func TestClient_Register_Error(t *testing.T) {
	tests := []struct {
		responseBody   any
		name           string
		expectedErrMsg string
		statusCode     int
	}{
		{
			name:           "Actor already exists",
			statusCode:     http.StatusConflict,
			responseBody:   api.ErrorResponse{Error: "Conflict", Message: "actor already registered"},
			expectedErrMsg: "server error (409): actor already registered",
		},
		{
			name:           "Invalid request",
			statusCode:     http.StatusBadRequest,
			responseBody:   api.ErrorResponse{Error: "Bad Request", Message: "invalid actor"},
			expectedErrMsg: "server error (400): invalid actor",
		},
		{
			name:           "Plain text error",
			statusCode:     http.StatusInternalServerError,
			responseBody:   "Internal Server Error",
			expectedErrMsg: "server error (500): Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if errResp, ok := tt.responseBody.(api.ErrorResponse); ok {
					writeJSON(t, w, tt.statusCode, errResp)
					return
				}
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody.(string)))
			}))
			defer server.Close()

			err := NewClient(server.URL).Register(context.Background(), "alice", "hash")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedErrMsg)

			var statusErr *StatusError
			require.True(t, errors.As(err, &statusErr))
			assert.Equal(t, tt.statusCode, statusErr.Code)
		})
	}
}

func TestClient_LoginStoresTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.CredentialHash != "good" {
			writeJSON(t, w, http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized", Message: "invalid credentials"})
			return
		}
		writeJSON(t, w, http.StatusOK, api.TokenResponse{AccessToken: "access", RefreshToken: "refresh", ExpiresIn: 900})
	}))
	defer server.Close()

	var hooked Tokens
	client := NewClient(server.URL, WithTokenHook(func(tokens Tokens) { hooked = tokens }))
	ctx := context.Background()

	ok, err := client.CheckLogin(ctx, "alice", "bad")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, client.Tokens().AccessToken)

	ok, err = client.CheckLogin(ctx, "alice", "good")
	require.NoError(t, err)
	assert.True(t, ok)

	want := Tokens{AccessToken: "access", RefreshToken: "refresh"}
	assert.Equal(t, want, client.Tokens())
	assert.Equal(t, want, hooked)
}

func TestClient_RequiresLogin(t *testing.T) {
	client := NewClient("http://127.0.0.1:0")

	_, err := client.ExecuteCommand(context.Background(), "alice", models.NewAddCommand(modelAddr, models.RevisionNew, "o1"))
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	assert.ErrorIs(t, client.Refresh(context.Background()), ErrNotLoggedIn)
	assert.ErrorIs(t, client.Logout(context.Background()), ErrNotLoggedIn)
}

func TestClient_ExecuteCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/commands", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))

		var req api.CommandRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Command)
		assert.Equal(t, models.ChangeAdd, req.Command.Kind)
		assert.Equal(t, models.ID("o1"), req.Command.NewID)

		writeJSON(t, w, http.StatusOK, api.CommandResponse{Result: 4})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokens(Tokens{AccessToken: "access"}))
	rev, err := client.ExecuteCommand(context.Background(), "alice", models.NewAddCommand(modelAddr, models.RevisionNew, "o1"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), rev)
}

func TestClient_GetEvents(t *testing.T) {
	entry := &models.Event{
		Kind:              models.ChangeAdd,
		Target:            modelAddr,
		ChangedEntity:     modelAddr.Child("o1"),
		RevisionNumber:    3,
		OldModelRevision:  2,
		OldObjectRevision: models.RevisionNotSet,
		OldFieldRevision:  models.RevisionNotSet,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, modelAddr.String(), q.Get(api.QueryModel))
		assert.Equal(t, "3", q.Get(api.QueryBegin))
		assert.Equal(t, "-1", q.Get(api.QueryEnd))

		writeJSON(t, w, http.StatusOK, api.EventsResponse{Model: modelAddr, Events: []*models.Event{entry}})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokens(Tokens{AccessToken: "access"}))
	events, err := client.GetEvents(context.Background(), "alice", modelAddr, 3, -1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(3), events[0].RevisionNumber)
	assert.Equal(t, entry.ChangedEntity, events[0].ChangedEntity)
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, api.ErrorResponse{Error: "Not Found", Message: "model not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokens(Tokens{AccessToken: "access"}))

	_, err := client.GetEvents(context.Background(), "alice", modelAddr, 0, -1)
	assert.ErrorIs(t, err, store.ErrModelNotFound)

	m, ok, err := client.GetModelSnapshot(context.Background(), "alice", modelAddr)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)
}

func TestClient_GetModelSnapshot(t *testing.T) {
	m := tree.NewModel(modelAddr, 2)
	o := tree.NewObject(2)
	o.PutField("title", tree.NewField(2, models.StringValue("hello")))
	m.PutObject("o1", o)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, api.SnapshotResponse{Model: m})
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokens(Tokens{AccessToken: "access"}))
	got, ok, err := client.GetModelSnapshot(context.Background(), "alice", modelAddr)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, m.EqualState(got))
}

func TestClient_RefreshOnUnauthorized(t *testing.T) {
	var refreshed atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/refresh":
			assert.Equal(t, "Bearer refresh-1", r.Header.Get("Authorization"))
			refreshed.Add(1)
			writeJSON(t, w, http.StatusOK, api.TokenResponse{AccessToken: "access-2", RefreshToken: "refresh-2"})
		case "/api/v1/models":
			if r.Header.Get("Authorization") != "Bearer access-2" {
				writeJSON(t, w, http.StatusUnauthorized, api.ErrorResponse{Error: "Unauthorized"})
				return
			}
			writeJSON(t, w, http.StatusOK, api.ModelsResponse{Repository: "repo", Models: []models.ID{"notes"}})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokens(Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"}))
	resp, err := client.Models(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.ID{"notes"}, resp.Models)
	assert.Equal(t, int32(1), refreshed.Load())
	assert.Equal(t, Tokens{AccessToken: "access-2", RefreshToken: "refresh-2"}, client.Tokens())
}

func TestClient_Logout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithTokens(Tokens{AccessToken: "access", RefreshToken: "refresh"}))
	require.NoError(t, client.Logout(context.Background()))
	assert.Equal(t, Tokens{}, client.Tokens())
}

func TestClient_ServerUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, WithTokens(Tokens{AccessToken: "access"}))
	_, err := client.GetEvents(context.Background(), "alice", modelAddr, 0, -1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrModelNotFound)
	assert.Contains(t, err.Error(), "request failed")
}
