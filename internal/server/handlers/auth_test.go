package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/server/storage"
	"github.com/iudanet/gophsync/internal/store"
	"github.com/iudanet/gophsync/pkg/api"
)

// mockAccountService is a mock implementation of AccountService for testing
type mockAccountService struct {
	accounts      map[models.ID]string // actor -> credential hash
	registerError error
	loginError    error
}

func (m *mockAccountService) Register(ctx context.Context, actor models.ID, credentialHash string) error {
	if m.registerError != nil {
		return m.registerError
	}
	if _, exists := m.accounts[actor]; exists {
		return store.ErrAccountExists
	}
	m.accounts[actor] = credentialHash
	return nil
}

func (m *mockAccountService) CheckLogin(ctx context.Context, actor models.ID, credentialHash string) (bool, error) {
	if m.loginError != nil {
		return false, m.loginError
	}
	stored, ok := m.accounts[actor]
	return ok && stored == credentialHash, nil
}

// mockTokenStorage is a mock implementation of TokenStorage for testing
type mockTokenStorage struct {
	tokens        map[string]*models.RefreshToken // token -> RefreshToken
	saveError     error
	getError      error
	deleteError   error
	savedTokens   []*models.RefreshToken
	deletedTokens []string
}

func (m *mockTokenStorage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.tokens[token.Token] = token
	m.savedTokens = append(m.savedTokens, token)
	return nil
}

func (m *mockTokenStorage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	rt, ok := m.tokens[token]
	if !ok {
		return nil, storage.ErrTokenNotFound
	}
	return rt, nil
}

func (m *mockTokenStorage) GetActorTokens(ctx context.Context, actor models.ID) ([]*models.RefreshToken, error) {
	var result []*models.RefreshToken
	for _, token := range m.tokens {
		if token.ActorID == actor {
			result = append(result, token)
		}
	}
	return result, nil
}

func (m *mockTokenStorage) DeleteRefreshToken(ctx context.Context, token string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	if _, ok := m.tokens[token]; !ok {
		return storage.ErrTokenNotFound
	}
	delete(m.tokens, token)
	m.deletedTokens = append(m.deletedTokens, token)
	return nil
}

func (m *mockTokenStorage) DeleteActorTokens(ctx context.Context, actor models.ID) (int, error) {
	if m.deleteError != nil {
		return 0, m.deleteError
	}
	count := 0
	for token, rt := range m.tokens {
		if rt.ActorID == actor {
			delete(m.tokens, token)
			m.deletedTokens = append(m.deletedTokens, token)
			count++
		}
	}
	return count, nil
}

func (m *mockTokenStorage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	return 0, nil
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:          []byte("test-secret"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
	}
}

func newTestAuthHandler() (*AuthHandler, *mockAccountService, *mockTokenStorage) {
	accounts := &mockAccountService{accounts: map[models.ID]string{"alice": "hash123"}}
	tokens := &mockTokenStorage{tokens: make(map[string]*models.RefreshToken)}
	return NewAuthHandler(setupTestLogger(), accounts, tokens, testJWTConfig()), accounts, tokens
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name          string
		body          func(t *testing.T) *bytes.Reader
		registerError error
		wantStatus    int
	}{
		{
			name: "success",
			body: func(t *testing.T) *bytes.Reader {
				return jsonBody(t, api.RegisterRequest{Actor: "bob", CredentialHash: "hash"})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "already registered",
			body: func(t *testing.T) *bytes.Reader {
				return jsonBody(t, api.RegisterRequest{Actor: "alice", CredentialHash: "hash"})
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "invalid actor",
			body: func(t *testing.T) *bytes.Reader {
				return jsonBody(t, api.RegisterRequest{Actor: "a!", CredentialHash: "hash"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "empty credential",
			body: func(t *testing.T) *bytes.Reader {
				return jsonBody(t, api.RegisterRequest{Actor: "bob"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "invalid json",
			body: func(t *testing.T) *bytes.Reader {
				return bytes.NewReader([]byte("{"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "storage error",
			body: func(t *testing.T) *bytes.Reader {
				return jsonBody(t, api.RegisterRequest{Actor: "carol", CredentialHash: "hash"})
			},
			registerError: errors.New("db closed"),
			wantStatus:    http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, accounts, _ := newTestAuthHandler()
			accounts.registerError = tt.registerError

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", tt.body(t))
			w := httptest.NewRecorder()
			handler.Register(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	handler, _, tokens := newTestAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		jsonBody(t, api.LoginRequest{Actor: "alice", CredentialHash: "hash123"}))
	w := httptest.NewRecorder()
	handler.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotEmpty(t, response.RefreshToken)
	assert.Equal(t, int64(15*60), response.ExpiresIn)

	claims, err := ValidateAccessToken(testJWTConfig(), response.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Actor)

	require.Len(t, tokens.savedTokens, 1)
	assert.Equal(t, models.ID("alice"), tokens.savedTokens[0].ActorID)
	assert.Equal(t, response.RefreshToken, tokens.savedTokens[0].Token)
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		name       string
		req        api.LoginRequest
		loginError error
		saveError  error
		wantStatus int
	}{
		{
			name:       "wrong credential",
			req:        api.LoginRequest{Actor: "alice", CredentialHash: "wrong"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown actor",
			req:        api.LoginRequest{Actor: "nobody", CredentialHash: "hash123"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty credential",
			req:        api.LoginRequest{Actor: "alice"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid actor",
			req:        api.LoginRequest{Actor: "", CredentialHash: "hash123"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "check error",
			req:        api.LoginRequest{Actor: "alice", CredentialHash: "hash123"},
			loginError: errors.New("db closed"),
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "token save error",
			req:        api.LoginRequest{Actor: "alice", CredentialHash: "hash123"},
			saveError:  errors.New("db closed"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, accounts, tokens := newTestAuthHandler()
			accounts.loginError = tt.loginError
			tokens.saveError = tt.saveError

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", jsonBody(t, tt.req))
			w := httptest.NewRecorder()
			handler.Login(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthHandler_Refresh_Success(t *testing.T) {
	handler, _, tokens := newTestAuthHandler()

	oldRefreshToken := "old-refresh-token"
	tokens.tokens[oldRefreshToken] = &models.RefreshToken{
		Token:     oldRefreshToken,
		ActorID:   "alice",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+oldRefreshToken)
	w := httptest.NewRecorder()
	handler.Refresh(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response api.TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEqual(t, oldRefreshToken, response.RefreshToken)

	assert.Contains(t, tokens.deletedTokens, oldRefreshToken)
	assert.Len(t, tokens.savedTokens, 1)
}

func TestAuthHandler_Refresh_Failures(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		getError   error
		wantStatus int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "expired token", header: "Bearer expired", wantStatus: http.StatusUnauthorized},
		{name: "storage error", header: "Bearer expired", getError: errors.New("db closed"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, tokens := newTestAuthHandler()
			tokens.getError = tt.getError
			tokens.tokens["expired"] = &models.RefreshToken{
				Token:     "expired",
				ActorID:   "alice",
				ExpiresAt: time.Now().Add(-time.Hour),
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.Refresh(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Empty(t, tokens.savedTokens)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	handler, _, tokens := newTestAuthHandler()
	tokens.tokens["t1"] = &models.RefreshToken{Token: "t1", ActorID: "alice"}
	tokens.tokens["t2"] = &models.RefreshToken{Token: "t2", ActorID: "alice"}
	tokens.tokens["t3"] = &models.RefreshToken{Token: "t3", ActorID: "bob"}

	accessToken, _, err := GenerateAccessToken(testJWTConfig(), "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()
	handler.Logout(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, tokens.tokens, 1)
	assert.Contains(t, tokens.tokens, "t3")
}

func TestAuthHandler_Logout_Failures(t *testing.T) {
	otherConfig := testJWTConfig()
	otherConfig.Secret = []byte("other-secret")
	foreign, _, err := GenerateAccessToken(otherConfig, "alice")
	require.NoError(t, err)

	valid, _, err := GenerateAccessToken(testJWTConfig(), "alice")
	require.NoError(t, err)

	tests := []struct {
		name        string
		header      string
		deleteError error
		wantStatus  int
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer garbage", wantStatus: http.StatusUnauthorized},
		{name: "foreign signature", header: "Bearer " + foreign, wantStatus: http.StatusUnauthorized},
		{name: "storage error", header: "Bearer " + valid, deleteError: errors.New("db closed"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, _, tokens := newTestAuthHandler()
			tokens.deleteError = tt.deleteError

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", strings.NewReader(""))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.Logout(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute

	token, _, err := GenerateAccessToken(cfg, "alice")
	require.NoError(t, err)

	_, err = ValidateAccessToken(cfg, token)
	assert.Error(t, err)
}
