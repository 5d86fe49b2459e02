// Package api implements store.Store over the server HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/store"
	"github.com/iudanet/gophsync/internal/tree"
	"github.com/iudanet/gophsync/pkg/api"
)

var (
	// ErrUnauthorized сервер отклонил токен или учетные данные
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotLoggedIn у клиента нет access token
	ErrNotLoggedIn = errors.New("not logged in")
)

// StatusError is a non-2xx server response
type StatusError struct {
	Message string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Code, e.Message)
}

// Unwrap maps HTTP statuses to store errors
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return store.ErrModelNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return nil
	}
}

// Tokens пара токенов текущей сессии
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// Client представляет HTTP клиент для взаимодействия с сервером.
// Актор определяется сервером по access token, поэтому параметр actor
// методов Store не передается.
type Client struct {
	httpClient *http.Client
	onTokens   func(Tokens)
	baseURL    string
	tokens     Tokens
	mu         sync.RWMutex
}

var _ store.Store = (*Client)(nil)

// Option настраивает Client
type Option func(*Client)

// WithTokens задает сохраненные токены сессии
func WithTokens(tokens Tokens) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithTokenHook вызывается каждый раз, когда сервер выдает новые токены
func WithTokenHook(hook func(Tokens)) Option {
	return func(c *Client) {
		c.onTokens = hook
	}
}

// WithTimeout задает таймаут HTTP запросов
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// Настройка обработки редиректов
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tokens возвращает текущие токены сессии
func (c *Client) Tokens() Tokens {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

func (c *Client) setTokens(resp *api.TokenResponse) {
	tokens := Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}

	c.mu.Lock()
	c.tokens = tokens
	hook := c.onTokens
	c.mu.Unlock()

	if hook != nil {
		hook(tokens)
	}
}

// Register регистрирует нового актора
func (c *Client) Register(ctx context.Context, actor models.ID, credentialHash string) error {
	req := api.RegisterRequest{Actor: string(actor), CredentialHash: credentialHash}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, nil); err != nil {
		return fmt.Errorf("register request failed: %w", err)
	}
	return nil
}

// Login выполняет аутентификацию актора и запоминает выданные токены
func (c *Client) Login(ctx context.Context, actor models.ID, credentialHash string) error {
	req := api.LoginRequest{Actor: string(actor), CredentialHash: credentialHash}

	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	c.setTokens(&resp)
	return nil
}

// CheckLogin logs in and reports false on rejected credentials
func (c *Client) CheckLogin(ctx context.Context, actor models.ID, credentialHash string) (bool, error) {
	err := c.Login(ctx, actor, credentialHash)
	if errors.Is(err, ErrUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Refresh обменивает refresh token на новую пару токенов
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.Tokens().RefreshToken
	if refresh == "" {
		return ErrNotLoggedIn
	}

	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", refresh, nil, &resp); err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	c.setTokens(&resp)
	return nil
}

// Logout отзывает refresh токены актора на сервере и забывает сессию
func (c *Client) Logout(ctx context.Context) error {
	access := c.Tokens().AccessToken
	if access == "" {
		return ErrNotLoggedIn
	}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", access, nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}

	c.mu.Lock()
	c.tokens = Tokens{}
	c.mu.Unlock()
	return nil
}

// ExecuteCommand sends a command; precondition failures come back as
// RevisionFailed with a nil error.
func (c *Client) ExecuteCommand(ctx context.Context, _ models.ID, cmd *models.Command) (int64, error) {
	var resp api.CommandResponse
	if err := c.doAuthorized(ctx, http.MethodPost, "/api/v1/commands", api.CommandRequest{Command: cmd}, &resp); err != nil {
		return models.RevisionFailed, fmt.Errorf("command request failed: %w", err)
	}
	return resp.Result, nil
}

// GetEvents fetches log entries of a model in [begin, end]
func (c *Client) GetEvents(ctx context.Context, _ models.ID, model models.Address, begin, end int64) ([]*models.Event, error) {
	q := url.Values{}
	q.Set(api.QueryModel, model.String())
	q.Set(api.QueryBegin, strconv.FormatInt(begin, 10))
	q.Set(api.QueryEnd, strconv.FormatInt(end, 10))

	var resp api.EventsResponse
	if err := c.doAuthorized(ctx, http.MethodGet, "/api/v1/events?"+q.Encode(), nil, &resp); err != nil {
		return nil, fmt.Errorf("events request failed: %w", err)
	}
	return resp.Events, nil
}

// GetModelSnapshot fetches the model state; a missing model gives false
func (c *Client) GetModelSnapshot(ctx context.Context, _ models.ID, model models.Address) (*tree.Model, bool, error) {
	q := url.Values{}
	q.Set(api.QueryModel, model.String())

	var resp api.SnapshotResponse
	err := c.doAuthorized(ctx, http.MethodGet, "/api/v1/snapshot?"+q.Encode(), nil, &resp)
	if errors.Is(err, store.ErrModelNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("snapshot request failed: %w", err)
	}
	if resp.Model == nil {
		return nil, false, fmt.Errorf("snapshot of %s: empty response", model)
	}
	return resp.Model, true, nil
}

// Models возвращает репозиторий и доступные актору модели
func (c *Client) Models(ctx context.Context) (*api.ModelsResponse, error) {
	var resp api.ModelsResponse
	if err := c.doAuthorized(ctx, http.MethodGet, "/api/v1/models", nil, &resp); err != nil {
		return nil, fmt.Errorf("models request failed: %w", err)
	}
	return &resp, nil
}

// doAuthorized выполняет запрос с access token. При 401 один раз
// обновляет токены и повторяет запрос.
func (c *Client) doAuthorized(ctx context.Context, method, path string, body, result any) error {
	tokens := c.Tokens()
	if tokens.AccessToken == "" {
		return ErrNotLoggedIn
	}

	err := c.doRequest(ctx, method, path, tokens.AccessToken, body, result)
	if !errors.Is(err, ErrUnauthorized) || tokens.RefreshToken == "" {
		return err
	}

	if refreshErr := c.Refresh(ctx); refreshErr != nil {
		return err
	}
	return c.doRequest(ctx, method, path, c.Tokens().AccessToken, body, result)
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Code: resp.StatusCode, Message: string(bytes.TrimSpace(respBody))}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && (errResp.Message != "" || errResp.Error != "") {
			statusErr.Message = errResp.Message
			if statusErr.Message == "" {
				statusErr.Message = errResp.Error
			}
		}
		return statusErr
	}

	// Декодируем успешный ответ
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
