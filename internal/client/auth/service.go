package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/gophsync/internal/client/api"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/crypto"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/validation"
)

// ErrInvalidCredentials сервер отклонил актора или пароль
var ErrInvalidCredentials = errors.New("invalid actor or password")

// AuthService implements Service over the server API and the local session storage
type AuthService struct {
	client    APIClient
	sessions  storage.SessionStorage
	logger    *slog.Logger
	serverURL string
}

var _ Service = (*AuthService)(nil)

// NewService создает новый сервис авторизации
func NewService(client APIClient, sessions storage.SessionStorage, serverURL string, logger *slog.Logger) *AuthService {
	return &AuthService{
		client:    client,
		sessions:  sessions,
		serverURL: serverURL,
		logger:    logger,
	}
}

// Register регистрирует актора и сразу выполняет вход
func (s *AuthService) Register(ctx context.Context, actor models.ID, password string) (*storage.Session, error) {
	if err := validation.ValidateActor(actor); err != nil {
		return nil, fmt.Errorf("invalid actor: %w", err)
	}
	if err := validation.ValidateCredential(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	hash, err := crypto.DeriveCredentialHash(password, string(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to derive credential hash: %w", err)
	}
	if err := s.client.Register(ctx, actor, hash); err != nil {
		return nil, err
	}

	s.logger.Info("Actor registered", "actor", actor)

	return s.login(ctx, actor, hash)
}

// Login выполняет аутентификацию и сохраняет сессию
func (s *AuthService) Login(ctx context.Context, actor models.ID, password string) (*storage.Session, error) {
	if err := validation.ValidateActor(actor); err != nil {
		return nil, fmt.Errorf("invalid actor: %w", err)
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}

	hash, err := crypto.DeriveCredentialHash(password, string(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to derive credential hash: %w", err)
	}
	return s.login(ctx, actor, hash)
}

func (s *AuthService) login(ctx context.Context, actor models.ID, hash string) (*storage.Session, error) {
	if err := s.client.Login(ctx, actor, hash); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	tokens := s.client.Tokens()
	session := &storage.Session{
		Actor:        actor,
		ServerURL:    s.serverURL,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("Logged in", "actor", actor, "server", s.serverURL)

	return session, nil
}

// Logout отзывает токены на сервере и удаляет локальную сессию.
// Ошибка сервера не мешает выйти локально.
func (s *AuthService) Logout(ctx context.Context) error {
	if _, err := s.sessions.GetSession(ctx); err != nil {
		return err
	}

	if err := s.client.Logout(ctx); err != nil {
		s.logger.Warn("Server logout failed", "error", err)
	}

	if err := s.sessions.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Session returns the stored session
func (s *AuthService) Session(ctx context.Context) (*storage.Session, error) {
	return s.sessions.GetSession(ctx)
}

// SaveTokens обновляет токены сохраненной сессии. Без сессии ничего не делает:
// токены входа сохраняет Login.
func (s *AuthService) SaveTokens(ctx context.Context, tokens api.Tokens) error {
	session, err := s.sessions.GetSession(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	session.AccessToken = tokens.AccessToken
	session.RefreshToken = tokens.RefreshToken
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	return nil
}
