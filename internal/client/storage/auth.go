package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/models"
)

// SessionStorage stores the login session of the client
type SessionStorage interface {
	// SaveSession stores the session, replacing the previous one
	SaveSession(ctx context.Context, session *Session) error

	// GetSession returns ErrSessionNotFound if the client is not logged in
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the stored session (logout)
	DeleteSession(ctx context.Context) error
}

// Session represents the authenticated actor and its tokens
type Session struct {
	Actor        models.ID `json:"actor"`
	ServerURL    string    `json:"server_url"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}
