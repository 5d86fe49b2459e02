// Package storage defines server-side persistence interfaces that are not
// part of the store: refresh token sessions.
package storage

import (
	"context"

	"github.com/iudanet/gophsync/internal/models"
)

// TokenStorage defines interface for refresh token persistence
type TokenStorage interface {
	// SaveRefreshToken stores a new refresh token
	// If token with same token value exists, it will be replaced
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken retrieves refresh token by token value
	// Returns ErrTokenNotFound if token doesn't exist
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// GetActorTokens retrieves all refresh tokens of an actor
	// Returns empty slice if no tokens found
	GetActorTokens(ctx context.Context, actor models.ID) ([]*models.RefreshToken, error)

	// DeleteRefreshToken deletes refresh token by token value
	// Returns ErrTokenNotFound if token doesn't exist
	DeleteRefreshToken(ctx context.Context, token string) error

	// DeleteActorTokens deletes all refresh tokens of an actor
	// Returns number of deleted tokens
	DeleteActorTokens(ctx context.Context, actor models.ID) (int, error)

	// DeleteExpiredTokens removes all expired tokens
	// Returns number of deleted tokens
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
