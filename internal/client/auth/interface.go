// Package auth manages the login session of the client.
package auth

import (
	"context"

	"github.com/iudanet/gophsync/internal/client/api"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

//go:generate moq -out service_mock.go . Service APIClient

// Service defines the authentication operations of the client.
// The password never leaves the client: the server receives the credential
// hash derived from it.
type Service interface {
	// Register creates the account on the server and logs in
	Register(ctx context.Context, actor models.ID, password string) (*storage.Session, error)

	// Login authenticates the actor and stores the session
	Login(ctx context.Context, actor models.ID, password string) (*storage.Session, error)

	// Logout revokes the server session and removes the stored one
	Logout(ctx context.Context) error

	// Session returns the stored session or storage.ErrSessionNotFound
	Session(ctx context.Context) (*storage.Session, error)

	// SaveTokens replaces the tokens of the stored session after a refresh
	SaveTokens(ctx context.Context, tokens api.Tokens) error
}

// APIClient is the part of the server API the service uses
type APIClient interface {
	Register(ctx context.Context, actor models.ID, credentialHash string) error
	Login(ctx context.Context, actor models.ID, credentialHash string) error
	Logout(ctx context.Context) error
	Tokens() api.Tokens
}
