// Package store defines the Store API used by replicas and direct callers,
// the Persistence SPI behind it, and the authorization gate the Store
// evaluates around persistence calls.
package store

import (
	"context"
	"time"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
)

//go:generate moq -out store_mock.go . Store Accounts

// Store is the authoritative store as seen by clients. Precondition
// failures are reported as RevisionFailed results, never as errors; an error
// always means the call itself could not be completed.
type Store interface {
	// ExecuteCommand applies one command or transaction on behalf of actor.
	// Returns the new model revision, RevisionFailed or RevisionNoChange.
	ExecuteCommand(ctx context.Context, actor models.ID, cmd *models.Command) (int64, error)

	// GetEvents returns the log entries of a model with begin <= revision <= end
	// (end == changelog.Unbounded for "up to current"). Entries the actor may
	// not read are dropped silently. Returns ErrModelNotFound when the model
	// does not exist or the actor may not read it.
	GetEvents(ctx context.Context, actor models.ID, model models.Address, begin, end int64) ([]*models.Event, error)

	// GetModelSnapshot returns a detached copy of the current model state.
	// The bool result is false when the model does not exist or is not readable.
	GetModelSnapshot(ctx context.Context, actor models.ID, model models.Address) (*tree.Model, bool, error)

	// CheckLogin verifies the credential hash of an actor
	CheckLogin(ctx context.Context, actor models.ID, credentialHash string) (bool, error)
}

// Persistence stores the entity trees and change logs of one repository.
// It performs no authorization and no batching; every call is synchronous.
type Persistence interface {
	// RepositoryID returns the id of the repository this persistence serves
	RepositoryID() models.ID

	// ExecuteCommand applies a command: object and field commands, transactions,
	// and model add/remove commands targeting the repository.
	ExecuteCommand(ctx context.Context, actor models.ID, cmd *models.Command) (int64, error)

	// GetEvents returns log entries of a model, ErrModelNotFound if it does not exist
	GetEvents(ctx context.Context, model models.Address, begin, end int64) ([]*models.Event, error)

	// GetModelSnapshot returns a detached copy of a model
	GetModelSnapshot(ctx context.Context, model models.Address) (*tree.Model, bool, error)

	// GetObjectSnapshot returns a detached copy of an object
	GetObjectSnapshot(ctx context.Context, object models.Address) (*tree.Object, bool, error)

	// GetModelIDs returns the ids of existing models in ascending order
	GetModelIDs(ctx context.Context) ([]models.ID, error)

	// Clear removes all models, logs and tombstones
	Clear(ctx context.Context) error
}

// Accounts stores actor accounts
type Accounts interface {
	// CreateAccount returns ErrAccountExists if the actor is already registered
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccount returns ErrAccountNotFound if the actor is not registered
	GetAccount(ctx context.Context, actor models.ID) (*models.Account, error)

	// UpdateLastLogin records a successful login
	UpdateLastLogin(ctx context.Context, actor models.ID, at time.Time) error
}
