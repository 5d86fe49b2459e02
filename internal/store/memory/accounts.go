package memory

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/store"
)

// Accounts keeps actor accounts in memory
type Accounts struct {
	accounts *xsync.MapOf[models.ID, models.Account]
}

var _ store.Accounts = (*Accounts)(nil)

// NewAccounts creates an empty account registry
func NewAccounts() *Accounts {
	return &Accounts{accounts: xsync.NewMapOf[models.ID, models.Account]()}
}

// CreateAccount registers a new account
func (a *Accounts) CreateAccount(ctx context.Context, account *models.Account) error {
	if _, loaded := a.accounts.LoadOrStore(account.ActorID, *account); loaded {
		return store.ErrAccountExists
	}
	return nil
}

// GetAccount returns a copy of the account
func (a *Accounts) GetAccount(ctx context.Context, actor models.ID) (*models.Account, error) {
	account, ok := a.accounts.Load(actor)
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	return &account, nil
}

// UpdateLastLogin records a successful login
func (a *Accounts) UpdateLastLogin(ctx context.Context, actor models.ID, at time.Time) error {
	var found bool
	a.accounts.Compute(actor, func(old models.Account, loaded bool) (models.Account, bool) {
		if !loaded {
			return old, true
		}
		found = true
		old.LastLogin = &at
		return old, false
	})
	if !found {
		return store.ErrAccountNotFound
	}
	return nil
}
