package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/store"
)

// CreateAccount creates a new account in the storage
func (s *Storage) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (actor_id, credential_hash, created_at, last_login)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		string(account.ActorID),
		account.CredentialHash,
		account.CreatedAt,
		account.LastLogin,
	)

	if err != nil {
		// Проверяем на duplicate actor_id
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAccountExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// GetAccount retrieves an account by actor id
func (s *Storage) GetAccount(ctx context.Context, actor models.ID) (*models.Account, error) {
	query := `
		SELECT actor_id, credential_hash, created_at, last_login
		FROM accounts
		WHERE actor_id = ?
	`

	account := &models.Account{}
	var (
		actorID   string
		lastLogin sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query, string(actor)).Scan(
		&actorID,
		&account.CredentialHash,
		&account.CreatedAt,
		&lastLogin,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.ActorID = models.ID(actorID)
	if lastLogin.Valid {
		account.LastLogin = &lastLogin.Time
	}

	return account, nil
}

// UpdateLastLogin updates last login timestamp for an account
func (s *Storage) UpdateLastLogin(ctx context.Context, actor models.ID, at time.Time) error {
	query := `UPDATE accounts SET last_login = ? WHERE actor_id = ?`

	result, err := s.db.ExecContext(ctx, query, at, string(actor))
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return store.ErrAccountNotFound
	}

	return nil
}
