package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iudanet/gophsync/internal/models"
)

// SaveEvent appends a log entry of a live model
func (s *Storage) SaveEvent(ctx context.Context, model models.Address, entry *models.Event) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	query := `
		INSERT INTO events (repository, model, revision, entry, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		s.repository,
		string(model.Model),
		entry.RevisionNumber,
		string(data),
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	return nil
}

// SaveModelRemoval deletes the log of a removed model and records its tombstone
func (s *Storage) SaveModelRemoval(ctx context.Context, model models.Address, entry *models.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM events WHERE repository = ? AND model = ?`,
		s.repository, string(model.Model),
	); err != nil {
		return fmt.Errorf("failed to delete events: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tombstones (repository, model, removed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (repository, model) DO UPDATE SET removed_at = excluded.removed_at
	`, s.repository, string(model.Model), entry.RevisionNumber); err != nil {
		return fmt.Errorf("failed to save tombstone: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit model removal: %w", err)
	}
	return nil
}

// Clear removes all logs and tombstones of the repository
func (s *Storage) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"events", "tombstones"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE repository = ?", s.repository); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// LoadModelLogs returns the stored log of every live model ordered by revision
func (s *Storage) LoadModelLogs(ctx context.Context) (map[models.ID][]*models.Event, error) {
	query := `
		SELECT model, entry
		FROM events
		WHERE repository = ?
		ORDER BY model, revision
	`

	rows, err := s.db.QueryContext(ctx, query, s.repository)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	logs := make(map[models.ID][]*models.Event)
	for rows.Next() {
		var model, data string
		if err := rows.Scan(&model, &data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		entry := &models.Event{}
		if err := json.Unmarshal([]byte(data), entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event of %s: %w", model, err)
		}
		logs[models.ID(model)] = append(logs[models.ID(model)], entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return logs, nil
}

// LoadTombstones returns the removal revisions of removed models
func (s *Storage) LoadTombstones(ctx context.Context) (map[models.ID]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT model, removed_at FROM tombstones WHERE repository = ?`, s.repository)
	if err != nil {
		return nil, fmt.Errorf("failed to query tombstones: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	tombstones := make(map[models.ID]int64)
	for rows.Next() {
		var (
			model     string
			removedAt sql.NullInt64
		)
		if err := rows.Scan(&model, &removedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tombstone: %w", err)
		}
		tombstones[models.ID(model)] = removedAt.Int64
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tombstones, nil
}

// Restorer принимает сохраненное состояние при старте сервера
type Restorer interface {
	RestoreModel(entries []*models.Event) error
	RestoreTombstone(id models.ID, removedAt int64)
}

// Restore loads tombstones and model logs into target and returns the
// number of restored models
func (s *Storage) Restore(ctx context.Context, target Restorer) (int, error) {
	tombstones, err := s.LoadTombstones(ctx)
	if err != nil {
		return 0, err
	}
	for id, removedAt := range tombstones {
		target.RestoreTombstone(id, removedAt)
	}

	logs, err := s.LoadModelLogs(ctx)
	if err != nil {
		return 0, err
	}
	for id, entries := range logs {
		if err := target.RestoreModel(entries); err != nil {
			return 0, fmt.Errorf("failed to restore model %s: %w", id, err)
		}
	}

	return len(logs), nil
}
