package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/iudanet/gophsync/internal/crypto"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
	"github.com/iudanet/gophsync/internal/validation"
)

var (
	commandsOK       = metrics.GetOrCreateCounter(`gophsync_commands_total{result="ok"}`)
	commandsFailed   = metrics.GetOrCreateCounter(`gophsync_commands_total{result="failed"}`)
	commandsNoChange = metrics.GetOrCreateCounter(`gophsync_commands_total{result="nochange"}`)
	commandsError    = metrics.GetOrCreateCounter(`gophsync_commands_total{result="error"}`)
	commandsDenied   = metrics.GetOrCreateCounter(`gophsync_commands_denied_total`)
	loginsFailed     = metrics.GetOrCreateCounter(`gophsync_logins_total{result="failed"}`)
	loginsOK         = metrics.GetOrCreateCounter(`gophsync_logins_total{result="ok"}`)
)

// Service implements Store on top of a Persistence, checking every call
// against the authorization gate.
type Service struct {
	persistence Persistence
	accounts    Accounts
	gate        Gate
	logger      *slog.Logger
}

// NewService creates a store service. A nil gate allows everything.
func NewService(persistence Persistence, accounts Accounts, gate Gate, logger *slog.Logger) *Service {
	if gate == nil {
		gate = AllowAll{}
	}
	return &Service{
		persistence: persistence,
		accounts:    accounts,
		gate:        gate,
		logger:      logger,
	}
}

// ExecuteCommand checks read access on the ancestors and write access on
// every changed entity, then delegates to persistence. Denied commands
// return RevisionFailed.
func (s *Service) ExecuteCommand(ctx context.Context, actor models.ID, cmd *models.Command) (int64, error) {
	if cmd == nil {
		return models.RevisionFailed, fmt.Errorf("nil command")
	}

	if !s.authorized(actor, cmd) {
		commandsDenied.Inc()
		commandsFailed.Inc()
		s.logger.Warn("Command denied",
			"actor", actor,
			"command", cmd.String())
		return models.RevisionFailed, nil
	}

	rev, err := s.persistence.ExecuteCommand(ctx, actor, cmd)
	if err != nil {
		commandsError.Inc()
		return models.RevisionFailed, fmt.Errorf("failed to execute command: %w", err)
	}

	switch rev {
	case models.RevisionFailed:
		commandsFailed.Inc()
		s.logger.Debug("Command failed",
			"actor", actor,
			"command", cmd.String())
	case models.RevisionNoChange:
		commandsNoChange.Inc()
	default:
		commandsOK.Inc()
		s.logger.Debug("Command executed",
			"actor", actor,
			"command", cmd.String(),
			"revision", rev)
	}

	return rev, nil
}

func (s *Service) authorized(actor models.ID, cmd *models.Command) bool {
	for _, atomic := range cmd.Atomic() {
		if atomic == nil {
			continue
		}
		changed := atomic.ChangedEntity()
		if !s.gate.CanWrite(actor, changed) {
			return false
		}
		for anc := changed.Parent(); anc.IsValid(); anc = anc.Parent() {
			if !s.gate.CanRead(actor, anc) {
				return false
			}
		}
	}
	return true
}

// GetEvents returns the log entries of a model filtered by read access. A
// model the actor may not read is reported as not found.
func (s *Service) GetEvents(ctx context.Context, actor models.ID, model models.Address, begin, end int64) ([]*models.Event, error) {
	if !s.gate.CanRead(actor, model) {
		return nil, fmt.Errorf("%s: %w", model, ErrModelNotFound)
	}

	entries, err := s.persistence.GetEvents(ctx, model, begin, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}

	filtered := make([]*models.Event, 0, len(entries))
	for _, entry := range entries {
		if visible := s.filterEntry(actor, entry); visible != nil {
			filtered = append(filtered, visible)
		}
	}

	return filtered, nil
}

// filterEntry убирает атомарные события, которые актору не видны
func (s *Service) filterEntry(actor models.ID, entry *models.Event) *models.Event {
	if !entry.IsTransaction() {
		if s.gate.CanRead(actor, entry.ChangedEntity) {
			return entry
		}
		return nil
	}

	visible := make([]*models.Event, 0, len(entry.Events))
	for _, ev := range entry.Events {
		if s.gate.CanRead(actor, ev.ChangedEntity) {
			visible = append(visible, ev)
		}
	}

	switch len(visible) {
	case 0:
		return nil
	case len(entry.Events):
		return entry
	default:
		cp := *entry
		cp.Events = visible
		return &cp
	}
}

// GetModelSnapshot returns the model state if the actor may read it
func (s *Service) GetModelSnapshot(ctx context.Context, actor models.ID, model models.Address) (*tree.Model, bool, error) {
	if !s.gate.CanRead(actor, model) {
		return nil, false, nil
	}

	m, ok, err := s.persistence.GetModelSnapshot(ctx, model)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return m, ok, nil
}

// GetObjectSnapshot returns the object state if the actor may read it
func (s *Service) GetObjectSnapshot(ctx context.Context, actor models.ID, object models.Address) (*tree.Object, bool, error) {
	if !s.gate.CanRead(actor, object) {
		return nil, false, nil
	}

	o, ok, err := s.persistence.GetObjectSnapshot(ctx, object)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get object snapshot: %w", err)
	}
	return o, ok, nil
}

// ModelIDs returns the models of the repository the actor may read
func (s *Service) ModelIDs(ctx context.Context, actor models.ID) ([]models.ID, error) {
	ids, err := s.persistence.GetModelIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get model ids: %w", err)
	}

	repo := s.persistence.RepositoryID()
	visible := make([]models.ID, 0, len(ids))
	for _, id := range ids {
		if s.gate.CanRead(actor, models.NewModelAddress(repo, id)) {
			visible = append(visible, id)
		}
	}
	return visible, nil
}

// RepositoryID returns the served repository id
func (s *Service) RepositoryID() models.ID {
	return s.persistence.RepositoryID()
}

// CheckLogin verifies the credential hash. Unknown actors and wrong
// credentials give false without an error.
func (s *Service) CheckLogin(ctx context.Context, actor models.ID, credentialHash string) (bool, error) {
	account, err := s.accounts.GetAccount(ctx, actor)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			loginsFailed.Inc()
			return false, nil
		}
		return false, fmt.Errorf("failed to get account: %w", err)
	}

	if err := crypto.VerifyCredential(credentialHash, account.CredentialHash); err != nil {
		loginsFailed.Inc()
		if errors.Is(err, crypto.ErrInvalidCredential) {
			return false, nil
		}
		s.logger.Warn("Credential verification error",
			"actor", actor,
			"error", err)
		return false, nil
	}

	loginsOK.Inc()
	if err := s.accounts.UpdateLastLogin(ctx, actor, time.Now()); err != nil {
		// Не критично для входа
		s.logger.Warn("Failed to update last login",
			"actor", actor,
			"error", err)
	}

	return true, nil
}

// Register creates an account storing bcrypt(credentialHash)
func (s *Service) Register(ctx context.Context, actor models.ID, credentialHash string) error {
	if err := validation.ValidateActor(actor); err != nil {
		return fmt.Errorf("invalid actor: %w", err)
	}

	hashed, err := crypto.HashCredential(credentialHash)
	if err != nil {
		return err
	}

	account := &models.Account{
		ActorID:        actor,
		CredentialHash: hashed,
		CreatedAt:      time.Now(),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("Account registered", "actor", actor)
	return nil
}
