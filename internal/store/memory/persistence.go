// Package memory implements store.Persistence on in-memory entity trees.
// An optional Journal makes every committed entry durable before it becomes
// visible (the SQLite storage is such a journal).
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/iudanet/gophsync/internal/changelog"
	"github.com/iudanet/gophsync/internal/engine"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/store"
	"github.com/iudanet/gophsync/internal/tree"
)

// Journal receives committed log entries before they are applied
type Journal interface {
	// SaveEvent stores a log entry of a live model (including its creation)
	SaveEvent(ctx context.Context, model models.Address, entry *models.Event) error
	// SaveModelRemoval drops the model's entries and records its tombstone
	SaveModelRemoval(ctx context.Context, model models.Address, entry *models.Event) error
	// Clear removes everything
	Clear(ctx context.Context) error
}

// modelState дерево, журнал и блокировка одной модели
type modelState struct {
	model   *tree.Model
	log     *changelog.Log
	mu      sync.Mutex
	removed bool
}

// Persistence keeps the repository in memory. Commands on different models
// run in parallel; commands on one model are serialized by its lock. Adding
// and removing models is serialized by the repository lock.
type Persistence struct {
	journal Journal
	logger  *slog.Logger
	states  *xsync.MapOf[models.ID, *modelState]
	repo    *tree.Repository
	repoID  models.ID
	repoMu  sync.Mutex
}

var _ store.Persistence = (*Persistence)(nil)

// Option настраивает Persistence
type Option func(*Persistence)

// WithJournal makes every committed entry durable through j
func WithJournal(j Journal) Option {
	return func(p *Persistence) {
		p.journal = j
	}
}

// New creates an empty in-memory persistence for repository repoID
func New(repoID models.ID, logger *slog.Logger, opts ...Option) *Persistence {
	p := &Persistence{
		logger: logger,
		states: xsync.NewMapOf[models.ID, *modelState](),
		repo:   tree.NewRepository(repoID),
		repoID: repoID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RepositoryID returns the served repository id
func (p *Persistence) RepositoryID() models.ID {
	return p.repoID
}

// RestoreModel rebuilds a model from its complete log (starting with the
// model creation entry). Used when loading durable state at startup.
func (p *Persistence) RestoreModel(entries []*models.Event) error {
	if len(entries) == 0 {
		return fmt.Errorf("empty model log")
	}
	if !engine.IsModelCreation(entries[0]) {
		return fmt.Errorf("log of %s does not start with model creation", entries[0].ChangedEntity.ModelAddress())
	}

	p.repoMu.Lock()
	defer p.repoMu.Unlock()

	addr := entries[0].ChangedEntity
	l := changelog.New(addr, models.RevisionNotSet)
	for _, entry := range entries {
		if err := engine.ApplyRepositoryEvent(p.repo, entry); err != nil {
			return fmt.Errorf("failed to restore %s: %w", addr, err)
		}
		if _, err := l.Append(entry); err != nil {
			return fmt.Errorf("failed to restore %s: %w", addr, err)
		}
	}

	m, ok := p.repo.Model(addr.Model)
	if !ok {
		return fmt.Errorf("restored log of %s removes the model", addr)
	}
	p.states.Store(addr.Model, &modelState{model: m, log: l})
	return nil
}

// RestoreTombstone records that a model was removed at the given revision
func (p *Persistence) RestoreTombstone(id models.ID, removedAt int64) {
	p.repoMu.Lock()
	defer p.repoMu.Unlock()
	p.repo.SetTombstone(id, removedAt)
}

// ExecuteCommand applies a command. Commands for missing models fail.
func (p *Persistence) ExecuteCommand(ctx context.Context, actor models.ID, cmd *models.Command) (int64, error) {
	if cmd == nil {
		return models.RevisionFailed, fmt.Errorf("nil command: %w", engine.ErrInvalidCommand)
	}
	if cmd.Target.Repository != p.repoID {
		return models.RevisionFailed, fmt.Errorf("%s: %w", cmd.Target, store.ErrWrongRepository)
	}

	if isRepositoryCommand(cmd) {
		return p.executeRepositoryCommand(ctx, actor, cmd)
	}

	st, ok := p.states.Load(cmd.Target.Model)
	if !ok {
		return models.RevisionFailed, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.removed {
		return models.RevisionFailed, nil
	}

	plan, err := engine.Prepare(st.model, cmd, actor)
	if err != nil {
		return models.RevisionFailed, err
	}
	if plan.State() != engine.StateReady {
		return plan.Result(), nil
	}

	if p.journal != nil {
		if err := p.journal.SaveEvent(ctx, st.model.Address(), plan.Event); err != nil {
			return models.RevisionFailed, fmt.Errorf("failed to save event: %w", err)
		}
	}

	rev, err := plan.Commit()
	if err != nil {
		return models.RevisionFailed, err
	}
	if _, err := st.log.Append(plan.Event); err != nil {
		return models.RevisionFailed, fmt.Errorf("failed to append event: %w", err)
	}

	p.logger.Debug("Command committed",
		"model", st.model.Address().String(),
		"actor", actor,
		"revision", rev)

	return rev, nil
}

func isRepositoryCommand(cmd *models.Command) bool {
	switch cmd.Kind {
	case models.ChangeAdd:
		return cmd.Target.Type() == models.TypeRepository
	case models.ChangeRemove:
		return cmd.Target.Type() == models.TypeModel
	default:
		return false
	}
}

func (p *Persistence) executeRepositoryCommand(ctx context.Context, actor models.ID, cmd *models.Command) (int64, error) {
	p.repoMu.Lock()
	defer p.repoMu.Unlock()

	var st *modelState
	if cmd.Kind == models.ChangeRemove {
		if st, _ = p.states.Load(cmd.Target.Model); st != nil {
			// Дожидаемся завершения команд этой модели
			st.mu.Lock()
			defer st.mu.Unlock()
		}
	}

	plan, err := engine.PrepareRepositoryCommand(p.repo, cmd, actor)
	if err != nil {
		return models.RevisionFailed, err
	}
	if plan.State() != engine.StateReady {
		return plan.Result(), nil
	}

	addr := plan.Event.ChangedEntity.ModelAddress()
	if p.journal != nil {
		save := p.journal.SaveEvent
		if cmd.Kind == models.ChangeRemove {
			save = p.journal.SaveModelRemoval
		}
		if err := save(ctx, addr, plan.Event); err != nil {
			return models.RevisionFailed, fmt.Errorf("failed to save model change: %w", err)
		}
	}

	rev, err := plan.Commit()
	if err != nil {
		return models.RevisionFailed, err
	}

	if cmd.Kind == models.ChangeRemove {
		st.removed = true
		p.states.Delete(addr.Model)
		p.logger.Info("Model removed", "model", addr.String(), "actor", actor, "revision", rev)
		return rev, nil
	}

	m, _ := p.repo.Model(addr.Model)
	l := changelog.New(addr, models.RevisionNotSet)
	if _, err := l.Append(plan.Event); err != nil {
		return models.RevisionFailed, fmt.Errorf("failed to append event: %w", err)
	}
	p.states.Store(addr.Model, &modelState{model: m, log: l})
	p.logger.Info("Model added", "model", addr.String(), "actor", actor, "revision", rev)

	return rev, nil
}

// GetEvents returns log entries of a model in [begin, end]
func (p *Persistence) GetEvents(ctx context.Context, model models.Address, begin, end int64) ([]*models.Event, error) {
	st, ok := p.lookup(model)
	if !ok {
		return nil, fmt.Errorf("%s: %w", model, store.ErrModelNotFound)
	}
	return st.log.Events(begin, end), nil
}

// GetModelSnapshot returns a copy of the model
func (p *Persistence) GetModelSnapshot(ctx context.Context, model models.Address) (*tree.Model, bool, error) {
	st, ok := p.lookup(model)
	if !ok {
		return nil, false, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.removed {
		return nil, false, nil
	}
	return st.model.Clone(), true, nil
}

// GetObjectSnapshot returns a copy of the object
func (p *Persistence) GetObjectSnapshot(ctx context.Context, object models.Address) (*tree.Object, bool, error) {
	if object.Type() != models.TypeObject {
		return nil, false, fmt.Errorf("%s is not an object address", object)
	}

	st, ok := p.lookup(object.ModelAddress())
	if !ok {
		return nil, false, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	o, ok := st.model.Object(object.Object)
	if !ok || st.removed {
		return nil, false, nil
	}
	return o.Clone(), true, nil
}

// GetModelIDs returns ids of existing models in ascending order
func (p *Persistence) GetModelIDs(ctx context.Context) ([]models.ID, error) {
	ids := make([]models.ID, 0, p.states.Size())
	p.states.Range(func(id models.ID, _ *modelState) bool {
		ids = append(ids, id)
		return true
	})
	slices.Sort(ids)
	return ids, nil
}

// Clear removes all models, logs and tombstones
func (p *Persistence) Clear(ctx context.Context) error {
	p.repoMu.Lock()
	defer p.repoMu.Unlock()

	if p.journal != nil {
		if err := p.journal.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear journal: %w", err)
		}
	}

	p.states.Range(func(id models.ID, st *modelState) bool {
		st.mu.Lock()
		st.removed = true
		st.mu.Unlock()
		return true
	})
	p.states.Clear()
	p.repo = tree.NewRepository(p.repoID)

	return nil
}

func (p *Persistence) lookup(model models.Address) (*modelState, bool) {
	if model.Type() != models.TypeModel || model.Repository != p.repoID {
		return nil, false
	}
	return p.states.Load(model.Model)
}
