package sync

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/gophsync/internal/changelog"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/engine"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/store"
)

var (
	syncPasses    = metrics.GetOrCreateCounter(`gophsync_sync_passes_total`)
	syncConflicts = metrics.GetOrCreateCounter(`gophsync_sync_conflicts_total`)
	syncErrors    = metrics.GetOrCreateCounter(`gophsync_sync_errors_total`)
	syncReloads   = metrics.GetOrCreateCounter(`gophsync_sync_reloads_total`)
)

const defaultParallelism = 4

// Report summarizes one synchronization pass
type Report struct {
	Model     models.Address
	Fetched   int   // удаленные записи журнала, примененные к реплике
	Confirmed int   // локальные изменения, принятые хранилищем
	Failed    int   // локальные изменения, отклоненные при синхронизации
	Conflicts int   // из них отклонены из-за конфликта с удаленными событиями
	Revision  int64 // ревизия модели, до которой синхронизирована реплика
	Reloaded  bool  // реплика перезагружена из снимка
}

// Synchronizer opens replicas of store models and synchronizes them
type Synchronizer struct {
	store    store.Store
	storage  storage.ReplicaStorage
	logger   *slog.Logger
	replicas *xsync.MapOf[models.Address, *Replica]
	actor    models.ID
	parallel int
}

// Option настраивает Synchronizer
type Option func(*Synchronizer)

// WithParallelism limits how many replicas SyncAll synchronizes at once
func WithParallelism(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.parallel = n
		}
	}
}

// NewSynchronizer creates a synchronizer acting as actor. replicas may be
// nil to keep replicas in memory only.
func NewSynchronizer(st store.Store, actor models.ID, replicas storage.ReplicaStorage, logger *slog.Logger, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		store:    st,
		storage:  replicas,
		logger:   logger,
		replicas: xsync.NewMapOf[models.Address, *Replica](),
		actor:    actor,
		parallel: defaultParallelism,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open returns the replica of a model: already open, restored from storage,
// or created from a store snapshot.
func (s *Synchronizer) Open(ctx context.Context, model models.Address) (*Replica, error) {
	if model.Type() != models.TypeModel {
		return nil, fmt.Errorf("%s is not a model address", model)
	}
	if r, ok := s.replicas.Load(model); ok {
		return r, nil
	}

	r, err := s.load(ctx, model)
	if err != nil {
		return nil, err
	}
	actual, _ := s.replicas.LoadOrStore(model, r)
	return actual, nil
}

func (s *Synchronizer) load(ctx context.Context, model models.Address) (*Replica, error) {
	if s.storage != nil {
		r, err := LoadReplica(ctx, s.actor, s.storage, model, s.logger)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, storage.ErrReplicaNotFound) {
			return nil, fmt.Errorf("failed to load replica: %w", err)
		}
	}

	snapshot, ok, err := s.store.GetModelSnapshot(ctx, s.actor, model)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch snapshot: %w", ErrInfrastructure, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", model, store.ErrModelNotFound)
	}

	r := NewReplica(s.actor, snapshot, s.storage, s.logger)
	if err := r.save(ctx, r.state()); err != nil {
		return nil, fmt.Errorf("failed to save replica: %w", err)
	}

	s.logger.Info("Replica created",
		"model", model.String(),
		"revision", snapshot.Revision())

	return r, nil
}

// Forget closes the replica of a model and deletes its stored state.
// Outstanding local changes are resolved as failed.
func (s *Synchronizer) Forget(ctx context.Context, model models.Address) error {
	r, ok := s.replicas.LoadAndDelete(model)
	if !ok {
		if s.storage == nil {
			return nil
		}
		err := s.storage.DeleteReplica(ctx, model)
		if err != nil && !errors.Is(err, storage.ErrReplicaNotFound) {
			return fmt.Errorf("failed to delete replica: %w", err)
		}
		return nil
	}

	if err := r.acquire(ctx); err != nil {
		return err
	}
	pending := r.tracker.Changes()
	for _, c := range pending {
		r.tracker.Remove(c)
	}
	err := r.forget(ctx)
	r.release()

	for _, c := range pending {
		c.resolve(models.RevisionFailed)
	}
	if err != nil {
		return fmt.Errorf("failed to delete replica: %w", err)
	}
	return nil
}

// Sync runs one synchronization pass of the replica.
//
// Store failures abort the pass with ErrInfrastructure and leave the synced
// watermark where it was; the pass can simply be retried. Individual local
// changes are resolved through their own callbacks, after the replica lock
// is released.
func (s *Synchronizer) Sync(ctx context.Context, r *Replica) (*Report, error) {
	if !r.syncing.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer r.syncing.Store(false)

	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	p := &pass{s: s, r: r, report: &Report{Model: r.Address(), Revision: r.synced}}
	err := p.run(ctx)
	r.release()

	for _, o := range p.outcomes {
		o.change.resolve(o.rev)
	}

	syncPasses.Inc()
	if err != nil {
		syncErrors.Inc()
		if errors.Is(err, ErrModelRemoved) {
			s.replicas.Delete(r.Address())
			s.logger.Warn("Model removed from store, replica dropped",
				"model", r.Address().String())
		} else {
			s.logger.Error("Synchronization failed",
				"model", r.Address().String(),
				"error", err)
		}
		return p.report, err
	}

	s.logger.Info("Synchronization completed",
		"model", r.Address().String(),
		"fetched", p.report.Fetched,
		"confirmed", p.report.Confirmed,
		"failed", p.report.Failed,
		"conflicts", p.report.Conflicts,
		"revision", p.report.Revision,
		"reloaded", p.report.Reloaded)

	return p.report, nil
}

// SyncAll synchronizes every open or stored replica, several at a time.
// Reports are ordered by model address; the error joins the failures of
// individual replicas.
func (s *Synchronizer) SyncAll(ctx context.Context) ([]*Report, error) {
	addrs, err := s.Replicas(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]*Report, len(addrs))
	errs := make([]error, len(addrs))

	var g errgroup.Group
	g.SetLimit(s.parallel)
	for i, addr := range addrs {
		g.Go(func() error {
			r, err := s.Open(ctx, addr)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", addr, err)
				return nil
			}
			reports[i], err = s.Sync(ctx, r)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", addr, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return slices.DeleteFunc(reports, func(r *Report) bool { return r == nil }), errors.Join(errs...)
}

// Replicas returns the addresses of open and stored replicas in order
func (s *Synchronizer) Replicas(ctx context.Context) ([]models.Address, error) {
	seen := make(map[models.Address]struct{})
	s.replicas.Range(func(addr models.Address, _ *Replica) bool {
		seen[addr] = struct{}{}
		return true
	})
	if s.storage != nil {
		stored, err := s.storage.ListReplicas(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list replicas: %w", err)
		}
		for _, addr := range stored {
			seen[addr] = struct{}{}
		}
	}

	return slices.SortedFunc(maps.Keys(seen), func(a, b models.Address) int {
		return cmp.Compare(a.String(), b.String())
	}), nil
}

type outcome struct {
	change *LocalChange
	rev    int64
}

// survivor локальное изменение, перенесенное поверх удаленных событий
type survivor struct {
	change *LocalChange
	cmd    *models.Command
	event  *models.Event
}

// pass состояние одного прохода синхронизации. Выполняется под блокировкой реплики.
type pass struct {
	s        *Synchronizer
	r        *Replica
	report   *Report
	outcomes []outcome
}

// settle убирает изменение из списка ожидающих; колбэк вызывается после прохода
func (p *pass) settle(c *LocalChange, rev int64) {
	p.r.tracker.Remove(c)
	p.outcomes = append(p.outcomes, outcome{change: c, rev: rev})
	switch {
	case rev >= 0:
		p.report.Confirmed++
	case rev == models.RevisionFailed:
		p.report.Failed++
	}
}

func (p *pass) fail(c *LocalChange, reason string) {
	p.s.logger.Warn("Local change failed",
		"model", p.r.Address().String(),
		"command", c.cmd.String(),
		"reason", reason)
	p.settle(c, models.RevisionFailed)
}

func (p *pass) conflict(c *LocalChange, reason string) {
	syncConflicts.Inc()
	p.report.Conflicts++
	p.fail(c, reason)
}

func (p *pass) fetch(ctx context.Context, begin int64) ([]*models.Event, error) {
	return p.s.store.GetEvents(ctx, p.s.actor, p.r.Address(), begin, changelog.Unbounded)
}

func (p *pass) run(ctx context.Context) error {
	r := p.r
	base := r.synced

	// 1. Удаленные события после водяного знака
	remote, err := p.fetch(ctx, base+1)
	if errors.Is(err, store.ErrModelNotFound) {
		return p.reload(ctx, "model not found")
	}
	if err != nil {
		return fmt.Errorf("%w: fetch events: %w", ErrInfrastructure, err)
	}
	if !contiguous(base, remote) {
		return p.reload(ctx, "remote log does not continue local history")
	}
	p.report.Fetched = len(remote)

	// 2. Нечего делать
	if len(remote) == 0 && r.tracker.Len() == 0 {
		return nil
	}

	// 3. Откат локальных записей и применение удаленных на рабочей копии
	work := r.model.Clone()
	local := r.log.Events(base+1, changelog.Unbounded)
	for i := len(local) - 1; i >= 0; i-- {
		if err := engine.RevertEvent(work, local[i]); err != nil {
			return fmt.Errorf("failed to revert local revision %d: %w", local[i].RevisionNumber, err)
		}
	}
	for _, entry := range remote {
		if err := engine.ApplyEvent(work, entry); err != nil {
			return p.reload(ctx, err.Error())
		}
	}
	remoteTop := lastRevision(base, remote)

	// Эхо уже подтвержденных изменений не конфликтует с ожидающими
	echoes := make(map[int64]bool, len(r.confirmed))
	for _, rev := range r.confirmed {
		echoes[rev] = true
	}
	var foreign []*models.Event
	for _, entry := range remote {
		if !echoes[entry.RevisionNumber] {
			foreign = append(foreign, entry.Atomic()...)
		}
	}

	// 4-5. Перенос ожидающих изменений и повторное применение
	moved := make(map[int64]int64, len(r.confirmed)+r.tracker.Len())
	maps.Copy(moved, r.confirmed)

	var survivors []survivor
	for _, c := range r.tracker.Changes() {
		cmd, ok := rebase(c.cmd, base, moved)
		if !ok {
			p.fail(c, "depends on a discarded change")
			continue
		}
		if conflicts(cmd, foreign) {
			p.conflict(c, "entity changed remotely")
			continue
		}

		plan, err := engine.Execute(work, cmd, r.actor)
		if err != nil {
			p.fail(c, err.Error())
			continue
		}
		switch plan.Result() {
		case models.RevisionFailed:
			p.conflict(c, "precondition no longer holds")
			continue
		case models.RevisionNoChange:
			p.settle(c, models.RevisionNoChange)
			continue
		}

		moved[c.localRev] = plan.Result()
		survivors = append(survivors, survivor{change: c, cmd: cmd, event: plan.Event})
	}

	// 6. Отправка в хранилище в исходном порядке
	assigned := make(map[int64]int64, len(survivors))
	for _, sv := range survivors {
		cmd, ok := rebase(sv.cmd, remoteTop, assigned)
		if !ok {
			p.fail(sv.change, "depends on a change the store did not accept")
			continue
		}

		rev, err := p.s.store.ExecuteCommand(ctx, p.s.actor, cmd)
		if err != nil {
			return p.abort(ctx, fmt.Errorf("%w: submit %s: %w", ErrInfrastructure, cmd, err))
		}

		switch {
		case rev >= 0:
			assigned[sv.event.RevisionNumber] = rev
			r.confirmed[sv.change.localRev] = rev
			echoes[rev] = true
			p.settle(sv.change, rev)
		case rev == models.RevisionNoChange:
			p.settle(sv.change, rev)
		default:
			p.conflict(sv.change, "rejected by store")
		}
	}

	// Догоняем хранилище: локальные записи заменяются их подтвержденными версиями
	for i := len(survivors) - 1; i >= 0; i-- {
		if err := engine.RevertEvent(work, survivors[i].event); err != nil {
			return p.abort(ctx, fmt.Errorf("failed to revert rebased change: %w", err))
		}
	}

	caught, err := p.fetch(ctx, remoteTop+1)
	if errors.Is(err, store.ErrModelNotFound) {
		return p.reload(ctx, "model not found")
	}
	if err != nil {
		return p.abort(ctx, fmt.Errorf("%w: fetch events: %w", ErrInfrastructure, err))
	}
	if !contiguous(remoteTop, caught) {
		return p.reload(ctx, "remote log does not continue local history")
	}
	for _, entry := range caught {
		if err := engine.ApplyEvent(work, entry); err != nil {
			return p.reload(ctx, err.Error())
		}
	}
	top := lastRevision(remoteTop, caught)
	p.report.Fetched += len(caught)

	confirmed := make(map[int64]int64)
	for localRev, rev := range r.confirmed {
		if rev > top {
			confirmed[localRev] = rev
		}
	}

	applied := slices.Concat(remote, caught)
	state := &storage.ReplicaState{
		Model:      work,
		Confirmed:  confirmed,
		Entries:    append(r.log.Events(0, base), applied...),
		Pending:    r.tracker.persisted(),
		LogBase:    r.log.BaseRevision(),
		LastSynced: top,
	}
	if err := r.save(ctx, state); err != nil {
		return fmt.Errorf("failed to save replica: %w", err)
	}

	r.model = work
	r.log.TruncateAfter(base)
	for _, entry := range applied {
		if _, err := r.log.Append(entry); err != nil {
			return fmt.Errorf("failed to append remote event: %w", err)
		}
	}
	r.synced = top
	r.confirmed = confirmed
	p.report.Revision = top

	for _, entry := range applied {
		if !echoes[entry.RevisionNumber] {
			r.bus.Publish(entry)
		}
	}

	return nil
}

// abort сохраняет разрешенные изменения, не трогая дерево и водяной знак
func (p *pass) abort(ctx context.Context, cause error) error {
	if err := p.r.save(ctx, p.r.state()); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to save replica: %w", err))
	}
	return cause
}

// reload заменяет реплику снимком модели из хранилища. Все ожидающие
// изменения отклоняются.
func (p *pass) reload(ctx context.Context, reason string) error {
	r := p.r
	syncReloads.Inc()
	p.s.logger.Warn("Reloading replica from snapshot",
		"model", r.Address().String(),
		"reason", reason)

	snapshot, ok, err := p.s.store.GetModelSnapshot(ctx, p.s.actor, r.Address())
	if err != nil {
		return p.abort(ctx, fmt.Errorf("%w: fetch snapshot: %w", ErrInfrastructure, err))
	}

	for _, c := range r.tracker.Changes() {
		p.fail(c, "replica reloaded")
	}
	p.report.Reloaded = true

	if !ok {
		if err := r.forget(ctx); err != nil {
			return fmt.Errorf("failed to delete replica: %w", err)
		}
		return fmt.Errorf("%s: %w", r.Address(), ErrModelRemoved)
	}

	rev := snapshot.Revision()
	if err := r.save(ctx, &storage.ReplicaState{Model: snapshot, LogBase: rev, LastSynced: rev}); err != nil {
		return fmt.Errorf("failed to save replica: %w", err)
	}

	r.model = snapshot
	r.log.Reset(rev)
	r.synced = rev
	r.confirmed = make(map[int64]int64)
	p.report.Revision = rev

	return nil
}
