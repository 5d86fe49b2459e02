// Package sync keeps local replicas of store models and reconciles them
// with the store.
//
// A Replica is the local entity tree of one model, its change log and the
// local changes the store has not confirmed yet. The Synchronizer fetches
// remote events, rebases the outstanding changes on top of them and submits
// the survivors.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync/atomic"

	"github.com/iudanet/gophsync/internal/changelog"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/engine"
	"github.com/iudanet/gophsync/internal/events"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
)

// Replica is the local copy of one model.
//
// Log entries up to LastSynced are confirmed store events; entries above it
// were produced locally by the outstanding changes. Commands and
// synchronization passes are serialized: one writer at a time.
type Replica struct {
	storage   storage.ReplicaStorage
	logger    *slog.Logger
	model     *tree.Model
	log       *changelog.Log
	bus       *events.Bus
	confirmed map[int64]int64
	lock      chan struct{}
	tracker   Tracker
	actor     models.ID
	synced    int64
	syncing   atomic.Bool
}

// NewReplica creates a replica from a store snapshot. st may be nil for a
// replica that lives only in memory.
func NewReplica(actor models.ID, snapshot *tree.Model, st storage.ReplicaStorage, logger *slog.Logger) *Replica {
	rev := snapshot.Revision()
	return &Replica{
		storage:   st,
		logger:    logger,
		model:     snapshot,
		log:       changelog.New(snapshot.Address(), rev),
		bus:       events.NewBus(),
		confirmed: make(map[int64]int64),
		lock:      make(chan struct{}, 1),
		actor:     actor,
		synced:    rev,
	}
}

// LoadReplica restores a replica from storage. Recovered local changes have
// no completion callback.
func LoadReplica(ctx context.Context, actor models.ID, st storage.ReplicaStorage, model models.Address, logger *slog.Logger) (*Replica, error) {
	state, err := st.LoadReplica(ctx, model)
	if err != nil {
		return nil, err
	}
	if state.Model == nil {
		return nil, fmt.Errorf("stored replica of %s has no model", model)
	}

	r := NewReplica(actor, state.Model, st, logger)
	r.log = changelog.New(model, state.LogBase)
	for _, entry := range state.Entries {
		if _, err := r.log.Append(entry); err != nil {
			return nil, fmt.Errorf("failed to restore log of %s: %w", model, err)
		}
	}
	if cur := r.log.CurrentRevision(); cur != state.Model.Revision() {
		return nil, fmt.Errorf("stored replica of %s: log at %d, model at %d", model, cur, state.Model.Revision())
	}

	r.synced = state.LastSynced
	if state.Confirmed != nil {
		r.confirmed = state.Confirmed
	}
	for _, p := range state.Pending {
		c := newLocalChange(p.Command, p.LocalRevision, nil)
		c.seq = p.Seq
		r.tracker.Add(c)
	}

	logger.Debug("Replica loaded",
		"model", model.String(),
		"revision", state.Model.Revision(),
		"last_synced", state.LastSynced,
		"pending", len(state.Pending))

	return r, nil
}

func (r *Replica) acquire(ctx context.Context) error {
	select {
	case r.lock <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Replica) release() {
	<-r.lock
}

// Address returns the model address
func (r *Replica) Address() models.Address {
	return r.log.Model()
}

// Execute applies cmd to the local tree and queues it for the store.
//
// Commands that fail or change nothing locally are resolved at once and are
// not queued. A structurally invalid command returns an error. onDone (may
// be nil) is called once the change is resolved; it must not call back into
// the replica.
func (r *Replica) Execute(ctx context.Context, cmd *models.Command, onDone func(rev int64)) (*LocalChange, error) {
	if cmd == nil {
		return nil, fmt.Errorf("nil command: %w", engine.ErrInvalidCommand)
	}
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}

	work := r.model.Clone()
	plan, err := engine.Execute(work, cmd, r.actor)
	if err != nil {
		r.release()
		return nil, err
	}
	if plan.State() != engine.StateCommitted {
		r.release()
		return resolvedChange(cmd, plan.Result(), onDone), nil
	}

	prev := r.log.CurrentRevision()
	if _, err := r.log.Append(plan.Event); err != nil {
		r.release()
		return nil, fmt.Errorf("failed to append local event: %w", err)
	}

	change := newLocalChange(cmd.Clone(), plan.Result(), onDone)
	r.tracker.Add(change)

	state := r.state()
	state.Model = work
	if err := r.save(ctx, state); err != nil {
		// Откатываем журнал и трекер, дерево еще не заменено
		r.log.TruncateAfter(prev)
		r.tracker.Remove(change)
		r.release()
		return nil, fmt.Errorf("failed to save replica: %w", err)
	}

	r.model = work

	r.logger.Debug("Local change applied",
		"model", r.Address().String(),
		"command", cmd.String(),
		"local_revision", plan.Result())

	r.bus.Publish(plan.Event)
	r.release()

	return change, nil
}

// Subscribe registers a listener for events below scope. Listeners see
// local changes when they are applied and remote events when a
// synchronization pass commits them. Listeners run under the replica lock
// and must not call back into the replica.
func (r *Replica) Subscribe(scope models.Address, fn events.Listener) func() {
	return r.bus.Subscribe(scope, fn)
}

// SubscribeTransactions registers a listener for transaction events
func (r *Replica) SubscribeTransactions(fn events.TransactionListener) func() {
	return r.bus.SubscribeTransactions(fn)
}

// Snapshot returns a copy of the local tree.
// Blocks while a command or a synchronization pass is running.
func (r *Replica) Snapshot(ctx context.Context) (*tree.Model, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.release()
	return r.model.Clone(), nil
}

// Lookup returns the revision and value of an entity of the local tree
func (r *Replica) Lookup(ctx context.Context, addr models.Address) (int64, *models.Value, bool, error) {
	if err := r.acquire(ctx); err != nil {
		return models.RevisionNotSet, nil, false, err
	}
	defer r.release()
	rev, value, ok := r.model.Lookup(addr)
	return rev, value, ok, nil
}

// Status описывает состояние реплики
type Status struct {
	Model      models.Address
	Revision   int64
	LastSynced int64
	Pending    int
}

// Status returns the local revision, the synced watermark and the number
// of outstanding changes
func (r *Replica) Status(ctx context.Context) (Status, error) {
	if err := r.acquire(ctx); err != nil {
		return Status{}, err
	}
	defer r.release()
	return Status{
		Model:      r.Address(),
		Revision:   r.model.Revision(),
		LastSynced: r.synced,
		Pending:    r.tracker.Len(),
	}, nil
}

// Events returns local log entries in [begin, end].
// Blocks while a command or a synchronization pass is running, so the
// result never mixes a pass's truncated and re-applied history.
func (r *Replica) Events(ctx context.Context, begin, end int64) ([]*models.Event, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.release()
	return r.log.Events(begin, end), nil
}

// state собирает сохраняемое состояние реплики
func (r *Replica) state() *storage.ReplicaState {
	return &storage.ReplicaState{
		Model:      r.model,
		Confirmed:  maps.Clone(r.confirmed),
		Entries:    r.log.Events(0, changelog.Unbounded),
		Pending:    r.tracker.persisted(),
		LogBase:    r.log.BaseRevision(),
		LastSynced: r.synced,
	}
}

func (r *Replica) save(ctx context.Context, state *storage.ReplicaState) error {
	if r.storage == nil {
		return nil
	}
	return r.storage.SaveReplica(ctx, state)
}

// forget удаляет сохраненную реплику
func (r *Replica) forget(ctx context.Context) error {
	if r.storage == nil {
		return nil
	}
	err := r.storage.DeleteReplica(ctx, r.Address())
	if err != nil && !errors.Is(err, storage.ErrReplicaNotFound) {
		return err
	}
	return nil
}
