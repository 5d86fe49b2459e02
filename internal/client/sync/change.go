package sync

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/models"
)

// LocalChange is a command applied to the local replica and not yet
// confirmed by the store. It is resolved exactly once: with the revision the
// store assigned, with RevisionNoChange, or with RevisionFailed.
type LocalChange struct {
	cmd      *models.Command
	onDone   func(rev int64)
	done     chan struct{}
	localRev int64
	result   int64
	seq      uint64
	resolved atomic.Bool
}

func newLocalChange(cmd *models.Command, localRev int64, onDone func(int64)) *LocalChange {
	return &LocalChange{
		cmd:      cmd,
		onDone:   onDone,
		done:     make(chan struct{}),
		localRev: localRev,
	}
}

// resolvedChange результат команды, которая не попала в журнал
func resolvedChange(cmd *models.Command, rev int64, onDone func(int64)) *LocalChange {
	c := newLocalChange(cmd, models.RevisionNotSet, onDone)
	c.resolve(rev)
	return c
}

// Command returns the command as it was applied locally
func (c *LocalChange) Command() *models.Command { return c.cmd }

// LocalRevision returns the local model revision the change produced
func (c *LocalChange) LocalRevision() int64 { return c.localRev }

// Done is closed when the change is resolved
func (c *LocalChange) Done() <-chan struct{} { return c.done }

// Result returns the resolution and whether the change is resolved yet
func (c *LocalChange) Result() (int64, bool) {
	select {
	case <-c.done:
		return c.result, true
	default:
		return models.RevisionNotSet, false
	}
}

// Wait blocks until the change is resolved or ctx is done
func (c *LocalChange) Wait(ctx context.Context) (int64, error) {
	select {
	case <-c.done:
		return c.result, nil
	case <-ctx.Done():
		return models.RevisionNotSet, ctx.Err()
	}
}

func (c *LocalChange) resolve(rev int64) {
	if !c.resolved.CompareAndSwap(false, true) {
		return
	}
	c.result = rev
	close(c.done)
	if c.onDone != nil {
		c.onDone(rev)
	}
}

// Tracker keeps outstanding local changes in the order they were applied.
// It is owned by a Replica and used under the replica lock.
type Tracker struct {
	changes []*LocalChange
	seq     uint64
}

// Add appends a change and assigns its sequence number
func (t *Tracker) Add(c *LocalChange) {
	if c.seq == 0 {
		t.seq++
		c.seq = t.seq
	} else if c.seq > t.seq {
		t.seq = c.seq
	}
	t.changes = append(t.changes, c)
}

// Remove drops a change from the outstanding list
func (t *Tracker) Remove(c *LocalChange) {
	t.changes = slices.DeleteFunc(t.changes, func(x *LocalChange) bool { return x == c })
}

// Changes returns the outstanding changes in application order
func (t *Tracker) Changes() []*LocalChange {
	return slices.Clone(t.changes)
}

// Len returns the number of outstanding changes
func (t *Tracker) Len() int {
	return len(t.changes)
}

func (t *Tracker) persisted() []storage.PendingCommand {
	if len(t.changes) == 0 {
		return nil
	}
	out := make([]storage.PendingCommand, 0, len(t.changes))
	for _, c := range t.changes {
		out = append(out, storage.PendingCommand{
			Command:       c.cmd,
			Seq:           c.seq,
			LocalRevision: c.localRev,
		})
	}
	return out
}
