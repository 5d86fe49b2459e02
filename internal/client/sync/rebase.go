package sync

import (
	"github.com/iudanet/gophsync/internal/engine"
	"github.com/iudanet/gophsync/internal/models"
)

// rebase returns a copy of cmd whose SAFE preconditions above base are
// translated through mapping. A revision above base without a mapping
// belongs to a change that did not survive, so the command cannot be
// rebased.
func rebase(cmd *models.Command, base int64, mapping map[int64]int64) (*models.Command, bool) {
	out := cmd.Clone()
	for _, sub := range out.Atomic() {
		if !models.IsSafeRevision(sub.Revision) || sub.Revision <= base {
			continue
		}
		rev, ok := mapping[sub.Revision]
		if !ok {
			return nil, false
		}
		sub.Revision = rev
	}
	return out, true
}

// conflicts reports whether a local command touches what the remote events
// changed: the same entity, an entity below a remote removal, or a remote
// change below a local removal.
func conflicts(cmd *models.Command, remote []*models.Event) bool {
	for _, sub := range cmd.Atomic() {
		local := sub.ChangedEntity()
		for _, ev := range remote {
			changed := ev.ChangedEntity
			switch {
			case changed == local:
				return true
			case ev.Kind == models.ChangeRemove && changed.Contains(local):
				return true
			case sub.Kind == models.ChangeRemove && local.Contains(changed):
				return true
			}
		}
	}
	return false
}

// contiguous reports whether entries continue the model history right after
// revision base
func contiguous(base int64, entries []*models.Event) bool {
	prev := base
	for _, entry := range entries {
		if engine.IsModelCreation(entry) || engine.IsModelRemoval(entry) || entry.OldModelRevision != prev {
			return false
		}
		prev = entry.RevisionNumber
	}
	return true
}

// lastRevision возвращает ревизию последней записи или base
func lastRevision(base int64, entries []*models.Event) int64 {
	if len(entries) == 0 {
		return base
	}
	return entries[len(entries)-1].RevisionNumber
}
