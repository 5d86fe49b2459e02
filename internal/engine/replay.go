package engine

import (
	"fmt"
	"iter"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
)

// ApplyEvent applies a committed log entry (atomic or transaction event) of
// model m. The model must be at the entry's old model revision. The entry is
// applied as a unit: on error the model is left unchanged.
func ApplyEvent(m *tree.Model, entry *models.Event) error {
	if entry == nil {
		return fmt.Errorf("nil event: %w", ErrInvalidEvent)
	}
	if entry.OldModelRevision != m.Revision() {
		return fmt.Errorf("model %s at %d, event expects %d: %w",
			m.Address(), m.Revision(), entry.OldModelRevision, ErrRevisionMismatch)
	}
	if entry.RevisionNumber <= m.Revision() {
		return fmt.Errorf("event revision %d not above %d: %w", entry.RevisionNumber, m.Revision(), ErrInvalidEvent)
	}

	w := newWorkingCopy(m, entry.RevisionNumber)
	for _, ev := range entry.Atomic() {
		if err := w.applyAtomic(ev); err != nil {
			return fmt.Errorf("apply %s: %w", ev, err)
		}
	}
	w.commit()
	return nil
}

// RevertEvent undoes the most recent log entry of model m, restoring the
// revisions and values recorded in the entry. Reverting entries in reverse
// log order restores any earlier state exactly.
func RevertEvent(m *tree.Model, entry *models.Event) error {
	if entry == nil {
		return fmt.Errorf("nil event: %w", ErrInvalidEvent)
	}
	if entry.RevisionNumber != m.Revision() {
		return fmt.Errorf("model %s at %d, event produced %d: %w",
			m.Address(), m.Revision(), entry.RevisionNumber, ErrRevisionMismatch)
	}
	if entry.OldModelRevision < 0 {
		return fmt.Errorf("cannot revert model creation: %w", ErrInvalidEvent)
	}

	w := newWorkingCopy(m, entry.OldModelRevision)
	atoms := entry.Atomic()
	for i := len(atoms) - 1; i >= 0; i-- {
		if err := w.revertAtomic(atoms[i]); err != nil {
			return fmt.Errorf("revert %s: %w", atoms[i], err)
		}
	}
	w.commit()
	return nil
}

// ApplyRepositoryEvent applies a log entry to a repository: model creation
// and removal change the repository, any other entry is applied to its model.
func ApplyRepositoryEvent(repo *tree.Repository, entry *models.Event) error {
	if entry == nil {
		return fmt.Errorf("nil event: %w", ErrInvalidEvent)
	}

	addr := entry.ChangedEntity.ModelAddress()
	if addr.Repository != repo.ID() {
		return fmt.Errorf("%s is not in repository %s: %w", entry.ChangedEntity, repo.ID(), ErrInvalidEvent)
	}

	m, exists := repo.Model(addr.Model)

	switch {
	case IsModelCreation(entry):
		if exists {
			return fmt.Errorf("model %s already exists: %w", addr, ErrEventConflict)
		}
		repo.PutModel(tree.NewModel(addr, entry.RevisionNumber))
		return nil
	case IsModelRemoval(entry):
		if !exists {
			return fmt.Errorf("model %s does not exist: %w", addr, ErrEventConflict)
		}
		if m.Revision() != entry.OldModelRevision {
			return fmt.Errorf("model %s at %d, event expects %d: %w",
				addr, m.Revision(), entry.OldModelRevision, ErrRevisionMismatch)
		}
		repo.DeleteModel(addr.Model, entry.RevisionNumber)
		return nil
	}

	if !exists {
		return fmt.Errorf("model %s does not exist: %w", addr, ErrEventConflict)
	}
	return ApplyEvent(m, entry)
}

// Replay applies a sequence of log entries to a repository in order
func Replay(repo *tree.Repository, entries iter.Seq[*models.Event]) error {
	for entry := range entries {
		if err := ApplyRepositoryEvent(repo, entry); err != nil {
			return fmt.Errorf("replay revision %d: %w", entry.RevisionNumber, err)
		}
	}
	return nil
}

func (w *workingCopy) applyAtomic(ev *models.Event) error {
	if ev.ChangedEntity.ModelAddress() != w.model.Address() {
		return fmt.Errorf("%s is not in model %s: %w", ev.ChangedEntity, w.model.Address(), ErrInvalidEvent)
	}
	if ev.RevisionNumber != w.newRev {
		return fmt.Errorf("atomic revision %d in entry %d: %w", ev.RevisionNumber, w.newRev, ErrInvalidEvent)
	}

	addr := ev.ChangedEntity
	switch addr.Type() {
	case models.TypeObject:
		obj, exists := w.object(addr.Object)
		switch ev.Kind {
		case models.ChangeAdd:
			if exists {
				return fmt.Errorf("object exists: %w", ErrEventConflict)
			}
			w.objects[addr.Object] = tree.NewObject(w.newRev)
		case models.ChangeRemove:
			if !exists || obj.Revision() != ev.OldObjectRevision {
				return fmt.Errorf("object missing or at another revision: %w", ErrEventConflict)
			}
			w.objects[addr.Object] = nil
		default:
			return fmt.Errorf("%s of object: %w", ev.Kind, ErrInvalidEvent)
		}
		return nil

	case models.TypeField:
		obj, exists := w.object(addr.Object)
		if !exists || obj.Revision() != ev.OldObjectRevision {
			return fmt.Errorf("object missing or at another revision: %w", ErrEventConflict)
		}
		f, fieldExists := obj.Field(addr.Field)

		switch ev.Kind {
		case models.ChangeAdd:
			if fieldExists {
				return fmt.Errorf("field exists: %w", ErrEventConflict)
			}
			mo := w.mutable(addr.Object)
			mo.PutField(addr.Field, tree.NewField(w.newRev, nil))
			mo.SetRevision(w.newRev)
		case models.ChangeRemove:
			if !fieldExists || f.Revision() != ev.OldFieldRevision {
				return fmt.Errorf("field missing or at another revision: %w", ErrEventConflict)
			}
			mo := w.mutable(addr.Object)
			mo.DeleteField(addr.Field)
			// Неявное удаление поля: объект удаляется следующим событием
			if !ev.Implied {
				mo.SetRevision(w.newRev)
			}
		case models.ChangeValue:
			if !fieldExists || f.Revision() != ev.OldFieldRevision {
				return fmt.Errorf("field missing or at another revision: %w", ErrEventConflict)
			}
			mo := w.mutable(addr.Object)
			mf, _ := mo.Field(addr.Field)
			mf.SetValue(ev.NewValue)
			mf.SetRevision(w.newRev)
			mo.SetRevision(w.newRev)
		default:
			return fmt.Errorf("%s of field: %w", ev.Kind, ErrInvalidEvent)
		}
		return nil

	default:
		return fmt.Errorf("%s event inside model: %w", addr.Type(), ErrInvalidEvent)
	}
}

func (w *workingCopy) revertAtomic(ev *models.Event) error {
	if ev.ChangedEntity.ModelAddress() != w.model.Address() {
		return fmt.Errorf("%s is not in model %s: %w", ev.ChangedEntity, w.model.Address(), ErrInvalidEvent)
	}

	addr := ev.ChangedEntity
	switch addr.Type() {
	case models.TypeObject:
		_, exists := w.object(addr.Object)
		switch ev.Kind {
		case models.ChangeAdd:
			if !exists {
				return fmt.Errorf("object missing: %w", ErrEventConflict)
			}
			w.objects[addr.Object] = nil
		case models.ChangeRemove:
			if exists {
				return fmt.Errorf("object exists: %w", ErrEventConflict)
			}
			w.objects[addr.Object] = tree.NewObject(ev.OldObjectRevision)
		default:
			return fmt.Errorf("%s of object: %w", ev.Kind, ErrInvalidEvent)
		}
		return nil

	case models.TypeField:
		obj, exists := w.object(addr.Object)
		if !exists {
			return fmt.Errorf("object missing: %w", ErrEventConflict)
		}
		fieldExists := obj.HasField(addr.Field)

		mo := w.mutable(addr.Object)
		switch ev.Kind {
		case models.ChangeAdd:
			if !fieldExists {
				return fmt.Errorf("field missing: %w", ErrEventConflict)
			}
			mo.DeleteField(addr.Field)
		case models.ChangeRemove:
			if fieldExists {
				return fmt.Errorf("field exists: %w", ErrEventConflict)
			}
			mo.PutField(addr.Field, tree.NewField(ev.OldFieldRevision, ev.OldValue))
		case models.ChangeValue:
			if !fieldExists {
				return fmt.Errorf("field missing: %w", ErrEventConflict)
			}
			mf, _ := mo.Field(addr.Field)
			mf.SetValue(ev.OldValue)
			mf.SetRevision(ev.OldFieldRevision)
		default:
			return fmt.Errorf("%s of field: %w", ev.Kind, ErrInvalidEvent)
		}
		mo.SetRevision(ev.OldObjectRevision)
		return nil

	default:
		return fmt.Errorf("%s event inside model: %w", addr.Type(), ErrInvalidEvent)
	}
}
