package engine

import (
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
)

// PrepareRepositoryCommand validates adding or removing a model.
//
// A new model starts at revision 0, or one above the revision at which a
// model with the same id was removed. Removing a model produces implied
// removal events for every field and object (ids ascending, fields before
// their object) followed by the model removal itself.
func PrepareRepositoryCommand(repo *tree.Repository, cmd *models.Command, actor models.ID) (*Plan, error) {
	if cmd == nil || cmd.IsTransaction() {
		return nil, fmt.Errorf("repository commands cannot be grouped: %w", ErrInvalidCommand)
	}
	if cmd.Revision == models.RevisionThisTransaction {
		return nil, fmt.Errorf("%s outside of a transaction: %w", cmd, ErrDanglingReference)
	}

	switch cmd.Kind {
	case models.ChangeAdd:
		return prepareAddModel(repo, cmd, actor)
	case models.ChangeRemove:
		return prepareRemoveModel(repo, cmd, actor)
	default:
		return nil, fmt.Errorf("unsupported repository command %s: %w", cmd.Kind, ErrInvalidCommand)
	}
}

// ExecuteRepositoryCommand prepares and commits a model add or remove
func ExecuteRepositoryCommand(repo *tree.Repository, cmd *models.Command, actor models.ID) (*Plan, error) {
	p, err := PrepareRepositoryCommand(repo, cmd, actor)
	if err != nil {
		return nil, err
	}
	if _, err := p.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func prepareAddModel(repo *tree.Repository, cmd *models.Command, actor models.ID) (*Plan, error) {
	if cmd.Target != repo.Address() {
		return nil, fmt.Errorf("add model below %s: %w", cmd.Target, ErrInvalidCommand)
	}
	if cmd.NewID == "" {
		return nil, fmt.Errorf("add model without id: %w", ErrInvalidCommand)
	}
	if err := checkPrecondition(cmd.Revision, true); err != nil {
		return nil, err
	}

	if _, exists := repo.Model(cmd.NewID); exists {
		if cmd.IsForced() {
			return noChangePlan(), nil
		}
		return failedPlan(), nil
	}

	rev := int64(0)
	if removedAt, ok := repo.Tombstone(cmd.NewID); ok {
		rev = removedAt + 1
	}

	addr := cmd.ChangedEntity()
	ev := &models.Event{
		Kind:              models.ChangeAdd,
		Target:            cmd.Target,
		ChangedEntity:     addr,
		Actor:             actor,
		OldModelRevision:  models.RevisionNotSet,
		OldObjectRevision: models.RevisionNotSet,
		OldFieldRevision:  models.RevisionNotSet,
		RevisionNumber:    rev,
	}

	return &Plan{
		Event:  ev,
		state:  StateReady,
		result: rev,
		apply:  func() { repo.PutModel(tree.NewModel(addr, rev)) },
		guard: func() bool {
			_, exists := repo.Model(addr.Model)
			return !exists
		},
	}, nil
}

func prepareRemoveModel(repo *tree.Repository, cmd *models.Command, actor models.ID) (*Plan, error) {
	if cmd.Target.Type() != models.TypeModel || cmd.Target.Repository != repo.ID() {
		return nil, fmt.Errorf("remove model %s: %w", cmd.Target, ErrInvalidCommand)
	}
	if err := checkPrecondition(cmd.Revision, false); err != nil {
		return nil, err
	}

	m, exists := repo.Model(cmd.Target.Model)
	if !exists {
		if cmd.IsForced() {
			return noChangePlan(), nil
		}
		return failedPlan(), nil
	}
	if !cmd.IsForced() && m.Revision() != cmd.Revision {
		return failedPlan(), nil
	}

	base := m.Revision()
	newRev := base + 1

	var evs []*models.Event
	for _, oid := range m.ObjectIDs() {
		obj, _ := m.Object(oid)
		evs = append(evs, cascadeObject(cmd.Target.Child(oid), obj, base, newRev, true)...)
	}
	evs = append(evs, &models.Event{
		Kind:              models.ChangeRemove,
		Target:            repo.Address(),
		ChangedEntity:     cmd.Target,
		OldModelRevision:  base,
		OldObjectRevision: models.RevisionNotSet,
		OldFieldRevision:  models.RevisionNotSet,
		RevisionNumber:    newRev,
	})

	id := cmd.Target.Model
	return &Plan{
		Event:  group(evs, cmd.Target, actor, base, models.RevisionNotSet, newRev),
		state:  StateReady,
		result: newRev,
		apply:  func() { repo.DeleteModel(id, newRev) },
		guard: func() bool {
			cur, ok := repo.Model(id)
			return ok && cur == m && cur.Revision() == base
		},
	}, nil
}

// IsModelRemoval reports whether a log entry removes its model
func IsModelRemoval(entry *models.Event) bool {
	atoms := entry.Atomic()
	if len(atoms) == 0 {
		return false
	}
	last := atoms[len(atoms)-1]
	return last.Kind == models.ChangeRemove && last.ChangedEntity.Type() == models.TypeModel
}

// IsModelCreation reports whether a log entry creates its model
func IsModelCreation(entry *models.Event) bool {
	return !entry.IsTransaction() && entry.Kind == models.ChangeAdd && entry.ChangedEntity.Type() == models.TypeModel
}
