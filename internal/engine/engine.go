// Package engine validates commands against the entity tree and commits
// them as events.
//
// A command or transaction is validated against a working copy of the
// touched objects. Nothing in the tree changes until the resulting Plan is
// committed, so a failing command needs no rollback. The model revision is
// incremented once per committed plan and every touched entity receives the
// new revision.
package engine

import (
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
)

// State состояние плана выполнения команды
type State int

const (
	// StateFailed предусловие не выполнено, изменений нет
	StateFailed State = iota + 1
	// StateNoChange команда ничего не меняет
	StateNoChange
	// StateReady план проверен и готов к коммиту
	StateReady
	// StateCommitted изменения применены к дереву
	StateCommitted
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateNoChange:
		return "nochange"
	case StateReady:
		return "ready"
	case StateCommitted:
		return "committed"
	default:
		return "unknown"
	}
}

// Plan is the validated outcome of a command. Event is the log entry the
// command produces (nil unless the plan is ready or committed).
type Plan struct {
	Event  *models.Event
	apply  func()
	guard  func() bool
	result int64
	state  State
}

// State returns the plan state
func (p *Plan) State() State { return p.state }

// Result returns the command result: the new model revision, RevisionFailed
// or RevisionNoChange.
func (p *Plan) Result() int64 { return p.result }

// Commit applies a ready plan to the tree. Failed and no-change plans commit
// to nothing. The tree must not have been modified since the plan was
// prepared; the caller holds the model lock across Prepare and Commit.
func (p *Plan) Commit() (int64, error) {
	switch p.state {
	case StateFailed, StateNoChange:
		return p.result, nil
	case StateReady:
	default:
		return models.RevisionFailed, fmt.Errorf("commit in state %s: %w", p.state, ErrPlanState)
	}

	if p.guard != nil && !p.guard() {
		return models.RevisionFailed, fmt.Errorf("tree changed after validation: %w", ErrPlanState)
	}

	p.apply()
	p.state = StateCommitted
	return p.result, nil
}

func failedPlan() *Plan {
	return &Plan{state: StateFailed, result: models.RevisionFailed}
}

func noChangePlan() *Plan {
	return &Plan{state: StateNoChange, result: models.RevisionNoChange}
}

// Prepare validates an atomic command or a transaction against model m.
// Structural errors are returned as errors; precondition failures and no-ops
// are reported through the plan state.
func Prepare(m *tree.Model, cmd *models.Command, actor models.ID) (*Plan, error) {
	if err := checkCommand(m.Address(), cmd); err != nil {
		return nil, err
	}

	base := m.Revision()
	w := newWorkingCopy(m, base+1)

	var produced []*models.Event
	for _, sub := range cmd.Atomic() {
		evs, res := w.execute(sub)
		switch res {
		case resultFailed:
			return failedPlan(), nil
		case resultNoChange:
			continue
		}
		produced = append(produced, evs...)
	}

	if len(produced) == 0 {
		return noChangePlan(), nil
	}

	target := cmd.Target
	if !cmd.IsTransaction() {
		target = cmd.ChangedEntity().Parent()
	}
	oldObjectRev := models.RevisionNotSet
	if target.Type() == models.TypeObject {
		if o, ok := m.Object(target.Object); ok {
			oldObjectRev = o.Revision()
		}
	}

	return &Plan{
		Event:  group(produced, target, actor, base, oldObjectRev, w.newRev),
		state:  StateReady,
		result: w.newRev,
		apply:  w.commit,
		guard:  func() bool { return m.Revision() == base },
	}, nil
}

// Execute prepares and commits a command against model m
func Execute(m *tree.Model, cmd *models.Command, actor models.ID) (*Plan, error) {
	p, err := Prepare(m, cmd, actor)
	if err != nil {
		return nil, err
	}
	if _, err := p.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

// group returns the single event as is, or wraps several events into a
// transaction event.
func group(evs []*models.Event, target models.Address, actor models.ID, oldModelRev, oldObjectRev, newRev int64) *models.Event {
	for _, ev := range evs {
		ev.Actor = actor
	}
	if len(evs) == 1 {
		return evs[0]
	}

	for _, ev := range evs {
		ev.InTransaction = true
	}
	return &models.Event{
		Kind:              models.ChangeTransaction,
		Target:            target,
		ChangedEntity:     target,
		Actor:             actor,
		Events:            evs,
		OldModelRevision:  oldModelRev,
		OldObjectRevision: oldObjectRev,
		OldFieldRevision:  models.RevisionNotSet,
		RevisionNumber:    newRev,
	}
}

type result int

const (
	resultApplied result = iota
	resultNoChange
	resultFailed
)

// workingCopy рабочая копия затронутых объектов модели.
// nil в objects означает удаленный объект.
type workingCopy struct {
	model   *tree.Model
	objects map[models.ID]*tree.Object
	newRev  int64
}

func newWorkingCopy(m *tree.Model, newRev int64) *workingCopy {
	return &workingCopy{model: m, newRev: newRev, objects: make(map[models.ID]*tree.Object)}
}

// object возвращает объект с учетом изменений рабочей копии (только для чтения)
func (w *workingCopy) object(id models.ID) (*tree.Object, bool) {
	if o, ok := w.objects[id]; ok {
		return o, o != nil
	}
	return w.model.Object(id)
}

// mutable возвращает изменяемую копию существующего объекта
func (w *workingCopy) mutable(id models.ID) *tree.Object {
	if o, ok := w.objects[id]; ok && o != nil {
		return o
	}
	o, _ := w.model.Object(id)
	cp := o.Clone()
	w.objects[id] = cp
	return cp
}

// commit переносит рабочую копию в модель
func (w *workingCopy) commit() {
	for id, o := range w.objects {
		if o == nil {
			w.model.DeleteObject(id)
			continue
		}
		w.model.PutObject(id, o)
	}
	w.model.SetRevision(w.newRev)
}

func (w *workingCopy) event(kind models.ChangeType, changed models.Address, oldObjectRev, oldFieldRev int64) *models.Event {
	return &models.Event{
		Kind:              kind,
		Target:            changed.Parent(),
		ChangedEntity:     changed,
		OldModelRevision:  w.model.Revision(),
		OldObjectRevision: oldObjectRev,
		OldFieldRevision:  oldFieldRev,
		RevisionNumber:    w.newRev,
	}
}

// holds проверяет предусловие по текущей ревизии сущности
func (w *workingCopy) holds(actual int64, cmd *models.Command) bool {
	switch cmd.Revision {
	case models.RevisionForced:
		return true
	case models.RevisionThisTransaction:
		return actual == w.newRev
	default:
		return actual == cmd.Revision
	}
}

func (w *workingCopy) execute(cmd *models.Command) ([]*models.Event, result) {
	switch cmd.Kind {
	case models.ChangeAdd:
		if cmd.Target.Type() == models.TypeModel {
			return w.addObject(cmd)
		}
		return w.addField(cmd)
	case models.ChangeRemove:
		if cmd.Target.Type() == models.TypeObject {
			return w.removeObject(cmd)
		}
		return w.removeField(cmd)
	default:
		return w.changeValue(cmd)
	}
}

func (w *workingCopy) addObject(cmd *models.Command) ([]*models.Event, result) {
	if _, exists := w.object(cmd.NewID); exists {
		if cmd.IsForced() {
			return nil, resultNoChange
		}
		return nil, resultFailed
	}

	w.objects[cmd.NewID] = tree.NewObject(w.newRev)
	ev := w.event(models.ChangeAdd, cmd.ChangedEntity(), models.RevisionNotSet, models.RevisionNotSet)
	return []*models.Event{ev}, resultApplied
}

func (w *workingCopy) addField(cmd *models.Command) ([]*models.Event, result) {
	oid := cmd.Target.Object
	obj, ok := w.object(oid)
	if !ok {
		return nil, resultFailed
	}
	if cmd.Revision == models.RevisionThisTransaction && obj.Revision() != w.newRev {
		return nil, resultFailed
	}
	if obj.HasField(cmd.NewID) {
		if cmd.IsForced() {
			return nil, resultNoChange
		}
		return nil, resultFailed
	}

	ev := w.event(models.ChangeAdd, cmd.ChangedEntity(), obj.Revision(), models.RevisionNotSet)

	mo := w.mutable(oid)
	mo.PutField(cmd.NewID, tree.NewField(w.newRev, nil))
	mo.SetRevision(w.newRev)

	return []*models.Event{ev}, resultApplied
}

func (w *workingCopy) removeObject(cmd *models.Command) ([]*models.Event, result) {
	oid := cmd.Target.Object
	obj, ok := w.object(oid)
	if !ok {
		if cmd.IsForced() {
			return nil, resultNoChange
		}
		return nil, resultFailed
	}
	if !w.holds(obj.Revision(), cmd) {
		return nil, resultFailed
	}

	evs := cascadeObject(cmd.Target, obj, w.model.Revision(), w.newRev, false)
	w.objects[oid] = nil
	return evs, resultApplied
}

func (w *workingCopy) removeField(cmd *models.Command) ([]*models.Event, result) {
	oid, fid := cmd.Target.Object, cmd.Target.Field

	obj, ok := w.object(oid)
	var f *tree.Field
	if ok {
		f, ok = obj.Field(fid)
	}
	if !ok {
		if cmd.IsForced() {
			return nil, resultNoChange
		}
		return nil, resultFailed
	}
	if !w.holds(f.Revision(), cmd) {
		return nil, resultFailed
	}

	ev := w.event(models.ChangeRemove, cmd.Target, obj.Revision(), f.Revision())
	ev.OldValue = f.Value()

	mo := w.mutable(oid)
	mo.DeleteField(fid)
	mo.SetRevision(w.newRev)

	return []*models.Event{ev}, resultApplied
}

func (w *workingCopy) changeValue(cmd *models.Command) ([]*models.Event, result) {
	oid, fid := cmd.Target.Object, cmd.Target.Field

	obj, ok := w.object(oid)
	if !ok {
		return nil, resultFailed
	}
	f, ok := obj.Field(fid)
	if !ok {
		return nil, resultFailed
	}

	if cmd.Revision == models.RevisionNew {
		if f.Value() != nil {
			return nil, resultFailed
		}
	} else if !w.holds(f.Revision(), cmd) {
		return nil, resultFailed
	}
	if cmd.ExpectOldValue && !f.Value().Equal(cmd.OldValue) {
		return nil, resultFailed
	}
	if f.Value().Equal(cmd.Value) {
		return nil, resultNoChange
	}

	ev := w.event(models.ChangeValue, cmd.Target, obj.Revision(), f.Revision())
	ev.OldValue = f.Value()
	ev.NewValue = cmd.Value

	mo := w.mutable(oid)
	mf, _ := mo.Field(fid)
	mf.SetValue(cmd.Value)
	mf.SetRevision(w.newRev)
	mo.SetRevision(w.newRev)

	return []*models.Event{ev}, resultApplied
}

// cascadeObject строит события удаления объекта: сначала неявные удаления
// полей (по возрастанию id), затем само удаление объекта
func cascadeObject(addr models.Address, obj *tree.Object, oldModelRev, newRev int64, implied bool) []*models.Event {
	evs := make([]*models.Event, 0, obj.Len()+1)

	for _, fid := range obj.FieldIDs() {
		f, _ := obj.Field(fid)
		evs = append(evs, &models.Event{
			Kind:              models.ChangeRemove,
			Target:            addr,
			ChangedEntity:     addr.Child(fid),
			OldValue:          f.Value(),
			OldModelRevision:  oldModelRev,
			OldObjectRevision: obj.Revision(),
			OldFieldRevision:  f.Revision(),
			RevisionNumber:    newRev,
			Implied:           true,
		})
	}

	evs = append(evs, &models.Event{
		Kind:              models.ChangeRemove,
		Target:            addr.Parent(),
		ChangedEntity:     addr,
		OldModelRevision:  oldModelRev,
		OldObjectRevision: obj.Revision(),
		OldFieldRevision:  models.RevisionNotSet,
		RevisionNumber:    newRev,
		Implied:           implied,
	})

	return evs
}
