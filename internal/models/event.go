package models

import "fmt"

// Event is the realized effect of a committed atomic command, or (Kind ==
// ChangeTransaction) an ordered group of atomic events caused by one transaction.
//
// Old*Revision fields hold the revisions of the model, object and field
// before the event (RevisionNotSet when the entity did not exist or the level
// does not apply). RevisionNumber is the model revision after the commit; every
// entity still existing on the changed path carries it afterwards.
type Event struct {
	OldValue          *Value     `json:"old_value,omitempty"`
	NewValue          *Value     `json:"new_value,omitempty"`
	Target            Address    `json:"target"`
	ChangedEntity     Address    `json:"changed_entity"`
	Actor             ID         `json:"actor,omitempty"`
	Events            []*Event   `json:"events,omitempty"`
	Kind              ChangeType `json:"kind"`
	OldModelRevision  int64      `json:"old_model_revision"`
	OldObjectRevision int64      `json:"old_object_revision"`
	OldFieldRevision  int64      `json:"old_field_revision"`
	RevisionNumber    int64      `json:"revision"`
	// Implied событие вызвано удалением предка, а не явной командой
	Implied bool `json:"implied,omitempty"`
	// InTransaction событие является частью транзакционного события
	InTransaction bool `json:"in_transaction,omitempty"`
}

// IsTransaction reports whether the event groups several atomic events
func (e *Event) IsTransaction() bool {
	return e.Kind == ChangeTransaction
}

// Atomic returns the atomic events contained in this log entry, in commit order
func (e *Event) Atomic() []*Event {
	if e.IsTransaction() {
		return e.Events
	}
	return []*Event{e}
}

// OldRevision returns the revision the changed entity had before the event
func (e *Event) OldRevision() int64 {
	switch e.ChangedEntity.Type() {
	case TypeField:
		return e.OldFieldRevision
	case TypeObject:
		return e.OldObjectRevision
	case TypeModel:
		return e.OldModelRevision
	default:
		return RevisionNotSet
	}
}

// Clone returns a deep copy of the event
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	cp := *e
	if e.Events != nil {
		cp.Events = make([]*Event, len(e.Events))
		for i, sub := range e.Events {
			cp.Events[i] = sub.Clone()
		}
	}
	return &cp
}

// String formats the event for logs
func (e *Event) String() string {
	if e.IsTransaction() {
		return fmt.Sprintf("transaction %s r%d (%d events)", e.Target, e.RevisionNumber, len(e.Events))
	}
	implied := ""
	if e.Implied {
		implied = " implied"
	}
	return fmt.Sprintf("%s %s r%d%s", e.Kind, e.ChangedEntity, e.RevisionNumber, implied)
}
