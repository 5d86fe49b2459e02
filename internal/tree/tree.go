// Package tree holds the in-memory entity tree: repositories own models,
// models own objects, objects own fields, and a field holds at most one value.
//
// The tree is not safe for concurrent use. Callers serialize access per model
// (see engine, store and sync packages).
package tree

import (
	"maps"
	"slices"

	"github.com/iudanet/gophsync/internal/models"
)

// Field содержит значение и ревизию поля
type Field struct {
	value *models.Value
	rev   int64
}

// NewField creates a field with the given revision and value (nil means no value)
func NewField(rev int64, value *models.Value) *Field {
	return &Field{rev: rev, value: value}
}

// Revision returns the field revision
func (f *Field) Revision() int64 { return f.rev }

// Value returns the field value or nil
func (f *Field) Value() *models.Value { return f.value }

// SetRevision updates the field revision
func (f *Field) SetRevision(rev int64) { f.rev = rev }

// SetValue replaces the field value
func (f *Field) SetValue(v *models.Value) { f.value = v }

// Clone returns a copy of the field (values are immutable and shared)
func (f *Field) Clone() *Field {
	cp := *f
	return &cp
}

// Object содержит поля объекта
type Object struct {
	fields map[models.ID]*Field
	rev    int64
}

// NewObject creates an empty object with the given revision
func NewObject(rev int64) *Object {
	return &Object{rev: rev, fields: make(map[models.ID]*Field)}
}

// Revision returns the object revision
func (o *Object) Revision() int64 { return o.rev }

// SetRevision updates the object revision
func (o *Object) SetRevision(rev int64) { o.rev = rev }

// Field returns the field with the given id
func (o *Object) Field(id models.ID) (*Field, bool) {
	f, ok := o.fields[id]
	return f, ok
}

// HasField reports whether the object has the field
func (o *Object) HasField(id models.ID) bool {
	_, ok := o.fields[id]
	return ok
}

// FieldIDs returns field ids in ascending order
func (o *Object) FieldIDs() []models.ID {
	return slices.Sorted(maps.Keys(o.fields))
}

// PutField adds or replaces a field
func (o *Object) PutField(id models.ID, f *Field) { o.fields[id] = f }

// DeleteField removes a field
func (o *Object) DeleteField(id models.ID) { delete(o.fields, id) }

// Len returns the number of fields
func (o *Object) Len() int { return len(o.fields) }

// Clone returns a deep copy of the object
func (o *Object) Clone() *Object {
	cp := &Object{rev: o.rev, fields: make(map[models.ID]*Field, len(o.fields))}
	for id, f := range o.fields {
		cp.fields[id] = f.Clone()
	}
	return cp
}

// Model is a versioned container of objects. Its revision is incremented
// exactly once per committed command or transaction.
type Model struct {
	objects map[models.ID]*Object
	addr    models.Address
	rev     int64
}

// NewModel creates an empty model
func NewModel(addr models.Address, rev int64) *Model {
	return &Model{addr: addr, rev: rev, objects: make(map[models.ID]*Object)}
}

// Address returns the model address
func (m *Model) Address() models.Address { return m.addr }

// Revision returns the model revision
func (m *Model) Revision() int64 { return m.rev }

// SetRevision updates the model revision
func (m *Model) SetRevision(rev int64) { m.rev = rev }

// Object returns the object with the given id
func (m *Model) Object(id models.ID) (*Object, bool) {
	o, ok := m.objects[id]
	return o, ok
}

// ObjectIDs returns object ids in ascending order
func (m *Model) ObjectIDs() []models.ID {
	return slices.Sorted(maps.Keys(m.objects))
}

// PutObject adds or replaces an object
func (m *Model) PutObject(id models.ID, o *Object) { m.objects[id] = o }

// DeleteObject removes an object with all its fields
func (m *Model) DeleteObject(id models.ID) { delete(m.objects, id) }

// Len returns the number of objects
func (m *Model) Len() int { return len(m.objects) }

// Clone returns a deep copy of the model
func (m *Model) Clone() *Model {
	cp := &Model{addr: m.addr, rev: m.rev, objects: make(map[models.ID]*Object, len(m.objects))}
	for id, o := range m.objects {
		cp.objects[id] = o.Clone()
	}
	return cp
}

// Lookup resolves an object or field address inside the model.
// It returns the entity revision and, for fields, the value.
func (m *Model) Lookup(addr models.Address) (rev int64, value *models.Value, ok bool) {
	if addr.ModelAddress() != m.addr {
		return models.RevisionNotSet, nil, false
	}

	switch addr.Type() {
	case models.TypeModel:
		return m.rev, nil, true
	case models.TypeObject:
		o, found := m.objects[addr.Object]
		if !found {
			return models.RevisionNotSet, nil, false
		}
		return o.rev, nil, true
	case models.TypeField:
		o, found := m.objects[addr.Object]
		if !found {
			return models.RevisionNotSet, nil, false
		}
		f, found := o.fields[addr.Field]
		if !found {
			return models.RevisionNotSet, nil, false
		}
		return f.rev, f.value, true
	default:
		return models.RevisionNotSet, nil, false
	}
}

// EqualState reports whether two models have the same address, revisions,
// objects, fields and values.
func (m *Model) EqualState(other *Model) bool {
	if m == nil || other == nil {
		return m == nil && other == nil
	}
	if m.addr != other.addr || m.rev != other.rev || len(m.objects) != len(other.objects) {
		return false
	}

	for id, o := range m.objects {
		oo, ok := other.objects[id]
		if !ok || o.rev != oo.rev || len(o.fields) != len(oo.fields) {
			return false
		}
		for fid, f := range o.fields {
			of, ok := oo.fields[fid]
			if !ok || f.rev != of.rev || !f.value.Equal(of.value) {
				return false
			}
		}
	}

	return true
}

// Repository owns models by id. Repositories are not versioned; removed
// model ids are remembered with their final revision so a recreated model
// never reuses a revision.
type Repository struct {
	models     map[models.ID]*Model
	tombstones map[models.ID]int64
	id         models.ID
}

// NewRepository creates an empty repository
func NewRepository(id models.ID) *Repository {
	return &Repository{
		id:         id,
		models:     make(map[models.ID]*Model),
		tombstones: make(map[models.ID]int64),
	}
}

// ID returns the repository id
func (r *Repository) ID() models.ID { return r.id }

// Address returns the repository address
func (r *Repository) Address() models.Address { return models.NewRepositoryAddress(r.id) }

// Model returns the model with the given id
func (r *Repository) Model(id models.ID) (*Model, bool) {
	m, ok := r.models[id]
	return m, ok
}

// ModelIDs returns model ids in ascending order
func (r *Repository) ModelIDs() []models.ID {
	return slices.Sorted(maps.Keys(r.models))
}

// PutModel adds or replaces a model
func (r *Repository) PutModel(m *Model) {
	r.models[m.addr.Model] = m
}

// DeleteModel removes a model and records the revision of its removal
func (r *Repository) DeleteModel(id models.ID, removedAt int64) {
	delete(r.models, id)
	r.tombstones[id] = removedAt
}

// Tombstone returns the revision at which a model with this id was removed
func (r *Repository) Tombstone(id models.ID) (int64, bool) {
	rev, ok := r.tombstones[id]
	return rev, ok
}

// SetTombstone records a removal revision without touching live models
func (r *Repository) SetTombstone(id models.ID, removedAt int64) {
	r.tombstones[id] = removedAt
}
