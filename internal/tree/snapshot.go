package tree

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
)

// ErrRevisionOrder возвращается, если ревизия вложенной сущности больше ревизии контейнера
var ErrRevisionOrder = errors.New("contained entity revision exceeds container revision")

// FieldSnapshot сериализуемое состояние поля
type FieldSnapshot struct {
	Value    *models.Value `json:"value,omitempty"`
	Revision int64         `json:"revision"`
}

// ObjectSnapshot сериализуемое состояние объекта
type ObjectSnapshot struct {
	Fields   map[models.ID]FieldSnapshot `json:"fields"`
	Revision int64                       `json:"revision"`
}

// ModelSnapshot сериализуемое состояние модели
type ModelSnapshot struct {
	Objects  map[models.ID]ObjectSnapshot `json:"objects"`
	Address  models.Address               `json:"address"`
	Revision int64                        `json:"revision"`
}

// Snapshot returns a detached serializable copy of the model state
func (m *Model) Snapshot() ModelSnapshot {
	s := ModelSnapshot{
		Address:  m.addr,
		Revision: m.rev,
		Objects:  make(map[models.ID]ObjectSnapshot, len(m.objects)),
	}
	for id, o := range m.objects {
		s.Objects[id] = o.Snapshot()
	}
	return s
}

// Snapshot returns a detached serializable copy of the object state
func (o *Object) Snapshot() ObjectSnapshot {
	s := ObjectSnapshot{Revision: o.rev, Fields: make(map[models.ID]FieldSnapshot, len(o.fields))}
	for id, f := range o.fields {
		s.Fields[id] = FieldSnapshot{Revision: f.rev, Value: f.value}
	}
	return s
}

// Model rebuilds a model from the snapshot
func (s ModelSnapshot) Model() *Model {
	m := NewModel(s.Address, s.Revision)
	for id, os := range s.Objects {
		m.objects[id] = os.Object()
	}
	return m
}

// Object rebuilds an object from the snapshot
func (s ObjectSnapshot) Object() *Object {
	o := NewObject(s.Revision)
	for id, fs := range s.Fields {
		o.fields[id] = NewField(fs.Revision, fs.Value)
	}
	return o
}

// MarshalJSON encodes the model as a ModelSnapshot
func (m *Model) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

// UnmarshalJSON decodes a ModelSnapshot into the model
func (m *Model) UnmarshalJSON(data []byte) error {
	var s ModelSnapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode model snapshot: %w", err)
	}
	*m = *s.Model()
	return nil
}

// CheckRevisions verifies that no object or field has a revision greater
// than its container.
func (m *Model) CheckRevisions() error {
	for _, id := range m.ObjectIDs() {
		o := m.objects[id]
		if o.rev > m.rev {
			return fmt.Errorf("%s: %w", m.addr.Child(id), ErrRevisionOrder)
		}
		for _, fid := range o.FieldIDs() {
			if o.fields[fid].rev > o.rev {
				return fmt.Errorf("%s: %w", m.addr.Child(id).Child(fid), ErrRevisionOrder)
			}
		}
	}
	return nil
}
