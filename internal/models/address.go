package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ID непрозрачный идентификатор сущности (репозиторий, модель, объект, поле).
// Пустая строка означает отсутствие компонента адреса.
type ID string

// AddressedType уровень дерева, на который указывает адрес
type AddressedType int

const (
	TypeInvalid AddressedType = iota
	TypeRepository
	TypeModel
	TypeObject
	TypeField
)

// String returns a human readable level name
func (t AddressedType) String() string {
	switch t {
	case TypeRepository:
		return "repository"
	case TypeModel:
		return "model"
	case TypeObject:
		return "object"
	case TypeField:
		return "field"
	default:
		return "invalid"
	}
}

// addressSeparator разделитель компонентов в строковом представлении адреса
const addressSeparator = "/"

// absentComponent обозначает отсутствующий компонент в строковом представлении
const absentComponent = "-"

// Address identifies an entity by its path repository/model/object/field.
// Addresses are immutable values; equality is structural (==).
type Address struct {
	Repository ID
	Model      ID
	Object     ID
	Field      ID
}

// NewRepositoryAddress returns the address of a repository
func NewRepositoryAddress(repo ID) Address {
	return Address{Repository: repo}
}

// NewModelAddress returns the address of a model
func NewModelAddress(repo, model ID) Address {
	return Address{Repository: repo, Model: model}
}

// NewObjectAddress returns the address of an object
func NewObjectAddress(repo, model, object ID) Address {
	return Address{Repository: repo, Model: model, Object: object}
}

// NewFieldAddress returns the address of a field
func NewFieldAddress(repo, model, object, field ID) Address {
	return Address{Repository: repo, Model: model, Object: object, Field: field}
}

// Type returns the level the address points to.
// Addresses with gaps (e.g. a field without an object) are TypeInvalid.
func (a Address) Type() AddressedType {
	parts := [4]ID{a.Repository, a.Model, a.Object, a.Field}

	depth := 0
	for depth < len(parts) && parts[depth] != "" {
		depth++
	}

	// После первого пустого компонента все остальные тоже должны быть пустыми
	for i := depth; i < len(parts); i++ {
		if parts[i] != "" {
			return TypeInvalid
		}
	}

	switch depth {
	case 1:
		return TypeRepository
	case 2:
		return TypeModel
	case 3:
		return TypeObject
	case 4:
		return TypeField
	default:
		return TypeInvalid
	}
}

// IsValid reports whether the address has no gaps and at least a repository
func (a Address) IsValid() bool {
	return a.Type() != TypeInvalid
}

// Parent returns the address of the containing entity.
// The parent of a repository address is the zero Address.
func (a Address) Parent() Address {
	switch a.Type() {
	case TypeField:
		return Address{Repository: a.Repository, Model: a.Model, Object: a.Object}
	case TypeObject:
		return Address{Repository: a.Repository, Model: a.Model}
	case TypeModel:
		return Address{Repository: a.Repository}
	default:
		return Address{}
	}
}

// Child returns the address of the child entity with the given id
func (a Address) Child(id ID) Address {
	child := a
	switch a.Type() {
	case TypeRepository:
		child.Model = id
	case TypeModel:
		child.Object = id
	case TypeObject:
		child.Field = id
	default:
		return Address{}
	}
	return child
}

// ModelAddress returns the address of the model containing this address.
// For repository addresses the zero Address is returned.
func (a Address) ModelAddress() Address {
	if a.Model == "" {
		return Address{}
	}
	return Address{Repository: a.Repository, Model: a.Model}
}

// ObjectAddress returns the address of the object containing this address
func (a Address) ObjectAddress() Address {
	if a.Object == "" {
		return Address{}
	}
	return Address{Repository: a.Repository, Model: a.Model, Object: a.Object}
}

// LastID returns the most specific component of the address
func (a Address) LastID() ID {
	switch a.Type() {
	case TypeField:
		return a.Field
	case TypeObject:
		return a.Object
	case TypeModel:
		return a.Model
	case TypeRepository:
		return a.Repository
	default:
		return ""
	}
}

// Contains reports whether other is equal to a or lies below a in the tree
func (a Address) Contains(other Address) bool {
	if !a.IsValid() || !other.IsValid() {
		return false
	}
	if a.Type() > other.Type() {
		return false
	}

	parts := [4]ID{a.Repository, a.Model, a.Object, a.Field}
	otherParts := [4]ID{other.Repository, other.Model, other.Object, other.Field}
	for i := 0; i < int(a.Type()); i++ {
		if parts[i] != otherParts[i] {
			return false
		}
	}
	return true
}

// String formats the address as /repo/model/object/field with "-" for absent parts
func (a Address) String() string {
	parts := []ID{a.Repository, a.Model, a.Object, a.Field}

	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(addressSeparator)
		if p == "" {
			sb.WriteString(absentComponent)
			continue
		}
		sb.WriteString(string(p))
	}
	return sb.String()
}

// ParseAddress parses the String representation of an address.
// Trailing components may be omitted: "/repo/model" is a model address.
func ParseAddress(s string) (Address, error) {
	if !strings.HasPrefix(s, addressSeparator) {
		return Address{}, fmt.Errorf("address must start with %q: %q", addressSeparator, s)
	}

	parts := strings.Split(strings.TrimPrefix(s, addressSeparator), addressSeparator)
	if len(parts) > 4 {
		return Address{}, fmt.Errorf("address has too many components: %q", s)
	}

	ids := [4]ID{}
	for i, p := range parts {
		if p == absentComponent || p == "" {
			continue
		}
		ids[i] = ID(p)
	}

	addr := Address{Repository: ids[0], Model: ids[1], Object: ids[2], Field: ids[3]}
	if !addr.IsValid() {
		return Address{}, fmt.Errorf("invalid address: %q", s)
	}
	return addr, nil
}

// MarshalJSON encodes the address as its string form
func (a Address) MarshalJSON() ([]byte, error) {
	if a == (Address{}) {
		return json.Marshal("")
	}
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes the string form produced by MarshalJSON
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode address: %w", err)
	}
	if s == "" {
		*a = Address{}
		return nil
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
