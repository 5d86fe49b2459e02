package models

import (
	"fmt"
	"strings"
)

// ChangeType тип изменения, общий для команд и событий
type ChangeType int

const (
	ChangeAdd ChangeType = iota + 1
	ChangeRemove
	ChangeValue
	ChangeTransaction
)

// String returns the lower case name of the change type
func (c ChangeType) String() string {
	switch c {
	case ChangeAdd:
		return "add"
	case ChangeRemove:
		return "remove"
	case ChangeValue:
		return "value"
	case ChangeTransaction:
		return "transaction"
	default:
		return "unknown"
	}
}

// MarshalText encodes the change type by name
func (c ChangeType) MarshalText() ([]byte, error) {
	if c < ChangeAdd || c > ChangeTransaction {
		return nil, fmt.Errorf("unknown change type %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a change type name
func (c *ChangeType) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "add":
		*c = ChangeAdd
	case "remove":
		*c = ChangeRemove
	case "value":
		*c = ChangeValue
	case "transaction":
		*c = ChangeTransaction
	default:
		return fmt.Errorf("unknown change type %q", string(text))
	}
	return nil
}

// Command is a requested mutation with a revision precondition.
//
// Target depends on the kind:
//   - ChangeAdd: the parent address; the new entity is Target.Child(NewID)
//   - ChangeRemove: the entity to remove
//   - ChangeValue: the field whose value changes (Value == nil removes the value)
//   - ChangeTransaction: the model or object all Commands are confined to
//
// Revision is either an exact expected revision (SAFE) or one of
// RevisionForced, RevisionNew, RevisionThisTransaction.
type Command struct {
	Value    *Value     `json:"value,omitempty"`
	OldValue *Value     `json:"old_value,omitempty"`
	Target   Address    `json:"target"`
	NewID    ID         `json:"new_id,omitempty"`
	Commands []*Command `json:"commands,omitempty"`
	Kind     ChangeType `json:"kind"`
	Revision int64      `json:"revision"`
	// ExpectOldValue включает проверку текущего значения поля на равенство OldValue
	ExpectOldValue bool `json:"expect_old_value,omitempty"`
}

// NewAddCommand creates a command adding child id below parent
func NewAddCommand(parent Address, rev int64, id ID) *Command {
	return &Command{Kind: ChangeAdd, Target: parent, NewID: id, Revision: rev}
}

// NewRemoveCommand creates a command removing the addressed entity
func NewRemoveCommand(addr Address, rev int64) *Command {
	return &Command{Kind: ChangeRemove, Target: addr, Revision: rev}
}

// NewChangeValueCommand creates a command setting (or, with a nil value, clearing) a field value
func NewChangeValueCommand(field Address, rev int64, value *Value) *Command {
	return &Command{Kind: ChangeValue, Target: field, Revision: rev, Value: value}
}

// NewTransaction groups atomic commands confined to target (a model or an object)
func NewTransaction(target Address, cmds ...*Command) *Command {
	return &Command{Kind: ChangeTransaction, Target: target, Commands: cmds, Revision: RevisionForced}
}

// WithOldValue adds an exact expected-old-value check to a value command
func (c *Command) WithOldValue(old *Value) *Command {
	c.ExpectOldValue = true
	c.OldValue = old
	return c
}

// ChangedEntity returns the address of the entity this command changes
func (c *Command) ChangedEntity() Address {
	if c.Kind == ChangeAdd {
		return c.Target.Child(c.NewID)
	}
	return c.Target
}

// IsForced reports whether the command ignores revisions
func (c *Command) IsForced() bool {
	return c.Revision == RevisionForced
}

// IsTransaction reports whether the command is a transaction
func (c *Command) IsTransaction() bool {
	return c.Kind == ChangeTransaction
}

// Atomic returns the atomic commands: the transaction body or the command itself
func (c *Command) Atomic() []*Command {
	if c.IsTransaction() {
		return c.Commands
	}
	return []*Command{c}
}

// Clone creates a deep copy of the command (values are immutable and shared)
func (c *Command) Clone() *Command {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Commands != nil {
		cp.Commands = make([]*Command, len(c.Commands))
		for i, sub := range c.Commands {
			cp.Commands[i] = sub.Clone()
		}
	}
	return &cp
}

// String formats the command for logs
func (c *Command) String() string {
	if c.IsTransaction() {
		return fmt.Sprintf("transaction %s (%d commands)", c.Target, len(c.Commands))
	}
	return fmt.Sprintf("%s %s @%s", c.Kind, c.ChangedEntity(), RevisionString(c.Revision))
}
