package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueTypeString тип значения для строк
const ValueTypeString = "string"

// ValueTypeBytes тип значения для произвольных байт
const ValueTypeBytes = "bytes"

// Value is an opaque immutable field payload. The encoding of Data is owned
// by the value type system; the core only compares and copies values.
// A nil *Value means "field has no value".
type Value struct {
	typ  string
	data []byte
}

// NewValue creates a value of the given type. The data slice is copied.
func NewValue(typ string, data []byte) *Value {
	cp := make([]byte, len(data))
	copy(cp, data)
	return &Value{typ: typ, data: cp}
}

// StringValue creates a string typed value
func StringValue(s string) *Value {
	return &Value{typ: ValueTypeString, data: []byte(s)}
}

// Type returns the value type name
func (v *Value) Type() string {
	if v == nil {
		return ""
	}
	return v.typ
}

// Bytes returns a copy of the encoded payload
func (v *Value) Bytes() []byte {
	if v == nil {
		return nil
	}
	cp := make([]byte, len(v.data))
	copy(cp, v.data)
	return cp
}

// String returns the payload as string (useful for string typed values and logs)
func (v *Value) String() string {
	if v == nil {
		return "<nil>"
	}
	return string(v.data)
}

// Equal compares two values structurally; two nil values are equal
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == nil && other == nil
	}
	return v.typ == other.typ && bytes.Equal(v.data, other.data)
}

// valueJSON представление значения для сериализации
type valueJSON struct {
	Type string `json:"type"`
	Data []byte `json:"data"`
}

// MarshalJSON encodes the value as {"type":..., "data":base64}
func (v *Value) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return json.Marshal(valueJSON{Type: v.typ, Data: v.data})
}

// UnmarshalJSON decodes the form produced by MarshalJSON
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode value: %w", err)
	}
	v.typ = raw.Type
	v.data = raw.Data
	return nil
}
