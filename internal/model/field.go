package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// State describes how much we know about an optional record field.
// Catalog enrichment is incremental: most fields start out unknown and are
// filled in (or ruled out) by later passes, so "never looked" and "looked,
// nothing there" must stay distinguishable.
type State int

const (
	// StateUnknown means no attempt has been made to determine the field.
	StateUnknown State = iota

	// StateAbsent means an attempt was made and the value does not exist.
	StateAbsent

	// StateKnown means the field holds a real value. An empty string is a
	// legitimate known value, distinct from unknown.
	StateKnown

	// StateInvalid means the value exists but is unusable (e.g. a README
	// that turned out to be garbage). Only the Readme field uses it.
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAbsent:
		return "absent"
	case StateKnown:
		return "known"
	case StateInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Field is an optional record field tagged with its enrichment state.
// The zero value is an unknown field.
type Field[T any] struct {
	state State
	value T
}

// Known returns a field holding a real value.
func Known[T any](v T) Field[T] {
	return Field[T]{state: StateKnown, value: v}
}

// Absent returns a field recording that the value was looked for and does
// not exist.
func Absent[T any]() Field[T] {
	return Field[T]{state: StateAbsent}
}

// Invalid returns a field recording that the value exists but is unusable.
func Invalid[T any]() Field[T] {
	return Field[T]{state: StateInvalid}
}

// State reports the field's enrichment state.
func (f Field[T]) State() State { return f.state }

// Get returns the value and whether it is known.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == StateKnown
}

// MustGet returns the value and panics if it is not known. For tests.
func (f Field[T]) MustGet() T {
	if f.state != StateKnown {
		panic(fmt.Sprintf("field is %s, not known", f.state))
	}
	return f.value
}

func (f Field[T]) IsUnknown() bool { return f.state == StateUnknown }
func (f Field[T]) IsAbsent() bool  { return f.state == StateAbsent }
func (f Field[T]) IsKnown() bool   { return f.state == StateKnown }
func (f Field[T]) IsInvalid() bool { return f.state == StateInvalid }

// Sentinel encoding used in the store document format. Unknown fields encode
// as null (or [] for sequence fields), absent as -1, invalid as -2, and known
// fields as their plain value. Numeric record values are never negative, so
// the sentinels cannot collide with data.
var (
	jsonNull    = []byte("null")
	jsonEmpty   = []byte("[]")
	jsonAbsent  = []byte("-1")
	jsonInvalid = []byte("-2")
)

// MarshalJSON encodes the field in the sentinel document format.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	switch f.state {
	case StateAbsent:
		return jsonAbsent, nil
	case StateInvalid:
		return jsonInvalid, nil
	case StateKnown:
		return json.Marshal(f.value)
	default:
		if isSequence[T]() {
			return jsonEmpty, nil
		}
		return jsonNull, nil
	}
}

// UnmarshalJSON decodes the sentinel document format.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, jsonNull):
		*f = Field[T]{}
		return nil
	case bytes.Equal(data, jsonAbsent):
		*f = Absent[T]()
		return nil
	case bytes.Equal(data, jsonInvalid):
		*f = Invalid[T]()
		return nil
	case bytes.Equal(data, jsonEmpty) && isSequence[T]():
		// An empty sequence is the unknown marker for sequence fields.
		*f = Field[T]{}
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding field value: %w", err)
	}
	*f = Known(v)
	return nil
}

// isSequence reports whether T encodes as a JSON array, which determines the
// unknown marker ([] rather than null) for compatibility with existing
// catalog documents.
func isSequence[T any]() bool {
	return reflect.TypeFor[T]().Kind() == reflect.Slice
}
