// Package patch provides presence-tracking fields for partial update
// payloads. A Field distinguishes three request states that plain
// pointers cannot: absent, explicit null, and value.
package patch

import "encoding/json"

type Field[T any] struct {
	present bool
	null    bool
	value   T
}

// Of builds a present, non-null field. Mostly useful in tests and
// internal callers of the update pipeline.
func Of[T any](v T) Field[T] {
	return Field[T]{present: true, value: v}
}

// Null builds a present field carrying an explicit null.
func Null[T any]() Field[T] {
	return Field[T]{present: true, null: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.present = true
	if string(data) == "null" {
		f.null = true
		return nil
	}
	return json.Unmarshal(data, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.present || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// Present reports whether the field appeared in the payload at all.
func (f Field[T]) Present() bool { return f.present }

// IsNull reports whether the field was supplied as an explicit null.
func (f Field[T]) IsNull() bool { return f.present && f.null }

// Value returns the supplied value; zero value when absent or null.
func (f Field[T]) Value() T { return f.value }

// Ptr returns the value as a pointer, nil when absent or null.
func (f Field[T]) Ptr() *T {
	if !f.present || f.null {
		return nil
	}
	v := f.value
	return &v
}
