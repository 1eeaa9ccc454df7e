package task

import (
	"bytes"
	"encoding/json"
)

// Field is an input value that remembers whether the caller mentioned it.
//
// The zero Field means "absent". A Field decoded from an explicit JSON null is
// Present and Null.
type Field[T any] struct {
	Value   T
	Present bool
	Null    bool
}

// Set returns a present, non-null field.
func Set[T any](v T) Field[T] {
	return Field[T]{Value: v, Present: true}
}

// Null returns a field that was explicitly sent as null.
func Null[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}

// HasValue reports whether the field carries a usable value.
func (f Field[T]) HasValue() bool {
	return f.Present && !f.Null
}

// IsZero makes absent fields disappear under the omitzero tag option.
func (f Field[T]) IsZero() bool {
	return !f.Present
}

// UnmarshalJSON is only invoked when the key appears in the document.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.Value = zero
		f.Null = true
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Input is the set of mutable task fields a caller may supply on create,
// replace or merge.
type Input struct {
	Title       Field[string]   `json:"title,omitzero"`
	Description Field[string]   `json:"description,omitzero"`
	Status      Field[Status]   `json:"status,omitzero"`
	Priority    Field[Priority] `json:"priority,omitzero"`
}
