package dto

import (
	"encoding/json"
)

// Optional is a JSON field that remembers whether the key was present in the
// payload at all, and whether it was an explicit null. Patch requests use it
// to tell "leave alone" apart from "clear".
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{Set: true, Value: value}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true

	if string(data) == "null" {
		var zero T

		o.Null = true
		o.Value = zero

		return nil
	}

	o.Null = false

	return json.Unmarshal(data, &o.Value) //nolint:wrapcheck
}

// Ptr returns nil for an absent or null field and a pointer to a copy of the value otherwise.
func (o Optional[T]) Ptr() *T {
	if !o.Set || o.Null {
		return nil
	}

	value := o.Value

	return &value
}
