package model

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON field from an explicit null.
type Optional[T any] struct {
	Set   bool // the key was present
	Valid bool // the value was not null
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

// Ptr returns nil for null or absent values.
func (o Optional[T]) Ptr() *T {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
