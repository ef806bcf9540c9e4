package types

import "encoding/json"

// Optional represents a value the hardware may not report. Absence is
// distinct from any valid zero value; never encode absence as a numeric
// sentinel.
type Optional[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Optional[T] { return Optional[T]{value: v, ok: true} }

func None[T any]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) { return o.value, o.ok }

// Or returns the value if present, otherwise def.
func (o Optional[T]) Or(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

func (o Optional[T]) Present() bool { return o.ok }

// MarshalJSON encodes absence as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON decodes null as absent.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Optional[T]{value: v, ok: true}
	return nil
}
