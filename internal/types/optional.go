package types

import (
	"encoding/json"
	"log/slog"
	"math"
)

// Optional holds a value that may be undefined. The zero value is undefined.
type Optional[T any] struct {
	value T
	ok    bool
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is defined.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

func (o Optional[T]) IsDefined() bool {
	return o.ok
}

// OrElse returns the value, or def when undefined.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// MarshalJSON encodes an undefined value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// LogValue logs the bare value, or "unavailable" when undefined.
func (o Optional[T]) LogValue() slog.Value {
	if !o.ok {
		return slog.StringValue("unavailable")
	}
	return slog.AnyValue(o.value)
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

// Positive wraps x when it is finite and strictly positive.
func Positive(x float64) Optional[float64] {
	if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
		return None[float64]()
	}
	return Some(x)
}
