// Package narrow turns untyped runtime values into concrete shapes.
//
// Transports hand back bodies in three forms: values they already decoded
// (maps, slices, scalars), raw JSON text, or data that fits nothing. To
// tries the target's Cast first, then, for list and map targets only, decodes
// textual values as JSON and casts again. Failure is an explicit error,
// never a panic.
package narrow

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Shape tells To whether a textual value may be decoded as JSON before
// casting.
type Shape int

const (
	// ShapeScalar targets are cast directly; text is never JSON-decoded.
	ShapeScalar Shape = iota
	// ShapeList targets accept JSON array text.
	ShapeList
	// ShapeMap targets accept JSON object text.
	ShapeMap
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeList:
		return "list"
	case ShapeMap:
		return "map"
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// Target describes the shape a value must narrow to. Cast is the explicit
// validator: it reports whether v already has the target shape, converting
// it if needed.
type Target[T any] struct {
	Shape Shape

	// Nullable targets accept an absent value and yield the zero T.
	Nullable bool

	Cast func(v interface{}) (T, bool)
}

// Reasons a value could not be narrowed. Match them with errors.Is.
var (
	ErrNoValue     = errors.New("no value")
	ErrMismatch    = errors.New("value does not match target shape")
	ErrInvalidJSON = errors.New("text is not valid JSON")
)

// Error describes a failed narrowing.
type Error struct {
	// Reason is one of ErrNoValue, ErrMismatch or ErrInvalidJSON.
	Reason error
	Shape  Shape
	Value  interface{}
	// Err is the JSON syntax error when Reason is ErrInvalidJSON.
	Err error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("narrow: %v: have %T, want %s", e.Reason, e.Value, e.Shape)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Is reports whether target is e's Reason.
func (e *Error) Is(target error) bool { return target == e.Reason }

// Unwrap returns the underlying JSON error, if any.
func (e *Error) Unwrap() error { return e.Err }

// To narrows v to t.
func To[T any](v interface{}, t Target[T]) (T, error) {
	var zero T
	if v == nil {
		if t.Nullable {
			return zero, nil
		}
		return zero, &Error{Reason: ErrNoValue, Shape: t.Shape}
	}
	if t.Cast == nil {
		return zero, &Error{Reason: ErrMismatch, Shape: t.Shape, Value: v}
	}
	if out, ok := t.Cast(v); ok {
		return out, nil
	}

	text, ok := asText(v)
	if !ok || (t.Shape != ShapeList && t.Shape != ShapeMap) {
		return zero, &Error{Reason: ErrMismatch, Shape: t.Shape, Value: v}
	}
	var decoded interface{}
	if err := json.Unmarshal(text, &decoded); err != nil {
		return zero, &Error{Reason: ErrInvalidJSON, Shape: t.Shape, Value: v, Err: err}
	}
	if decoded == nil && t.Nullable {
		return zero, nil
	}
	if out, ok := t.Cast(decoded); ok {
		return out, nil
	}
	return zero, &Error{Reason: ErrMismatch, Shape: t.Shape, Value: decoded}
}

func asText(v interface{}) ([]byte, bool) {
	switch x := v.(type) {
	case string:
		return []byte(x), true
	case []byte:
		return x, true
	case json.RawMessage:
		return x, true
	}
	return nil, false
}
