// Package codec pairs a narrowing target with the caller's decoding
// function.
//
// A Decoder[R, T] says: narrow the raw body to R, then turn R into T. The
// client takes one Decoder for success bodies and one for error bodies, so
// every call site states exactly what it expects back.
package codec

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/go-kit/outcome/narrow"
)

// Decoder narrows a raw body to R and decodes it into T.
type Decoder[R, T any] struct {
	Target narrow.Target[R]
	Decode func(R) (T, error)
}

// Nullable reports whether an absent body decodes to the zero T.
func (d Decoder[R, T]) Nullable() bool { return d.Target.Nullable }

// Func builds a Decoder from a target and a plain decoding function.
func Func[R, T any](t narrow.Target[R], decode func(R) (T, error)) Decoder[R, T] {
	return Decoder[R, T]{Target: t, Decode: decode}
}

// Raw returns the narrowed value unchanged.
func Raw[R any](t narrow.Target[R]) Decoder[R, R] {
	return Decoder[R, R]{
		Target: t,
		Decode: func(r R) (R, error) { return r, nil },
	}
}

// Nullable returns a copy of d whose target accepts an absent body.
func Nullable[R, T any](d Decoder[R, T]) Decoder[R, T] {
	d.Target = narrow.Nullable(d.Target)
	return d
}

// Empty accepts any body, including none, and discards it. Use it for
// endpoints that answer with no content.
func Empty() Decoder[interface{}, struct{}] {
	return Decoder[interface{}, struct{}]{
		Target: narrow.Nullable(narrow.Any()),
		Decode: func(interface{}) (struct{}, error) { return struct{}{}, nil },
	}
}

// Struct decodes a JSON object into T using T's json struct tags. Numbers
// are converted weakly, so {"a":1} decodes the same whether the transport
// delivered it as text or as an already-parsed map.
func Struct[T any]() Decoder[map[string]interface{}, T] {
	return Decoder[map[string]interface{}, T]{
		Target: narrow.Map(),
		Decode: func(m map[string]interface{}) (T, error) { return decodeInto[T](m) },
	}
}

// Slice decodes a JSON array into []T, element by element.
func Slice[T any]() Decoder[[]interface{}, []T] {
	return Decoder[[]interface{}, []T]{
		Target: narrow.List(),
		Decode: func(l []interface{}) ([]T, error) {
			out := make([]T, 0, len(l))
			for i, el := range l {
				v, err := decodeInto[T](el)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				out = append(out, v)
			}
			return out, nil
		},
	}
}

func decodeInto[T any](in interface{}) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, err
	}
	if err := dec.Decode(in); err != nil {
		return out, err
	}
	return out, nil
}
