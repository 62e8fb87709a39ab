package classify

import (
	"reflect"

	"github.com/go-kit/outcome/codec"
	"github.com/go-kit/outcome/defect"
	"github.com/go-kit/outcome/diag"
	"github.com/go-kit/outcome/narrow"
	"github.com/go-kit/outcome/result"
)

// Response classifies the body of a success response.
func Response[E, R, V any](data interface{}, dec codec.Decoder[R, V]) (out result.Result[*defect.Defect[E], V]) {
	defer func() {
		if r := recover(); r != nil {
			out = result.Left[*defect.Defect[E], V](defect.NewParse[E](diag.New(r), data))
		}
	}()

	if data == nil {
		if dec.Nullable() {
			var zero V
			return result.Right[*defect.Defect[E]](zero)
		}
		return result.Left[*defect.Defect[E], V](defect.NewParse[E](
			diag.Errorf("success status but null body, and %s is non-nullable", typeName[V]()), nil))
	}

	v, c, ok := narrowAndDecode(data, dec)
	if !ok {
		return result.Left[*defect.Defect[E], V](defect.NewParse[E](c, data))
	}
	return result.Right[*defect.Defect[E]](v)
}

// narrowAndDecode narrows data to R and decodes it with dec. On failure it
// returns the diagnostic describing the failed step.
func narrowAndDecode[R, T any](data interface{}, dec codec.Decoder[R, T]) (T, diag.Capture, bool) {
	var zero T
	raw, err := narrow.To(data, dec.Target)
	if err != nil {
		return zero, diag.Errorf("cannot narrow %T to %s: %w", data, typeName[R](), err), false
	}
	return guard(dec.Decode, raw)
}

// guard runs decode, converting a returned error or a panic into a
// diagnostic. Decoding functions are caller code and are not trusted.
func guard[R, T any](decode func(R) (T, error), raw R) (out T, c diag.Capture, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			out, c, ok = zero, diag.New(r), false
		}
	}()
	if decode == nil {
		return out, diag.Errorf("no decode function for %s", typeName[T]()), false
	}
	v, err := decode(raw)
	if err != nil {
		return out, diag.New(err), false
	}
	return v, diag.Capture{}, true
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
