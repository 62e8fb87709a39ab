package narrow

import (
	"encoding/json"
	"math"
	"reflect"
)

// Any accepts every non-nil value as is.
func Any() Target[interface{}] {
	return Target[interface{}]{
		Shape: ShapeScalar,
		Cast:  func(v interface{}) (interface{}, bool) { return v, true },
	}
}

// Of accepts values whose dynamic type is exactly T.
func Of[T any](shape Shape) Target[T] {
	return Target[T]{
		Shape: shape,
		Cast: func(v interface{}) (T, bool) {
			out, ok := v.(T)
			return out, ok
		},
	}
}

// Nullable returns a copy of t that accepts an absent value.
func Nullable[T any](t Target[T]) Target[T] {
	t.Nullable = true
	return t
}

// Map accepts JSON objects: map[string]interface{}, any other map keyed by
// strings, or JSON object text.
func Map() Target[map[string]interface{}] {
	return Target[map[string]interface{}]{Shape: ShapeMap, Cast: castMap}
}

// List accepts JSON arrays: []interface{}, any other slice or array except
// []byte, or JSON array text.
func List() Target[[]interface{}] {
	return Target[[]interface{}]{Shape: ShapeList, Cast: castList}
}

// String accepts strings.
func String() Target[string] {
	return Of[string](ShapeScalar)
}

// Bool accepts booleans.
func Bool() Target[bool] {
	return Of[bool](ShapeScalar)
}

// Float accepts any numeric value, including json.Number.
func Float() Target[float64] {
	return Target[float64]{Shape: ShapeScalar, Cast: castFloat}
}

// Int accepts integers, integral floats and integral json.Number values.
func Int() Target[int64] {
	return Target[int64]{Shape: ShapeScalar, Cast: castInt}
}

func castMap(v interface{}) (map[string]interface{}, bool) {
	if m, ok := v.(map[string]interface{}); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

func castList(v interface{}) ([]interface{}, bool) {
	switch x := v.(type) {
	case []interface{}:
		return x, true
	case []byte, json.RawMessage:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	l := make([]interface{}, rv.Len())
	for i := range l {
		l[i] = rv.Index(i).Interface()
	}
	return l, true
}

func castFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	}
	return 0, false
}

func castInt(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case json.Number:
		i, err := x.Int64()
		return i, err == nil
	case float64:
		if x != math.Trunc(x) || x > math.MaxInt64 || x < math.MinInt64 {
			return 0, false
		}
		return int64(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return rv.Int(), true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return int64(rv.Uint()), true
	}
	return 0, false
}
