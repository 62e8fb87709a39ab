package client

import (
	"fmt"
	"reflect"

	"github.com/go-kit/outcome/transport"
)

// ValidatePayload reports whether payload can be sent as a request body.
// Accepted are nil, *transport.FormData, any map, and any slice or array
// whose elements are not bytes. Everything else, including strings, byte
// slices and arrays, structs and numbers, is rejected.
func ValidatePayload(payload interface{}) error {
	switch payload.(type) {
	case nil, *transport.FormData:
		return nil
	}
	t := reflect.TypeOf(payload)
	switch t.Kind() {
	case reflect.Map:
		return nil
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() != reflect.Uint8 {
			return nil
		}
	}
	return fmt.Errorf("invalid payload of type %s: want a list, a map or *transport.FormData", t)
}
