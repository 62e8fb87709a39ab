package defect

import (
	"errors"
	"strings"
)

// Cases holds one handler per defect variant, for exhaustive handling with
// Match. Default, if set, handles any variant whose handler is nil.
type Cases[E, T any] struct {
	Unknown        func(*Defect[E]) T
	Connection     func(*Defect[E]) T
	Timeout        func(*Defect[E]) T
	Cancel         func(*Defect[E]) T
	BadCertificate func(*Defect[E]) T
	BadResponse    func(*Defect[E]) T
	Parse          func(*Defect[E]) T
	InvalidPayload func(*Defect[E]) T
	UnknownDefect  func(*Defect[E]) T
	Default        func(*Defect[E]) T
}

func (c Cases[E, T]) handler(k Kind) func(*Defect[E]) T {
	var h func(*Defect[E]) T
	switch k {
	case Unknown:
		h = c.Unknown
	case Connection:
		h = c.Connection
	case Timeout:
		h = c.Timeout
	case Cancel:
		h = c.Cancel
	case BadCertificate:
		h = c.BadCertificate
	case BadResponse:
		h = c.BadResponse
	case Parse:
		h = c.Parse
	case InvalidPayload:
		h = c.InvalidPayload
	case UnknownDefect:
		h = c.UnknownDefect
	}
	if h == nil {
		h = c.Default
	}
	return h
}

// Validate returns an error naming every variant that has neither its own
// handler nor a Default. Call it in tests to keep a Cases exhaustive.
func (c Cases[E, T]) Validate() error {
	var missing []string
	for _, k := range Kinds() {
		if c.handler(k) == nil {
			missing = append(missing, k.String())
		}
	}
	if len(missing) > 0 {
		return errors.New("defect: unhandled kinds: " + strings.Join(missing, ", "))
	}
	return nil
}

// Match dispatches d to the handler for its kind. It returns the zero T
// when d is nil or no handler applies.
func Match[E, T any](d *Defect[E], c Cases[E, T]) T {
	var zero T
	if d == nil {
		return zero
	}
	h := c.handler(d.Kind)
	if h == nil {
		return zero
	}
	return h(d)
}
