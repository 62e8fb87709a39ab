// Package defect defines the closed taxonomy of reasons a request did not
// yield a decoded value.
//
// A Defect is a tagged union: Kind selects the variant, and the BadResponse
// variant additionally populates StatusCode and ErrorBody. Every Defect
// carries the diagnostic captured where the failure was first observed, and
// the raw response data whenever the transport returned a body.
package defect

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/go-kit/outcome/diag"
	"github.com/go-kit/outcome/result"
)

// ParseFailure describes a body that could not be narrowed or decoded. It is
// the Left branch of a BadResponse error body.
type ParseFailure struct {
	Diagnostic      diag.Capture
	RawResponseData interface{}
}

// Error implements the error interface.
func (p ParseFailure) Error() string { return p.Diagnostic.Error() }

// Defect is a failed call, parameterized by the decoded error type E.
type Defect[E any] struct {
	Kind Kind

	// Diagnostic is the failure that produced this defect, paired with
	// the stack where it was observed. Never zero.
	Diagnostic diag.Capture

	// RawResponseData is whatever body the transport returned, if any.
	RawResponseData interface{}

	// StatusCode and ErrorBody are set for BadResponse only. ErrorBody is
	// Right when the server's error body decoded to E, and Left when it
	// could not be.
	StatusCode int
	ErrorBody  result.Result[ParseFailure, E]
}

// New returns a defect of the given kind. A zero diagnostic is replaced
// with one naming the kind, so the invariant holds for every constructor.
func New[E any](k Kind, c diag.Capture, raw interface{}) *Defect[E] {
	if c.IsZero() {
		c = diag.Errorf("%s defect", k)
	}
	return &Defect[E]{Kind: k, Diagnostic: c, RawResponseData: raw}
}

// NewUnknown returns an Unknown defect.
func NewUnknown[E any](c diag.Capture, raw interface{}) *Defect[E] {
	return New[E](Unknown, c, raw)
}

// NewConnection returns a Connection defect.
func NewConnection[E any](c diag.Capture, raw interface{}) *Defect[E] {
	return New[E](Connection, c, raw)
}

// NewTimeout returns a Timeout defect.
func NewTimeout[E any](c diag.Capture, raw interface{}) *Defect[E] {
	return New[E](Timeout, c, raw)
}

// NewCancel returns a Cancel defect.
func NewCancel[E any](c diag.Capture, raw interface{}) *Defect[E] {
	return New[E](Cancel, c, raw)
}

// NewBadCertificate returns a BadCertificate defect.
func NewBadCertificate[E any](c diag.Capture, raw interface{}) *Defect[E] {
	return New[E](BadCertificate, c, raw)
}

// NewParse returns a Parse defect.
func NewParse[E any](c diag.Capture, raw interface{}) *Defect[E] {
	return New[E](Parse, c, raw)
}

// NewInvalidPayload returns an InvalidPayload defect.
func NewInvalidPayload[E any](c diag.Capture) *Defect[E] {
	return New[E](InvalidPayload, c, nil)
}

// NewUnknownDefect returns an UnknownDefect defect.
func NewUnknownDefect[E any](c diag.Capture, raw interface{}) *Defect[E] {
	return New[E](UnknownDefect, c, raw)
}

// NewBadResponse returns a BadResponse defect with its status code and
// error body.
func NewBadResponse[E any](c diag.Capture, raw interface{}, statusCode int, body result.Result[ParseFailure, E]) *Defect[E] {
	d := New[E](BadResponse, c, raw)
	d.StatusCode = statusCode
	d.ErrorBody = body
	return d
}

// FromParseFailure promotes a ParseFailure to a top-level Parse defect.
func FromParseFailure[E any](p ParseFailure) *Defect[E] {
	return New[E](Parse, p.Diagnostic, p.RawResponseData)
}

// Error implements the error interface.
func (d *Defect[E]) Error() string {
	if d == nil {
		return "<nil>"
	}
	if d.Kind == BadResponse {
		return fmt.Sprintf("defect: %s (status %d): %s", d.Kind, d.StatusCode, d.Diagnostic.Error())
	}
	return fmt.Sprintf("defect: %s: %s", d.Kind, d.Diagnostic.Error())
}

// Unwrap exposes the diagnostic's underlying error to errors.Is and errors.As.
func (d *Defect[E]) Unwrap() error {
	if d == nil {
		return nil
	}
	return d.Diagnostic.Unwrap()
}

// Is matches the per-kind sentinels, e.g. errors.Is(err, defect.ErrParse).
func (d *Defect[E]) Is(target error) bool {
	k, ok := target.(kindError)
	return ok && d != nil && Kind(k) == d.Kind
}

// DecodedError returns the decoded server error body of a BadResponse.
func (d *Defect[E]) DecodedError() (E, bool) {
	if d == nil || d.Kind != BadResponse {
		var zero E
		return zero, false
	}
	return d.ErrorBody.Right()
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump renders the defect with its full diagnostic trace and a deep dump of
// the raw response data, for debugging.
func (d *Defect[E]) Dump() string {
	if d == nil {
		return "<nil>"
	}
	s := fmt.Sprintf("%s\n%+v\nraw response data: %s", d.Error(), d.Diagnostic, dumper.Sdump(d.RawResponseData))
	if d.Kind == BadResponse {
		if p, ok := d.ErrorBody.Left(); ok {
			s += fmt.Sprintf("error body: %+v\n", p.Diagnostic)
		} else if e, ok := d.ErrorBody.Right(); ok {
			s += "error body: " + dumper.Sdump(e)
		}
	}
	return s
}
