package transport

import (
	"fmt"
	"net/http"
)

// Category is the transport's own classification of a failed call.
type Category int

const (
	// Unknown is a transport failure the transport could not classify.
	Unknown Category = iota
	ConnectionTimeout
	SendTimeout
	ReceiveTimeout
	BadCertificate
	// BadResponse means the server answered with a non-success status.
	BadResponse
	Cancel
	ConnectionError
)

func (c Category) String() string {
	switch c {
	case Unknown:
		return "unknown"
	case ConnectionTimeout:
		return "connection_timeout"
	case SendTimeout:
		return "send_timeout"
	case ReceiveTimeout:
		return "receive_timeout"
	case BadCertificate:
		return "bad_certificate"
	case BadResponse:
		return "bad_response"
	case Cancel:
		return "cancel"
	case ConnectionError:
		return "connection_error"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// These are the domains a transport reports errors from. A domain refers
// to the phase in which the error was generated.
const (
	// DomainNewRequest represents an error building the outgoing request.
	DomainNewRequest = "NewRequest"

	// DomainEncode represents an error encoding the payload.
	DomainEncode = "Encode"

	// DomainDo represents an error executing the request, including a
	// non-success status.
	DomainDo = "Do"

	// DomainDecode represents an error reading or decoding the response.
	DomainDecode = "Decode"

	// DomainLimit represents a request rejected by a rate limiter.
	DomainLimit = "Limit"

	// DomainBreaker represents a request rejected by a circuit breaker.
	DomainBreaker = "Breaker"
)

// Error is a failed call as reported by a transport.
type Error struct {
	Category Category
	Domain   string

	// StatusCode, Header and Body describe the response, when there was one.
	StatusCode int
	Header     http.Header
	Body       interface{}

	// Err is the underlying error, if any. It is nil for a plain
	// non-success status.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		if e.StatusCode != 0 {
			return fmt.Sprintf("%s: %s: status %d", e.Domain, e.Category, e.StatusCode)
		}
		return fmt.Sprintf("%s: %s", e.Domain, e.Category)
	}
	return fmt.Sprintf("%s: %s: %s", e.Domain, e.Category, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// NewStatusError returns the error for a response with a non-success
// status.
func NewStatusError(statusCode int, header http.Header, body interface{}) *Error {
	return &Error{
		Category:   BadResponse,
		Domain:     DomainDo,
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
	}
}

// IsSuccess reports whether statusCode counts as success.
func IsSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
