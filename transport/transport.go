package transport

import (
	"context"
	"net/http"
	"net/url"
)

// Request is a single call to a remote endpoint.
type Request struct {
	Method string
	// Path is resolved against the transport's base URL.
	Path string
	// Payload is nil, a list, a map, or *FormData.
	Payload interface{}
	Header  http.Header
	Query   url.Values
}

// Response is a response with a success status. Body holds whatever the
// transport produced from the wire: an already-decoded JSON value, text, or
// nil when the response had no content.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       interface{}
}

// Doer executes requests.
type Doer interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// DoerFunc is an adapter to allow the use of ordinary functions as Doers.
type DoerFunc func(ctx context.Context, req Request) (Response, error)

// Do implements Doer by calling f(ctx, req).
func (f DoerFunc) Do(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Middleware is a chainable behavior modifier for Doers.
type Middleware func(Doer) Doer

// Chain is a helper function for composing middlewares. Requests will
// traverse them in the order they're declared. That is, the first middleware
// is treated as the outermost middleware.
func Chain(outer Middleware, others ...Middleware) Middleware {
	return func(next Doer) Doer {
		for i := len(others) - 1; i >= 0; i-- { // reverse
			next = others[i](next)
		}
		return outer(next)
	}
}
