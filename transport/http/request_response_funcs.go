package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestFunc may take information from a request context and put it into
// the outgoing HTTP request. RequestFuncs are executed after the request is
// built but prior to invoking the HTTP client.
type RequestFunc func(context.Context, *http.Request) context.Context

// SetRequestHeader returns a RequestFunc that sets the specified header.
func SetRequestHeader(key, val string) RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		r.Header.Set(key, val)
		return ctx
	}
}

// SetRequestID returns a RequestFunc that sets header to a fresh random
// UUID, unless the request already carries one.
func SetRequestID(header string) RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		if r.Header.Get(header) == "" {
			r.Header.Set(header, uuid.NewString())
		}
		return ctx
	}
}

// SetBasicAuth returns a RequestFunc that sets HTTP basic authentication.
func SetBasicAuth(username, password string) RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		r.SetBasicAuth(username, password)
		return ctx
	}
}

// SetBearerToken returns a RequestFunc that sets a bearer Authorization
// header from token, evaluated on every request so a refreshed token is
// picked up. An empty token leaves the header unset.
func SetBearerToken(token func() string) RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		if t := token(); t != "" {
			r.Header.Set("Authorization", "Bearer "+t)
		}
		return ctx
	}
}
