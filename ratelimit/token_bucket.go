// Package ratelimit provides transport middlewares that limit the rate of
// outgoing requests. Rejections are reported as *transport.Error from
// transport.DomainLimit, so they classify like any other transport failure.
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/juju/ratelimit"

	"github.com/go-kit/outcome/transport"
)

// ErrLimited is returned in the request path when the rate limiter is
// triggered and the request is rejected.
var ErrLimited = errors.New("rate limit exceeded")

// NewTokenBucketLimiter returns a transport.Middleware that acts as a rate
// limiter based on a token-bucket algorithm. Requests that would exceed the
// maximum request rate are simply rejected with an error.
func NewTokenBucketLimiter(tb *ratelimit.Bucket) transport.Middleware {
	return NewErroringLimiter(NewAllower(tb))
}

// NewTokenBucketThrottler returns a transport.Middleware that acts as a
// request throttler based on a token-bucket algorithm. Requests that would
// exceed the maximum request rate are delayed.
func NewTokenBucketThrottler(tb *ratelimit.Bucket) transport.Middleware {
	return NewDelayingLimiter(NewWaiter(tb))
}

// Allower dictates whether or not a request is acceptable to run.
// The Limiter from "golang.org/x/time/rate" already implements this interface,
// one is able to use that in NewErroringLimiter without any modifications.
type Allower interface {
	Allow() bool
}

// NewErroringLimiter returns a transport.Middleware that acts as a rate
// limiter. Requests that would exceed the maximum request rate are simply
// rejected with an error wrapping ErrLimited.
func NewErroringLimiter(limit Allower) transport.Middleware {
	return func(next transport.Doer) transport.Doer {
		return transport.DoerFunc(func(ctx context.Context, req transport.Request) (transport.Response, error) {
			if !limit.Allow() {
				return transport.Response{}, &transport.Error{
					Category: transport.Unknown,
					Domain:   transport.DomainLimit,
					Err:      ErrLimited,
				}
			}
			return next.Do(ctx, req)
		})
	}
}

// Waiter dictates how long a request must be delayed.
// The Limiter from "golang.org/x/time/rate" already implements this interface,
// one is able to use that in NewDelayingLimiter without any modifications.
type Waiter interface {
	Wait(ctx context.Context) error
}

// NewDelayingLimiter returns a transport.Middleware that acts as a
// request throttler. Requests that would exceed the maximum request rate
// are delayed via the Waiter. A wait cancelled by the context is a cancel
// and one that runs into the context deadline is a connection timeout.
// Other wait errors are unknown.
func NewDelayingLimiter(limit Waiter) transport.Middleware {
	return func(next transport.Doer) transport.Doer {
		return transport.DoerFunc(func(ctx context.Context, req transport.Request) (transport.Response, error) {
			if err := limit.Wait(ctx); err != nil {
				return transport.Response{}, &transport.Error{
					Category: waitCategory(ctx, err),
					Domain:   transport.DomainLimit,
					Err:      err,
				}
			}
			return next.Do(ctx, req)
		})
	}
}

// waitCategory classifies a failed wait. x/time/rate refuses a wait that
// would outlast the deadline before the deadline passes, so its error is
// recognised by text.
func waitCategory(ctx context.Context, err error) transport.Category {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return transport.Cancel
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return transport.ConnectionTimeout
	case strings.Contains(err.Error(), "exceed context deadline"):
		return transport.ConnectionTimeout
	}
	return transport.Unknown
}

// AllowerFunc is an adapter that lets a function operate as if
// it implements Allower
type AllowerFunc func() bool

// Allow makes the adapter implement Allower
func (f AllowerFunc) Allow() bool {
	return f()
}

// NewAllower turns an existing ratelimit.Bucket into an API-compatible form
func NewAllower(tb *ratelimit.Bucket) Allower {
	return AllowerFunc(func() bool {
		return (tb.TakeAvailable(1) != 0)
	})
}

// WaiterFunc is an adapter that lets a function operate as if
// it implements Waiter
type WaiterFunc func(ctx context.Context) error

// Wait makes the adapter implement Waiter
func (f WaiterFunc) Wait(ctx context.Context) error {
	return f(ctx)
}

// NewWaiter turns an existing ratelimit.Bucket into an API-compatible form
func NewWaiter(tb *ratelimit.Bucket) Waiter {
	return WaiterFunc(func(ctx context.Context) error {
		dur := tb.Take(1)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			// happy path
		}
		return nil
	})
}
