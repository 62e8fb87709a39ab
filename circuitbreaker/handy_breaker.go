package circuitbreaker

import (
	"context"
	"time"

	"github.com/streadway/handy/breaker"

	"github.com/go-kit/outcome/transport"
)

// HandyBreaker returns a transport.Middleware that implements the circuit
// breaker pattern using the streadway/handy/breaker package. Failures are
// counted the same way as Gobreaker counts them.
//
// See http://godoc.org/github.com/streadway/handy/breaker for more
// information.
func HandyBreaker(cb breaker.Breaker) transport.Middleware {
	return func(next transport.Doer) transport.Doer {
		return transport.DoerFunc(func(ctx context.Context, req transport.Request) (resp transport.Response, err error) {
			if !cb.Allow() {
				return transport.Response{}, rejected(transport.Unknown, breaker.ErrCircuitOpen)
			}

			defer func(begin time.Time) {
				if err == nil || !Counts(err) {
					cb.Success(time.Since(begin))
				} else {
					cb.Failure(time.Since(begin))
				}
			}(time.Now())

			return next.Do(ctx, req)
		})
	}
}
