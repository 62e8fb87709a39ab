package circuitbreaker

import (
	"context"
	"errors"
	"net/http"

	"github.com/sony/gobreaker"

	"github.com/go-kit/outcome/transport"
)

// Gobreaker returns a transport.Middleware that implements the circuit
// breaker pattern using the sony/gobreaker package. Requests rejected by an
// open or half-open breaker fail with a *transport.Error from
// transport.DomainBreaker.
//
// See http://godoc.org/github.com/sony/gobreaker for more information.
func Gobreaker(cb *gobreaker.CircuitBreaker) transport.Middleware {
	return func(next transport.Doer) transport.Doer {
		return transport.DoerFunc(func(ctx context.Context, req transport.Request) (transport.Response, error) {
			var (
				resp      transport.Response
				uncounted error
			)
			_, err := cb.Execute(func() (interface{}, error) {
				var err error
				resp, err = next.Do(ctx, req)
				if err != nil && !Counts(err) {
					uncounted = err
					return nil, nil
				}
				return nil, err
			})
			if uncounted != nil {
				return resp, uncounted
			}
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return transport.Response{}, rejected(transport.Unknown, err)
			}
			return resp, err
		})
	}
}

// Counts reports whether err should count against a breaker. Bad responses
// count only for 5xx statuses; a cancelled request never counts.
func Counts(err error) bool {
	var te *transport.Error
	if !errors.As(err, &te) {
		return true
	}
	switch te.Category {
	case transport.BadResponse:
		return te.StatusCode >= http.StatusInternalServerError
	case transport.Cancel:
		return false
	}
	return true
}

func rejected(category transport.Category, err error) *transport.Error {
	return &transport.Error{Category: category, Domain: transport.DomainBreaker, Err: err}
}
