package circuitbreaker

import (
	"context"
	"errors"

	"github.com/afex/hystrix-go/hystrix"

	"github.com/go-kit/outcome/transport"
)

// Hystrix returns a transport.Middleware that implements the circuit
// breaker pattern using the afex/hystrix-go package. A hystrix command
// timeout is reported as a receive timeout.
//
// When using this circuit breaker, please configure your commands separately.
//
// See https://godoc.org/github.com/afex/hystrix-go/hystrix for more
// information.
func Hystrix(commandName string) transport.Middleware {
	return func(next transport.Doer) transport.Doer {
		return transport.DoerFunc(func(ctx context.Context, req transport.Request) (transport.Response, error) {
			var (
				resp      transport.Response
				uncounted error
			)
			err := hystrix.Do(commandName, func() error {
				var err error
				resp, err = next.Do(ctx, req)
				if err != nil && !Counts(err) {
					uncounted = err
					return nil
				}
				return err
			}, nil)
			switch {
			case err == nil && uncounted != nil:
				return resp, uncounted
			case errors.Is(err, hystrix.ErrTimeout):
				return transport.Response{}, rejected(transport.ReceiveTimeout, err)
			case errors.Is(err, hystrix.ErrCircuitOpen), errors.Is(err, hystrix.ErrMaxConcurrency):
				return transport.Response{}, rejected(transport.Unknown, err)
			case err != nil:
				return transport.Response{}, err
			}
			return resp, nil
		})
	}
}
