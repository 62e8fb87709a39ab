package zipkin

import (
	"context"
	"errors"
	"strconv"

	zipkin "github.com/openzipkin/zipkin-go"
	"github.com/openzipkin/zipkin-go/model"

	"github.com/go-kit/outcome/transport"
)

// TraceClient returns a transport.Middleware that wraps every request in a
// Zipkin client span, child of the span found in ctx if any.
func TraceClient(tracer *zipkin.Tracer) transport.Middleware {
	return func(next transport.Doer) transport.Doer {
		return transport.DoerFunc(func(ctx context.Context, req transport.Request) (transport.Response, error) {
			opts := []zipkin.SpanOption{zipkin.Kind(model.Client)}
			if parent := zipkin.SpanFromContext(ctx); parent != nil {
				opts = append(opts, zipkin.Parent(parent.Context()))
			}
			span := tracer.StartSpan(req.Method+" "+req.Path, opts...)
			defer span.Finish()

			zipkin.TagHTTPMethod.Set(span, req.Method)
			zipkin.TagHTTPPath.Set(span, req.Path)

			resp, err := next.Do(zipkin.NewContext(ctx, span), req)
			if err != nil {
				var te *transport.Error
				if errors.As(err, &te) && te.StatusCode != 0 {
					zipkin.TagHTTPStatusCode.Set(span, strconv.Itoa(te.StatusCode))
				}
				zipkin.TagError.Set(span, err.Error())
				return resp, err
			}
			zipkin.TagHTTPStatusCode.Set(span, strconv.Itoa(resp.StatusCode))
			return resp, nil
		})
	}
}
