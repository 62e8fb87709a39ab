package opencensus

import (
	"context"
	"errors"

	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/trace"

	"github.com/go-kit/outcome/transport"
)

// TraceClientDefaultName is the default span name to use.
const TraceClientDefaultName = "outcome/client"

// TraceClient returns a transport.Middleware that wraps every request in an
// OpenCensus client span. An empty name means TraceClientDefaultName.
func TraceClient(name string, attributes ...trace.Attribute) transport.Middleware {
	if name == "" {
		name = TraceClientDefaultName
	}
	return func(next transport.Doer) transport.Doer {
		return transport.DoerFunc(func(ctx context.Context, req transport.Request) (transport.Response, error) {
			ctx, span := trace.StartSpan(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
			defer span.End()

			span.AddAttributes(
				trace.StringAttribute(ochttp.MethodAttribute, req.Method),
				trace.StringAttribute(ochttp.PathAttribute, req.Path),
			)
			if len(attributes) > 0 {
				span.AddAttributes(attributes...)
			}

			resp, err := next.Do(ctx, req)
			if err == nil {
				span.AddAttributes(trace.Int64Attribute(ochttp.StatusCodeAttribute, int64(resp.StatusCode)))
				span.SetStatus(ochttp.TraceStatus(resp.StatusCode, ""))
				return resp, nil
			}

			var te *transport.Error
			if errors.As(err, &te) {
				span.AddAttributes(trace.StringAttribute("transport.category", te.Category.String()))
				if te.StatusCode != 0 {
					span.AddAttributes(trace.Int64Attribute(ochttp.StatusCodeAttribute, int64(te.StatusCode)))
					span.SetStatus(ochttp.TraceStatus(te.StatusCode, err.Error()))
					return resp, err
				}
			}
			span.SetStatus(trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()})
			return resp, err
		})
	}
}
