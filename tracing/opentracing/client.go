package opentracing

import (
	"context"
	"errors"
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	otlog "github.com/opentracing/opentracing-go/log"

	"github.com/go-kit/outcome/transport"
)

// TraceClient returns a transport.Middleware that wraps every request in an
// OpenTracing client span, child of the span found in ctx if any.
func TraceClient(tracer opentracing.Tracer, opts ...ClientOption) transport.Middleware {
	cfg := &ClientOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next transport.Doer) transport.Doer {
		return transport.DoerFunc(func(ctx context.Context, req transport.Request) (transport.Response, error) {
			operationName := req.Method + " " + req.Path
			if cfg.GetOperationName != nil {
				if name := cfg.GetOperationName(ctx, req); name != "" {
					operationName = name
				}
			}

			var spanOpts []opentracing.StartSpanOption
			if parent := opentracing.SpanFromContext(ctx); parent != nil {
				spanOpts = append(spanOpts, opentracing.ChildOf(parent.Context()))
			}
			spanOpts = append(spanOpts, ext.SpanKindRPCClient, opentracing.Tags(cfg.Tags))
			span := tracer.StartSpan(operationName, spanOpts...)
			defer span.Finish()

			ext.HTTPMethod.Set(span, req.Method)
			ctx = opentracing.ContextWithSpan(ctx, span)

			resp, err := next.Do(ctx, req)
			if err == nil {
				ext.HTTPStatusCode.Set(span, uint16(resp.StatusCode))
				return resp, nil
			}

			var te *transport.Error
			if errors.As(err, &te) {
				span.SetTag("transport.category", te.Category.String())
				if te.StatusCode != 0 {
					ext.HTTPStatusCode.Set(span, uint16(te.StatusCode))
				}
				if cfg.IgnoreClientErrors && te.Category == transport.BadResponse && te.StatusCode < http.StatusInternalServerError {
					return resp, err
				}
			}
			ext.Error.Set(span, true)
			span.LogFields(otlog.String("event", "error"), otlog.Error(err))
			return resp, err
		})
	}
}
