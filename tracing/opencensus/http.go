package opencensus

import (
	"context"
	"net/http"

	"go.opencensus.io/plugin/ochttp/propagation/b3"
	"go.opencensus.io/trace"
	"go.opencensus.io/trace/propagation"

	httptransport "github.com/go-kit/outcome/transport/http"
)

// ContextToHTTP returns an http RequestFunc that propagates the span found
// in `ctx` in the http headers. A nil format means B3.
func ContextToHTTP(format propagation.HTTPFormat) httptransport.RequestFunc {
	if format == nil {
		format = &b3.HTTPFormat{}
	}
	return func(ctx context.Context, req *http.Request) context.Context {
		if span := trace.FromContext(ctx); span != nil {
			format.SpanContextToRequest(span.SpanContext(), req)
		}
		return ctx
	}
}
