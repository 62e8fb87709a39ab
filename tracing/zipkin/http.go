package zipkin

import (
	"context"
	"net/http"

	"github.com/go-kit/log"
	zipkin "github.com/openzipkin/zipkin-go"
	"github.com/openzipkin/zipkin-go/propagation/b3"

	httptransport "github.com/go-kit/outcome/transport/http"
)

// ContextToHTTP returns an http RequestFunc that injects a Zipkin Span found
// in `ctx` into the http headers. If no such Span can be found, the RequestFunc
// is a noop.
func ContextToHTTP(logger log.Logger) httptransport.RequestFunc {
	return func(ctx context.Context, req *http.Request) context.Context {
		if span := zipkin.SpanFromContext(ctx); span != nil {
			zipkin.TagHTTPUrl.Set(span, req.URL.String())
			if endpoint, err := zipkin.NewEndpoint("", req.URL.Host); err == nil {
				span.SetRemoteEndpoint(endpoint)
			}
			if err := b3.InjectHTTP(req)(span.Context()); err != nil {
				logger.Log("err", err)
			}
		}
		return ctx
	}
}
