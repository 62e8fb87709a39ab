package opentracing

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/go-kit/outcome/transport"
)

// ClientOptions holds the options for tracing a transport.
type ClientOptions struct {
	// IgnoreClientErrors if set to true will not mark a span as failed when
	// the server answered with a 4xx status.
	IgnoreClientErrors bool

	// GetOperationName is an optional function that names the span after
	// the request. If the function is nil, or the returned name is empty,
	// the span is named "<method> <path>".
	GetOperationName func(ctx context.Context, req transport.Request) string

	// Tags holds the default tags which will be set on span creation.
	Tags opentracing.Tags
}

// ClientOption allows for functional options to the client tracing middleware.
type ClientOption func(*ClientOptions)

// WithOptions sets all configuration options at once by use of the ClientOptions struct.
func WithOptions(options ClientOptions) ClientOption {
	return func(o *ClientOptions) {
		*o = options
	}
}

// WithIgnoreClientErrors if set to true will not treat 4xx responses as
// span errors.
func WithIgnoreClientErrors(ignoreClientErrors bool) ClientOption {
	return func(o *ClientOptions) {
		o.IgnoreClientErrors = ignoreClientErrors
	}
}

// WithOperationNameFunc sets the function that names spans.
func WithOperationNameFunc(getOperationName func(ctx context.Context, req transport.Request) string) ClientOption {
	return func(o *ClientOptions) {
		o.GetOperationName = getOperationName
	}
}

// WithTags adds default tags for the spans created by the client tracer.
func WithTags(tags opentracing.Tags) ClientOption {
	return func(o *ClientOptions) {
		if o.Tags == nil {
			o.Tags = make(opentracing.Tags)
		}

		for key, value := range tags {
			o.Tags[key] = value
		}
	}
}
