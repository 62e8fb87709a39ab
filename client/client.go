package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/go-kit/outcome/classify"
	"github.com/go-kit/outcome/codec"
	"github.com/go-kit/outcome/defect"
	"github.com/go-kit/outcome/diag"
	"github.com/go-kit/outcome/metrics"
	"github.com/go-kit/outcome/metrics/discard"
	"github.com/go-kit/outcome/result"
	"github.com/go-kit/outcome/transport"
)

// Client wraps a transport and classifies its results. It is safe for
// concurrent use.
type Client struct {
	doer           transport.Doer
	logger         log.Logger
	metrics        metrics.Set
	onUnauthorized func()
	distinctCancel bool
	seq            atomic.Uint64
}

// New constructs a Client that sends requests with doer.
func New(doer transport.Doer, options ...Option) *Client {
	c := &Client{
		doer:    doer,
		logger:  log.NewNopLogger(),
		metrics: discard.NewSet(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Option sets an optional parameter for clients.
type Option func(*Client)

// WithUnauthorized registers f to be called once for every response with
// status 401, before its error body is decoded.
func WithUnauthorized(f func()) Option {
	return func(c *Client) { c.onUnauthorized = f }
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics sets the instrumentation recorded for every call. Metrics
// left nil in s record nothing. By default nothing is recorded.
func WithMetrics(s metrics.Set) Option {
	return func(c *Client) { c.metrics = discard.Fill(s) }
}

// WithDistinctCancel reports cancelled requests as defect.Cancel instead of
// defect.Timeout.
func WithDistinctCancel() Option {
	return func(c *Client) { c.distinctCancel = true }
}

// WithMiddleware wraps the transport in the given middlewares. The first
// middleware is the outermost.
func WithMiddleware(outer transport.Middleware, others ...transport.Middleware) Option {
	return func(c *Client) { c.doer = transport.Chain(outer, others...)(c.doer) }
}

// RequestOption modifies a single request.
type RequestOption func(*transport.Request)

// Header adds a request header.
func Header(key, value string) RequestOption {
	return func(r *transport.Request) {
		if r.Header == nil {
			r.Header = http.Header{}
		}
		r.Header.Add(key, value)
	}
}

// Query adds a query parameter.
func Query(key, value string) RequestOption {
	return func(r *transport.Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}
		r.Query.Add(key, value)
	}
}

// Get sends a GET request to path.
func Get[VR, V, ER, E any](ctx context.Context, c *Client, path string, value codec.Decoder[VR, V], errs codec.Decoder[ER, E], options ...RequestOption) result.Result[*defect.Defect[E], V] {
	return send(ctx, c, newRequest(http.MethodGet, path, nil, options), value, errs)
}

// Delete sends a DELETE request to path.
func Delete[VR, V, ER, E any](ctx context.Context, c *Client, path string, value codec.Decoder[VR, V], errs codec.Decoder[ER, E], options ...RequestOption) result.Result[*defect.Defect[E], V] {
	return send(ctx, c, newRequest(http.MethodDelete, path, nil, options), value, errs)
}

// Post sends payload to path. The payload must pass ValidatePayload, or the
// call fails with defect.InvalidPayload and nothing is sent.
func Post[VR, V, ER, E any](ctx context.Context, c *Client, path string, payload interface{}, value codec.Decoder[VR, V], errs codec.Decoder[ER, E], options ...RequestOption) result.Result[*defect.Defect[E], V] {
	return sendPayload(ctx, c, newRequest(http.MethodPost, path, payload, options), value, errs)
}

// Put sends payload to path. The payload must pass ValidatePayload, or the
// call fails with defect.InvalidPayload and nothing is sent.
func Put[VR, V, ER, E any](ctx context.Context, c *Client, path string, payload interface{}, value codec.Decoder[VR, V], errs codec.Decoder[ER, E], options ...RequestOption) result.Result[*defect.Defect[E], V] {
	return sendPayload(ctx, c, newRequest(http.MethodPut, path, payload, options), value, errs)
}

func newRequest(method, path string, payload interface{}, options []RequestOption) transport.Request {
	req := transport.Request{Method: method, Path: path, Payload: payload}
	for _, option := range options {
		option(&req)
	}
	return req
}

func sendPayload[VR, V, ER, E any](ctx context.Context, c *Client, req transport.Request, value codec.Decoder[VR, V], errs codec.Decoder[ER, E]) result.Result[*defect.Defect[E], V] {
	if err := ValidatePayload(req.Payload); err != nil {
		seq, begin := c.seq.Add(1), time.Now()
		d := defect.NewInvalidPayload[E](diag.New(err))
		c.observe(req, seq, begin, 0, d.Kind, d)
		return result.Left[*defect.Defect[E], V](d)
	}
	return send(ctx, c, req, value, errs)
}

func send[VR, V, ER, E any](ctx context.Context, c *Client, req transport.Request, value codec.Decoder[VR, V], errs codec.Decoder[ER, E]) result.Result[*defect.Defect[E], V] {
	seq, begin := c.seq.Add(1), time.Now()

	resp, err := c.do(ctx, req)
	if err != nil {
		var d *defect.Defect[E]
		var p panicked
		if errors.As(err, &p) {
			d = defect.NewUnknown[E](p.capture, nil)
		} else {
			d = classify.Exception(err, errs, c.classifyOptions(req, seq)...)
		}
		c.observe(req, seq, begin, d.StatusCode, d.Kind, d)
		return result.Left[*defect.Defect[E], V](d)
	}

	r := classify.Response[E](resp.Body, value)
	if d, ok := r.Left(); ok {
		c.observe(req, seq, begin, resp.StatusCode, d.Kind, d)
	} else {
		c.observe(req, seq, begin, resp.StatusCode, defect.Unknown, nil)
	}
	return r
}

// do calls the transport. A panic in the transport comes back as a
// panicked error carrying the recovered value.
func (c *Client) do(ctx context.Context, req transport.Request) (resp transport.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = transport.Response{}, panicked{capture: diag.New(r)}
		}
	}()
	return c.doer.Do(ctx, req)
}

type panicked struct {
	capture diag.Capture
}

func (p panicked) Error() string { return "transport panicked: " + p.capture.Error() }

func (c *Client) classifyOptions(req transport.Request, seq uint64) []classify.Option {
	opts := []classify.Option{
		classify.OnUnauthorized(func() {
			level.Info(c.logger).Log("method", req.Method, "path", req.Path, "seq", seq, "hook", "unauthorized")
			if c.onUnauthorized != nil {
				c.onUnauthorized()
			}
		}),
	}
	if c.distinctCancel {
		opts = append(opts, classify.DistinctCancel())
	}
	return opts
}

// observe logs and records one finished call. err is nil on success, in
// which case kind is ignored.
func (c *Client) observe(req transport.Request, seq uint64, begin time.Time, status int, kind defect.Kind, err error) {
	took := time.Since(begin)
	outcome := "ok"
	if err != nil {
		outcome = kind.String()
	}
	c.metrics.Observe(req.Method, outcome, took.Seconds())

	logger := log.With(c.logger, "method", req.Method, "path", req.Path, "seq", seq, "took", took, "outcome", outcome, "status", status)
	if err != nil {
		level.Warn(logger).Log("err", err)
		return
	}
	level.Debug(logger).Log()
}
