package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-kit/outcome/transport"
)

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 10 << 20

// Client is a transport.Doer backed by an http.Client. Paths are resolved
// against a base URL. List and map payloads are sent as JSON and
// *transport.FormData as multipart. JSON responses are decoded into native
// values; any other non-empty body is returned as a string.
type Client struct {
	client       *http.Client
	base         *url.URL
	before       []RequestFunc
	errorHandler transport.ErrorHandler
	maxBodySize  int64
}

// NewClient constructs a usable Client for the service at base.
func NewClient(base *url.URL, options ...ClientOption) *Client {
	c := &Client{
		client:       http.DefaultClient,
		base:         base,
		before:       []RequestFunc{},
		errorHandler: transport.ErrorHandlerFunc(func(context.Context, error) {}),
		maxBodySize:  DefaultMaxBodySize,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// ClientOption sets an optional parameter for clients.
type ClientOption func(*Client)

// SetClient sets the underlying HTTP client used for requests.
// By default, http.DefaultClient is used.
func SetClient(client *http.Client) ClientOption {
	return func(c *Client) { c.client = client }
}

// SetClientBefore adds RequestFuncs that are applied to the outgoing HTTP
// request before it's invoked.
func SetClientBefore(before ...RequestFunc) ClientOption {
	return func(c *Client) { c.before = append(c.before, before...) }
}

// SetClientErrorHandler is used to handle transport errors. Every error
// returned from Do passes through it first. By default, errors are ignored.
func SetClientErrorHandler(errorHandler transport.ErrorHandler) ClientOption {
	return func(c *Client) { c.errorHandler = errorHandler }
}

// SetMaxBodySize caps how many bytes of a response body are read. A
// longer body fails the call with a *BodyTooLargeError. Values below 1
// select DefaultMaxBodySize.
func SetMaxBodySize(n int64) ClientOption {
	return func(c *Client) {
		if n < 1 {
			n = DefaultMaxBodySize
		}
		c.maxBodySize = n
	}
}

// BodyTooLargeError is returned, wrapped in a *transport.Error, when a
// response body is longer than the configured maximum.
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("response body exceeds %d bytes", e.Limit)
}

// Do implements transport.Doer.
func (c *Client) Do(ctx context.Context, req transport.Request) (transport.Response, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		c.errorHandler.Handle(ctx, err)
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, req transport.Request) (transport.Response, error) {
	tgt, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return transport.Response{}, &transport.Error{Category: transport.Unknown, Domain: transport.DomainNewRequest, Err: err}
	}

	body, contentType, err := EncodePayload(req.Payload)
	if err != nil {
		return transport.Response{}, &transport.Error{Category: transport.Unknown, Domain: transport.DomainEncode, Err: err}
	}

	r, err := http.NewRequestWithContext(ctx, req.Method, tgt.String(), body)
	if err != nil {
		return transport.Response{}, &transport.Error{Category: transport.Unknown, Domain: transport.DomainNewRequest, Err: err}
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	if r.Header.Get("Accept") == "" {
		r.Header.Set("Accept", "application/json")
	}

	for _, f := range c.before {
		ctx = f(ctx, r)
	}

	resp, err := c.client.Do(r.WithContext(ctx))
	if err != nil {
		return transport.Response{}, &transport.Error{Category: Categorize(ctx, err), Domain: transport.DomainDo, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return transport.Response{}, &transport.Error{
			Category:   Categorize(ctx, err),
			Domain:     transport.DomainDecode,
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Err:        errors.Wrap(err, "read response body"),
		}
	}
	if int64(len(raw)) > c.maxBodySize {
		return transport.Response{}, &transport.Error{
			Category:   transport.Unknown,
			Domain:     transport.DomainDecode,
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       string(raw[:c.maxBodySize]),
			Err:        &BodyTooLargeError{Limit: c.maxBodySize},
		}
	}
	decoded := DecodeBody(resp.Header.Get("Content-Type"), raw)

	if !transport.IsSuccess(resp.StatusCode) {
		return transport.Response{}, transport.NewStatusError(resp.StatusCode, resp.Header, decoded)
	}
	return transport.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: decoded}, nil
}

func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parse path %q", path)
	}
	tgt := ref
	if c.base != nil {
		base := *c.base
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		ref.Path = strings.TrimPrefix(ref.Path, "/")
		tgt = base.ResolveReference(ref)
	}
	if len(query) > 0 {
		q := tgt.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		tgt.RawQuery = q.Encode()
	}
	return tgt, nil
}

// EncodePayload renders a request payload. A nil payload has no body,
// *transport.FormData is encoded as multipart, and anything else as JSON.
func EncodePayload(payload interface{}) (io.Reader, string, error) {
	switch p := payload.(type) {
	case nil:
		return nil, "", nil
	case *transport.FormData:
		return p.Encode()
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, "", errors.Wrap(err, "encode JSON payload")
	}
	return bytes.NewReader(b), "application/json; charset=utf-8", nil
}

// DecodeBody turns raw response bytes into the value handed to the
// classifier: nil for an empty body, a decoded value for valid JSON with a
// JSON content type, and the text otherwise.
func DecodeBody(contentType string, raw []byte) interface{} {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if isJSON(contentType) {
		var v interface{}
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	return string(raw)
}

func isJSON(contentType string) bool {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
