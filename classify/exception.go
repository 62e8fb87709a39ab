package classify

import (
	"errors"
	"net/http"

	"github.com/go-kit/outcome/codec"
	"github.com/go-kit/outcome/defect"
	"github.com/go-kit/outcome/diag"
	"github.com/go-kit/outcome/narrow"
	"github.com/go-kit/outcome/result"
	"github.com/go-kit/outcome/transport"
)

// Option configures Exception.
type Option func(*options)

type options struct {
	onUnauthorized func()
	distinctCancel bool
}

// OnUnauthorized registers f to be called once for every bad response with
// status 401, whether or not its error body decodes.
func OnUnauthorized(f func()) Option {
	return func(o *options) { o.onUnauthorized = f }
}

// DistinctCancel routes cancelled requests to defect.Cancel. By default
// they are reported as defect.Timeout.
func DistinctCancel() Option {
	return func(o *options) { o.distinctCancel = true }
}

// Exception classifies an error returned by a transport. Errors that are
// not *transport.Error are reported as defect.Unknown.
func Exception[E, R any](err error, dec codec.Decoder[R, E], opts ...Option) *defect.Defect[E] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err == nil {
		return defect.NewUnknown[E](diag.Errorf("transport failed without an error"), nil)
	}
	var te *transport.Error
	if !errors.As(err, &te) {
		return defect.NewUnknown[E](diag.New(err), nil)
	}

	switch te.Category {
	case transport.ConnectionTimeout, transport.SendTimeout, transport.ReceiveTimeout:
		return defect.NewTimeout[E](diag.New(err), te.Body)
	case transport.Cancel:
		if o.distinctCancel {
			return defect.NewCancel[E](diag.New(err), te.Body)
		}
		return defect.NewTimeout[E](diag.New(err), te.Body)
	case transport.BadCertificate:
		return defect.NewBadCertificate[E](diag.New(err), te.Body)
	case transport.ConnectionError:
		return defect.NewConnection[E](diag.New(err), te.Body)
	case transport.Unknown:
		return defect.NewUnknown[E](diag.New(err), te.Body)
	case transport.BadResponse:
		return badResponse(err, te, dec, o)
	}
	return defect.NewUnknownDefect[E](diag.New(err), te.Body)
}

// badResponse classifies a non-success status. A body that is not JSON at
// all surfaces as a top-level Parse defect; a body that parses but does not
// decode to E stays a BadResponse with a Left error body.
func badResponse[E, R any](err error, te *transport.Error, dec codec.Decoder[R, E], o options) (d *defect.Defect[E]) {
	statusCode := te.StatusCode
	defer func() {
		if r := recover(); r != nil {
			secondary := diag.New(r)
			d = defect.NewBadResponse(diag.New(err), te.Body, statusCode,
				result.Left[defect.ParseFailure, E](defect.ParseFailure{Diagnostic: secondary, RawResponseData: te.Body}))
		}
	}()

	if statusCode == http.StatusUnauthorized && o.onUnauthorized != nil {
		o.onUnauthorized()
	}

	if te.Body == nil {
		return defect.NewBadResponse(diag.New(err), nil, statusCode,
			result.Left[defect.ParseFailure, E](defect.ParseFailure{Diagnostic: diag.Errorf("response data is null")}))
	}

	raw, nerr := narrow.To(te.Body, dec.Target)
	if errors.Is(nerr, narrow.ErrInvalidJSON) {
		return defect.NewParse[E](diag.Errorf("status %d: error body: %w", statusCode, nerr), te.Body)
	}
	if nerr != nil {
		return defect.NewBadResponse(diag.New(err), te.Body, statusCode,
			result.Left[defect.ParseFailure, E](defect.ParseFailure{
				Diagnostic:      diag.Errorf("cannot narrow error body %T to %s: %w", te.Body, typeName[R](), nerr),
				RawResponseData: te.Body,
			}))
	}

	decoded, c, ok := guard(dec.Decode, raw)
	if !ok {
		return defect.NewBadResponse(diag.New(err), te.Body, statusCode,
			result.Left[defect.ParseFailure, E](defect.ParseFailure{Diagnostic: c, RawResponseData: te.Body}))
	}
	return defect.NewBadResponse(diag.New(err), te.Body, statusCode, result.Right[defect.ParseFailure](decoded))
}
