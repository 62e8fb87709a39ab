package defect

// Kind discriminates the closed set of defect variants.
type Kind int

// The defect variants. The set is closed: code that switches on Kind can
// rely on Kinds() listing every value.
const (
	// Unknown is an unclassified transport failure, including errors raised
	// by the transport that carry no transport category at all.
	Unknown Kind = iota

	// Connection is a failure to establish a connection.
	Connection

	// Timeout is a connect, send or receive timeout. Cancellation is folded
	// into Timeout unless the caller opts into Cancel.
	Timeout

	// Cancel is an explicit cancellation. Only produced when the caller
	// opts in; see classify.DistinctCancel.
	Cancel

	// BadCertificate is a TLS certificate validation failure.
	BadCertificate

	// BadResponse is a non-success status from the server. The defect also
	// carries the status code and the decoded (or undecodable) error body.
	BadResponse

	// Parse is a body that could not be narrowed or decoded into the
	// expected value or error shape.
	Parse

	// InvalidPayload is an outgoing payload outside the accepted shapes,
	// detected before the transport is called.
	InvalidPayload

	// UnknownDefect is the fallback for transport errors whose category
	// matches none of the above.
	UnknownDefect
)

var kindNames = [...]string{
	Unknown:        "unknown",
	Connection:     "connection",
	Timeout:        "timeout",
	Cancel:         "cancel",
	BadCertificate: "bad_certificate",
	BadResponse:    "bad_response",
	Parse:          "parse",
	InvalidPayload: "invalid_payload",
	UnknownDefect:  "unknown_defect",
}

// Kinds returns every defect variant in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// String implements fmt.Stringer. The names are stable and suitable as
// metric label values.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// kindError lets errors.Is match a defect against a variant sentinel.
type kindError Kind

func (k kindError) Error() string { return "defect: " + Kind(k).String() }

// Sentinels for errors.Is, one per variant.
//
//	if errors.Is(err, defect.ErrTimeout) { ... }
var (
	ErrUnknown        error = kindError(Unknown)
	ErrConnection     error = kindError(Connection)
	ErrTimeout        error = kindError(Timeout)
	ErrCancel         error = kindError(Cancel)
	ErrBadCertificate error = kindError(BadCertificate)
	ErrBadResponse    error = kindError(BadResponse)
	ErrParse          error = kindError(Parse)
	ErrInvalidPayload error = kindError(InvalidPayload)
	ErrUnknownDefect  error = kindError(UnknownDefect)
)
