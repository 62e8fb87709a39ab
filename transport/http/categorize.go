package http

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"syscall"

	"github.com/go-kit/outcome/transport"
)

// Categorize maps an error from http.Client.Do or from reading a response
// body to a transport category.
func Categorize(ctx context.Context, err error) transport.Category {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostname         x509.HostnameError
		invalid          x509.CertificateInvalidError
		verification     *tls.CertificateVerificationError
	)
	switch {
	case errors.As(err, &unknownAuthority),
		errors.As(err, &hostname),
		errors.As(err, &invalid),
		errors.As(err, &verification):
		return transport.BadCertificate
	case errors.Is(err, context.Canceled):
		return transport.Cancel
	}

	var opErr *net.OpError
	isOp := errors.As(err, &opErr)
	if isTimeout(err) {
		switch {
		case isOp && opErr.Op == "dial":
			return transport.ConnectionTimeout
		case isOp && opErr.Op == "write":
			return transport.SendTimeout
		default:
			return transport.ReceiveTimeout
		}
	}
	if ctx != nil && errors.Is(ctx.Err(), context.Canceled) {
		return transport.Cancel
	}

	var dnsErr *net.DNSError
	switch {
	case isOp && opErr.Op == "dial",
		errors.As(err, &dnsErr),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET):
		return transport.ConnectionError
	}
	return transport.Unknown
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
