package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrTransport is matched by every error returned from Fetch, regardless of
// kind.
var ErrTransport = errors.New("transport error")

var (
	ErrTLS        = errors.New("tls error")
	ErrConnection = errors.New("connection error")
	ErrTimeout    = errors.New("timeout error")
	ErrHTTPStatus = errors.New("http status error")
)

type Kind int

const (
	KindConnection Kind = iota
	KindTLS
	KindTimeout
	KindHTTPStatus
)

func (k Kind) String() string {
	switch k {
	case KindTLS:
		return "tls"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http-status"
	default:
		return "connection"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTLS:
		return ErrTLS
	case KindTimeout:
		return ErrTimeout
	case KindHTTPStatus:
		return ErrHTTPStatus
	default:
		return ErrConnection
	}
}

// Error is the classified failure of the last attempt of a fetch.
type Error struct {
	Kind       Kind
	URL        string
	StatusCode int
	Strategy   Strategy
	Attempt    int
	Err        error
}

func (e *Error) Error() string {
	if e.Kind == KindHTTPStatus {
		return fmt.Sprintf(
			"fetch %s: %s: status %d (attempt %d, %s)",
			e.URL, e.Kind, e.StatusCode, e.Attempt, e.Strategy,
		)
	}
	return fmt.Sprintf(
		"fetch %s: %s (attempt %d, %s): %v",
		e.URL, e.Kind, e.Attempt, e.Strategy, e.Err,
	)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrTransport || target == e.Kind.sentinel()
}

// Retryable returns false for failures that another attempt cannot fix.
func (e *Error) Retryable() bool {
	if e.Kind != KindHTTPStatus {
		return true
	}
	return e.StatusCode == 429 || e.StatusCode >= 500
}

func classify(err error) Kind {
	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostname x509.HostnameError
	var invalid x509.CertificateInvalidError
	var recordHeader tls.RecordHeaderError
	switch {
	case errors.As(err, &certErr),
		errors.As(err, &unknownAuthority),
		errors.As(err, &hostname),
		errors.As(err, &invalid),
		errors.As(err, &recordHeader):
		return KindTLS
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	msg := err.Error()
	if strings.Contains(msg, "tls:") || strings.Contains(msg, "x509:") {
		return KindTLS
	}
	return KindConnection
}
