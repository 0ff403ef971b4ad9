package phoenix

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a transport could not serve a call.
type FailureKind int

const (
	FailureNone FailureKind = iota
	// Unavailable means the driver/library is missing in this environment.
	// Permanent, triggers the one-time fallback to the protocol transport.
	Unavailable
	// ConnectFailed means a network or handshake failure.
	ConnectFailed
	// ProtocolError means a malformed response body, a wire compatibility break.
	ProtocolError
	// RemoteError means the server returned a structured SQL/engine error.
	RemoteError
)

func (k FailureKind) String() string {
	switch k {
	case Unavailable:
		return "unavailable"
	case ConnectFailed:
		return "connect-failed"
	case ProtocolError:
		return "protocol-error"
	case RemoteError:
		return "remote-error"
	default:
		return "none"
	}
}

type TransportError struct {
	Kind      FailureKind
	Transport TransportKind
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport %s: %s", e.Transport, e.Kind, e.Err.Error())
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func failuref(kind FailureKind, transport TransportKind, format string, args ...any) *TransportError {
	return &TransportError{Kind: kind, Transport: transport, Err: fmt.Errorf(format, args...)}
}

// FailureOf extracts the failure classification from err,
// FailureNone when err is not transport originated.
func FailureOf(err error) FailureKind {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind
	}
	return FailureNone
}

// ErrNotOpen is returned by Execute when Open has not succeeded yet.
// Reopening is the caller's responsibility.
var ErrNotOpen = errors.New("connection is not open")
