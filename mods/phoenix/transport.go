package phoenix

import "context"

type TransportKind int

const (
	TransportNone TransportKind = iota
	TransportDriver
	TransportProtocol
)

func (k TransportKind) String() string {
	switch k {
	case TransportDriver:
		return "driver"
	case TransportProtocol:
		return "protocol"
	default:
		return "none"
	}
}

type StatementKind int

const (
	// StatementQuery expects rows back.
	StatementQuery StatementKind = iota
	// StatementExec does not.
	StatementExec
)

type Statement struct {
	SQL  string
	Kind StatementKind
}

// Transport is one of the two interchangeable implementations of the
// connect/execute contract against the query server.
type Transport interface {
	Kind() TransportKind
	Open(ctx context.Context) error
	Execute(ctx context.Context, stmt *Statement) (*TabularResult, error)
	Close(ctx context.Context) error
}
