package phoenix

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/pqsgate/pqsgate/mods/logging"
)

// State of the process-wide logical connection.
type State int

const (
	Closed State = iota
	Opening
	Open
	Failed
)

func (s State) String() string {
	switch s {
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Failed:
		return "failed"
	default:
		return "closed"
	}
}

type Config struct {
	Driver   DriverConfig
	Protocol ProtocolConfig
}

// Conn is the single logical connection to the query server, shared by the
// warm-up initializer and every request handler. State transitions are
// serialized; Execute calls are not serialized against each other once open.
type Conn struct {
	log      logging.Log
	mu       sync.Mutex
	state    State
	active   Transport
	driver   Transport
	protocol Transport
	// one-way: cleared the first time the driver transport fails
	driverEligible bool
}

type Option func(*Conn)

func WithDriverTransport(t Transport) Option {
	return func(c *Conn) { c.driver = t }
}

func WithProtocolTransport(t Transport) Option {
	return func(c *Conn) { c.protocol = t }
}

func New(conf *Config, opts ...Option) *Conn {
	c := &Conn{
		log:            logging.GetLog("phoenix"),
		state:          Closed,
		driverEligible: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.driver == nil {
		c.driver = NewDriverTransport(conf.Driver)
	}
	if c.protocol == nil {
		c.protocol = NewProtocolTransport(conf.Protocol)
	}
	return c
}

func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Conn) ActiveTransport() TransportKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return TransportNone
	}
	return c.active.Kind()
}

// Open establishes the logical connection. Idempotent: returns immediately
// without side effects when already open. The driver transport is attempted
// exactly once per process; any driver failure downgrades to the protocol
// transport for good, which then retries with its own attempt budget.
// Callers on a request path must tolerate the full retry latency.
func (c *Conn) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Open {
		return nil
	}
	c.state = Opening
	if c.driverEligible {
		if err := c.driver.Open(ctx); err == nil {
			c.active = c.driver
			c.state = Open
			c.log.Info("connected via driver transport")
			return nil
		} else {
			c.driverEligible = false
			c.log.Warnf("driver transport unusable, falling back to protocol, %s", err.Error())
		}
	}
	if err := c.protocol.Open(ctx); err != nil {
		c.state = Failed
		return err
	}
	c.active = c.protocol
	c.state = Open
	c.log.Info("connected via protocol transport")
	return nil
}

// Execute routes the statement to the active transport. It requires an open
// connection and does not reopen or fail over on its own: when the
// connection died underneath, the error surfaces and a subsequent Open from
// the caller re-establishes.
func (c *Conn) Execute(ctx context.Context, stmt *Statement) (*TabularResult, error) {
	c.mu.Lock()
	state, active := c.state, c.active
	c.mu.Unlock()
	if state != Open || active == nil {
		return nil, ErrNotOpen
	}
	trimmed := &Statement{SQL: TrimStatement(stmt.SQL), Kind: stmt.Kind}
	if trimmed.SQL == "" {
		return nil, errors.New("empty statement")
	}
	return active.Execute(ctx, trimmed)
}

func (c *Conn) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.active != nil {
		err = c.active.Close(ctx)
	}
	c.active = nil
	c.state = Closed
	return err
}

// TrimStatement strips surrounding whitespace and trailing statement
// terminators, which the remote protocol rejects.
func TrimStatement(sql string) string {
	s := strings.TrimSpace(sql)
	for strings.HasSuffix(s, ";") {
		s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	}
	return s
}
