package phoenix_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pqsgate/pqsgate/mods/phoenix"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu          sync.Mutex
	kind        phoenix.TransportKind
	openErr     error
	openCount   int
	execCount   int
	lastExecute string
	result      *phoenix.TabularResult
	execErr     error
}

func (f *fakeTransport) Kind() phoenix.TransportKind { return f.kind }

func (f *fakeTransport) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCount++
	return f.openErr
}

func (f *fakeTransport) Execute(ctx context.Context, stmt *phoenix.Statement) (*phoenix.TabularResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execCount++
	f.lastExecute = stmt.SQL
	if f.execErr != nil {
		return nil, f.execErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &phoenix.TabularResult{Columns: []phoenix.Column{}, Rows: []phoenix.Row{}}, nil
}

func (f *fakeTransport) Close(ctx context.Context) error { return nil }

func (f *fakeTransport) openCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.openCount
}

func (f *fakeTransport) execCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.execCount
}

func (f *fakeTransport) lastSQL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastExecute
}

func (f *fakeTransport) setOpenErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openErr = err
}

func (f *fakeTransport) setExecErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execErr = err
}

func newConn(driver, protocol phoenix.Transport) *phoenix.Conn {
	return phoenix.New(nil,
		phoenix.WithDriverTransport(driver),
		phoenix.WithProtocolTransport(protocol))
}

func TestOpenPrefersDriver(t *testing.T) {
	driver := &fakeTransport{kind: phoenix.TransportDriver}
	protocol := &fakeTransport{kind: phoenix.TransportProtocol}
	conn := newConn(driver, protocol)

	require.NoError(t, conn.Open(context.Background()))
	require.Equal(t, phoenix.Open, conn.State())
	require.Equal(t, phoenix.TransportDriver, conn.ActiveTransport())
	require.Equal(t, 1, driver.openCalls())
	require.Equal(t, 0, protocol.openCalls())
}

func TestOpenIdempotent(t *testing.T) {
	driver := &fakeTransport{kind: phoenix.TransportDriver}
	protocol := &fakeTransport{kind: phoenix.TransportProtocol}
	conn := newConn(driver, protocol)

	require.NoError(t, conn.Open(context.Background()))
	require.NoError(t, conn.Open(context.Background()))
	require.NoError(t, conn.Open(context.Background()))
	// no additional open round trips once open
	require.Equal(t, 1, driver.openCalls())
	require.Equal(t, 0, protocol.openCalls())
}

func TestOpenFallsBackToProtocol(t *testing.T) {
	driver := &fakeTransport{
		kind:    phoenix.TransportDriver,
		openErr: &phoenix.TransportError{Kind: phoenix.Unavailable, Transport: phoenix.TransportDriver, Err: errors.New("driver not registered")},
	}
	protocol := &fakeTransport{kind: phoenix.TransportProtocol}
	conn := newConn(driver, protocol)

	require.NoError(t, conn.Open(context.Background()))
	require.Equal(t, phoenix.Open, conn.State())
	require.Equal(t, phoenix.TransportProtocol, conn.ActiveTransport())
}

func TestFallbackMonotonic(t *testing.T) {
	driver := &fakeTransport{
		kind:    phoenix.TransportDriver,
		openErr: &phoenix.TransportError{Kind: phoenix.ConnectFailed, Transport: phoenix.TransportDriver, Err: errors.New("handshake rejected")},
	}
	protocol := &fakeTransport{
		kind:    phoenix.TransportProtocol,
		openErr: &phoenix.TransportError{Kind: phoenix.ConnectFailed, Transport: phoenix.TransportProtocol, Err: errors.New("refused")},
	}
	conn := newConn(driver, protocol)

	require.Error(t, conn.Open(context.Background()))
	require.Equal(t, phoenix.Failed, conn.State())

	protocol.setOpenErr(nil)
	require.NoError(t, conn.Open(context.Background()))
	require.Equal(t, phoenix.Open, conn.State())

	// the driver transport is never probed again in this process
	require.Equal(t, 1, driver.openCalls())
	require.Equal(t, 2, protocol.openCalls())
}

func TestExecuteRequiresOpen(t *testing.T) {
	conn := newConn(&fakeTransport{kind: phoenix.TransportDriver}, &fakeTransport{kind: phoenix.TransportProtocol})
	_, err := conn.Execute(context.Background(), &phoenix.Statement{SQL: "SELECT 1"})
	require.ErrorIs(t, err, phoenix.ErrNotOpen)
}

func TestExecuteTrimsStatement(t *testing.T) {
	driver := &fakeTransport{kind: phoenix.TransportDriver}
	conn := newConn(driver, &fakeTransport{kind: phoenix.TransportProtocol})
	require.NoError(t, conn.Open(context.Background()))

	_, err := conn.Execute(context.Background(), &phoenix.Statement{SQL: "  SELECT * FROM t;   "})
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM t", driver.lastSQL())

	_, err = conn.Execute(context.Background(), &phoenix.Statement{SQL: "SELECT * FROM t"})
	require.NoError(t, err)
	require.Equal(t, "SELECT * FROM t", driver.lastSQL())
}

func TestExecuteDoesNotFailOverMidFlight(t *testing.T) {
	driver := &fakeTransport{kind: phoenix.TransportDriver}
	protocol := &fakeTransport{kind: phoenix.TransportProtocol}
	conn := newConn(driver, protocol)
	require.NoError(t, conn.Open(context.Background()))

	driver.setExecErr(&phoenix.TransportError{Kind: phoenix.ConnectFailed, Transport: phoenix.TransportDriver, Err: errors.New("connection reset")})
	_, err := conn.Execute(context.Background(), &phoenix.Statement{SQL: "SELECT 1"})
	require.Error(t, err)
	require.Equal(t, phoenix.ConnectFailed, phoenix.FailureOf(err))

	// connection stays open and the protocol transport was not consulted
	require.Equal(t, phoenix.Open, conn.State())
	require.Equal(t, phoenix.TransportDriver, conn.ActiveTransport())
	require.Equal(t, 0, protocol.execCalls())
}

func TestExecuteEmptyStatement(t *testing.T) {
	conn := newConn(&fakeTransport{kind: phoenix.TransportDriver}, &fakeTransport{kind: phoenix.TransportProtocol})
	require.NoError(t, conn.Open(context.Background()))
	_, err := conn.Execute(context.Background(), &phoenix.Statement{SQL: " ;; "})
	require.Error(t, err)
}

func TestClose(t *testing.T) {
	conn := newConn(&fakeTransport{kind: phoenix.TransportDriver}, &fakeTransport{kind: phoenix.TransportProtocol})
	require.NoError(t, conn.Open(context.Background()))
	require.NoError(t, conn.Close(context.Background()))
	require.Equal(t, phoenix.Closed, conn.State())
	require.Equal(t, phoenix.TransportNone, conn.ActiveTransport())
}

func TestTrimStatement(t *testing.T) {
	require.Equal(t, "SELECT 1", phoenix.TrimStatement("SELECT 1"))
	require.Equal(t, "SELECT 1", phoenix.TrimStatement("  SELECT 1 ; "))
	require.Equal(t, "SELECT 1", phoenix.TrimStatement("SELECT 1;;\n"))
	require.Equal(t, "", phoenix.TrimStatement(" ; "))
}
