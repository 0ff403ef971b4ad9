package phoenix_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pqsgate/pqsgate/mods/phoenix"
	"github.com/stretchr/testify/require"
)

func TestWarmupOpensAfterGrace(t *testing.T) {
	driver := &fakeTransport{kind: phoenix.TransportDriver}
	conn := newConn(driver, &fakeTransport{kind: phoenix.TransportProtocol})

	warmup := phoenix.NewWarmup(conn, 20*time.Millisecond)
	require.NoError(t, warmup.Start())
	defer warmup.Stop()

	require.Equal(t, phoenix.Closed, conn.State())
	require.Eventually(t, func() bool {
		return conn.State() == phoenix.Open
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, driver.openCalls())
}

func TestWarmupSwallowsFailure(t *testing.T) {
	failure := &phoenix.TransportError{Kind: phoenix.ConnectFailed, Transport: phoenix.TransportProtocol, Err: errors.New("refused")}
	driver := &fakeTransport{kind: phoenix.TransportDriver, openErr: failure}
	protocol := &fakeTransport{kind: phoenix.TransportProtocol, openErr: failure}
	conn := newConn(driver, protocol)

	warmup := phoenix.NewWarmup(conn, 10*time.Millisecond)
	require.NoError(t, warmup.Start())
	defer warmup.Stop()

	require.Eventually(t, func() bool {
		return protocol.openCalls() == 1
	}, time.Second, 5*time.Millisecond)

	// the process is still able to open lazily on the next request
	protocol.setOpenErr(nil)
	require.NoError(t, conn.Open(context.Background()))
	require.Equal(t, phoenix.Open, conn.State())
}

func TestWarmupStopBeforeGrace(t *testing.T) {
	driver := &fakeTransport{kind: phoenix.TransportDriver}
	conn := newConn(driver, &fakeTransport{kind: phoenix.TransportProtocol})

	warmup := phoenix.NewWarmup(conn, time.Hour)
	require.NoError(t, warmup.Start())
	warmup.Stop()

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, phoenix.Closed, conn.State())
	require.Equal(t, 0, driver.openCalls())
}
