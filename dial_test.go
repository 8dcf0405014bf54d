package jackpot

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoListener accepts connections and keeps them open until closed.
func echoListener(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				buf := make([]byte, 1024)
				for {
					read, err := c.Read(buf)
					if err != nil {
						_ = c.Close()
						return
					}
					_, _ = c.Write(buf[:read])
				}
			}(conn)
		}
	}()
	return ln
}

func TestWrapConn(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	conn := WrapConn(client)
	assert.Equal(t, StateOpen, conn.State())
	assert.Equal(t, 0, conn.PendingWrites())

	usable := false
	conn.OnUsable(func() { usable = true })
	assert.True(t, usable, "an open connection is usable at registration time")
}

func TestNetConnCloseNotifies(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	conn := WrapConn(client)
	closed := 0
	conn.OnClosed(func() { closed++ })

	require.NoError(t, conn.Shutdown())
	assert.Equal(t, StateClosed, conn.State())
	assert.Equal(t, 1, closed)

	// Further closes are no-ops.
	require.NoError(t, conn.Shutdown())
	require.NoError(t, conn.Terminate())
	assert.Equal(t, 1, closed)

	conn.OnClosed(func() { closed++ })
	assert.Equal(t, 2, closed, "late registration fires immediately")
}

func TestNetConnWriteFailureBreaksConnection(t *testing.T) {
	client, server := net.Pipe()
	conn := WrapConn(client)

	var failure error
	conn.OnFailure(func(err error) { failure = err })

	require.NoError(t, server.Close())
	_, err := conn.Write([]byte("ping"))
	require.Error(t, err)
	assert.Error(t, failure)
	assert.Equal(t, StateClosed, conn.State())
}

func TestNetConnReadEOFLeavesWriteOnly(t *testing.T) {
	client, server := net.Pipe()
	conn := WrapConn(client)

	require.NoError(t, server.Close())
	_, err := conn.Read(make([]byte, 16))
	require.Error(t, err)
	assert.Equal(t, StateWriteOnly, conn.State())
}

func TestNetFactoryDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := ln.Addr().String()
	require.NoError(t, ln.Close()) // nothing listens here anymore

	rec := new(recorder)
	pool := newTestPool(t, rec)
	require.NoError(t, pool.SetAsyncFactory(NetFactory("tcp", address, nil)))

	_, err = pool.Allocate(context.Background())
	assert.ErrorIs(t, err, ErrFactoryFailure)
	assert.Equal(t, 0, pool.Len())
}

func TestNetFactoryPoolsRealConnections(t *testing.T) {
	ln := echoListener(t)

	pool := newTestPool(t, nil, WithLimit(2))
	require.NoError(t, pool.SetAsyncFactory(NetFactory("tcp", ln.Addr().String(), nil)))

	conn, err := pool.Allocate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, pool.Len())

	nc, ok := conn.(*NetConn)
	require.True(t, ok)
	_, err = nc.Write([]byte("hello"))
	require.NoError(t, err)

	buf := make([]byte, 5)
	require.NoError(t, nc.raw.SetReadDeadline(time.Now().Add(time.Second)))
	_, err = nc.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf))

	pool.End(false)
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, StateClosed, conn.State())
}

func TestNetConnEvictionOnFailure(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	rec := new(recorder)
	pool := newTestPool(t, rec, WithLimit(1))
	require.NoError(t, pool.SetFactory(func() Conn { return WrapConn(client) }))

	conn, err := pool.Allocate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, pool.Len())

	conn.(*NetConn).Fail(assert.AnError)

	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, uint64(1), pool.Stats().Releases)
	assert.Equal(t, 1, rec.count(EventError))
}
