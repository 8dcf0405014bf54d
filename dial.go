package jackpot

import (
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
)

// NetConn adapts a raw net.Conn to the pool's Conn interface. The wrapped
// connection is considered open immediately; read/write errors must be
// reported through Fail so the pool can evict it.
type NetConn struct {
	raw net.Conn

	mu       sync.Mutex
	state    State
	failure  error
	usable   []func()
	failures []func(error)
	closed   []func()

	inflight int32
}

var _ Conn = (*NetConn)(nil)

// WrapConn wraps an established net.Conn for pooling.
func WrapConn(raw net.Conn) *NetConn {
	return &NetConn{raw: raw, state: StateOpen}
}

func (n *NetConn) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// PendingWrites reports how many writes are currently blocked inside the
// kernel send path.
func (n *NetConn) PendingWrites() int {
	return int(atomic.LoadInt32(&n.inflight))
}

func (n *NetConn) OnUsable(fn func()) {
	n.mu.Lock()
	if n.state.writable() {
		n.mu.Unlock()
		fn()
		return
	}
	n.usable = append(n.usable, fn)
	n.mu.Unlock()
}

func (n *NetConn) OnFailure(fn func(err error)) {
	n.mu.Lock()
	if n.failure != nil {
		err := n.failure
		n.mu.Unlock()
		fn(err)
		return
	}
	n.failures = append(n.failures, fn)
	n.mu.Unlock()
}

func (n *NetConn) OnClosed(fn func()) {
	n.mu.Lock()
	if n.state == StateClosed {
		n.mu.Unlock()
		fn()
		return
	}
	n.closed = append(n.closed, fn)
	n.mu.Unlock()
}

// Read passes through to the wrapped connection. A clean EOF leaves the
// connection write-only; anything else breaks it.
func (n *NetConn) Read(b []byte) (int, error) {
	read, err := n.raw.Read(b)
	if err == nil || n.State() != StateOpen {
		return read, err
	}
	if err == io.EOF {
		n.mu.Lock()
		if n.state == StateOpen {
			n.state = StateWriteOnly
		}
		n.mu.Unlock()
	} else {
		n.Fail(errors.Wrap(err, "read"))
	}
	return read, err
}

// Write passes through to the wrapped connection. A failed write breaks
// the connection.
func (n *NetConn) Write(b []byte) (int, error) {
	atomic.AddInt32(&n.inflight, 1)
	wrote, err := n.raw.Write(b)
	atomic.AddInt32(&n.inflight, -1)
	if err != nil {
		n.Fail(errors.Wrap(err, "write"))
	}
	return wrote, err
}

// Fail marks the connection broken, notifies failure observers and closes
// the socket. Subsequent calls are no-ops.
func (n *NetConn) Fail(err error) {
	n.mu.Lock()
	if n.failure != nil || n.state == StateClosed {
		n.mu.Unlock()
		return
	}
	n.failure = err
	handlers := n.failures
	n.failures = nil
	n.mu.Unlock()

	for _, fn := range handlers {
		fn(err)
	}
	_ = n.close()
}

type closeWriter interface {
	CloseWrite() error
}

// Shutdown closes gracefully: the write side is shut first when the
// transport supports it, so in-flight data drains before the close.
func (n *NetConn) Shutdown() error {
	n.mu.Lock()
	if n.state == StateClosed || n.state == StateClosing {
		n.mu.Unlock()
		return nil
	}
	n.state = StateClosing
	n.mu.Unlock()

	if cw, ok := n.raw.(closeWriter); ok {
		_ = cw.CloseWrite()
	}
	return n.close()
}

// Terminate closes immediately, kicking any blocked reads or writes.
func (n *NetConn) Terminate() error {
	if n.State() == StateClosed {
		return nil
	}
	_ = n.raw.SetDeadline(time.Now())
	return n.close()
}

func (n *NetConn) close() error {
	n.mu.Lock()
	if n.state == StateClosed {
		n.mu.Unlock()
		return nil
	}
	n.state = StateClosed
	handlers := n.closed
	n.closed, n.usable = nil, nil
	n.mu.Unlock()

	err := n.raw.Close()
	for _, fn := range handlers {
		fn()
	}
	return errors.Wrap(err, "close")
}

// NetFactory returns an AsyncFactory that dials network/address for every
// new pool connection. A nil dialer gets the zero net.Dialer.
func NetFactory(network, address string, dialer *net.Dialer) AsyncFactory {
	if dialer == nil {
		dialer = new(net.Dialer)
	}
	return func(done func(Conn, error)) {
		go func() {
			raw, err := dialer.Dial(network, address)
			if err != nil {
				done(nil, errors.Wrapf(err, "dial %s", address))
				return
			}
			done(WrapConn(raw), nil)
		}()
	}
}
