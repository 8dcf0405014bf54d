package jackpot

// State describes where a pooled connection is in its lifecycle.
type State int32

const (
	StateConnecting State = iota
	StateOpen
	StateWriteOnly // read side closed, still writable
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateWriteOnly:
		return "write-only"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// writable reports whether the state still accepts writes.
func (s State) writable() bool {
	return s == StateOpen || s == StateWriteOnly
}

// Conn is the transport handle the pool manages. The pool never reads or
// writes through it; it only observes state, queue depth and lifecycle
// notifications, and closes it on eviction.
//
// Implementations must accept multiple handlers per notification and must
// invoke a handler immediately at registration time when the event has
// already happened (a conn that is already open fires OnUsable right away,
// a closed one fires OnClosed). Handlers must not be invoked while
// implementation-internal locks are held. Shutdown and Terminate must be
// idempotent: the pool may issue both, possibly more than once.
type Conn interface {
	// State returns the current lifecycle state.
	State() State

	// PendingWrites returns the depth of the queued-but-unflushed write
	// buffer. Zero means a write would go out immediately.
	PendingWrites() int

	// OnUsable registers fn to run once the connection can be written to.
	OnUsable(fn func())

	// OnFailure registers fn to run when the connection breaks.
	OnFailure(fn func(err error))

	// OnClosed registers fn to run once the connection is fully closed.
	OnClosed(fn func())

	// Shutdown closes gracefully: flush pending writes, then close.
	Shutdown() error

	// Terminate closes immediately, dropping pending writes.
	Terminate() error
}
