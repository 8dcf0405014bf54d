package jackpot

import "sync"

// fakeConn is a scriptable Conn for tests: state and queue depth are set
// directly and lifecycle notifications are fired by hand.
type fakeConn struct {
	mu       sync.Mutex
	state    State
	depth    int
	failure  error
	usable   []func()
	failures []func(error)
	closed   []func()

	shutdowns  int
	terminates int
}

func newFakeConn(state State) *fakeConn {
	return &fakeConn{state: state}
}

func (f *fakeConn) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeConn) PendingWrites() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depth
}

func (f *fakeConn) OnUsable(fn func()) {
	f.mu.Lock()
	if f.state.writable() {
		f.mu.Unlock()
		fn()
		return
	}
	f.usable = append(f.usable, fn)
	f.mu.Unlock()
}

func (f *fakeConn) OnFailure(fn func(err error)) {
	f.mu.Lock()
	if f.failure != nil {
		err := f.failure
		f.mu.Unlock()
		fn(err)
		return
	}
	f.failures = append(f.failures, fn)
	f.mu.Unlock()
}

func (f *fakeConn) OnClosed(fn func()) {
	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		fn()
		return
	}
	f.closed = append(f.closed, fn)
	f.mu.Unlock()
}

func (f *fakeConn) Shutdown() error {
	f.mu.Lock()
	f.shutdowns++
	f.mu.Unlock()
	f.close()
	return nil
}

func (f *fakeConn) Terminate() error {
	f.mu.Lock()
	f.terminates++
	f.mu.Unlock()
	f.close()
	return nil
}

func (f *fakeConn) close() {
	f.mu.Lock()
	if f.state == StateClosed {
		f.mu.Unlock()
		return
	}
	f.state = StateClosed
	handlers := f.closed
	f.closed, f.usable = nil, nil
	f.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

func (f *fakeConn) setDepth(depth int) {
	f.mu.Lock()
	f.depth = depth
	f.mu.Unlock()
}

func (f *fakeConn) becomeUsable() {
	f.mu.Lock()
	if f.state != StateConnecting {
		f.mu.Unlock()
		return
	}
	f.state = StateOpen
	handlers := f.usable
	f.usable = nil
	f.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

func (f *fakeConn) fail(err error) {
	f.mu.Lock()
	if f.failure != nil || f.state == StateClosed {
		f.mu.Unlock()
		return
	}
	f.failure = err
	handlers := f.failures
	f.failures = nil
	f.mu.Unlock()

	for _, fn := range handlers {
		fn(err)
	}
}

// recorder collects pool events for assertions.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) monitor() *Monitor {
	return &Monitor{Event: func(e *Event) {
		r.mu.Lock()
		r.events = append(r.events, *e)
		r.mu.Unlock()
	}}
}

func (r *recorder) count(kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == kind {
			n++
		}
	}
	return n
}

func (r *recorder) last(kind string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == kind {
			return r.events[i], true
		}
	}
	return Event{}, false
}
