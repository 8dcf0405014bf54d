// Package jackpot is a bounded pool of long-lived network connections. It
// hands out the healthiest connection it owns, creates new ones lazily
// while capacity remains, evicts broken ones transparently and retries
// allocation with backoff when asked to.
package jackpot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Stats is a snapshot of the pool's monotonic counters. Allocations counts
// Allocate calls regardless of outcome; Releases counts connections
// removed from the pool.
type Stats struct {
	Allocations uint64
	Releases    uint64
}

type Pool struct {
	*Config

	mux      sync.Mutex
	active   []Conn
	pending  int
	syncGen  Factory
	asyncGen AsyncFactory

	allocations uint64
	releases    uint64
}

// New builds an empty pool. Connections are created lazily, on allocation
// pressure, once a factory is registered.
func New(options ...Option) (*Pool, error) {
	config := LoadConfig(options...)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.normalize()

	return &Pool{Config: config}, nil
}

// Len returns how many connections are currently active in the pool.
func (p *Pool) Len() int {
	p.mux.Lock()
	defer p.mux.Unlock()
	return len(p.active)
}

// Pending returns how many connection creations are still in flight.
func (p *Pool) Pending() int {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.pending
}

func (p *Pool) Stats() Stats {
	return Stats{
		Allocations: atomic.LoadUint64(&p.allocations),
		Releases:    atomic.LoadUint64(&p.releases),
	}
}

// Allocate hands out a connection: a perfectly healthy existing one if the
// pool has it, a freshly created one while capacity remains, or the best
// degraded candidate under pressure. It fails with ErrPoolFull when none
// of those work out.
func (p *Pool) Allocate(ctx context.Context) (Conn, error) {
	atomic.AddUint64(&p.allocations, 1)

	p.mux.Lock()
	syncGen, asyncGen := p.syncGen, p.asyncGen
	p.mux.Unlock()

	if syncGen == nil && asyncGen == nil {
		return nil, ErrNoFactory
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Scan newest-first so the freshest connection wins ties. Scoring can
	// shrink the pool (dead entries are reaped on sight), hence the
	// snapshot.
	var best Conn
	bestScore := -1
	for snapshot := p.snapshot(); len(snapshot) > 0; snapshot = snapshot[:len(snapshot)-1] {
		c := snapshot[len(snapshot)-1]
		if c.State() == StateClosed {
			p.Release(c, true)
			continue
		}
		score := availability(c, p.Rand)
		if score == 100 {
			return c, nil
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}

	// Reserve a creation slot under the same lock as the capacity check so
	// active + pending never overshoots the limit.
	p.mux.Lock()
	reserved := len(p.active)+p.pending < p.Limit
	if reserved {
		p.pending++
	}
	p.mux.Unlock()

	if reserved {
		c, err := p.create(ctx, syncGen, asyncGen)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, errFactoryDeclined) {
			return nil, err
		}
	}

	// Accept degraded confidence under pressure.
	if best != nil && bestScore >= 60 {
		return best, nil
	}
	return nil, ErrPoolFull
}

func (p *Pool) snapshot() []Conn {
	p.mux.Lock()
	defer p.mux.Unlock()
	return append([]Conn(nil), p.active...)
}

// create runs the factory against the reserved slot and waits for the
// produced connection to become usable. The reservation is returned on
// every path that does not install a connection.
func (p *Pool) create(ctx context.Context, syncGen Factory, asyncGen AsyncFactory) (Conn, error) {
	if syncGen != nil {
		c := syncGen()
		if c == nil {
			p.unreserve()
			return nil, errFactoryDeclined
		}
		return p.adopt(ctx, c)
	}

	type result struct {
		conn Conn
		err  error
	}
	done := make(chan result, 1)
	asyncGen(func(c Conn, err error) {
		done <- result{conn: c, err: err}
	})

	select {
	case r := <-done:
		return p.received(ctx, r.conn, r.err)
	case <-ctx.Done():
		// The factory call is never cancelled; whatever it produces
		// still joins the pool.
		go func() {
			r := <-done
			if c, err := p.received(context.Background(), r.conn, r.err); err == nil {
				p.Logger.WithField("state", c.State().String()).Debug("late connection joined the pool")
			}
		}()
		return nil, ctx.Err()
	}
}

func (p *Pool) received(ctx context.Context, c Conn, err error) (Conn, error) {
	if err != nil {
		p.unreserve()
		p.Logger.WithError(err).Warn("connection factory failed")
		p.emit(&Event{Type: EventError, Err: err})
		return nil, wrapSentinel(ErrFactoryFailure, err)
	}
	if c == nil {
		p.unreserve()
		return nil, ErrFactoryEmpty
	}
	return p.adopt(ctx, c)
}

// adopt attaches supervision to a freshly created connection and waits for
// it to become usable before installing it into the active set.
func (p *Pool) adopt(ctx context.Context, c Conn) (Conn, error) {
	ready := make(chan error, 1)
	var once sync.Once
	settle := func(err error) {
		once.Do(func() { ready <- err })
	}
	// Settle handlers go first: supervision reacts to a failure by closing
	// the connection, and the caller should see the original error rather
	// than the close it caused.
	c.OnUsable(func() { settle(nil) })
	c.OnFailure(func(err error) { settle(err) })
	c.OnClosed(func() { settle(ErrConnClosed) })

	p.supervise(c)

	select {
	case err := <-ready:
		return p.install(c, err)
	case <-ctx.Done():
		// Establishment outlives the caller; see create.
		go func() { p.install(c, <-ready) }()
		return nil, ctx.Err()
	}
}

// install resolves a reservation: the connection either joins the active
// set or the slot is handed back.
func (p *Pool) install(c Conn, err error) (Conn, error) {
	p.mux.Lock()
	p.pending--
	if err == nil {
		p.active = append(p.active, c)
	}
	p.mux.Unlock()

	if err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Pool) unreserve() {
	p.mux.Lock()
	p.pending--
	p.mux.Unlock()
}

// Free prunes the pool down to at most keep connections, preserving only
// perfectly healthy ones. Everything else is released, gracefully unless
// hard is set.
func (p *Pool) Free(keep int, hard bool) {
	saved := 0
	for _, c := range p.snapshot() {
		if saved < keep && availability(c, p.Rand) == 100 {
			saved++
			continue
		}
		p.Release(c, hard)
	}

	remaining := p.Len()
	p.Logger.WithFields(map[string]interface{}{
		"saved":     saved,
		"remaining": remaining,
	}).Debug("pruned the pool")
	p.emit(&Event{Type: EventFree, Saved: saved, Remaining: remaining})
}

// Release evicts a single connection. It reports false when the
// connection is not in the pool. hard drops pending writes instead of
// flushing them.
func (p *Pool) Release(c Conn, hard bool) bool {
	if !p.discard(c) {
		return false
	}
	var err error
	if hard {
		err = c.Terminate()
	} else {
		err = c.Shutdown()
	}
	if err != nil {
		p.Logger.WithError(err).Debug("closing released connection")
	}
	return true
}

// Remove is an alias for Release.
func (p *Pool) Remove(c Conn, hard bool) bool {
	return p.Release(c, hard)
}

// discard takes the connection out of the active set and counts the
// release. It does not close anything.
func (p *Pool) discard(c Conn) bool {
	p.mux.Lock()
	defer p.mux.Unlock()
	for i, cc := range p.active {
		if cc == c {
			p.active = append(p.active[:i], p.active[i+1:]...)
			atomic.AddUint64(&p.releases, 1)
			return true
		}
	}
	return false
}

// End evicts every connection and announces the pool is done. There is no
// closed flag: an Allocate issued afterwards transparently rebuilds the
// pool, and creations still in flight join it when they resolve.
func (p *Pool) End(hard bool) {
	p.Free(0, hard)
	p.emit(&Event{Type: EventEnd})
	if p.Len() == 0 {
		p.emit(&Event{Type: EventClose})
	}
}
