package jackpot

import "sync/atomic"

// supervise watches a connection for the rest of its life. The first
// failure or close notification evicts it: graceful then forceful close,
// removal from the active set, and, for failures, an error event.
//
// The guard is a CAS rather than sync.Once because closing the connection
// fires its closed notification synchronously, which re-enters evict; a
// re-entrant Once.Do would deadlock, the CAS just falls through.
func (p *Pool) supervise(c Conn) {
	var done int32
	evict := func(err error) {
		if !atomic.CompareAndSwapInt32(&done, 0, 1) {
			return
		}
		_ = c.Shutdown()
		_ = c.Terminate()

		if p.discard(c) {
			p.Logger.WithField("state", c.State().String()).Debug("evicted connection")
		}
		if err != nil {
			p.Logger.WithError(err).Warn("pooled connection failed")
			p.emit(&Event{Type: EventError, Err: err})
		}
	}

	c.OnFailure(func(err error) { evict(err) })
	c.OnClosed(func() { evict(nil) })
}
