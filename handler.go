package jackpot

// Factory produces a new connection synchronously. Returning nil means the
// factory declined; allocation falls back to the best existing candidate.
type Factory func() Conn

// AsyncFactory produces a new connection through a callback. Exactly one
// done call is expected per invocation: done(conn, nil) on success,
// done(nil, err) on failure. done(nil, nil) counts as producing nothing.
type AsyncFactory func(done func(Conn, error))

// SetFactory registers a synchronous connection factory, replacing any
// factory configured before it.
func (p *Pool) SetFactory(fn Factory) error {
	if fn == nil {
		return ErrInvalidFactory
	}
	p.mux.Lock()
	p.syncGen, p.asyncGen = fn, nil
	p.mux.Unlock()
	return nil
}

// SetAsyncFactory registers a callback-based connection factory, replacing
// any factory configured before it.
func (p *Pool) SetAsyncFactory(fn AsyncFactory) error {
	if fn == nil {
		return ErrInvalidFactory
	}
	p.mux.Lock()
	p.syncGen, p.asyncGen = nil, fn
	p.mux.Unlock()
	return nil
}
