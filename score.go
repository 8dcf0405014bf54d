package jackpot

// availability maps what a connection reports right now to a 0-100
// confidence that a write would go through immediately or very soon.
// A perfect 100 means idle and writable; 0 means dead or draining.
func availability(c Conn, rnd func(n int) int) int {
	state := c.State()
	depth := c.PendingWrites()

	switch {
	case state.writable() && depth == 0:
		return 100
	case state == StateClosed:
		return 0
	case !state.writable() && state != StateConnecting:
		return 0
	case state == StateConnecting:
		return 70
	case depth < 100:
		return 100 - depth
	default:
		// Queue depth gives no signal anymore. Roll the dice so a
		// heavily loaded connection still gets the occasional reuse.
		return rnd(70)
	}
}
