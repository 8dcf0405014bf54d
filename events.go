package jackpot

// Event types reported to a Monitor.
const (
	EventError = "error" // a factory or connection failure, Err is set
	EventFree  = "free"  // an eviction pass finished, Saved/Remaining are set
	EventEnd   = "end"   // End completed its eviction pass
	EventClose = "close" // the pool drained completely after End
)

// Event summarizes something that happened inside the pool.
type Event struct {
	Type      string
	Err       error
	Saved     int
	Remaining int
}

// Monitor gives the user access to events occurring in the pool.
type Monitor struct {
	Event func(*Event)
}

func (p *Pool) emit(e *Event) {
	if p.Monitor == nil || p.Monitor.Event == nil {
		return
	}
	p.Monitor.Event(e)
}
