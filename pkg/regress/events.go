package regress

// Events receives progress notifications from a run. Implementations are
// registered explicitly on the Runner; there is no global registry. All
// callbacks are invoked from the run's single goroutine, in corpus order.
type Events interface {
	// OnEntry is called when real processing of an entry begins (entries
	// before the cursor are reported via OnStatus only).
	OnEntry(index, total int, stem string)

	// OnStatus is called once per entry with its terminal status. ae is
	// only meaningful for Accepted and Regressed.
	OnStatus(index int, stem string, status Status, ae int)

	// OnDone is called once with the completed result, after durable state
	// has been written.
	OnDone(result *Result)
}

// NoopEvents is the default Events implementation.
type NoopEvents struct{}

func (NoopEvents) OnEntry(int, int, string)          {}
func (NoopEvents) OnStatus(int, string, Status, int) {}
func (NoopEvents) OnDone(*Result)                    {}

// Ensure NoopEvents implements Events.
var _ Events = NoopEvents{}
