package entity

// Transitions is the legal status graph of one workflow.
type Transitions struct {
	next     map[Status][]Status
	terminal map[Status]bool
}

func NewTransitions(edges map[Status][]Status, terminal ...Status) Transitions {
	t := Transitions{
		next:     make(map[Status][]Status, len(edges)),
		terminal: make(map[Status]bool, len(terminal)),
	}
	for from, to := range edges {
		t.next[from] = append([]Status(nil), to...)
	}
	for _, s := range terminal {
		t.terminal[s] = true
	}
	return t
}

func (t Transitions) Allowed(from, to Status) bool {
	for _, s := range t.next[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (t Transitions) Terminal(s Status) bool {
	return t.terminal[s]
}

var (
	AutomationTransitions = NewTransitions(map[Status][]Status{
		StatusRunning: {StatusCompleted, StatusCancelled},
	}, StatusCompleted, StatusCancelled)

	BookingTransitions = NewTransitions(map[Status][]Status{
		StatusPendingApproval: {StatusApproved},
	}, StatusApproved)

	// Enrichment records are created completed and never move.
	EnrichmentTransitions = NewTransitions(nil, StatusCompleted)
)
