package lifecycle

// Status is one stage in a transport request's progression.
type Status int

const (
	StatusRequested Status = iota
	StatusConfirmed
	StatusResourceAssigned
	StatusEnRoute
	StatusArrivedAtOrigin
	StatusInTransit
	StatusArrivedAtDestination
	StatusCompleted
	StatusCancelled
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusRequested:
		return "REQUESTED"
	case StatusConfirmed:
		return "CONFIRMED"
	case StatusResourceAssigned:
		return "RESOURCE_ASSIGNED"
	case StatusEnRoute:
		return "EN_ROUTE"
	case StatusArrivedAtOrigin:
		return "ARRIVED_AT_ORIGIN"
	case StatusInTransit:
		return "IN_TRANSIT"
	case StatusArrivedAtDestination:
		return "ARRIVED_AT_DESTINATION"
	case StatusCompleted:
		return "COMPLETED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is a legal step. The
// progression is linear with a cancellation side-exit from any non-terminal
// state.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	return next == s+1
}
