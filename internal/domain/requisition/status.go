package requisition

// Status is the lifecycle state of a requisition
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
	StatusConfirmed Status = "CONFIRMED"
)

// transitions is the complete table of legal edges. Terminal states have
// no entry.
var transitions = map[Status][]Status{
	StatusPending:   {StatusApproved, StatusRejected},
	StatusApproved:  {StatusInTransit},
	StatusInTransit: {StatusDelivered},
	StatusDelivered: {StatusConfirmed},
}

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected,
		StatusInTransit, StatusDelivered, StatusConfirmed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for states with no outgoing edges
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusConfirmed
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// NextStatuses returns the statuses reachable in one step
func (s Status) NextStatuses() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// AllStatuses returns every status in lifecycle order
func AllStatuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected, StatusInTransit, StatusDelivered, StatusConfirmed}
}
