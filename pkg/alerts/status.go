package alerts

// Status drives the alert lifecycle. Transitions are enforced by the
// Dispatcher through the table below; no other component mutates status.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusSending   Status = "sending"
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusCancelled Status = "cancelled"
)

// transitions maps each status to the set of statuses it may move to.
// cancelled and read are terminal; failed is not (retry re-enters sending).
var transitions = map[Status][]Status{
	StatusPending:   {StatusSending, StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusSending, StatusCancelled},
	StatusSending:   {StatusSent, StatusFailed},
	StatusFailed:    {StatusSending},
	StatusSent:      {StatusDelivered},
	StatusDelivered: {StatusRead},
}

// CanTransition reports whether the lifecycle permits moving from one status
// to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from the status.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// isPostSend reports whether the alert already reached the sent stage.
// Retry and cancel are both meaningless past this point.
func (s Status) isPostSend() bool {
	return s == StatusSent || s == StatusDelivered || s == StatusRead
}
