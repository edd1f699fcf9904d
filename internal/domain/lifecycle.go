package domain

// bookingTransitions allowed moves of the booking state machine
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn: {StatusCompleted, StatusCancelled},
}

// IsTerminal returns true for completed, cancelled and no_show
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// IsValid returns true if the status is known
func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCheckedIn, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// CanTransition reports whether a booking may move from one status to another
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourcesOf returns the statuses from which the target status is reachable.
// Used to build conditional updates (WHERE status IN (...)).
func SourcesOf(to BookingStatus) []BookingStatus {
	sources := make([]BookingStatus, 0, 2)
	for _, from := range []BookingStatus{StatusPending, StatusConfirmed, StatusCheckedIn} {
		if CanTransition(from, to) {
			sources = append(sources, from)
		}
	}
	return sources
}
