package lifecycle

import (
	"errors"
	"fmt"
)

// Status is a booking's lifecycle state. Completed and cancelled are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var allowed = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
}

// Transition validates a lifecycle move. Reschedules are not transitions:
// they keep the status and go through conflict re-validation instead.
func Transition(from, to Status) error {
	if allowed[from][to] {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Active reports whether a status occupies its time slot for conflict
// purposes. Only cancelled bookings release their slot.
func Active(s Status) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCompleted
}
