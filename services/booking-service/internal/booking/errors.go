package booking

import "errors"

var (
	// ErrSlotConflict covers every way a requested slot can be unofferable at
	// commit time: overlap with an active booking, the break window, a closed
	// day, or a start outside operating hours. Callers surface it as "this
	// time is no longer available" and refresh their slot list.
	ErrSlotConflict = errors.New("slot no longer available")

	// ErrPastDate marks a requested start that has already elapsed beyond the
	// grace period.
	ErrPastDate = errors.New("requested start is in the past")

	ErrNotFound = errors.New("not found")
)
