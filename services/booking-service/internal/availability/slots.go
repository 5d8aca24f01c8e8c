package availability

import (
	"errors"
	"fmt"
)

// DefaultGraceMin keeps same-day slots from being offered when they start
// within this many minutes of "now".
const DefaultGraceMin = 10

var ErrInvalidParameters = errors.New("interval and duration must be positive")

// Candidates enumerates every candidate start (minutes since midnight) for a
// service of durationMin within [openMin, closeMin], stepping by intervalMin.
// The sequence is ascending and deterministic. A duration longer than the
// window yields an empty slice, which is a valid outcome, not an error.
func Candidates(openMin, closeMin, intervalMin, durationMin int) ([]int, error) {
	if intervalMin <= 0 || durationMin <= 0 {
		return nil, fmt.Errorf("%w: interval=%d duration=%d", ErrInvalidParameters, intervalMin, durationMin)
	}

	var starts []int
	for start := openMin; start+durationMin <= closeMin; start += intervalMin {
		starts = append(starts, start)
	}
	return starts, nil
}

// FilterOptions carries everything Filter needs to judge a candidate.
// NowMin must be -1 when the target date is not today; Busy must already be
// restricted to the chosen professional's active bookings. A negative
// GraceMin selects DefaultGraceMin; zero disables the grace cutoff.
type FilterOptions struct {
	BreakStartMin int
	BreakEndMin   int
	DurationMin   int
	Busy          []BusyInterval
	NowMin        int
	GraceMin      int
}

// Filter drops candidates that overlap the break window, overlap an existing
// active booking, or start too soon on the current day. Output preserves
// candidate order. An unused break (equal bounds) is an empty window and
// excludes nothing.
func Filter(candidates []int, opts FilterOptions) []int {
	grace := opts.GraceMin
	if grace < 0 {
		grace = DefaultGraceMin
	}
	hasBreak := opts.BreakStartMin < opts.BreakEndMin

	open := make([]int, 0, len(candidates))
	for _, start := range candidates {
		end := start + opts.DurationMin
		if hasBreak && Overlaps(start, end, opts.BreakStartMin, opts.BreakEndMin) {
			continue
		}
		if opts.NowMin >= 0 && start <= opts.NowMin+grace {
			continue
		}
		if _, conflict := WouldConflict(BusyInterval{StartMin: start, EndMin: end}, opts.Busy); conflict {
			continue
		}
		open = append(open, start)
	}
	return open
}
