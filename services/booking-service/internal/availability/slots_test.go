package availability

import (
	"errors"
	"testing"
)

func TestCandidates_Basic(t *testing.T) {
	starts, err := Candidates(540, 660, 30, 30) // 09:00-11:00
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	want := []int{540, 570, 600, 630}
	if len(starts) != len(want) {
		t.Fatalf("expected %d candidates, got %v", len(want), starts)
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Fatalf("candidate %d = %d, want %d", i, starts[i], want[i])
		}
	}
}

func TestCandidates_DurationExceedsWindow(t *testing.T) {
	starts, err := Candidates(540, 600, 30, 120)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	if len(starts) != 0 {
		t.Fatalf("expected no candidates, got %v", starts)
	}
}

func TestCandidates_InvalidParameters(t *testing.T) {
	if _, err := Candidates(540, 1080, 0, 30); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("zero interval: expected ErrInvalidParameters, got %v", err)
	}
	if _, err := Candidates(540, 1080, 30, -15); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("negative duration: expected ErrInvalidParameters, got %v", err)
	}
}

func TestFilter_BreakExclusion(t *testing.T) {
	// open 09:00, close 18:00, break 12:00-13:00, interval 30, duration 30.
	starts, err := Candidates(540, 1080, 30, 30)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	open := Filter(starts, FilterOptions{
		BreakStartMin: 720,
		BreakEndMin:   780,
		DurationMin:   30,
		NowMin:        -1,
	})

	has := func(min int) bool {
		for _, s := range open {
			if s == min {
				return true
			}
		}
		return false
	}
	if !has(690) { // 11:30 ends exactly at break start -> allowed
		t.Fatal("11:30 should be offered (ends at break start)")
	}
	if has(720) || has(750) { // 12:00 and 12:30 fall inside the break
		t.Fatalf("break slots should be excluded, got %v", open)
	}
	if !has(780) { // 13:00 starts exactly at break end -> allowed
		t.Fatal("13:00 should be offered (starts at break end)")
	}
}

func TestFilter_UnusedBreakExcludesNothing(t *testing.T) {
	// Equal break bounds mean no break is configured: an empty window shares
	// no instant with any slot, so even slots spanning it stay offered.
	starts, err := Candidates(540, 1080, 30, 60)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	open := Filter(starts, FilterOptions{
		BreakStartMin: 720,
		BreakEndMin:   720,
		DurationMin:   60,
		NowMin:        -1,
	})
	if len(open) != len(starts) {
		t.Fatalf("unused break dropped candidates: %d -> %d (%v)", len(starts), len(open), open)
	}
	found := false
	for _, s := range open {
		if s == 690 { // 11:30-12:30 spans the 12:00 instant
			found = true
		}
	}
	if !found {
		t.Fatal("11:30 should be offered when no break is configured")
	}
}

func TestFilter_PastTimeGrace(t *testing.T) {
	starts := []int{850, 860, 870} // 14:10, 14:20, 14:30
	open := Filter(starts, FilterOptions{
		DurationMin: 30,
		NowMin:      845, // 14:05
		GraceMin:    10,
	})
	// 14:10 and 14:15 are within now+grace; 14:20 onward are offerable.
	if len(open) != 2 || open[0] != 860 || open[1] != 870 {
		t.Fatalf("expected [860 870], got %v", open)
	}
}

func TestFilter_GraceSentinel(t *testing.T) {
	starts := []int{850, 860, 870}

	// Zero grace: only strictly elapsed starts are dropped.
	open := Filter(starts, FilterOptions{DurationMin: 30, NowMin: 850, GraceMin: 0})
	if len(open) != 2 || open[0] != 860 || open[1] != 870 {
		t.Fatalf("zero grace: expected [860 870], got %v", open)
	}

	// Negative grace selects the default.
	open = Filter(starts, FilterOptions{DurationMin: 30, NowMin: 850, GraceMin: -1})
	if len(open) != 1 || open[0] != 870 {
		t.Fatalf("default grace: expected [870], got %v", open)
	}
}

func TestFilter_BusyBookings(t *testing.T) {
	starts, err := Candidates(540, 720, 30, 45)
	if err != nil {
		t.Fatalf("Candidates failed: %v", err)
	}
	busy := []BusyInterval{{BookingID: "b1", StartMin: 630, EndMin: 660}} // 10:30-11:00
	open := Filter(starts, FilterOptions{DurationMin: 45, Busy: busy, NowMin: -1})

	for _, s := range open {
		if Overlaps(s, s+45, 630, 660) {
			t.Fatalf("offered slot %d overlaps a booking", s)
		}
	}
	// 10:00-10:45 partially overlaps 10:30-11:00 and must be gone.
	for _, s := range open {
		if s == 600 {
			t.Fatal("10:00 should be excluded by partial overlap")
		}
	}
}

func TestOverlaps_BackToBack(t *testing.T) {
	if Overlaps(540, 600, 600, 660) {
		t.Fatal("booking ending at 600 must not conflict with one starting at 600")
	}
	if Overlaps(600, 660, 540, 600) {
		t.Fatal("back-to-back must be symmetric")
	}
}

func TestOverlaps_PartialNotContainment(t *testing.T) {
	// 10:00-10:45 vs 10:30-11:00: neither contains the other, still a conflict.
	if !Overlaps(600, 645, 630, 660) {
		t.Fatal("partial overlap must conflict")
	}
}

func TestWouldConflict(t *testing.T) {
	existing := []BusyInterval{
		{BookingID: "a", StartMin: 540, EndMin: 600},
		{BookingID: "b", StartMin: 630, EndMin: 660},
	}

	hit, conflict := WouldConflict(BusyInterval{StartMin: 590, EndMin: 620}, existing)
	if !conflict || hit.BookingID != "a" {
		t.Fatalf("expected conflict with booking a, got %+v %v", hit, conflict)
	}

	if _, conflict := WouldConflict(BusyInterval{StartMin: 600, EndMin: 630}, existing); conflict {
		t.Fatal("gap between bookings should be free")
	}
}

func TestWouldConflict_ExcludesSelfOnEdit(t *testing.T) {
	existing := []BusyInterval{{BookingID: "a", StartMin: 540, EndMin: 600}}

	// Editing booking "a" onto its own slot is idempotent.
	if _, conflict := WouldConflict(BusyInterval{BookingID: "a", StartMin: 540, EndMin: 600}, existing); conflict {
		t.Fatal("a booking must not conflict with itself")
	}
	// A different booking on the same slot still conflicts.
	if _, conflict := WouldConflict(BusyInterval{BookingID: "z", StartMin: 540, EndMin: 600}, existing); !conflict {
		t.Fatal("expected conflict for another booking on the same slot")
	}
}
