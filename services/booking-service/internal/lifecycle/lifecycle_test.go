package lifecycle

import (
	"errors"
	"testing"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},

		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusPending, StatusPending, false},
	}
	for _, c := range cases {
		err := Transition(c.from, c.to)
		if c.ok && err != nil {
			t.Fatalf("%s -> %s should be legal: %v", c.from, c.to, err)
		}
		if !c.ok && !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s -> %s should fail with ErrInvalidTransition, got %v", c.from, c.to, err)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "completed", "cancelled"} {
		if _, err := ParseStatus(s); err != nil {
			t.Fatalf("ParseStatus(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseStatus("booked"); err == nil {
		t.Fatal("unknown status should be rejected")
	}
}

func TestActive(t *testing.T) {
	if !Active(StatusPending) || !Active(StatusConfirmed) || !Active(StatusCompleted) {
		t.Fatal("pending/confirmed/completed must hold their slot")
	}
	if Active(StatusCancelled) {
		t.Fatal("cancelled must release its slot")
	}
}
