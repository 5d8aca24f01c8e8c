package clock

import (
	"errors"
	"testing"
)

func TestToMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"09:30", 570},
		{"12:05", 725},
		{"23:59", 1439},
	}
	for _, c := range cases {
		got, err := ToMinutes(c.in)
		if err != nil {
			t.Fatalf("ToMinutes(%q) failed: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ToMinutes(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestToMinutes_Invalid(t *testing.T) {
	for _, in := range []string{"", "9:30", "0930", "09-30", "24:00", "09:60", "ab:cd", "09:3x", "009:30"} {
		if _, err := ToMinutes(in); !errors.Is(err, ErrInvalidTimeFormat) {
			t.Fatalf("ToMinutes(%q): expected ErrInvalidTimeFormat, got %v", in, err)
		}
	}
}

func TestToHHMM_OutOfRange(t *testing.T) {
	for _, min := range []int{-1, MinutesPerDay, MinutesPerDay + 30} {
		if _, err := ToHHMM(min); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("ToHHMM(%d): expected ErrOutOfRange, got %v", min, err)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for min := 0; min < MinutesPerDay; min++ {
		s, err := ToHHMM(min)
		if err != nil {
			t.Fatalf("ToHHMM(%d) failed: %v", min, err)
		}
		back, err := ToMinutes(s)
		if err != nil {
			t.Fatalf("ToMinutes(%q) failed: %v", s, err)
		}
		if back != min {
			t.Fatalf("round trip %d -> %q -> %d", min, s, back)
		}
	}
}
