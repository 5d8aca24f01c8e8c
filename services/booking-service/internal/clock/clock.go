package clock

import (
	"errors"
	"fmt"
)

const MinutesPerDay = 24 * 60

var (
	ErrInvalidTimeFormat = errors.New("invalid HH:MM time")
	ErrOutOfRange        = errors.New("minute of day out of range")
)

// ToMinutes parses a zero-padded 24-hour "HH:MM" wall-clock string into
// minutes since midnight. Malformed input is an error, never a silent zero.
func ToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	h, ok := twoDigits(s[0], s[1])
	if !ok || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	m, ok := twoDigits(s[3], s[4])
	if !ok || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}
	return h*60 + m, nil
}

// ToHHMM is the inverse of ToMinutes for 0 <= min < MinutesPerDay.
func ToHHMM(min int) (string, error) {
	if min < 0 || min >= MinutesPerDay {
		return "", fmt.Errorf("%w: %d", ErrOutOfRange, min)
	}
	return fmt.Sprintf("%02d:%02d", min/60, min%60), nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}
