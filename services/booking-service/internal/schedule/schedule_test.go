package schedule

import (
	"testing"
	"time"
)

func weekdaySchedule() CompanySchedule {
	return CompanySchedule{
		OpenMin:         540,  // 09:00
		CloseMin:        1080, // 18:00
		BreakStartMin:   720,  // 12:00
		BreakEndMin:     780,  // 13:00
		SlotIntervalMin: 30,
		WorkDays: map[time.Weekday]bool{
			time.Monday: true, time.Tuesday: true, time.Wednesday: true,
			time.Thursday: true, time.Friday: true,
		},
	}
}

func TestResolve_WorkingDay(t *testing.T) {
	// 2026-03-02 is a Monday.
	win := Resolve(weekdaySchedule(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if !win.IsWorkingDay {
		t.Fatal("expected working day")
	}
	if win.OpenMin != 540 || win.CloseMin != 1080 {
		t.Fatalf("unexpected window: %+v", win)
	}
	if win.BreakStartMin != 720 || win.BreakEndMin != 780 {
		t.Fatalf("unexpected break: %+v", win)
	}
}

func TestResolve_NonWorkingDay(t *testing.T) {
	// 2026-03-01 is a Sunday.
	win := Resolve(weekdaySchedule(), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if win.IsWorkingDay {
		t.Fatal("expected non-working day")
	}
}

func TestValidate(t *testing.T) {
	if err := weekdaySchedule().Validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}

	cs := weekdaySchedule()
	cs.OpenMin, cs.CloseMin = 1080, 540
	if err := cs.Validate(); err == nil {
		t.Fatal("open after close should be rejected")
	}

	cs = weekdaySchedule()
	cs.BreakStartMin, cs.BreakEndMin = 780, 720
	if err := cs.Validate(); err == nil {
		t.Fatal("inverted break should be rejected")
	}

	cs = weekdaySchedule()
	cs.SlotIntervalMin = 0
	if err := cs.Validate(); err == nil {
		t.Fatal("zero interval should be rejected")
	}

	// No break configured at all is legal.
	cs = weekdaySchedule()
	cs.BreakStartMin, cs.BreakEndMin = 0, 0
	if err := cs.Validate(); err != nil {
		t.Fatalf("breakless schedule rejected: %v", err)
	}
}
