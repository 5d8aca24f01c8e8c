package schedule

import (
	"fmt"
	"time"

	"github.com/nazmul-karim/slotbook/services/booking-service/internal/clock"
)

// CompanySchedule is a company's weekly operating configuration.
// All times are minutes since midnight in the company's local time.
// An unused lunch break is expressed as BreakStartMin == BreakEndMin.
type CompanySchedule struct {
	OpenMin         int
	CloseMin        int
	BreakStartMin   int
	BreakEndMin     int
	SlotIntervalMin int
	WorkDays        map[time.Weekday]bool
}

// Validate checks the configuration invariants. It is called at the admin
// boundary; the resolver itself assumes a valid schedule.
func (cs CompanySchedule) Validate() error {
	for _, v := range []int{cs.OpenMin, cs.CloseMin, cs.BreakStartMin, cs.BreakEndMin} {
		if v < 0 || v > clock.MinutesPerDay {
			return fmt.Errorf("schedule minute %d out of range", v)
		}
	}
	if cs.OpenMin >= cs.CloseMin {
		return fmt.Errorf("open time %d must be before close time %d", cs.OpenMin, cs.CloseMin)
	}
	if cs.BreakStartMin > cs.BreakEndMin {
		return fmt.Errorf("break start %d after break end %d", cs.BreakStartMin, cs.BreakEndMin)
	}
	if cs.SlotIntervalMin <= 0 {
		return fmt.Errorf("slot interval must be positive, got %d", cs.SlotIntervalMin)
	}
	return nil
}

// DayWindow is the resolved operating window for one date.
type DayWindow struct {
	OpenMin       int
	CloseMin      int
	BreakStartMin int
	BreakEndMin   int
	IsWorkingDay  bool
}

// Resolve maps a company schedule onto a concrete date. Pure function: the
// current time plays no part here, only the date's weekday.
func Resolve(cs CompanySchedule, date time.Time) DayWindow {
	if !cs.WorkDays[date.Weekday()] {
		return DayWindow{IsWorkingDay: false}
	}
	return DayWindow{
		OpenMin:       cs.OpenMin,
		CloseMin:      cs.CloseMin,
		BreakStartMin: cs.BreakStartMin,
		BreakEndMin:   cs.BreakEndMin,
		IsWorkingDay:  true,
	}
}
