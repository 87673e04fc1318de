// Package attendance derives daily attendance records from raw punch events.
// Records are computed fresh per query and never persisted by this package.
package attendance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
)

// =============================================================================
// PUNCH EVENTS
// =============================================================================

// Direction of a punch.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// ParseDirection validates a stored or submitted direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionIn, DirectionOut:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("invalid punch direction %q (use in|out)", s)
	}
}

// PunchEvent is a single time-in or time-out. Immutable once recorded.
type PunchEvent struct {
	ID         string
	EmployeeID string
	Timestamp  time.Time
	Direction  Direction
}

// =============================================================================
// SHIFT
// =============================================================================

// Shift is the schedule an employee type works, expressed in minutes since
// local midnight.
//
// A straight shift has one session [StartMinutes, EndMinutes] and may deduct an
// unpaid BreakMinutes from hours worked. A split shift sets Split to the lunch
// gap: the morning session is [StartMinutes, Split.StartMinutes] and the
// afternoon session is [Split.EndMinutes, EndMinutes], each punched separately.
type Shift struct {
	Name         string
	StartMinutes int
	EndMinutes   int
	GraceMinutes int
	BreakMinutes int
	Split        *Gap
	Workdays     civil.WeekdaySet
}

// Gap is the unpaid interval between the sessions of a split shift.
type Gap struct {
	StartMinutes int
	EndMinutes   int
}

// Session is one scheduled stretch of work.
type Session struct {
	StartMinutes int
	EndMinutes   int
}

// Sessions returns the scheduled sessions in chronological order.
func (s Shift) Sessions() []Session {
	if s.Split == nil {
		return []Session{{StartMinutes: s.StartMinutes, EndMinutes: s.EndMinutes}}
	}
	return []Session{
		{StartMinutes: s.StartMinutes, EndMinutes: s.Split.StartMinutes},
		{StartMinutes: s.Split.EndMinutes, EndMinutes: s.EndMinutes},
	}
}

// ScheduledMinutes is the paid length of a full day on this shift.
func (s Shift) ScheduledMinutes() int {
	total := 0
	for _, sess := range s.Sessions() {
		total += sess.EndMinutes - sess.StartMinutes
	}
	if s.Split == nil {
		total -= s.BreakMinutes
	}
	if total < 0 {
		return 0
	}
	return total
}

// IsWorkday reports whether the weekday is scheduled. An empty set means Mon-Fri.
func (s Shift) IsWorkday(d civil.Date) bool {
	days := s.Workdays
	if days == 0 {
		days = civil.MondayToFriday
	}
	return days.Contains(d.Weekday())
}

// Validate checks the shift is internally consistent.
func (s Shift) Validate() error {
	inDay := func(m int) bool { return m >= 0 && m <= civil.MinutesPerDay }
	if !inDay(s.StartMinutes) || !inDay(s.EndMinutes) {
		return fmt.Errorf("shift %q: start/end must be within a day", s.Name)
	}
	if s.EndMinutes <= s.StartMinutes {
		return fmt.Errorf("shift %q: end must be after start", s.Name)
	}
	if s.GraceMinutes < 0 || s.BreakMinutes < 0 {
		return fmt.Errorf("shift %q: grace and break must not be negative", s.Name)
	}
	if s.Split != nil {
		if s.Split.StartMinutes <= s.StartMinutes || s.Split.EndMinutes >= s.EndMinutes ||
			s.Split.EndMinutes < s.Split.StartMinutes {
			return fmt.Errorf("shift %q: split gap must lie inside the shift", s.Name)
		}
		if s.BreakMinutes != 0 {
			return fmt.Errorf("shift %q: split shifts take their break from the gap", s.Name)
		}
	}
	return nil
}

// StandardShift is the 8:00-17:00 university schedule with a one-hour unpaid lunch.
func StandardShift() Shift {
	return Shift{
		Name:         "standard",
		StartMinutes: 8 * 60,
		EndMinutes:   17 * 60,
		GraceMinutes: 15,
		BreakMinutes: 60,
		Workdays:     civil.MondayToFriday,
	}
}

// =============================================================================
// ATTENDANCE RECORD - Derived, one per employee per date
// =============================================================================

// Status summarizes a record for display.
type Status string

const (
	StatusPresent    Status = "present"
	StatusLate       Status = "late"
	StatusAbsent     Status = "absent"
	StatusIncomplete Status = "incomplete"
	StatusHoliday    Status = "holiday"
	StatusRestDay    Status = "rest_day"
)

// Record is the evaluated attendance of one employee on one date.
type Record struct {
	EmployeeID string
	Date       civil.Date
	TimeIn     *time.Time
	TimeOut    *time.Time

	WorkedMinutes    int
	HoursWorked      decimal.Decimal
	IsLate           bool
	UndertimeMinutes int
	IsAbsent         bool

	// Incomplete is set when punches are missing or out of order. It is a
	// flagged state, not an error: the day simply earns no unpaired time.
	Incomplete bool

	Holiday *civil.Holiday
	RestDay bool
	Status  Status
}

// Worked reports whether any complete session was recorded.
func (r Record) Worked() bool { return r.WorkedMinutes > 0 }
