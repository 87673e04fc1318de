/*
Package civil provides civil-time helpers for the university's fixed timezone.

PURPOSE:
  Every attendance and payroll rule is phrased in wall-clock terms ("shift
  starts at 8:00", "March 10 is a holiday"). Punches arrive as absolute
  timestamps. This package is the single place where absolute time is turned
  into local day offsets and calendar dates.

KEY CONCEPTS IN THIS FILE (time.go):
  - Zone: the fixed civil timezone (UTC+8, no daylight saving)
  - LocalMinutesOfDay: minutes since local midnight, always in [0, 1439]
  - LocalDateKey: the calendar day a timestamp falls on in Zone
  - Date: a calendar date value type, used as the key for attendance and holidays

DESIGN PRINCIPLES:
  1. Total functions: every valid timestamp maps to a date and an offset
  2. Fixed offset: the zone never observes DST, so no tzdata lookup is needed
  3. Value types: Date is comparable and usable as a map key

SEE ALSO:
  - period.go: Pay periods built from Dates
  - holiday.go: Holiday calendar keyed by Date
*/
package civil

import (
	"fmt"
	"time"
)

// =============================================================================
// ZONE
// =============================================================================

// ZoneOffsetSeconds is the offset of the civil timezone from UTC.
const ZoneOffsetSeconds = 8 * 60 * 60

// Zone is the fixed civil timezone (Asia/Manila, UTC+8).
var Zone = time.FixedZone("PHT", ZoneOffsetSeconds)

const MinutesPerDay = 24 * 60

// LocalMinutesOfDay returns the minutes elapsed since local midnight in Zone.
func LocalMinutesOfDay(t time.Time) int {
	local := t.In(Zone)
	return local.Hour()*60 + local.Minute()
}

// LocalDateKey returns the calendar date t falls on in Zone.
func LocalDateKey(t time.Time) Date {
	local := t.In(Zone)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// =============================================================================
// DATE - Calendar day in the civil zone
// =============================================================================

// Date is a calendar day. The zero value is not a valid date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// NewDate normalizes the given fields (so Feb 30 becomes Mar 1/2).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, Zone))
}

// DateOf returns the date of t's own wall clock, ignoring its location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, Zone)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DateOf(t), nil
}

// Today returns the current date in Zone.
func Today() Date { return LocalDateKey(time.Now()) }

// Midnight returns the instant the date starts in Zone.
func (d Date) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, Zone)
}

// At returns the instant that is minutes past local midnight on d.
func (d Date) At(minutes int) time.Time {
	return d.Midnight().Add(time.Duration(minutes) * time.Minute)
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Midnight().Before(other.Midnight()) }
func (d Date) After(other Date) bool         { return d.Midnight().After(other.Midnight()) }
func (d Date) Equal(other Date) bool         { return d == other }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return DateOf(d.Midnight().AddDate(0, 0, n)) }

// Properties
func (d Date) Weekday() time.Weekday { return d.Midnight().Weekday() }
func (d Date) IsZero() bool          { return d == Date{} }
func (d Date) String() string        { return d.Midnight().Format(dateLayout) }

// DaysBetween returns the number of days from from to to (negative when to is earlier).
func DaysBetween(from, to Date) int {
	return int(to.Midnight().Sub(from.Midnight()).Hours() / 24)
}

// StartOfMonth and EndOfMonth bound a calendar month.
func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) Date {
	return NewDate(year, month+1, 1).AddDays(-1)
}

// =============================================================================
// WEEKDAYS
// =============================================================================

// WeekdaySet is a set of working weekdays.
type WeekdaySet uint8

// MondayToFriday is the default university workweek.
const MondayToFriday WeekdaySet = 1<<time.Monday | 1<<time.Tuesday | 1<<time.Wednesday |
	1<<time.Thursday | 1<<time.Friday

// NewWeekdaySet builds a set from individual weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s |= 1 << d
	}
	return s
}

func (s WeekdaySet) Contains(d time.Weekday) bool { return s&(1<<d) != 0 }

// Weekdays lists the members in Sunday..Saturday order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	var out []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Contains(d) {
			out = append(out, d)
		}
	}
	return out
}
