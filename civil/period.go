package civil

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Pay period boundary
// =============================================================================

// Period is an inclusive range of dates. Payroll is always computed for a
// period, never for a single instant.
//
// Examples:
//   - First half of March 2025: Mar 1 - Mar 15
//   - Second half of March 2025: Mar 16 - Mar 31
//   - Calendar month: Mar 1 - Mar 31
type Period struct {
	Start Date
	End   Date
}

// NewPeriod validates that end is not before start.
func NewPeriod(start, end Date) (Period, error) {
	if end.Before(start) {
		return Period{}, fmt.Errorf("invalid period: end %s before start %s", end, start)
	}
	return Period{Start: start, End: end}, nil
}

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// ContainsTime reports whether t falls on a date inside the period in Zone.
func (p Period) ContainsTime(t time.Time) bool {
	return p.Contains(LocalDateKey(t))
}

// Days returns every date in the period in order.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Bounds returns the half-open instant range [start midnight, day after end midnight).
func (p Period) Bounds() (time.Time, time.Time) {
	return p.Start.Midnight(), p.End.AddDays(1).Midnight()
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// PeriodType defines how pay periods are cut.
type PeriodType string

const (
	PeriodSemiMonthly PeriodType = "semi_monthly" // 1-15, 16-end of month
	PeriodMonthly     PeriodType = "monthly"      // 1-end of month
)

// ParsePeriodType accepts the configured name, defaulting to semi-monthly.
func ParsePeriodType(s string) (PeriodType, error) {
	switch PeriodType(s) {
	case "", PeriodSemiMonthly:
		return PeriodSemiMonthly, nil
	case PeriodMonthly:
		return PeriodMonthly, nil
	default:
		return "", fmt.Errorf("unknown pay period type %q", s)
	}
}

// PeriodConfig determines which pay period a date falls into.
type PeriodConfig struct {
	Type PeriodType
}

// PeriodFor returns the pay period containing date.
func (pc PeriodConfig) PeriodFor(date Date) Period {
	monthStart := StartOfMonth(date.Year, date.Month)
	monthEnd := EndOfMonth(date.Year, date.Month)

	if pc.Type == PeriodMonthly {
		return Period{Start: monthStart, End: monthEnd}
	}

	if date.Day <= 15 {
		return Period{Start: monthStart, End: NewDate(date.Year, date.Month, 15)}
	}
	return Period{Start: NewDate(date.Year, date.Month, 16), End: monthEnd}
}

// Previous returns the pay period immediately before the one containing date.
func (pc PeriodConfig) Previous(date Date) Period {
	current := pc.PeriodFor(date)
	return pc.PeriodFor(current.Start.AddDays(-1))
}
