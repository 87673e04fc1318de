package attendance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
)

// =============================================================================
// EVALUATOR
// =============================================================================

// Evaluator turns a day's punches into an attendance Record for one shift.
// It is a pure function of its inputs and safe for concurrent use.
type Evaluator struct {
	Shift    Shift
	Calendar civil.Calendar // optional; nil means no holidays
}

// Evaluate derives the record for employeeID on date. Punches for other
// employees or other dates are ignored, so callers may pass a whole period.
func (e Evaluator) Evaluate(employeeID string, date civil.Date, punches []PunchEvent) Record {
	return e.evaluate(employeeID, date, punchesOn(employeeID, date, punches))
}

// EvaluateRange returns exactly one record per date in period, in date order.
func (e Evaluator) EvaluateRange(employeeID string, period civil.Period, punches []PunchEvent) []Record {
	byDate := GroupByDate(employeeID, punches)

	days := period.Days()
	records := make([]Record, 0, len(days))
	for _, d := range days {
		records = append(records, e.evaluate(employeeID, d, byDate[d]))
	}
	return records
}

// GroupByDate buckets an employee's punches by civil date, each bucket sorted
// by timestamp.
func GroupByDate(employeeID string, punches []PunchEvent) map[civil.Date][]PunchEvent {
	out := make(map[civil.Date][]PunchEvent)
	for _, p := range punches {
		if p.EmployeeID != "" && p.EmployeeID != employeeID {
			continue
		}
		d := civil.LocalDateKey(p.Timestamp)
		out[d] = append(out[d], p)
	}
	for d := range out {
		sortPunches(out[d])
	}
	return out
}

func punchesOn(employeeID string, date civil.Date, punches []PunchEvent) []PunchEvent {
	var day []PunchEvent
	for _, p := range punches {
		if p.EmployeeID != "" && p.EmployeeID != employeeID {
			continue
		}
		if civil.LocalDateKey(p.Timestamp) == date {
			day = append(day, p)
		}
	}
	sortPunches(day)
	return day
}

func sortPunches(ps []PunchEvent) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Timestamp.Before(ps[j].Timestamp) })
}

func (e Evaluator) evaluate(employeeID string, date civil.Date, day []PunchEvent) Record {
	rec := Record{
		EmployeeID:  employeeID,
		Date:        date,
		HoursWorked: decimal.Zero,
		RestDay:     !e.Shift.IsWorkday(date),
	}
	if e.Calendar != nil {
		if h, ok := e.Calendar.HolidayOn(date); ok {
			rec.Holiday = &h
		}
	}

	if len(day) == 0 {
		switch {
		case rec.Holiday != nil:
			rec.Status = StatusHoliday
		case rec.RestDay:
			rec.Status = StatusRestDay
		default:
			rec.IsAbsent = true
			rec.Status = StatusAbsent
		}
		return rec
	}

	rec.TimeIn, rec.TimeOut = firstIn(day), lastOut(day)

	pairs, incomplete := pairPunches(day)
	rec.Incomplete = incomplete

	rec.IsLate, rec.UndertimeMinutes = e.lateness(pairs, day)

	worked := 0
	for _, p := range pairs {
		worked += p.minutes()
	}
	if e.Shift.Split == nil && len(pairs) > 0 {
		worked -= e.Shift.BreakMinutes
	}
	if worked < 0 {
		worked = 0
	}
	rec.WorkedMinutes = worked
	rec.HoursWorked = decimal.NewFromInt(int64(worked)).Div(decimal.NewFromInt(60)).Round(2)

	switch {
	case rec.Incomplete:
		rec.Status = StatusIncomplete
	case rec.IsLate:
		rec.Status = StatusLate
	default:
		rec.Status = StatusPresent
	}
	return rec
}

// =============================================================================
// PAIRING
// =============================================================================

type pair struct {
	in, out time.Time
}

func (p pair) minutes() int { return int(p.out.Sub(p.in) / time.Minute) }

// pairPunches matches each time-in with the next time-out. Any time-out with no
// open time-in, a second time-in before a time-out, or a trailing time-in marks
// the day incomplete. Unmatched punches never produce a duration.
func pairPunches(day []PunchEvent) ([]pair, bool) {
	var (
		pairs      []pair
		open       *time.Time
		incomplete bool
	)
	for i := range day {
		ts := day[i].Timestamp
		switch day[i].Direction {
		case DirectionIn:
			if open != nil {
				incomplete = true
			}
			open = &ts
		case DirectionOut:
			if open == nil {
				incomplete = true
				continue
			}
			pairs = append(pairs, pair{in: *open, out: ts})
			open = nil
		default:
			incomplete = true
		}
	}
	if open != nil {
		incomplete = true
	}
	return pairs, incomplete
}

// lateness computes the late flag and accumulated undertime. A session's
// undertime is how far its first time-in passed start+grace. For split shifts
// an afternoon-only day counts the whole missed morning as undertime.
func (e Evaluator) lateness(pairs []pair, day []PunchEvent) (bool, int) {
	grace := e.Shift.GraceMinutes
	sessions := e.Shift.Sessions()

	if len(sessions) == 1 {
		in := firstIn(day)
		if in == nil {
			return false, 0
		}
		late := civil.LocalMinutesOfDay(*in) - (sessions[0].StartMinutes + grace)
		if late > 0 {
			return true, late
		}
		return false, 0
	}

	morningIn, afternoonIn := -1, -1
	for _, p := range pairs {
		m := civil.LocalMinutesOfDay(p.in)
		if m < e.Shift.Split.StartMinutes {
			if morningIn < 0 {
				morningIn = m
			}
		} else if afternoonIn < 0 {
			afternoonIn = m
		}
	}
	// a time-in without its time-out still tells us when the employee arrived
	if morningIn < 0 && afternoonIn < 0 {
		if in := firstIn(day); in != nil {
			m := civil.LocalMinutesOfDay(*in)
			if m < e.Shift.Split.StartMinutes {
				morningIn = m
			} else {
				afternoonIn = m
			}
		}
	}

	isLate, undertime := false, 0
	switch {
	case morningIn >= 0:
		if late := morningIn - (sessions[0].StartMinutes + grace); late > 0 {
			isLate = true
			undertime += late
		}
	case afternoonIn >= 0:
		isLate = true
		undertime += sessions[0].EndMinutes - sessions[0].StartMinutes
	}
	if afternoonIn >= 0 {
		if late := afternoonIn - (sessions[1].StartMinutes + grace); late > 0 {
			undertime += late
		}
	}
	return isLate, undertime
}

func firstIn(day []PunchEvent) *time.Time {
	for i := range day {
		if day[i].Direction == DirectionIn {
			t := day[i].Timestamp
			return &t
		}
	}
	return nil
}

func lastOut(day []PunchEvent) *time.Time {
	for i := len(day) - 1; i >= 0; i-- {
		if day[i].Direction == DirectionOut {
			t := day[i].Timestamp
			return &t
		}
	}
	return nil
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary aggregates a range of records for dashboards and reports.
type Summary struct {
	DaysPresent      int
	DaysLate         int
	DaysAbsent       int
	DaysIncomplete   int
	HolidaysWorked   int
	UndertimeMinutes int
	WorkedMinutes    int
	HoursWorked      decimal.Decimal
}

// Summarize folds records into a Summary.
func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		switch {
		case r.IsAbsent:
			s.DaysAbsent++
		case r.Incomplete:
			s.DaysIncomplete++
		case r.Worked():
			s.DaysPresent++
		}
		if r.IsLate {
			s.DaysLate++
		}
		if r.Holiday != nil && r.Worked() {
			s.HolidaysWorked++
		}
		s.UndertimeMinutes += r.UndertimeMinutes
		s.WorkedMinutes += r.WorkedMinutes
	}
	s.HoursWorked = decimal.NewFromInt(int64(s.WorkedMinutes)).Div(decimal.NewFromInt(60)).Round(2)
	return s
}
