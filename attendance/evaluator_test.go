package attendance_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// monday is a regular workday with no holiday.
var monday = civil.NewDate(2025, time.March, 10)

func punch(d civil.Date, hh, mm int, dir attendance.Direction) attendance.PunchEvent {
	return attendance.PunchEvent{
		EmployeeID: "emp-1",
		Timestamp:  d.At(hh*60 + mm),
		Direction:  dir,
	}
}

func in(d civil.Date, hh, mm int) attendance.PunchEvent {
	return punch(d, hh, mm, attendance.DirectionIn)
}

func out(d civil.Date, hh, mm int) attendance.PunchEvent {
	return punch(d, hh, mm, attendance.DirectionOut)
}

func straight() attendance.Evaluator {
	return attendance.Evaluator{Shift: attendance.Shift{
		Name:         "straight",
		StartMinutes: 8 * 60,
		EndMinutes:   16 * 60,
		GraceMinutes: 10,
	}}
}

func split() attendance.Evaluator {
	return attendance.Evaluator{Shift: attendance.Shift{
		Name:         "split",
		StartMinutes: 8 * 60,
		EndMinutes:   17 * 60,
		GraceMinutes: 5,
		Split:        &attendance.Gap{StartMinutes: 12 * 60, EndMinutes: 13 * 60},
	}}
}

// =============================================================================
// LATENESS & UNDERTIME
// =============================================================================

func TestEvaluate_OnTimeWithinGrace(t *testing.T) {
	// GIVEN: time-in exactly at start+grace, time-out 8 hours later
	// THEN: not late, no undertime
	rec := straight().Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 8, 10), out(monday, 16, 10),
	})

	assert.False(t, rec.IsLate)
	assert.Equal(t, 0, rec.UndertimeMinutes)
	assert.Equal(t, 8*60, rec.WorkedMinutes)
	assert.True(t, rec.HoursWorked.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.False(t, rec.IsAbsent)
}

func TestEvaluate_OneMinutePastGraceIsLate(t *testing.T) {
	// GIVEN: time-in at start+grace+1 minute
	// THEN: late with exactly one minute of undertime
	rec := straight().Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 8, 11), out(monday, 16, 11),
	})

	assert.True(t, rec.IsLate)
	assert.Equal(t, 1, rec.UndertimeMinutes)
	assert.Equal(t, attendance.StatusLate, rec.Status)
}

func TestEvaluate_EarlyArrivalIsNotNegativeUndertime(t *testing.T) {
	rec := straight().Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 7, 30), out(monday, 16, 0),
	})
	assert.False(t, rec.IsLate)
	assert.Equal(t, 0, rec.UndertimeMinutes)
}

func TestEvaluate_SplitShiftAccumulatesUndertimeAcrossSessions(t *testing.T) {
	// GIVEN: 10 minutes late in the morning (5 past grace), 20 late after lunch (15 past grace)
	rec := split().Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 8, 10), out(monday, 12, 0),
		in(monday, 13, 20), out(monday, 17, 0),
	})

	assert.True(t, rec.IsLate)
	assert.Equal(t, 5+15, rec.UndertimeMinutes)
	assert.Equal(t, 230+220, rec.WorkedMinutes)
	assert.False(t, rec.Incomplete)
}

func TestEvaluate_SplitShiftLateOnlyAfterLunchIsNotLate(t *testing.T) {
	rec := split().Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 7, 55), out(monday, 12, 0),
		in(monday, 13, 30), out(monday, 17, 0),
	})
	assert.False(t, rec.IsLate, "lateness is judged on the morning time-in")
	assert.Equal(t, 25, rec.UndertimeMinutes)
}

func TestEvaluate_SplitShiftAfternoonOnlyCountsMissedMorning(t *testing.T) {
	rec := split().Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 13, 0), out(monday, 17, 0),
	})
	assert.True(t, rec.IsLate)
	assert.Equal(t, 4*60, rec.UndertimeMinutes)
	assert.Equal(t, 4*60, rec.WorkedMinutes)
}

// =============================================================================
// HOURS WORKED & INCOMPLETE DAYS
// =============================================================================

func TestEvaluate_BreakDeductedOnStraightShift(t *testing.T) {
	e := attendance.Evaluator{Shift: attendance.StandardShift()}
	rec := e.Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 8, 0), out(monday, 17, 0),
	})
	assert.Equal(t, 8*60, rec.WorkedMinutes)
	assert.Equal(t, 8*60, e.Shift.ScheduledMinutes())
}

func TestEvaluate_BreakNeverDrivesHoursNegative(t *testing.T) {
	e := attendance.Evaluator{Shift: attendance.StandardShift()}
	rec := e.Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 8, 0), out(monday, 8, 30),
	})
	assert.Equal(t, 0, rec.WorkedMinutes)
	assert.True(t, rec.HoursWorked.IsZero())
}

func TestEvaluate_MissingTimeOutIsIncompleteWithZeroHours(t *testing.T) {
	rec := straight().Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 8, 0),
	})

	assert.True(t, rec.Incomplete)
	assert.Equal(t, 0, rec.WorkedMinutes)
	assert.True(t, rec.HoursWorked.IsZero())
	assert.Nil(t, rec.TimeOut)
	require.NotNil(t, rec.TimeIn)
	assert.Equal(t, attendance.StatusIncomplete, rec.Status)
	assert.False(t, rec.IsAbsent)
}

func TestEvaluate_TimeOutBeforeTimeInIsIncompleteNotNegative(t *testing.T) {
	// GIVEN: the out punch precedes the in punch on the same day
	rec := straight().Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 16, 0), out(monday, 8, 0),
	})

	assert.True(t, rec.Incomplete)
	assert.Equal(t, 0, rec.WorkedMinutes)
	assert.False(t, rec.HoursWorked.IsNegative())
}

func TestEvaluate_UnsortedInputIsOrderedByTimestamp(t *testing.T) {
	rec := straight().Evaluate("emp-1", monday, []attendance.PunchEvent{
		out(monday, 16, 0), in(monday, 8, 0),
	})
	assert.False(t, rec.Incomplete)
	assert.Equal(t, 8*60, rec.WorkedMinutes)
}

func TestEvaluate_DoubleTimeInKeepsLaterPair(t *testing.T) {
	rec := straight().Evaluate("emp-1", monday, []attendance.PunchEvent{
		in(monday, 8, 0), in(monday, 9, 0), out(monday, 16, 0),
	})
	assert.True(t, rec.Incomplete)
	assert.Equal(t, 7*60, rec.WorkedMinutes)
	assert.Equal(t, monday.At(8*60), *rec.TimeIn)
}

// =============================================================================
// ABSENCE, HOLIDAYS, REST DAYS
// =============================================================================

func TestEvaluate_NoPunchesOnWorkdayIsAbsent(t *testing.T) {
	rec := straight().Evaluate("emp-1", monday, nil)
	assert.True(t, rec.IsAbsent)
	assert.Equal(t, attendance.StatusAbsent, rec.Status)
}

func TestEvaluate_NoPunchesOnHolidayIsNotAbsent(t *testing.T) {
	e := straight()
	e.Calendar = civil.NewHolidayList([]civil.Holiday{{ID: "h", Date: monday, Type: civil.HolidayRegular}})

	rec := e.Evaluate("emp-1", monday, nil)
	assert.False(t, rec.IsAbsent)
	require.NotNil(t, rec.Holiday)
	assert.Equal(t, attendance.StatusHoliday, rec.Status)
}

func TestEvaluate_NoPunchesOnWeekendIsRestDay(t *testing.T) {
	saturday := civil.NewDate(2025, time.March, 15)
	rec := straight().Evaluate("emp-1", saturday, nil)
	assert.False(t, rec.IsAbsent)
	assert.True(t, rec.RestDay)
	assert.Equal(t, attendance.StatusRestDay, rec.Status)
}

func TestEvaluate_IgnoresOtherEmployeesAndDates(t *testing.T) {
	other := in(monday, 8, 0)
	other.EmployeeID = "emp-2"
	rec := straight().Evaluate("emp-1", monday, []attendance.PunchEvent{
		other,
		in(monday.AddDays(1), 8, 0), out(monday.AddDays(1), 16, 0),
	})
	assert.True(t, rec.IsAbsent)
}

func TestEvaluate_LocalDateDecidesTheDay(t *testing.T) {
	// 23:30 UTC on Mar 9 is 07:30 on Mar 10 locally
	early := attendance.PunchEvent{
		EmployeeID: "emp-1",
		Timestamp:  time.Date(2025, time.March, 9, 23, 30, 0, 0, time.UTC),
		Direction:  attendance.DirectionIn,
	}
	rec := straight().Evaluate("emp-1", monday, []attendance.PunchEvent{early, out(monday, 16, 0)})
	assert.False(t, rec.IsAbsent)
	assert.Equal(t, 8*60+30, rec.WorkedMinutes)
}

// =============================================================================
// RANGES & SUMMARY
// =============================================================================

func TestEvaluateRange_OneRecordPerDate(t *testing.T) {
	period := civil.Period{Start: monday, End: monday.AddDays(6)}
	punches := []attendance.PunchEvent{
		in(monday, 8, 0), out(monday, 16, 0),
		in(monday, 12, 0), // stray second in on the same day
		in(monday.AddDays(1), 8, 30), out(monday.AddDays(1), 16, 0),
	}

	records := straight().EvaluateRange("emp-1", period, punches)
	require.Len(t, records, 7)

	seen := map[civil.Date]bool{}
	for _, r := range records {
		assert.False(t, seen[r.Date], "duplicate record for %s", r.Date)
		seen[r.Date] = true
	}

	assert.True(t, records[0].Incomplete)
	assert.True(t, records[1].IsLate)
	assert.True(t, records[2].IsAbsent)
	assert.True(t, records[5].RestDay)

	s := attendance.Summarize(records)
	assert.Equal(t, 1, s.DaysPresent)
	assert.Equal(t, 1, s.DaysIncomplete)
	assert.Equal(t, 3, s.DaysAbsent)
	assert.Equal(t, 1, s.DaysLate)
	assert.Equal(t, 20, s.UndertimeMinutes)
}

func TestShiftValidate(t *testing.T) {
	assert.NoError(t, attendance.StandardShift().Validate())
	assert.NoError(t, split().Shift.Validate())

	bad := attendance.Shift{Name: "bad", StartMinutes: 600, EndMinutes: 500}
	assert.Error(t, bad.Validate())

	badSplit := split().Shift
	badSplit.Split = &attendance.Gap{StartMinutes: 7 * 60, EndMinutes: 8 * 60}
	assert.Error(t, badSplit.Validate())
}
