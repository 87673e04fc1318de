package sqlite_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/factory"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
	"github.com/rottnpotato/BISUpayroll-sub004/store/sqlite"
)

var mon = civil.NewDate(2025, time.March, 10)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createEmployee(t *testing.T, store *sqlite.Store, name, email string) sqlite.Employee {
	t.Helper()
	emp, err := store.CreateEmployee(context.Background(), sqlite.Employee{Name: name, Email: email})
	require.NoError(t, err)
	return emp
}

func punch(emp string, d civil.Date, minutes int, dir attendance.Direction) attendance.PunchEvent {
	return attendance.PunchEvent{EmployeeID: emp, Timestamp: d.At(minutes), Direction: dir}
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func TestEmployees_CreateAndDuplicateEmail(t *testing.T) {
	// GIVEN: a store with one employee
	store := newStore(t)
	ctx := context.Background()
	emp := createEmployee(t, store, "Ana Cruz", "ana@bisu.edu.ph")

	// THEN: defaults are applied
	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, sqlite.RoleEmployee, emp.Role)
	assert.True(t, emp.Active)

	// WHEN: another employee takes the same email
	_, err := store.CreateEmployee(ctx, sqlite.Employee{Name: "Other", Email: "ana@bisu.edu.ph"})

	// THEN: the write is rejected as a duplicate
	assert.ErrorIs(t, err, sqlite.ErrDuplicate)
}

func TestEmployees_NotFoundWrapsPayrollSentinel(t *testing.T) {
	store := newStore(t)

	_, err := store.GetEmployee(context.Background(), "missing")

	assert.ErrorIs(t, err, sqlite.ErrNotFound)
	assert.True(t, payroll.IsNotFound(err))
}

func TestEmployees_SourceSkipsInactive(t *testing.T) {
	// GIVEN: two employees, one deactivated
	store := newStore(t)
	ctx := context.Background()
	createEmployee(t, store, "Ana Cruz", "ana@bisu.edu.ph")
	ben := createEmployee(t, store, "Ben Reyes", "ben@bisu.edu.ph")
	ben.Active = false
	require.NoError(t, store.SaveEmployee(ctx, ben))

	// WHEN: the payroll source lists employees
	emps, err := store.Employees(ctx)

	// THEN: only the active one is returned
	require.NoError(t, err)
	require.Len(t, emps, 1)
	assert.Equal(t, "Ana Cruz", emps[0].Name)
}

func TestEmployees_ShiftResolvedFromConfig(t *testing.T) {
	// GIVEN: a split shift stored as JSON and assigned to an employee
	store := newStore(t)
	ctx := context.Background()
	f := factory.NewConfigFactory()
	split := attendance.Shift{
		Name:         "Faculty",
		StartMinutes: 7 * 60,
		EndMinutes:   16 * 60,
		GraceMinutes: 10,
		Split:        &attendance.Gap{StartMinutes: 11 * 60, EndMinutes: 12 * 60},
	}
	raw, err := json.Marshal(f.ShiftToJSON("", split))
	require.NoError(t, err)
	rec, err := store.SaveShift(ctx, sqlite.ShiftRecord{Name: "Faculty", ConfigJSON: string(raw)})
	require.NoError(t, err)

	emp := createEmployee(t, store, "Ana Cruz", "ana@bisu.edu.ph")
	emp.ShiftID = rec.ID
	require.NoError(t, store.SaveEmployee(ctx, emp))

	// WHEN: the payroll source loads the employee
	got, err := store.Employee(ctx, emp.ID)

	// THEN: the shift is the parsed split shift
	require.NoError(t, err)
	assert.Equal(t, 7*60, got.Shift.StartMinutes)
	require.NotNil(t, got.Shift.Split)
	assert.Equal(t, 12*60, got.Shift.Split.EndMinutes)
}

// =============================================================================
// PUNCHES & HOLIDAYS
// =============================================================================

func TestPunches_DuplicateRejected(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	p := punch("emp-1", mon, 8*60, attendance.DirectionIn)
	_, err := store.AppendPunch(ctx, p)
	require.NoError(t, err)

	_, err = store.AppendPunch(ctx, p)
	assert.ErrorIs(t, err, sqlite.ErrDuplicate)
}

func TestPunches_LoadUsesCivilDayBounds(t *testing.T) {
	// GIVEN: punches just inside and just outside a one-day period (UTC+8)
	store := newStore(t)
	ctx := context.Background()
	for _, p := range []attendance.PunchEvent{
		punch("emp-1", mon, 0, attendance.DirectionIn),
		punch("emp-1", mon, 23*60+59, attendance.DirectionOut),
		punch("emp-1", mon.AddDays(1), 0, attendance.DirectionIn),
		punch("emp-1", mon.AddDays(-1), 23*60+59, attendance.DirectionOut),
		punch("emp-2", mon, 8*60, attendance.DirectionIn),
	} {
		_, err := store.AppendPunch(ctx, p)
		require.NoError(t, err)
	}

	// WHEN: loading the period
	got, err := store.LoadPunches(ctx, "emp-1", civil.Period{Start: mon, End: mon})

	// THEN: only the two punches on the civil date come back, in order
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, attendance.DirectionIn, got[0].Direction)
	assert.Equal(t, attendance.DirectionOut, got[1].Direction)
	assert.True(t, got[0].Timestamp.Equal(mon.At(0)))

	last, err := store.LastPunch(ctx, "emp-1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Timestamp.Equal(mon.AddDays(1).At(0)))
}

func TestHolidays_ListAndDelete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	h, err := store.SaveHoliday(ctx, civil.Holiday{Date: mon, Name: "Araw ng Dagohoy", Type: civil.HolidaySpecial})
	require.NoError(t, err)
	_, err = store.SaveHoliday(ctx, civil.Holiday{Date: mon.AddDays(30), Name: "Later", Type: civil.HolidayRegular})
	require.NoError(t, err)

	got, err := store.ListHolidays(ctx, civil.Period{Start: mon, End: mon.AddDays(5)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, civil.HolidaySpecial, got[0].Type)

	require.NoError(t, store.DeleteHoliday(ctx, h.ID))
	assert.ErrorIs(t, store.DeleteHoliday(ctx, h.ID), sqlite.ErrNotFound)
}

// =============================================================================
// OVERTIME
// =============================================================================

func TestOvertime_PendingOnlyChanges(t *testing.T) {
	// GIVEN: a pending request
	store := newStore(t)
	ctx := context.Background()
	req, err := store.CreateOvertime(ctx, payroll.OvertimeRequest{
		EmployeeID: "emp-1",
		Date:       mon,
		Hours:      decimal.NewFromInt(2),
		Reason:     "Enrollment week",
	})
	require.NoError(t, err)
	assert.Equal(t, payroll.OvertimePending, req.Status)
	assert.Equal(t, payroll.KindOvertime, req.Kind)

	// WHEN: it is edited while pending
	req.Hours = decimal.NewFromInt(3)
	updated, err := store.UpdateOvertime(ctx, req)

	// THEN: the edit sticks
	require.NoError(t, err)
	assert.True(t, updated.Hours.Equal(decimal.NewFromInt(3)))

	// WHEN: it is approved
	approved, err := store.ReviewOvertime(ctx, req.ID, true, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.OvertimeApproved, approved.Status)
	assert.Equal(t, "admin-1", approved.ReviewedBy)

	// THEN: further edits, deletes and reviews are refused
	_, err = store.UpdateOvertime(ctx, req)
	assert.ErrorIs(t, err, sqlite.ErrRequestNotPending)
	assert.ErrorIs(t, store.DeleteOvertime(ctx, req.ID), sqlite.ErrRequestNotPending)
	_, err = store.ReviewOvertime(ctx, req.ID, false, "admin-2")
	assert.ErrorIs(t, err, payroll.ErrRequestNotPending)

	// AND: unknown requests are not found
	assert.ErrorIs(t, store.DeleteOvertime(ctx, "missing"), sqlite.ErrNotFound)
}

func TestOvertime_ListFilters(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	a, err := store.CreateOvertime(ctx, payroll.OvertimeRequest{EmployeeID: "emp-1", Date: mon, Hours: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = store.CreateOvertime(ctx, payroll.OvertimeRequest{EmployeeID: "emp-2", Date: mon, Hours: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = store.ReviewOvertime(ctx, a.ID, false, "admin")
	require.NoError(t, err)

	pending, err := store.ListOvertime(ctx, sqlite.OvertimeFilter{Status: payroll.OvertimePending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "emp-2", pending[0].EmployeeID)

	mine, err := store.ListOvertime(ctx, sqlite.OvertimeFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, payroll.OvertimeRejected, mine[0].Status)
}

// =============================================================================
// DEDUCTIONS & RUNS
// =============================================================================

func TestDeductions_ChargedOnceInPeriodContainingEnd(t *testing.T) {
	// GIVEN: a monthly GSIS premium entered once for March
	store := newStore(t)
	ctx := context.Background()
	march := civil.Period{Start: civil.NewDate(2025, time.March, 1), End: civil.NewDate(2025, time.March, 31)}
	_, err := store.AddDeduction(ctx, sqlite.Deduction{
		EmployeeID: "emp-1",
		Period:     march,
		Item:       payroll.DeductionLineItem{Code: "GSIS", Category: payroll.CategoryGovernment, Amount: decimal.NewFromInt(2000)},
	})
	require.NoError(t, err)

	// WHEN: reading it for both semi-monthly periods of March
	periods := civil.PeriodConfig{Type: civil.PeriodSemiMonthly}
	first, err := store.Deductions(ctx, "emp-1", periods.PeriodFor(civil.NewDate(2025, time.March, 5)))
	require.NoError(t, err)
	second, err := store.Deductions(ctx, "emp-1", periods.PeriodFor(civil.NewDate(2025, time.March, 20)))
	require.NoError(t, err)

	// THEN: only the period holding March 31 charges it
	assert.Empty(t, first)
	require.Len(t, second, 1)
	assert.Equal(t, "GSIS", second[0].Code)

	none, err := store.Deductions(ctx, "emp-1", civil.Period{Start: civil.NewDate(2025, time.April, 1), End: civil.NewDate(2025, time.April, 15)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeductions_NegativeAmountRejected(t *testing.T) {
	store := newStore(t)
	_, err := store.AddDeduction(context.Background(), sqlite.Deduction{
		EmployeeID: "emp-1",
		Period:     civil.Period{Start: mon, End: mon},
		Item:       payroll.DeductionLineItem{Code: "COOP", Amount: decimal.NewFromInt(-1)},
	})
	assert.ErrorIs(t, err, payroll.ErrInvalidAmount)
}

func TestPayrollRuns_CompletedPeriod(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	period := civil.Period{Start: civil.NewDate(2025, time.March, 1), End: civil.NewDate(2025, time.March, 15)}

	run, err := store.SavePayrollRun(ctx, sqlite.PayrollRun{Period: period, Status: sqlite.RunRunning, Trigger: "manual", StartedAt: time.Now()})
	require.NoError(t, err)

	done, err := store.IsPeriodCompleted(ctx, period)
	require.NoError(t, err)
	assert.False(t, done)

	now := time.Now().UTC()
	run.Status = sqlite.RunCompleted
	run.Processed = 3
	run.CompletedAt = &now
	_, err = store.SavePayrollRun(ctx, run)
	require.NoError(t, err)

	done, err = store.IsPeriodCompleted(ctx, period)
	require.NoError(t, err)
	assert.True(t, done)

	runs, err := store.ListPayrollRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Processed)
	assert.Equal(t, period, runs[0].Period)
}

// =============================================================================
// RUNNER OVER SQLITE
// =============================================================================

func TestRunner_ComputesFromStoredData(t *testing.T) {
	// GIVEN: a global 800 daily rate, one full day of punches and a deduction
	store := newStore(t)
	ctx := context.Background()
	emp := createEmployee(t, store, "Ana Cruz", "ana@bisu.edu.ph")

	_, err := store.SaveRule(ctx, payroll.Rule{Type: payroll.RuleDailyRate, Amount: decimal.NewFromInt(800), IsActive: true, AppliesToAll: true})
	require.NoError(t, err)
	for _, p := range []attendance.PunchEvent{
		punch(emp.ID, mon, 7*60+55, attendance.DirectionIn),
		punch(emp.ID, mon, 17*60+5, attendance.DirectionOut),
	} {
		_, err := store.AppendPunch(ctx, p)
		require.NoError(t, err)
	}
	period := civil.Period{Start: mon, End: mon}
	_, err = store.AddDeduction(ctx, sqlite.Deduction{
		EmployeeID: emp.ID,
		Period:     period,
		Item:       payroll.DeductionLineItem{Code: "PAGIBIG", Amount: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)

	// WHEN: the runner computes the employee
	runner := payroll.NewRunner(store, payroll.DefaultRateConfig())
	b, err := runner.ComputeEmployee(ctx, emp.ID, period)

	// THEN: one day of base pay less the deduction, classified from the catalog
	require.NoError(t, err)
	assert.True(t, b.GrossPay.Equal(decimal.NewFromInt(800)), "gross %s", b.GrossPay)
	assert.True(t, b.NetPay.Equal(decimal.NewFromInt(700)), "net %s", b.NetPay)
	require.Len(t, b.Deductions, 1)
	assert.Equal(t, payroll.CategoryGovernment, b.Deductions[0].Category)
}

func TestRunner_MonthlyDeductionWithheldOnceAcrossSemiMonthlyRuns(t *testing.T) {
	// GIVEN: one worked day in each half of March and a 500 monthly premium
	store := newStore(t)
	ctx := context.Background()
	emp := createEmployee(t, store, "Ana Cruz", "ana@bisu.edu.ph")

	_, err := store.SaveRule(ctx, payroll.Rule{Type: payroll.RuleDailyRate, Amount: decimal.NewFromInt(800), IsActive: true, AppliesToAll: true})
	require.NoError(t, err)
	mar17 := civil.NewDate(2025, time.March, 17)
	for _, day := range []civil.Date{mon, mar17} {
		for _, p := range []attendance.PunchEvent{
			punch(emp.ID, day, 8*60, attendance.DirectionIn),
			punch(emp.ID, day, 17*60, attendance.DirectionOut),
		} {
			_, err := store.AppendPunch(ctx, p)
			require.NoError(t, err)
		}
	}
	_, err = store.AddDeduction(ctx, sqlite.Deduction{
		EmployeeID: emp.ID,
		Period:     civil.Period{Start: civil.NewDate(2025, time.March, 1), End: civil.NewDate(2025, time.March, 31)},
		Item:       payroll.DeductionLineItem{Code: "GSIS", Amount: decimal.NewFromInt(500)},
	})
	require.NoError(t, err)

	// WHEN: both March payrolls are computed
	runner := payroll.NewRunner(store, payroll.DefaultRateConfig())
	periods := civil.PeriodConfig{Type: civil.PeriodSemiMonthly}
	first, err := runner.ComputeEmployee(ctx, emp.ID, periods.PeriodFor(mon))
	require.NoError(t, err)
	second, err := runner.ComputeEmployee(ctx, emp.ID, periods.PeriodFor(mar17))
	require.NoError(t, err)

	// THEN: the premium is withheld once, by the second run
	assert.True(t, first.TotalDeductions.IsZero(), "first half %s", first.TotalDeductions)
	assert.True(t, second.TotalDeductions.Equal(decimal.NewFromInt(500)), "second half %s", second.TotalDeductions)
	assert.True(t, first.TotalDeductions.Add(second.TotalDeductions).Equal(decimal.NewFromInt(500)))
	assert.True(t, second.NetPay.Equal(decimal.NewFromInt(300)), "net %s", second.NetPay)
}
