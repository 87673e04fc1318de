/*
aggregate.go - Turning attendance, overtime and deductions into pay

PURPOSE:
  PayrollAggregator. Summarize does the gross/net arithmetic; Aggregator
  derives the earnings that feed it from one employee's attendance records.

EARNINGS:
  base pay         daily rate per paid workday, minus undertime
  holiday premium  daily rate x (holiday multiplier - 1) on worked holidays
  overtime pay     approved hours x tier 1 (workday) or tier 2 (rest day, holiday)
  overload pay     approved overload hours x overload hourly rate

  gross = base + overtime + overload + holiday premium
  net   = gross - sum(deductions), never negative

INCOMPLETE DAYS:
  A day with a missing or out-of-order punch pays nothing. It is listed in
  Breakdown.IncompleteDays so a reviewer can fix the punches and re-run.

SEE ALSO:
  - rates.go: Rates and the resolver
  - runner.go: batch computation over a Source
*/
package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
)

// Earnings are the gross pay components.
type Earnings struct {
	BasePay        decimal.Decimal
	OvertimePay    decimal.Decimal
	OverloadPay    decimal.Decimal
	HolidayPremium decimal.Decimal
}

// Gross sums the components.
func (e Earnings) Gross() decimal.Decimal {
	return Sum(e.BasePay, e.OvertimePay, e.OverloadPay, e.HolidayPremium)
}

// DayPay is the base pay credited for one date.
type DayPay struct {
	Date               civil.Date
	Status             attendance.Status
	Base               decimal.Decimal
	HolidayPremium     decimal.Decimal
	Multiplier         decimal.Decimal
	UndertimeMinutes   int
	UndertimeDeduction decimal.Decimal
}

// OvertimeLine is the pay for one approved overtime or overload request.
type OvertimeLine struct {
	RequestID string
	Date      civil.Date
	Kind      OvertimeKind
	Hours     decimal.Decimal
	Rate      decimal.Decimal
	Amount    decimal.Decimal
}

// Breakdown is the full result for one employee and period.
type Breakdown struct {
	EmployeeID string
	Period     civil.Period

	Earnings
	GrossPay        decimal.Decimal
	Deductions      []DeductionLineItem
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal

	Rates              Rates
	Days               []DayPay
	Overtime           []OvertimeLine
	UndertimeMinutes   int
	UndertimeDeduction decimal.Decimal
	IncompleteDays     []civil.Date
	Attendance         attendance.Summary
}

// HasIncompleteAttendance reports the incomplete_attendance condition.
func (b Breakdown) HasIncompleteAttendance() bool { return len(b.IncompleteDays) > 0 }

// Conditions lists the flagged (non-error) states of the result.
func (b Breakdown) Conditions() []Condition {
	if b.HasIncompleteAttendance() {
		return []Condition{ConditionIncompleteAttendance}
	}
	return nil
}

// DeductionsByCategory sums the breakdown's deductions per category.
func (b Breakdown) DeductionsByCategory() map[Category]decimal.Decimal {
	return TotalsByCategory(b.Deductions)
}

// =============================================================================
// SUMMARIZE
// =============================================================================

// Summarize computes gross and net pay. When deductions exceed gross it returns
// a zero Breakdown and *DeductionsExceedGrossError instead of a negative net.
func Summarize(earnings Earnings, deductions []DeductionLineItem) (Breakdown, error) {
	b, err := summarize(earnings, deductions)
	if err != nil {
		return Breakdown{}, err
	}
	return b, nil
}

// summarize fills every total it can before failing, so Compute can still
// report gross pay alongside the error.
func summarize(earnings Earnings, deductions []DeductionLineItem) (Breakdown, error) {
	earnings = Earnings{
		BasePay:        Round(earnings.BasePay),
		OvertimePay:    Round(earnings.OvertimePay),
		OverloadPay:    Round(earnings.OverloadPay),
		HolidayPremium: Round(earnings.HolidayPremium),
	}

	total := decimal.Zero
	items := make([]DeductionLineItem, len(deductions))
	for i, d := range deductions {
		if d.Amount.IsNegative() {
			return Breakdown{}, fmt.Errorf("%w: deduction %s is negative (%s)", ErrInvalidAmount, d.Code, d.Amount)
		}
		d.Amount = Round(d.Amount)
		items[i] = d
		total = total.Add(d.Amount)
	}

	b := Breakdown{
		Earnings:        earnings,
		GrossPay:        earnings.Gross(),
		Deductions:      items,
		TotalDeductions: total,
		NetPay:          decimal.Zero,
	}
	net := b.GrossPay.Sub(total)
	if net.IsNegative() {
		return b, &DeductionsExceedGrossError{
			GrossPay:        b.GrossPay,
			TotalDeductions: total,
			Shortfall:       net.Neg(),
		}
	}
	b.NetPay = net
	return b, nil
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Input is everything needed to pay one employee for one period.
type Input struct {
	EmployeeID    string
	Period        civil.Period
	Shift         attendance.Shift
	Calendar      civil.Calendar
	Records       []attendance.Record
	Rates         Rates
	OverloadRates Rates
	Overtime      []OvertimeRequest
	Deductions    []DeductionLineItem
}

// Aggregator computes Breakdowns. The zero value is usable.
type Aggregator struct{}

// Compute derives earnings from the input and summarizes them. On
// DeductionsExceedGross the returned Breakdown still carries the earnings,
// gross pay and deductions, with NetPay left at zero.
func (Aggregator) Compute(in Input) (Breakdown, error) {
	var (
		earnings  Earnings
		days      []DayPay
		lines     []OvertimeLine
		incomp    []civil.Date
		undertime int
		utDeduct  = decimal.Zero
	)
	perMinute := decimal.Zero
	if in.Rates.HoursPerDay.IsPositive() {
		perMinute = in.Rates.PerMinute()
	}

	var inPeriod []attendance.Record
	for _, r := range in.Records {
		if r.EmployeeID != "" && r.EmployeeID != in.EmployeeID {
			continue
		}
		if !in.Period.Contains(r.Date) {
			continue
		}
		inPeriod = append(inPeriod, r)

		if r.Incomplete {
			incomp = append(incomp, r.Date)
			continue
		}
		if !r.Worked() || r.RestDay {
			continue
		}

		mult := decimal.NewFromInt(1)
		if r.Holiday != nil {
			mult = r.Holiday.Type.Multiplier()
		}
		dp := DayPay{
			Date:             r.Date,
			Status:           r.Status,
			Base:             in.Rates.DailyRate,
			HolidayPremium:   Round(in.Rates.DailyRate.Mul(mult.Sub(decimal.NewFromInt(1)))),
			Multiplier:       mult,
			UndertimeMinutes: r.UndertimeMinutes,
		}
		dp.UndertimeDeduction = Round(perMinute.Mul(decimal.NewFromInt(int64(r.UndertimeMinutes))))
		if dp.UndertimeDeduction.GreaterThan(dp.Base) {
			dp.UndertimeDeduction = dp.Base
		}

		earnings.BasePay = earnings.BasePay.Add(dp.Base.Sub(dp.UndertimeDeduction))
		earnings.HolidayPremium = earnings.HolidayPremium.Add(dp.HolidayPremium)
		undertime += r.UndertimeMinutes
		utDeduct = utDeduct.Add(dp.UndertimeDeduction)
		days = append(days, dp)
	}

	for _, req := range in.Overtime {
		if req.Status != OvertimeApproved || req.EmployeeID != in.EmployeeID || !in.Period.Contains(req.Date) {
			continue
		}
		line := OvertimeLine{RequestID: req.ID, Date: req.Date, Kind: req.kind(), Hours: req.Hours}
		switch line.Kind {
		case KindOverload:
			line.Rate = in.OverloadRates.HourlyRate
			line.Amount = Round(req.Hours.Mul(line.Rate))
			earnings.OverloadPay = earnings.OverloadPay.Add(line.Amount)
		default:
			line.Rate = in.Rates.OvertimeRate1
			if in.premiumDay(req.Date) {
				line.Rate = in.Rates.OvertimeRate2
			}
			line.Amount = Round(req.Hours.Mul(line.Rate))
			earnings.OvertimePay = earnings.OvertimePay.Add(line.Amount)
		}
		lines = append(lines, line)
	}

	b, err := summarize(earnings, in.Deductions)
	if errors.Is(err, ErrInvalidAmount) {
		return Breakdown{}, err
	}
	var dErr *DeductionsExceedGrossError
	if errors.As(err, &dErr) {
		dErr.EmployeeID = in.EmployeeID
	}

	b.EmployeeID = in.EmployeeID
	b.Period = in.Period
	b.Rates = in.Rates
	b.Days = days
	b.Overtime = lines
	b.UndertimeMinutes = undertime
	b.UndertimeDeduction = utDeduct
	b.IncompleteDays = incomp
	b.Attendance = attendance.Summarize(inPeriod)
	return b, err
}

// premiumDay is true for rest days and holidays, which earn tier 2 overtime.
func (in Input) premiumDay(d civil.Date) bool {
	if in.Calendar != nil {
		if _, ok := in.Calendar.HolidayOn(d); ok {
			return true
		}
	}
	return !in.Shift.IsWorkday(d)
}
