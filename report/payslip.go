package report

import (
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

// PayslipLine is one labelled amount.
type PayslipLine struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
}

// Payslip is the display view of a Breakdown. All amounts are preformatted.
type Payslip struct {
	EmployeeID     string        `json:"employee_id"`
	EmployeeName   string        `json:"employee_name"`
	Department     string        `json:"department,omitempty"`
	Period         string        `json:"period"`
	DailyRate      string        `json:"daily_rate"`
	HourlyRate     string        `json:"hourly_rate"`
	Earnings       []PayslipLine `json:"earnings"`
	Deductions     []PayslipLine `json:"deductions"`
	GrossPay       string        `json:"gross_pay"`
	TotalDeduction string        `json:"total_deductions"`
	NetPay         string        `json:"net_pay"`
	DaysPresent    int           `json:"days_present"`
	DaysAbsent     int           `json:"days_absent"`
	DaysLate       int           `json:"days_late"`
	HoursWorked    string        `json:"hours_worked"`
	Undertime      string        `json:"undertime"`
	IncompleteDays []string      `json:"incomplete_days,omitempty"`
	Conditions     []string      `json:"conditions,omitempty"`
}

// Payslip builds the display view for one employee's breakdown.
func (f Formatter) Payslip(emp payroll.Employee, b payroll.Breakdown) Payslip {
	p := Payslip{
		EmployeeID:     b.EmployeeID,
		EmployeeName:   emp.Name,
		Department:     emp.Department,
		Period:         f.Date(b.Period.Start) + " - " + f.Date(b.Period.End),
		DailyRate:      f.Currency(b.Rates.DailyRate),
		HourlyRate:     f.Currency(b.Rates.HourlyRate),
		GrossPay:       f.Currency(b.GrossPay),
		TotalDeduction: f.Currency(b.TotalDeductions),
		NetPay:         f.Currency(b.NetPay),
		DaysPresent:    b.Attendance.DaysPresent,
		DaysAbsent:     b.Attendance.DaysAbsent,
		DaysLate:       b.Attendance.DaysLate,
		HoursWorked:    f.Hours(b.Attendance.HoursWorked),
		Undertime:      f.Currency(b.UndertimeDeduction),
	}

	p.Earnings = []PayslipLine{{Label: "Basic pay", Amount: f.Currency(b.BasePay)}}
	if !b.HolidayPremium.IsZero() {
		p.Earnings = append(p.Earnings, PayslipLine{Label: "Holiday premium", Amount: f.Currency(b.HolidayPremium)})
	}
	if !b.OvertimePay.IsZero() {
		p.Earnings = append(p.Earnings, PayslipLine{Label: "Overtime", Amount: f.Currency(b.OvertimePay)})
	}
	if !b.OverloadPay.IsZero() {
		p.Earnings = append(p.Earnings, PayslipLine{Label: "Overload", Amount: f.Currency(b.OverloadPay)})
	}

	for _, d := range b.Deductions {
		label := d.Description
		if label == "" {
			label = d.Code
		}
		p.Deductions = append(p.Deductions, PayslipLine{Label: label, Amount: f.Currency(d.Amount)})
	}
	for _, d := range b.IncompleteDays {
		p.IncompleteDays = append(p.IncompleteDays, f.Date(d))
	}
	for _, c := range b.Conditions() {
		p.Conditions = append(p.Conditions, string(c))
	}
	return p
}
