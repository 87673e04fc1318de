package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

const payrollSheet = "Payroll"

var payrollHeader = []any{
	"Employee ID", "Name", "Department", "Basic Pay", "Holiday Premium", "Overtime",
	"Overload", "Gross Pay", "Government", "Loans", "Other", "Custom",
	"Total Deductions", "Net Pay", "Status",
}

// PayrollRow is one line of the payroll register.
type PayrollRow struct {
	Employee  payroll.Employee
	Breakdown payroll.Breakdown
	Err       error
}

// RowsFromRun flattens a run into register rows, in run order.
func RowsFromRun(run *payroll.Run) []PayrollRow {
	rows := make([]PayrollRow, 0, len(run.Results))
	for _, r := range run.Results {
		rows = append(rows, PayrollRow{Employee: r.Employee, Breakdown: r.Breakdown, Err: r.Err})
	}
	return rows
}

// status is "ok", the incomplete-attendance flag, or the error condition.
func (r PayrollRow) status() string {
	if r.Err != nil {
		if c, ok := payroll.ConditionOf(r.Err); ok {
			return string(c)
		}
		return "error"
	}
	if r.Breakdown.HasIncompleteAttendance() {
		return string(payroll.ConditionIncompleteAttendance)
	}
	return "ok"
}

// WritePayrollXLSX writes the payroll register as a single-sheet workbook.
// Amounts are written as numbers with a peso number format so the sheet stays
// summable.
func WritePayrollXLSX(w io.Writer, title string, rows []PayrollRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	fmtPeso := `"₱"#,##0.00`
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &fmtPeso})
	if err != nil {
		return err
	}

	if err := f.SetCellValue(payrollSheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(payrollSheet, "A1", "A1", bold); err != nil {
		return err
	}
	if err := f.SetSheetRow(payrollSheet, "A3", &payrollHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(payrollSheet, "A3", "O3", bold); err != nil {
		return err
	}

	for i, r := range rows {
		b := r.Breakdown
		cats := b.DeductionsByCategory()
		values := []any{
			r.Employee.ID, r.Employee.Name, r.Employee.Department,
			b.BasePay.InexactFloat64(), b.HolidayPremium.InexactFloat64(),
			b.OvertimePay.InexactFloat64(), b.OverloadPay.InexactFloat64(),
			b.GrossPay.InexactFloat64(),
			cats[payroll.CategoryGovernment].InexactFloat64(),
			cats[payroll.CategoryLoans].InexactFloat64(),
			cats[payroll.CategoryOther].InexactFloat64(),
			cats[payroll.CategoryCustom].InexactFloat64(),
			b.TotalDeductions.InexactFloat64(), b.NetPay.InexactFloat64(),
			r.status(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(payrollSheet, cell, &values); err != nil {
			return err
		}
		from, _ := excelize.CoordinatesToCellName(4, i+4)
		to, _ := excelize.CoordinatesToCellName(14, i+4)
		if err := f.SetCellStyle(payrollSheet, from, to, money); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(payrollSheet, "A", "C", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(payrollSheet, "D", "O", 14); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
