package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
	"github.com/rottnpotato/BISUpayroll-sub004/report"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCurrency_RoundTrip(t *testing.T) {
	// GIVEN: 12345.6
	f := report.NewFormatter()

	// WHEN: formatted and re-parsed
	s := f.Currency(dec("12345.6"))
	back, err := f.ParseCurrency(s)

	// THEN
	assert.Equal(t, "₱12,345.60", s)
	require.NoError(t, err)
	assert.Equal(t, "12345.60", back.StringFixed(2))
	assert.True(t, back.Equal(dec("12345.60")))
}

func TestCurrency_RoundTripAcrossLocales(t *testing.T) {
	tests := []struct {
		lang language.Tag
		want string // empty when the locale's spacing is not pinned
	}{
		{language.English, "₱12,345.60"},
		{language.German, "₱12.345,60"},
		{language.Italian, "₱12.345,60"},
		{language.French, ""},
	}
	for _, tt := range tests {
		t.Run(tt.lang.String(), func(t *testing.T) {
			// GIVEN
			f := report.Formatter{Lang: tt.lang}

			// WHEN
			s := f.Currency(dec("12345.6"))
			back, err := f.ParseCurrency(s)

			// THEN
			if tt.want != "" {
				assert.Equal(t, tt.want, s)
			}
			require.NoError(t, err)
			assert.Equal(t, "12345.60", back.StringFixed(2), "formatted as %q", s)

			neg, err := f.ParseCurrency(f.Currency(dec("-1234567.891")))
			require.NoError(t, err)
			assert.Equal(t, "-1234567.89", neg.StringFixed(2))
		})
	}
}

func TestCurrency_Cases(t *testing.T) {
	f := report.NewFormatter()
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₱0.00"},
		{"999.999", "₱1,000.00"},
		{"1234567.891", "₱1,234,567.89"},
		{"0.005", "₱0.01"},
		{"-50", "-₱50.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Currency(dec(tt.in)))
		})
	}
}

func TestCurrency_IsIdempotent(t *testing.T) {
	f := report.Formatter{}
	assert.Equal(t, f.Currency(dec("42.5")), f.Currency(dec("42.5")))
}

func TestParseCurrency_NegativeAndPlain(t *testing.T) {
	f := report.NewFormatter()

	d, err := f.ParseCurrency("-₱1,050.25")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("-1050.25")))

	d, err = f.ParseCurrency("300")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("300")))

	_, err = f.ParseCurrency("₱abc")
	assert.Error(t, err)
}

func TestDateTime_RendersInCivilZone(t *testing.T) {
	f := report.NewFormatter()
	// 00:05 UTC is 08:05 in UTC+8
	ts := time.Date(2025, time.March, 10, 0, 5, 0, 0, time.UTC)
	assert.Equal(t, "Mar 10, 8:05 AM", f.DateTime(ts))
	assert.Equal(t, "Mar 10, 2025", f.ShortDate(ts))

	// 17:30 UTC on the 9th is already the 10th locally
	late := time.Date(2025, time.March, 9, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, "Mar 10, 1:30 AM", f.DateTime(late))
}

func TestPercentAndHours(t *testing.T) {
	f := report.NewFormatter()
	assert.Equal(t, "12.50%", f.Percent(dec("0.125")))
	assert.Equal(t, "8.50 hrs", f.Hours(dec("8.5")))
}

func sampleBreakdown() payroll.Breakdown {
	start := civil.NewDate(2025, time.March, 1)
	b, _ := payroll.Summarize(payroll.Earnings{
		BasePay:        dec("8000"),
		HolidayPremium: dec("800"),
	}, []payroll.DeductionLineItem{
		{Code: "GSIS", Category: payroll.CategoryGovernment, Amount: dec("720"), Description: "GSIS premium"},
		{Code: "CANTEEN", Category: payroll.CategoryCustom, Amount: dec("80")},
	})
	b.EmployeeID = "emp-1"
	b.Period = civil.Period{Start: start, End: start.AddDays(14)}
	b.IncompleteDays = []civil.Date{start.AddDays(3)}
	return b
}

func TestPayslip_FormatsEveryAmount(t *testing.T) {
	f := report.NewFormatter()
	p := f.Payslip(payroll.Employee{ID: "emp-1", Name: "Ana Cruz", Department: "CAS"}, sampleBreakdown())

	assert.Equal(t, "Mar 1, 2025 - Mar 15, 2025", p.Period)
	assert.Equal(t, "₱8,800.00", p.GrossPay)
	assert.Equal(t, "₱8,000.00", p.NetPay)
	require.Len(t, p.Earnings, 2)
	assert.Equal(t, "Holiday premium", p.Earnings[1].Label)
	require.Len(t, p.Deductions, 2)
	assert.Equal(t, "CANTEEN", p.Deductions[1].Label)
	assert.Equal(t, []string{"incomplete_attendance"}, p.Conditions)
}

func TestWritePayrollXLSX(t *testing.T) {
	// GIVEN: one paid employee and one without a rate
	rows := []report.PayrollRow{
		{Employee: payroll.Employee{ID: "emp-1", Name: "Ana Cruz"}, Breakdown: sampleBreakdown()},
		{Employee: payroll.Employee{ID: "emp-2", Name: "Ben Reyes"}, Err: &payroll.RateNotConfiguredError{EmployeeID: "emp-2"}},
	}

	// WHEN
	var buf bytes.Buffer
	require.NoError(t, report.WritePayrollXLSX(&buf, "Payroll Mar 1-15, 2025", rows))

	// THEN: the workbook reopens with the header and one row per employee
	wb, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	title, err := wb.GetCellValue("Payroll", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Payroll Mar 1-15, 2025", title)

	header, err := wb.GetCellValue("Payroll", "N3")
	require.NoError(t, err)
	assert.Equal(t, "Net Pay", header)

	name, _ := wb.GetCellValue("Payroll", "B4")
	assert.Equal(t, "Ana Cruz", name)

	status, _ := wb.GetCellValue("Payroll", "O4")
	assert.Equal(t, "incomplete_attendance", status)
	status, _ = wb.GetCellValue("Payroll", "O5")
	assert.Equal(t, "rate_not_configured", status)
}
