/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Money and hours are
  decimal strings so the dashboard never sees float rounding.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types validate themselves (validate methods below) before a
  handler touches the store. Configuration bodies (rules, shifts) are
  validated by the factory package.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: ShiftJSON and RuleJSON
*/
package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
	"github.com/rottnpotato/BISUpayroll-sub004/store/sqlite"
)

// errInvalidRequest marks request validation failures (400).
var errInvalidRequest = errors.New("invalid request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidRequest, fmt.Sprintf(format, args...))
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	Employee  EmployeeDTO `json:"employee"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	ShiftID    string `json:"shift_id,omitempty"`
	Active     bool   `json:"active"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:         e.ID,
		Name:       e.Name,
		Email:      e.Email,
		Role:       e.Role,
		Department: e.Department,
		ShiftID:    e.ShiftID,
		Active:     e.Active,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	ShiftID    string `json:"shift_id"`
}

func (r CreateEmployeeRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Name) == "":
		return invalid("name is required")
	case !strings.Contains(r.Email, "@"):
		return invalid("a valid email is required")
	case len(r.Password) < 8:
		return invalid("password must be at least 8 characters")
	case r.Role != "" && r.Role != sqlite.RoleAdmin && r.Role != sqlite.RoleEmployee:
		return invalid("role must be %q or %q", sqlite.RoleAdmin, sqlite.RoleEmployee)
	}
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// PunchRequest is the body of POST /api/attendance/punch. Direction may be
// omitted to toggle from the last punch. EmployeeID and Timestamp are honored
// for admins only (corrections and imports).
type PunchRequest struct {
	Direction  string `json:"direction"`
	EmployeeID string `json:"employee_id"`
	Timestamp  string `json:"timestamp"` // RFC 3339
}

// PunchDTO represents a recorded punch.
type PunchDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Direction  string `json:"direction"`
	Timestamp  string `json:"timestamp"`
	LocalDate  string `json:"local_date"`
	LocalTime  string `json:"local_time"`
}

func toPunchDTO(p attendance.PunchEvent) PunchDTO {
	local := p.Timestamp.In(civil.Zone)
	return PunchDTO{
		ID:         p.ID,
		EmployeeID: p.EmployeeID,
		Direction:  string(p.Direction),
		Timestamp:  p.Timestamp.UTC().Format(time.RFC3339),
		LocalDate:  civil.LocalDateKey(p.Timestamp).String(),
		LocalTime:  local.Format("15:04"),
	}
}

// AttendanceRecordDTO is one evaluated day.
type AttendanceRecordDTO struct {
	Date             string `json:"date"`
	Status           string `json:"status"`
	TimeIn           string `json:"time_in,omitempty"`
	TimeOut          string `json:"time_out,omitempty"`
	HoursWorked      string `json:"hours_worked"`
	IsLate           bool   `json:"is_late"`
	IsAbsent         bool   `json:"is_absent"`
	UndertimeMinutes int    `json:"undertime_minutes"`
	Incomplete       bool   `json:"incomplete,omitempty"`
	Holiday          string `json:"holiday,omitempty"`
}

func toAttendanceRecordDTO(r attendance.Record) AttendanceRecordDTO {
	dto := AttendanceRecordDTO{
		Date:             r.Date.String(),
		Status:           string(r.Status),
		HoursWorked:      r.HoursWorked.StringFixed(2),
		IsLate:           r.IsLate,
		IsAbsent:         r.IsAbsent,
		UndertimeMinutes: r.UndertimeMinutes,
		Incomplete:       r.Incomplete,
	}
	if r.TimeIn != nil {
		dto.TimeIn = r.TimeIn.In(civil.Zone).Format("15:04")
	}
	if r.TimeOut != nil {
		dto.TimeOut = r.TimeOut.In(civil.Zone).Format("15:04")
	}
	if r.Holiday != nil {
		dto.Holiday = r.Holiday.Name
	}
	return dto
}

// AttendanceSummaryDTO aggregates a range.
type AttendanceSummaryDTO struct {
	DaysPresent      int    `json:"days_present"`
	DaysLate         int    `json:"days_late"`
	DaysAbsent       int    `json:"days_absent"`
	DaysIncomplete   int    `json:"days_incomplete"`
	HolidaysWorked   int    `json:"holidays_worked"`
	UndertimeMinutes int    `json:"undertime_minutes"`
	HoursWorked      string `json:"hours_worked"`
}

func toAttendanceSummaryDTO(s attendance.Summary) AttendanceSummaryDTO {
	return AttendanceSummaryDTO{
		DaysPresent:      s.DaysPresent,
		DaysLate:         s.DaysLate,
		DaysAbsent:       s.DaysAbsent,
		DaysIncomplete:   s.DaysIncomplete,
		HolidaysWorked:   s.HolidaysWorked,
		UndertimeMinutes: s.UndertimeMinutes,
		HoursWorked:      s.HoursWorked.StringFixed(2),
	}
}

// =============================================================================
// OVERTIME
// =============================================================================

// OvertimeRequestBody is the body of POST and PUT /api/overtime.
type OvertimeRequestBody struct {
	EmployeeID string          `json:"employee_id"`
	Date       string          `json:"date"`
	Hours      decimal.Decimal `json:"hours"`
	Kind       string          `json:"kind"`
	Reason     string          `json:"reason"`
}

func (b OvertimeRequestBody) toDomain(employeeID string) (payroll.OvertimeRequest, error) {
	date, err := civil.ParseDate(b.Date)
	if err != nil {
		return payroll.OvertimeRequest{}, invalid("date must be YYYY-MM-DD")
	}
	kind := payroll.OvertimeKind(b.Kind)
	switch kind {
	case "":
		kind = payroll.KindOvertime
	case payroll.KindOvertime, payroll.KindOverload:
	default:
		return payroll.OvertimeRequest{}, invalid("kind must be %q or %q", payroll.KindOvertime, payroll.KindOverload)
	}
	r := payroll.OvertimeRequest{
		EmployeeID: employeeID,
		Date:       date,
		Hours:      b.Hours,
		Kind:       kind,
		Reason:     strings.TrimSpace(b.Reason),
		Status:     payroll.OvertimePending,
	}
	if err := r.Validate(); err != nil {
		return payroll.OvertimeRequest{}, fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return r, nil
}

// OvertimeDTO represents an overtime request.
type OvertimeDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Hours      string `json:"hours"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	ReviewedBy string `json:"reviewed_by,omitempty"`
	ReviewedAt string `json:"reviewed_at,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

func toOvertimeDTO(r payroll.OvertimeRequest) OvertimeDTO {
	dto := OvertimeDTO{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Date:       r.Date.String(),
		Hours:      r.Hours.String(),
		Kind:       string(r.Kind),
		Status:     string(r.Status),
		Reason:     r.Reason,
		ReviewedBy: r.ReviewedBy,
	}
	if r.ReviewedAt != nil {
		dto.ReviewedAt = r.ReviewedAt.UTC().Format(time.RFC3339)
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// HOLIDAYS, SHIFTS & DEDUCTIONS
// =============================================================================

// HolidayDTO represents a holiday.
type HolidayDTO struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Multiplier string `json:"multiplier"`
}

func toHolidayDTO(h civil.Holiday) HolidayDTO {
	return HolidayDTO{
		ID:         h.ID,
		Date:       h.Date.String(),
		Name:       h.Name,
		Type:       string(h.Type),
		Multiplier: h.Type.Multiplier().StringFixed(1),
	}
}

// CreateHolidayRequest is the body of POST /api/holidays.
type CreateHolidayRequest struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// ShiftDTO represents a stored shift.
type ShiftDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Config any    `json:"config"`
}

// DeductionRequest is the body of POST /api/employees/{id}/deductions.
type DeductionRequest struct {
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Code        string          `json:"code"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// DeductionDTO represents a stored deduction.
type DeductionDTO struct {
	ID          string `json:"id"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Code        string `json:"code"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

func toDeductionDTO(d sqlite.Deduction) DeductionDTO {
	return DeductionDTO{
		ID:          d.ID,
		PeriodStart: d.Period.Start.String(),
		PeriodEnd:   d.Period.End.String(),
		Code:        d.Item.Code,
		Category:    string(d.Item.Category),
		Amount:      d.Item.Amount.StringFixed(2),
		Description: d.Item.Description,
	}
}

// =============================================================================
// PAYROLL
// =============================================================================

// BreakdownDTO is the machine-readable pay breakdown. Formatted views come
// from the reports endpoint.
type BreakdownDTO struct {
	EmployeeID         string            `json:"employee_id"`
	PeriodStart        string            `json:"period_start"`
	PeriodEnd          string            `json:"period_end"`
	DailyRate          string            `json:"daily_rate"`
	HourlyRate         string            `json:"hourly_rate"`
	RateSource         string            `json:"rate_source"`
	BasePay            string            `json:"base_pay"`
	HolidayPremium     string            `json:"holiday_premium"`
	OvertimePay        string            `json:"overtime_pay"`
	OverloadPay        string            `json:"overload_pay"`
	GrossPay           string            `json:"gross_pay"`
	Deductions         []DeductionLine   `json:"deductions"`
	DeductionsByCat    map[string]string `json:"deductions_by_category"`
	TotalDeductions    string            `json:"total_deductions"`
	NetPay             string            `json:"net_pay"`
	UndertimeMinutes   int               `json:"undertime_minutes"`
	UndertimeDeduction string            `json:"undertime_deduction"`
	IncompleteDays     []string          `json:"incomplete_days,omitempty"`
	Conditions         []string          `json:"conditions,omitempty"`
}

// DeductionLine is one deduction in a breakdown.
type DeductionLine struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

func toBreakdownDTO(b payroll.Breakdown) BreakdownDTO {
	dto := BreakdownDTO{
		EmployeeID:         b.EmployeeID,
		PeriodStart:        b.Period.Start.String(),
		PeriodEnd:          b.Period.End.String(),
		DailyRate:          b.Rates.DailyRate.StringFixed(2),
		HourlyRate:         b.Rates.HourlyRate.StringFixed(2),
		RateSource:         string(b.Rates.Source),
		BasePay:            b.BasePay.StringFixed(2),
		HolidayPremium:     b.HolidayPremium.StringFixed(2),
		OvertimePay:        b.OvertimePay.StringFixed(2),
		OverloadPay:        b.OverloadPay.StringFixed(2),
		GrossPay:           b.GrossPay.StringFixed(2),
		Deductions:         make([]DeductionLine, 0, len(b.Deductions)),
		DeductionsByCat:    make(map[string]string),
		TotalDeductions:    b.TotalDeductions.StringFixed(2),
		NetPay:             b.NetPay.StringFixed(2),
		UndertimeMinutes:   b.UndertimeMinutes,
		UndertimeDeduction: b.UndertimeDeduction.StringFixed(2),
	}
	for _, d := range b.Deductions {
		dto.Deductions = append(dto.Deductions, DeductionLine{
			Code:        d.Code,
			Category:    string(d.Category),
			Amount:      d.Amount.StringFixed(2),
			Description: d.Description,
		})
	}
	for cat, total := range b.DeductionsByCategory() {
		dto.DeductionsByCat[string(cat)] = total.StringFixed(2)
	}
	for _, d := range b.IncompleteDays {
		dto.IncompleteDays = append(dto.IncompleteDays, d.String())
	}
	for _, c := range b.Conditions() {
		dto.Conditions = append(dto.Conditions, string(c))
	}
	return dto
}

// RunPayrollRequest is the body of POST /api/payroll/runs. An empty body runs
// the previous pay period.
type RunPayrollRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// RunFailureDTO is one employee the run could not pay.
type RunFailureDTO struct {
	EmployeeID string `json:"employee_id"`
	Code       string `json:"code"`
	Error      string `json:"error"`
}

// PayrollRunDTO represents a payroll run.
type PayrollRunDTO struct {
	ID          string          `json:"id"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Status      string          `json:"status"`
	Trigger     string          `json:"trigger"`
	Processed   int             `json:"processed"`
	Failed      int             `json:"failed"`
	Failures    []RunFailureDTO `json:"failures,omitempty"`
	StartedAt   string          `json:"started_at"`
	CompletedAt string          `json:"completed_at,omitempty"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
