/*
errors.go - Error taxonomy for payroll computation

PURPOSE:
  All payroll error types in one place. None of them is fatal: the runner
  records them per employee and keeps going, and the API maps them to
  client-facing codes.

CONDITIONS:
  rate_not_configured      no active daily-rate rule applies to the employee
  deductions_exceed_gross  net pay would be negative
  incomplete_attendance    a flagged result state, never returned as an error

USAGE:
  if errors.Is(err, payroll.ErrRateNotConfigured) { ... }

  var dErr *payroll.DeductionsExceedGrossError
  if errors.As(err, &dErr) {
      log.Printf("short by %s", dErr.Shortfall)
  }
*/
package payroll

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrRateNotConfigured is returned when neither an employee-specific nor a
	// global active rate rule exists.
	ErrRateNotConfigured = errors.New("rate not configured")

	// ErrDeductionsExceedGross is returned instead of a negative net pay.
	ErrDeductionsExceedGross = errors.New("deductions exceed gross pay")

	// ErrRequestNotPending is returned when changing an overtime request that
	// has already been approved or rejected.
	ErrRequestNotPending = errors.New("overtime request is not pending")

	// ErrInvalidAmount is returned for negative money or hour values.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// Condition is the machine-readable name of a payroll result state.
type Condition string

const (
	ConditionRateNotConfigured     Condition = "rate_not_configured"
	ConditionDeductionsExceedGross Condition = "deductions_exceed_gross"
	ConditionIncompleteAttendance  Condition = "incomplete_attendance"
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// RateNotConfiguredError names the employee and rule type that could not be resolved.
type RateNotConfiguredError struct {
	EmployeeID string
	RuleType   RuleType
}

func (e *RateNotConfiguredError) Error() string {
	return fmt.Sprintf("rate not configured: no active %s rule for employee %s or all employees",
		e.RuleType, e.EmployeeID)
}

func (e *RateNotConfiguredError) Unwrap() error { return ErrRateNotConfigured }

func (e *RateNotConfiguredError) Condition() Condition { return ConditionRateNotConfigured }

// DeductionsExceedGrossError reports the figures that would have produced a
// negative net pay.
type DeductionsExceedGrossError struct {
	EmployeeID      string
	GrossPay        decimal.Decimal
	TotalDeductions decimal.Decimal
	Shortfall       decimal.Decimal
}

func (e *DeductionsExceedGrossError) Error() string {
	return fmt.Sprintf("deductions exceed gross pay: gross %s, deductions %s, shortfall %s",
		e.GrossPay.StringFixed(2), e.TotalDeductions.StringFixed(2), e.Shortfall.StringFixed(2))
}

func (e *DeductionsExceedGrossError) Unwrap() error { return ErrDeductionsExceedGross }

func (e *DeductionsExceedGrossError) Condition() Condition {
	return ConditionDeductionsExceedGross
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// ConditionOf returns the condition carried by err, if any.
func ConditionOf(err error) (Condition, bool) {
	var c interface{ Condition() Condition }
	if errors.As(err, &c) {
		return c.Condition(), true
	}
	return "", false
}

// IsClientError returns true if the error is due to invalid input or
// configuration the caller can fix.
func IsClientError(err error) bool {
	return errors.Is(err, ErrRateNotConfigured) ||
		errors.Is(err, ErrDeductionsExceedGross) ||
		errors.Is(err, ErrRequestNotPending) ||
		errors.Is(err, ErrInvalidAmount)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
