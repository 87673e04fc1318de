package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
)

// OvertimeStatus is the review state of an overtime request.
type OvertimeStatus string

const (
	OvertimePending  OvertimeStatus = "pending"
	OvertimeApproved OvertimeStatus = "approved"
	OvertimeRejected OvertimeStatus = "rejected"
)

// ParseOvertimeStatus validates a status filter or stored value.
func ParseOvertimeStatus(s string) (OvertimeStatus, error) {
	switch OvertimeStatus(s) {
	case OvertimePending, OvertimeApproved, OvertimeRejected:
		return OvertimeStatus(s), nil
	default:
		return "", fmt.Errorf("unknown overtime status %q", s)
	}
}

// OvertimeKind separates extra hours paid at overtime premiums from overload
// teaching hours paid at the overload rate.
type OvertimeKind string

const (
	KindOvertime OvertimeKind = "overtime"
	KindOverload OvertimeKind = "overload"
)

// OvertimeRequest asks for extra hours on a date to be paid. Only approved
// requests count toward pay.
type OvertimeRequest struct {
	ID         string
	EmployeeID string
	Date       civil.Date
	Hours      decimal.Decimal
	Kind       OvertimeKind
	Status     OvertimeStatus
	Reason     string
	ReviewedBy string
	ReviewedAt *time.Time
	CreatedAt  time.Time
}

// Validate checks a request before it is stored.
func (r OvertimeRequest) Validate() error {
	if r.EmployeeID == "" {
		return fmt.Errorf("overtime request has no employee")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("overtime request has no date")
	}
	if !r.Hours.IsPositive() || r.Hours.GreaterThan(decimal.NewFromInt(24)) {
		return fmt.Errorf("%w: overtime hours must be in (0, 24], got %s", ErrInvalidAmount, r.Hours)
	}
	switch r.Kind {
	case "", KindOvertime, KindOverload:
	default:
		return fmt.Errorf("unknown overtime kind %q", r.Kind)
	}
	return nil
}

// Editable reports whether the request may still be changed or deleted.
func (r OvertimeRequest) Editable() bool { return r.Status == OvertimePending }

// Approve moves a pending request to approved.
func (r *OvertimeRequest) Approve(reviewer string, at time.Time) error {
	return r.review(OvertimeApproved, reviewer, at)
}

// Reject moves a pending request to rejected.
func (r *OvertimeRequest) Reject(reviewer string, at time.Time) error {
	return r.review(OvertimeRejected, reviewer, at)
}

func (r *OvertimeRequest) review(to OvertimeStatus, reviewer string, at time.Time) error {
	if !r.Editable() {
		return fmt.Errorf("%w: request %s is %s", ErrRequestNotPending, r.ID, r.Status)
	}
	r.Status = to
	r.ReviewedBy = reviewer
	r.ReviewedAt = &at
	return nil
}

func (r OvertimeRequest) kind() OvertimeKind {
	if r.Kind == "" {
		return KindOvertime
	}
	return r.Kind
}
