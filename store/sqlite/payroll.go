package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

// =============================================================================
// DEDUCTION STORE
// =============================================================================

// Deduction is a stored line item withheld from one employee in one period.
type Deduction struct {
	ID         string
	EmployeeID string
	Period     civil.Period
	Item       payroll.DeductionLineItem
	CreatedAt  time.Time
}

// AddDeduction stores a line item. Amounts must not be negative.
func (s *Store) AddDeduction(ctx context.Context, d Deduction) (Deduction, error) {
	if d.Item.Amount.IsNegative() {
		return Deduction{}, fmt.Errorf("%w: deduction %s is negative", payroll.ErrInvalidAmount, d.Item.Code)
	}
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	m := deductionModel{
		ID:          d.ID,
		EmployeeID:  d.EmployeeID,
		PeriodStart: d.Period.Start.String(),
		PeriodEnd:   d.Period.End.String(),
		Code:        d.Item.Code,
		Category:    string(d.Item.Category),
		Amount:      d.Item.Amount.String(),
		Description: d.Item.Description,
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return Deduction{}, classify(err, "add deduction")
	}
	d.CreatedAt = m.CreatedAt
	return d, nil
}

// ListDeductions returns the employee's items charged in period. A deduction
// is charged once, in the period containing its period_end, so a monthly
// item is withheld by the second semi-monthly run only.
func (s *Store) ListDeductions(ctx context.Context, employeeID string, period civil.Period) ([]Deduction, error) {
	var models []deductionModel
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND period_end >= ? AND period_end <= ?",
			employeeID, period.Start.String(), period.End.String()).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]Deduction, 0, len(models))
	for _, m := range models {
		out = append(out, Deduction{
			ID:         m.ID,
			EmployeeID: m.EmployeeID,
			Period:     civil.Period{Start: parseDate(m.PeriodStart), End: parseDate(m.PeriodEnd)},
			Item:       m.toDomain(),
			CreatedAt:  m.CreatedAt,
		})
	}
	return out, nil
}

// =============================================================================
// PAYROLL RUNS STORE
// =============================================================================

// Run status values.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// PayrollRun is the stored record of one batch computation.
type PayrollRun struct {
	ID          string
	Period      civil.Period
	Status      string
	Trigger     string // manual, scheduler
	Processed   int
	Failed      int
	ErrorsJSON  string
	StartedAt   time.Time
	CompletedAt *time.Time
}

// SavePayrollRun inserts or updates a run.
func (s *Store) SavePayrollRun(ctx context.Context, r PayrollRun) (PayrollRun, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m := payrollRunModel{
		ID:          r.ID,
		PeriodStart: r.Period.Start.String(),
		PeriodEnd:   r.Period.End.String(),
		Status:      r.Status,
		Trigger:     r.Trigger,
		Processed:   r.Processed,
		Failed:      r.Failed,
		ErrorsJSON:  r.ErrorsJSON,
		StartedAt:   r.StartedAt.UTC(),
		CompletedAt: r.CompletedAt,
	}
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return PayrollRun{}, classify(err, "save payroll run")
	}
	return r, nil
}

// ListPayrollRuns returns runs newest first, optionally filtered by status.
func (s *Store) ListPayrollRuns(ctx context.Context, status string) ([]PayrollRun, error) {
	q := s.db.WithContext(ctx).Model(&payrollRunModel{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var models []payrollRunModel
	if err := q.Order("started_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]PayrollRun, 0, len(models))
	for _, m := range models {
		out = append(out, PayrollRun{
			ID:          m.ID,
			Period:      civil.Period{Start: parseDate(m.PeriodStart), End: parseDate(m.PeriodEnd)},
			Status:      m.Status,
			Trigger:     m.Trigger,
			Processed:   m.Processed,
			Failed:      m.Failed,
			ErrorsJSON:  m.ErrorsJSON,
			StartedAt:   m.StartedAt,
			CompletedAt: m.CompletedAt,
		})
	}
	return out, nil
}

// IsPeriodCompleted reports whether a completed run exists for period. The
// scheduler uses it to run each period once.
func (s *Store) IsPeriodCompleted(ctx context.Context, period civil.Period) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&payrollRunModel{}).
		Where("period_start = ? AND period_end = ? AND status = ?",
			period.Start.String(), period.End.String(), RunCompleted).
		Count(&n).Error
	return n > 0, err
}
