package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

// =============================================================================
// OVERTIME STORE
// =============================================================================

// CreateOvertime stores a new request as pending.
func (s *Store) CreateOvertime(ctx context.Context, r payroll.OvertimeRequest) (payroll.OvertimeRequest, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Status = payroll.OvertimePending
	r.ReviewedBy, r.ReviewedAt = "", nil
	m := toOvertimeModel(r)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return payroll.OvertimeRequest{}, classify(err, "create overtime")
	}
	return m.toDomain(), nil
}

// GetOvertime retrieves a request by ID.
func (s *Store) GetOvertime(ctx context.Context, id string) (*payroll.OvertimeRequest, error) {
	var m overtimeModel
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("overtime %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	r := m.toDomain()
	return &r, nil
}

// OvertimeFilter narrows ListOvertime. Zero fields match everything.
type OvertimeFilter struct {
	EmployeeID string
	Status     payroll.OvertimeStatus
	Period     *civil.Period
}

// ListOvertime returns requests matching the filter, oldest first.
func (s *Store) ListOvertime(ctx context.Context, f OvertimeFilter) ([]payroll.OvertimeRequest, error) {
	q := s.db.WithContext(ctx).Model(&overtimeModel{})
	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.Period != nil {
		q = q.Where("date >= ? AND date <= ?", f.Period.Start.String(), f.Period.End.String())
	}
	var models []overtimeModel
	if err := q.Order("date ASC, created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]payroll.OvertimeRequest, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// UpdateOvertime changes the date, hours, kind and reason of a pending request.
func (s *Store) UpdateOvertime(ctx context.Context, r payroll.OvertimeRequest) (payroll.OvertimeRequest, error) {
	kind := r.Kind
	if kind == "" {
		kind = payroll.KindOvertime
	}
	res := s.db.WithContext(ctx).Model(&overtimeModel{}).
		Where("id = ? AND status = ?", r.ID, string(payroll.OvertimePending)).
		Updates(map[string]any{
			"date":   r.Date.String(),
			"hours":  r.Hours.String(),
			"kind":   string(kind),
			"reason": r.Reason,
		})
	if res.Error != nil {
		return payroll.OvertimeRequest{}, res.Error
	}
	if res.RowsAffected == 0 {
		return payroll.OvertimeRequest{}, s.notPendingOrMissing(ctx, r.ID)
	}
	got, err := s.GetOvertime(ctx, r.ID)
	if err != nil {
		return payroll.OvertimeRequest{}, err
	}
	return *got, nil
}

// DeleteOvertime removes a pending request.
func (s *Store) DeleteOvertime(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, string(payroll.OvertimePending)).
		Delete(&overtimeModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return s.notPendingOrMissing(ctx, id)
	}
	return nil
}

// ReviewOvertime approves or rejects a pending request.
func (s *Store) ReviewOvertime(ctx context.Context, id string, approve bool, reviewer string) (payroll.OvertimeRequest, error) {
	var out payroll.OvertimeRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m overtimeModel
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			return classify(err, "overtime "+id)
		}
		req := m.toDomain()
		now := time.Now().UTC()
		var err error
		if approve {
			err = req.Approve(reviewer, now)
		} else {
			err = req.Reject(reviewer, now)
		}
		if err != nil {
			return err
		}
		res := tx.Model(&overtimeModel{}).
			Where("id = ? AND status = ?", id, string(payroll.OvertimePending)).
			Updates(map[string]any{
				"status":      string(req.Status),
				"reviewed_by": req.ReviewedBy,
				"reviewed_at": req.ReviewedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: request %s", ErrRequestNotPending, id)
		}
		out = req
		return nil
	})
	return out, err
}

func (s *Store) notPendingOrMissing(ctx context.Context, id string) error {
	if _, err := s.GetOvertime(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: request %s", ErrRequestNotPending, id)
}
