package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
)

// =============================================================================
// PUNCH STORE (append-only)
// =============================================================================

// AppendPunch records a punch. Recording the same employee, instant and
// direction twice is ErrDuplicate.
func (s *Store) AppendPunch(ctx context.Context, p attendance.PunchEvent) (attendance.PunchEvent, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	m := toPunchModel(p)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return attendance.PunchEvent{}, classify(err, "append punch")
	}
	return m.toDomain(), nil
}

// LoadPunches returns an employee's punches on the civil dates of period,
// ordered by timestamp.
func (s *Store) LoadPunches(ctx context.Context, employeeID string, period civil.Period) ([]attendance.PunchEvent, error) {
	from, to := period.Bounds()
	var models []punchModel
	err := s.db.WithContext(ctx).
		Where("employee_id = ? AND timestamp >= ? AND timestamp < ?", employeeID, from.UTC(), to.UTC()).
		Order("timestamp ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("load punches: %w", err)
	}
	out := make([]attendance.PunchEvent, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// LastPunch returns the employee's most recent punch, or nil.
func (s *Store) LastPunch(ctx context.Context, employeeID string) (*attendance.PunchEvent, error) {
	var models []punchModel
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("timestamp DESC").
		Limit(1).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	p := models[0].toDomain()
	return &p, nil
}

// =============================================================================
// HOLIDAY STORE
// =============================================================================

// SaveHoliday inserts or replaces a holiday.
func (s *Store) SaveHoliday(ctx context.Context, h civil.Holiday) (civil.Holiday, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	m := toHolidayModel(h)
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return civil.Holiday{}, classify(err, "save holiday")
	}
	return h, nil
}

// DeleteHoliday removes a holiday.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&holidayModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("holiday %s: %w", id, ErrNotFound)
	}
	return nil
}

// ListHolidays returns holidays in period ordered by date.
func (s *Store) ListHolidays(ctx context.Context, period civil.Period) ([]civil.Holiday, error) {
	var models []holidayModel
	err := s.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", period.Start.String(), period.End.String()).
		Order("date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]civil.Holiday, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}
