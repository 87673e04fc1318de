package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

// =============================================================================
// PAYROLL RULE STORE
// =============================================================================

// SaveRule inserts or replaces a rule.
func (s *Store) SaveRule(ctx context.Context, r payroll.Rule) (payroll.Rule, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	m := toRuleModel(r)
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return payroll.Rule{}, classify(err, "save rule")
	}
	return m.toDomain(), nil
}

// ListRules returns every rule, most recently updated first.
func (s *Store) ListRules(ctx context.Context) ([]payroll.Rule, error) {
	var models []ruleModel
	if err := s.db.WithContext(ctx).Order("updated_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]payroll.Rule, 0, len(models))
	for _, m := range models {
		out = append(out, m.toDomain())
	}
	return out, nil
}

// =============================================================================
// SHIFT STORE
// =============================================================================

// ShiftRecord is a stored shift with its JSON config.
type ShiftRecord struct {
	ID         string
	Name       string
	ConfigJSON string
	CreatedAt  time.Time
}

// SaveShift inserts or replaces a shift. Names are unique.
func (s *Store) SaveShift(ctx context.Context, rec ShiftRecord) (ShiftRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	m := shiftModel{ID: rec.ID, Name: rec.Name, ConfigJSON: rec.ConfigJSON, CreatedAt: rec.CreatedAt}
	if err := s.db.WithContext(ctx).Save(&m).Error; err != nil {
		return ShiftRecord{}, classify(err, "save shift")
	}
	return ShiftRecord{ID: m.ID, Name: m.Name, ConfigJSON: m.ConfigJSON, CreatedAt: m.CreatedAt}, nil
}

// GetShift retrieves a shift by ID.
func (s *Store) GetShift(ctx context.Context, id string) (*ShiftRecord, error) {
	var m shiftModel
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("shift %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ShiftRecord{ID: m.ID, Name: m.Name, ConfigJSON: m.ConfigJSON, CreatedAt: m.CreatedAt}, nil
}

// ListShifts returns all shifts ordered by name.
func (s *Store) ListShifts(ctx context.Context) ([]ShiftRecord, error) {
	var models []shiftModel
	if err := s.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]ShiftRecord, 0, len(models))
	for _, m := range models {
		out = append(out, ShiftRecord{ID: m.ID, Name: m.Name, ConfigJSON: m.ConfigJSON, CreatedAt: m.CreatedAt})
	}
	return out, nil
}
