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
// EMPLOYEE STORE
// =============================================================================

// Role values for Employee.Role.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Employee represents an employee record.
type Employee struct {
	ID           string
	Name         string
	Email        string
	Role         string
	Department   string
	ShiftID      string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

func (e Employee) IsAdmin() bool { return e.Role == RoleAdmin }

func toEmployeeModel(e Employee) employeeModel {
	return employeeModel{
		ID:           e.ID,
		Name:         e.Name,
		Email:        e.Email,
		Role:         e.Role,
		Department:   e.Department,
		ShiftID:      e.ShiftID,
		PasswordHash: e.PasswordHash,
		Active:       e.Active,
		CreatedAt:    e.CreatedAt,
	}
}

func (m employeeModel) toRecord() Employee {
	return Employee{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Role:         m.Role,
		Department:   m.Department,
		ShiftID:      m.ShiftID,
		PasswordHash: m.PasswordHash,
		Active:       m.Active,
		CreatedAt:    m.CreatedAt,
	}
}

// CreateEmployee inserts an employee, assigning an ID when empty. A taken email
// is ErrDuplicate.
func (s *Store) CreateEmployee(ctx context.Context, emp Employee) (Employee, error) {
	if emp.ID == "" {
		emp.ID = uuid.NewString()
	}
	if emp.Role == "" {
		emp.Role = RoleEmployee
	}
	m := toEmployeeModel(emp)
	m.Active = true
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return Employee{}, classify(err, "create employee")
	}
	return m.toRecord(), nil
}

// SaveEmployee updates an existing employee's profile fields.
func (s *Store) SaveEmployee(ctx context.Context, emp Employee) error {
	res := s.db.WithContext(ctx).Model(&employeeModel{}).Where("id = ?", emp.ID).Updates(map[string]any{
		"name":       emp.Name,
		"email":      emp.Email,
		"role":       emp.Role,
		"department": emp.Department,
		"shift_id":   emp.ShiftID,
		"active":     emp.Active,
	})
	if res.Error != nil {
		return classify(res.Error, "save employee")
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("save employee %s: %w", emp.ID, ErrNotFound)
	}
	return nil
}

// GetEmployee retrieves an employee by ID.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	var m employeeModel
	err := s.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("employee %s: %w: %w", id, ErrNotFound, payroll.ErrEmployeeNotFound)
	}
	if err != nil {
		return nil, err
	}
	emp := m.toRecord()
	return &emp, nil
}

// GetEmployeeByEmail retrieves an employee for login.
func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*Employee, error) {
	var m employeeModel
	err := s.db.WithContext(ctx).First(&m, "email = ?", email).Error
	if err != nil {
		return nil, classify(err, "employee by email")
	}
	emp := m.toRecord()
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	var models []employeeModel
	if err := s.db.WithContext(ctx).Order("name").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(models))
	for _, m := range models {
		out = append(out, m.toRecord())
	}
	return out, nil
}

// CountEmployees is used to decide whether to seed the first admin.
func (s *Store) CountEmployees(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&employeeModel{}).Count(&n).Error
	return n, err
}
