package sqlite

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

// =============================================================================
// TABLE MODELS
// =============================================================================

type employeeModel struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	Role         string `gorm:"not null;default:'employee'"`
	Department   string
	ShiftID      string
	PasswordHash string
	Active       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (employeeModel) TableName() string { return "employees" }

type punchModel struct {
	ID         string    `gorm:"primaryKey"`
	EmployeeID string    `gorm:"not null;uniqueIndex:idx_punch_unique;index:idx_punches_employee_time"`
	Timestamp  time.Time `gorm:"not null;uniqueIndex:idx_punch_unique;index:idx_punches_employee_time"`
	Direction  string    `gorm:"not null;uniqueIndex:idx_punch_unique"`
	CreatedAt  time.Time
}

func (punchModel) TableName() string { return "punches" }

type holidayModel struct {
	ID        string `gorm:"primaryKey"`
	Date      string `gorm:"not null;index"`
	Name      string `gorm:"not null"`
	Type      string `gorm:"not null"`
	CreatedAt time.Time
}

func (holidayModel) TableName() string { return "holidays" }

type ruleModel struct {
	ID           string `gorm:"primaryKey"`
	Type         string `gorm:"not null;index"`
	Amount       string `gorm:"not null"`
	IsActive     bool   `gorm:"not null"`
	AppliesToAll bool   `gorm:"not null"`
	EmployeeID   string `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (ruleModel) TableName() string { return "payroll_rules" }

type shiftModel struct {
	ID         string `gorm:"primaryKey"`
	Name       string `gorm:"uniqueIndex;not null"`
	ConfigJSON string `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (shiftModel) TableName() string { return "shifts" }

type overtimeModel struct {
	ID         string `gorm:"primaryKey"`
	EmployeeID string `gorm:"not null;index:idx_overtime_employee_date"`
	Date       string `gorm:"not null;index:idx_overtime_employee_date"`
	Hours      string `gorm:"not null"`
	Kind       string `gorm:"not null;default:'overtime'"`
	Status     string `gorm:"not null;index"`
	Reason     string
	ReviewedBy string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (overtimeModel) TableName() string { return "overtime" }

type deductionModel struct {
	ID          string `gorm:"primaryKey"`
	EmployeeID  string `gorm:"not null;index"`
	PeriodStart string `gorm:"not null"`
	PeriodEnd   string `gorm:"not null"`
	Code        string `gorm:"not null"`
	Category    string `gorm:"not null"`
	Amount      string `gorm:"not null"`
	Description string
	CreatedAt   time.Time
}

func (deductionModel) TableName() string { return "deductions" }

type payrollRunModel struct {
	ID          string `gorm:"primaryKey"`
	PeriodStart string `gorm:"not null;index"`
	PeriodEnd   string `gorm:"not null"`
	Status      string `gorm:"not null"`
	Trigger     string `gorm:"not null"`
	Processed   int
	Failed      int
	ErrorsJSON  string
	StartedAt   time.Time
	CompletedAt *time.Time
}

func (payrollRunModel) TableName() string { return "payroll_runs" }

// =============================================================================
// CONVERSIONS
// =============================================================================

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseDate(s string) civil.Date {
	d, _ := civil.ParseDate(s)
	return d
}

func toPunchModel(p attendance.PunchEvent) punchModel {
	return punchModel{
		ID:         p.ID,
		EmployeeID: p.EmployeeID,
		Timestamp:  p.Timestamp.UTC(),
		Direction:  string(p.Direction),
	}
}

func (m punchModel) toDomain() attendance.PunchEvent {
	return attendance.PunchEvent{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		Timestamp:  m.Timestamp.UTC(),
		Direction:  attendance.Direction(m.Direction),
	}
}

func toHolidayModel(h civil.Holiday) holidayModel {
	return holidayModel{ID: h.ID, Date: h.Date.String(), Name: h.Name, Type: string(h.Type)}
}

func (m holidayModel) toDomain() civil.Holiday {
	return civil.Holiday{ID: m.ID, Date: parseDate(m.Date), Name: m.Name, Type: civil.HolidayType(m.Type)}
}

func toRuleModel(r payroll.Rule) ruleModel {
	return ruleModel{
		ID:           r.ID,
		Type:         string(r.Type),
		Amount:       r.Amount.String(),
		IsActive:     r.IsActive,
		AppliesToAll: r.AppliesToAll,
		EmployeeID:   r.EmployeeID,
	}
}

func (m ruleModel) toDomain() payroll.Rule {
	return payroll.Rule{
		ID:           m.ID,
		Type:         payroll.RuleType(m.Type),
		Amount:       parseDecimal(m.Amount),
		IsActive:     m.IsActive,
		AppliesToAll: m.AppliesToAll,
		EmployeeID:   m.EmployeeID,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toOvertimeModel(r payroll.OvertimeRequest) overtimeModel {
	kind := r.Kind
	if kind == "" {
		kind = payroll.KindOvertime
	}
	return overtimeModel{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		Date:       r.Date.String(),
		Hours:      r.Hours.String(),
		Kind:       string(kind),
		Status:     string(r.Status),
		Reason:     r.Reason,
		ReviewedBy: r.ReviewedBy,
		ReviewedAt: r.ReviewedAt,
	}
}

func (m overtimeModel) toDomain() payroll.OvertimeRequest {
	return payroll.OvertimeRequest{
		ID:         m.ID,
		EmployeeID: m.EmployeeID,
		Date:       parseDate(m.Date),
		Hours:      parseDecimal(m.Hours),
		Kind:       payroll.OvertimeKind(m.Kind),
		Status:     payroll.OvertimeStatus(m.Status),
		Reason:     m.Reason,
		ReviewedBy: m.ReviewedBy,
		ReviewedAt: m.ReviewedAt,
		CreatedAt:  m.CreatedAt,
	}
}

func (m deductionModel) toDomain() payroll.DeductionLineItem {
	return payroll.DeductionLineItem{
		Code:        m.Code,
		Category:    payroll.Category(m.Category),
		Amount:      parseDecimal(m.Amount),
		Description: m.Description,
	}
}
