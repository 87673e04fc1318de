package sqlite

import (
	"context"
	"fmt"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/factory"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

// =============================================================================
// payroll.Source
// =============================================================================

// Employees returns active employees with their shifts resolved. Employees
// without a shift get the zero Shift, which the runner treats as standard.
func (s *Store) Employees(ctx context.Context) ([]payroll.Employee, error) {
	emps, err := s.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	shifts, err := s.shiftsByID(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]payroll.Employee, 0, len(emps))
	for _, e := range emps {
		if !e.Active {
			continue
		}
		out = append(out, toPayrollEmployee(e, shifts))
	}
	return out, nil
}

// Employee returns one employee; unknown IDs wrap payroll.ErrEmployeeNotFound.
func (s *Store) Employee(ctx context.Context, id string) (payroll.Employee, error) {
	e, err := s.GetEmployee(ctx, id)
	if err != nil {
		return payroll.Employee{}, err
	}
	shifts, err := s.shiftsByID(ctx)
	if err != nil {
		return payroll.Employee{}, err
	}
	return toPayrollEmployee(*e, shifts), nil
}

func (s *Store) Punches(ctx context.Context, employeeID string, period civil.Period) ([]attendance.PunchEvent, error) {
	return s.LoadPunches(ctx, employeeID, period)
}

func (s *Store) Holidays(ctx context.Context, period civil.Period) ([]civil.Holiday, error) {
	return s.ListHolidays(ctx, period)
}

func (s *Store) Rules(ctx context.Context) ([]payroll.Rule, error) {
	return s.ListRules(ctx)
}

func (s *Store) Overtime(ctx context.Context, employeeID string, period civil.Period) ([]payroll.OvertimeRequest, error) {
	return s.ListOvertime(ctx, OvertimeFilter{EmployeeID: employeeID, Period: &period})
}

func (s *Store) Deductions(ctx context.Context, employeeID string, period civil.Period) ([]payroll.DeductionLineItem, error) {
	ds, err := s.ListDeductions(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}
	out := make([]payroll.DeductionLineItem, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Item)
	}
	return out, nil
}

func (s *Store) shiftsByID(ctx context.Context) (map[string]attendance.Shift, error) {
	recs, err := s.ListShifts(ctx)
	if err != nil {
		return nil, err
	}
	f := factory.NewConfigFactory()
	out := make(map[string]attendance.Shift, len(recs))
	for _, r := range recs {
		shift, err := f.ParseShift(r.ConfigJSON)
		if err != nil {
			return nil, fmt.Errorf("shift %s: %w", r.ID, err)
		}
		out[r.ID] = shift
	}
	return out, nil
}

func toPayrollEmployee(e Employee, shifts map[string]attendance.Shift) payroll.Employee {
	return payroll.Employee{
		ID:         e.ID,
		Name:       e.Name,
		Department: e.Department,
		Shift:      shifts[e.ShiftID],
	}
}
