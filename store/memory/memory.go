// Package memory provides an in-memory payroll.Source.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// deduction is a stored line item scoped to a pay period.
type deduction struct {
	Period civil.Period
	Item   payroll.DeductionLineItem
}

type Store struct {
	mu         sync.RWMutex
	employees  map[string]payroll.Employee
	order      []string
	punches    map[string][]attendance.PunchEvent
	holidays   []civil.Holiday
	rules      []payroll.Rule
	overtime   map[string][]payroll.OvertimeRequest
	deductions map[string][]deduction
}

var _ payroll.Source = (*Store)(nil)

func New() *Store {
	return &Store{
		employees:  make(map[string]payroll.Employee),
		punches:    make(map[string][]attendance.PunchEvent),
		overtime:   make(map[string][]payroll.OvertimeRequest),
		deductions: make(map[string][]deduction),
	}
}

// =============================================================================
// WRITES
// =============================================================================

// AddEmployee adds or replaces an employee. Insertion order is list order.
func (s *Store) AddEmployee(e payroll.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[e.ID]; !ok {
		s.order = append(s.order, e.ID)
	}
	s.employees[e.ID] = e
}

// AddPunches appends punches, keeping each employee's list sorted by timestamp.
func (s *Store) AddPunches(ps ...attendance.PunchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		list := s.punches[p.EmployeeID]

		// Binary search for insertion point
		i := sort.Search(len(list), func(i int) bool {
			return list[i].Timestamp.After(p.Timestamp)
		})
		list = append(list, attendance.PunchEvent{})
		copy(list[i+1:], list[i:])
		list[i] = p
		s.punches[p.EmployeeID] = list
	}
}

func (s *Store) AddHoliday(h civil.Holiday) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holidays = append(s.holidays, h)
}

func (s *Store) AddRule(r payroll.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = append(s.rules, r)
}

func (s *Store) AddOvertime(r payroll.OvertimeRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overtime[r.EmployeeID] = append(s.overtime[r.EmployeeID], r)
}

// AddDeduction records a line item withheld in period.
func (s *Store) AddDeduction(employeeID string, period civil.Period, item payroll.DeductionLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deductions[employeeID] = append(s.deductions[employeeID], deduction{Period: period, Item: item})
}

// =============================================================================
// READS - payroll.Source
// =============================================================================

func (s *Store) Employees(_ context.Context) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]payroll.Employee, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.employees[id])
	}
	return out, nil
}

func (s *Store) Employee(_ context.Context, id string) (payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.employees[id]
	if !ok {
		return payroll.Employee{}, fmt.Errorf("%w: %s", payroll.ErrEmployeeNotFound, id)
	}
	return e, nil
}

func (s *Store) Punches(_ context.Context, employeeID string, period civil.Period) ([]attendance.PunchEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attendance.PunchEvent
	for _, p := range s.punches[employeeID] {
		if period.ContainsTime(p.Timestamp) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Store) Holidays(_ context.Context, period civil.Period) ([]civil.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []civil.Holiday
	for _, h := range s.holidays {
		if period.Contains(h.Date) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *Store) Rules(_ context.Context) ([]payroll.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]payroll.Rule(nil), s.rules...), nil
}

func (s *Store) Overtime(_ context.Context, employeeID string, period civil.Period) ([]payroll.OvertimeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []payroll.OvertimeRequest
	for _, r := range s.overtime[employeeID] {
		if period.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Deductions returns items whose period ends inside the requested one.
func (s *Store) Deductions(_ context.Context, employeeID string, period civil.Period) ([]payroll.DeductionLineItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []payroll.DeductionLineItem
	for _, d := range s.deductions[employeeID] {
		if period.Contains(d.Period.End) {
			out = append(out, d.Item)
		}
	}
	return out, nil
}
