package payroll

import (
	"context"
	"fmt"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
)

// Employee is the payroll view of an employee: who they are and the shift
// their attendance is judged against.
type Employee struct {
	ID         string
	Name       string
	Department string
	Shift      attendance.Shift
}

// Source supplies the snapshots a payroll run reads. Implementations must
// return copies; the runner never writes back.
type Source interface {
	Employees(ctx context.Context) ([]Employee, error)
	Employee(ctx context.Context, id string) (Employee, error)
	Punches(ctx context.Context, employeeID string, period civil.Period) ([]attendance.PunchEvent, error)
	Holidays(ctx context.Context, period civil.Period) ([]civil.Holiday, error)
	Rules(ctx context.Context) ([]Rule, error)
	Overtime(ctx context.Context, employeeID string, period civil.Period) ([]OvertimeRequest, error)
	Deductions(ctx context.Context, employeeID string, period civil.Period) ([]DeductionLineItem, error)
}

// Result is one employee's outcome in a run. Exactly one of Breakdown and Err
// is meaningful, except for DeductionsExceedGross where both are set.
type Result struct {
	Employee  Employee
	Breakdown Breakdown
	Err       error
}

// OK reports whether the employee was paid.
func (r Result) OK() bool { return r.Err == nil }

// Run is the outcome of computing a whole period.
type Run struct {
	Period    civil.Period
	Results   []Result
	Processed int
	Failed    int
}

// Errors returns per-employee failures keyed by employee ID.
func (r Run) Errors() map[string]error {
	out := make(map[string]error)
	for _, res := range r.Results {
		if res.Err != nil {
			out[res.Employee.ID] = res.Err
		}
	}
	return out
}

// Runner computes payroll for employees read from a Source.
type Runner struct {
	Source     Source
	RateConfig RateConfig
	Catalog    *Catalog
	Aggregator Aggregator
}

// NewRunner returns a runner using the default deduction catalog.
func NewRunner(src Source, cfg RateConfig) *Runner {
	return &Runner{Source: src, RateConfig: cfg, Catalog: DefaultCatalog()}
}

// snapshot is the shared, period-wide configuration of a run.
type snapshot struct {
	resolver *RateResolver
	calendar *civil.HolidayList
}

func (r *Runner) snapshot(ctx context.Context, period civil.Period) (snapshot, error) {
	rules, err := r.Source.Rules(ctx)
	if err != nil {
		return snapshot{}, fmt.Errorf("load rules: %w", err)
	}
	holidays, err := r.Source.Holidays(ctx, period)
	if err != nil {
		return snapshot{}, fmt.Errorf("load holidays: %w", err)
	}
	return snapshot{
		resolver: NewRateResolver(rules, r.RateConfig),
		calendar: civil.NewHolidayList(holidays),
	}, nil
}

// Run computes every employee for period. Only failures loading the shared
// snapshot abort the run; per-employee errors are recorded on that result.
func (r *Runner) Run(ctx context.Context, period civil.Period) (*Run, error) {
	snap, err := r.snapshot(ctx, period)
	if err != nil {
		return nil, err
	}
	employees, err := r.Source.Employees(ctx)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}

	run := &Run{Period: period, Results: make([]Result, 0, len(employees))}
	for _, emp := range employees {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		b, err := r.compute(ctx, snap, emp, period)
		run.Results = append(run.Results, Result{Employee: emp, Breakdown: b, Err: err})
		if err != nil {
			run.Failed++
		} else {
			run.Processed++
		}
	}
	return run, nil
}

// ComputeEmployee computes a single employee for period.
func (r *Runner) ComputeEmployee(ctx context.Context, employeeID string, period civil.Period) (Breakdown, error) {
	emp, err := r.Source.Employee(ctx, employeeID)
	if err != nil {
		return Breakdown{}, err
	}
	snap, err := r.snapshot(ctx, period)
	if err != nil {
		return Breakdown{}, err
	}
	return r.compute(ctx, snap, emp, period)
}

func (r *Runner) compute(ctx context.Context, snap snapshot, emp Employee, period civil.Period) (Breakdown, error) {
	rates, err := snap.resolver.Resolve(emp.ID)
	if err != nil {
		return Breakdown{EmployeeID: emp.ID, Period: period}, err
	}

	punches, err := r.Source.Punches(ctx, emp.ID, period)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load punches for %s: %w", emp.ID, err)
	}
	overtime, err := r.Source.Overtime(ctx, emp.ID, period)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load overtime for %s: %w", emp.ID, err)
	}
	deductions, err := r.Source.Deductions(ctx, emp.ID, period)
	if err != nil {
		return Breakdown{}, fmt.Errorf("load deductions for %s: %w", emp.ID, err)
	}

	shift := emp.Shift
	if shift.EndMinutes == 0 {
		shift = attendance.StandardShift()
	}
	ev := attendance.Evaluator{Shift: shift, Calendar: snap.calendar}

	catalog := r.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	return r.Aggregator.Compute(Input{
		EmployeeID:    emp.ID,
		Period:        period,
		Shift:         shift,
		Calendar:      snap.calendar,
		Records:       ev.EvaluateRange(emp.ID, period, punches),
		Rates:         rates,
		OverloadRates: snap.resolver.ResolveOverload(emp.ID),
		Overtime:      overtime,
		Deductions:    catalog.Classify(deductions),
	})
}
