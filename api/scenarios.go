/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	payroll data for the previous pay period. Each scenario creates
	employees, shifts, rules, punches, overtime and deductions that exercise
	specific payroll behavior.

AVAILABLE SCENARIOS:

	regular-staff:           Standard shift, late day, worked regular holiday
	faculty-overload:        Split shift, approved overload and overtime, incomplete day
	deductions-exceed-gross: Loan deduction larger than gross pay (422 on compute)

HOW SCENARIOS WORK:
 1. Reset database (clear all data), keeping the calling admin
 2. Create shift and rules via the config factory
 3. Create employees
 4. Append punches for the period's workdays
 5. Add overtime requests and deductions

USAGE VIA API (non-production only):

	POST /api/scenarios/load
	{"scenario_id": "regular-staff"}

SEE ALSO:
  - server.go: dev-only routes
  - factory/config.go: Shift and rule JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
	"github.com/rottnpotato/BISUpayroll-sub004/store/sqlite"
)

// demoPassword is the login for every employee a scenario creates.
const demoPassword = "password123"

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "regular-staff",
		Name:        "Regular Staff",
		Description: "8-5 staff with a late arrival, a worked regular holiday and government deductions",
	},
	{
		ID:          "faculty-overload",
		Name:        "Faculty Overload",
		Description: "Split-shift faculty with approved overload and overtime and one incomplete day",
	},
	{
		ID:          "deductions-exceed-gross",
		Name:        "Deductions Exceed Gross",
		Description: "Short attendance with a salary loan larger than gross pay",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the database and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(context.Context, civil.Period) error
	switch req.ScenarioID {
	case "regular-staff":
		load = h.loadRegularStaffScenario
	case "faculty-overload":
		load = h.loadFacultyOverloadScenario
	case "deductions-exceed-gross":
		load = h.loadDeductionsExceedGrossScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.resetKeepingCaller(ctx); err != nil {
		h.respondError(w, r, "Failed to reset database", err)
		return
	}

	period := h.PayPeriod.Previous(civil.LocalDateKey(h.now()))
	if err := load(ctx, period); err != nil {
		h.respondError(w, r, "Failed to load scenario", err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()
	h.Logger.Info("scenario loaded", zap.String("scenario", req.ScenarioID), zap.String("period", period.String()))

	writeJSON(w, http.StatusOK, map[string]string{
		"status":       "loaded",
		"scenario":     req.ScenarioID,
		"period_start": period.Start.String(),
		"period_end":   period.End.String(),
	})
}

// ResetDatabase clears all data except the calling admin.
// POST /api/reset
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.resetKeepingCaller(r.Context()); err != nil {
		h.respondError(w, r, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) resetKeepingCaller(ctx context.Context) error {
	var caller *sqlite.Employee
	if c := claimsFrom(ctx); c != nil {
		emp, err := h.Store.GetEmployee(ctx, c.EmployeeID)
		if err != nil {
			return err
		}
		caller = emp
	}
	if err := h.Store.Reset(ctx); err != nil {
		return err
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()

	if caller != nil {
		caller.ShiftID = ""
		if _, err := h.Store.CreateEmployee(ctx, *caller); err != nil {
			return fmt.Errorf("restore caller: %w", err)
		}
	}
	return nil
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadRegularStaffScenario: one staff member on the standard shift who works
// every workday, arrives late once and works the first workday, which is
// declared a regular holiday.
func (h *Handler) loadRegularStaffScenario(ctx context.Context, period civil.Period) error {
	shiftID, shift, err := h.createShift(ctx, `{
		"name": "Office 8-5",
		"start": "08:00",
		"end": "17:00",
		"grace_minutes": 15,
		"break_minutes": 60
	}`)
	if err != nil {
		return err
	}

	emp, err := h.createEmployee(ctx, "Maria Santos", "maria.santos@bisu.edu.ph", "Registrar", shiftID)
	if err != nil {
		return err
	}
	if err := h.createRule(ctx, fmt.Sprintf(`{"type":"daily_rate","amount":"850","is_active":true,"employee_id":%q}`, emp.ID)); err != nil {
		return err
	}

	days := workdays(period, shift)
	if len(days) > 0 {
		if _, err := h.Store.SaveHoliday(ctx, civil.Holiday{Date: days[0], Name: "Provincial Founding Day", Type: civil.HolidayRegular}); err != nil {
			return err
		}
	}
	for i, d := range days {
		in := 7*60 + 55
		if i == 2 {
			in = 8*60 + 25
		}
		if err := h.punchDay(ctx, emp.ID, d, in, 17*60+5); err != nil {
			return err
		}
	}

	return h.addDeductions(ctx, emp.ID, period, map[string]string{
		"GSIS":       "765.00",
		"PHILHEALTH": "250.00",
		"PAGIBIG":    "100.00",
	})
}

// loadFacultyOverloadScenario: split-shift faculty with approved overload and
// overtime, a pending request that must not be paid and one day with only a
// morning time-in.
func (h *Handler) loadFacultyOverloadScenario(ctx context.Context, period civil.Period) error {
	shiftID, shift, err := h.createShift(ctx, `{
		"name": "Faculty split",
		"start": "07:30",
		"end": "17:00",
		"grace_minutes": 10,
		"split": {"start": "11:30", "end": "13:00"}
	}`)
	if err != nil {
		return err
	}

	emp, err := h.createEmployee(ctx, "Juan dela Cruz", "juan.delacruz@bisu.edu.ph", "College of Engineering", shiftID)
	if err != nil {
		return err
	}
	if err := h.createRule(ctx, fmt.Sprintf(`{"type":"daily_rate","amount":"1200","is_active":true,"employee_id":%q}`, emp.ID)); err != nil {
		return err
	}
	if err := h.createRule(ctx, `{"type":"overload_rate","amount":"900","is_active":true,"applies_to_all":true}`); err != nil {
		return err
	}

	days := workdays(period, shift)
	for i, d := range days {
		if i == len(days)-1 {
			if err := h.appendPunch(ctx, emp.ID, d, 7*60+25, attendance.DirectionIn); err != nil {
				return err
			}
			continue
		}
		if err := h.punchDay(ctx, emp.ID, d, 7*60+25, 11*60+35); err != nil {
			return err
		}
		if err := h.punchDay(ctx, emp.ID, d, 12*60+55, 17*60+2); err != nil {
			return err
		}
	}
	if len(days) < 3 {
		return nil
	}

	admin := claimsFrom(ctx)
	reviewer := "scenario"
	if admin != nil {
		reviewer = admin.EmployeeID
	}
	requests := []struct {
		date    civil.Date
		hours   string
		kind    payroll.OvertimeKind
		approve bool
		reason  string
	}{
		{days[0], "3", payroll.KindOverload, true, "Evening section CE 211"},
		{days[1], "2", payroll.KindOvertime, true, "Board exam review"},
		{days[2], "4", payroll.KindOvertime, false, "Thesis defense panel"},
	}
	for _, rq := range requests {
		created, err := h.Store.CreateOvertime(ctx, payroll.OvertimeRequest{
			EmployeeID: emp.ID,
			Date:       rq.date,
			Hours:      decimal.RequireFromString(rq.hours),
			Kind:       rq.kind,
			Reason:     rq.reason,
		})
		if err != nil {
			return err
		}
		if rq.approve {
			if _, err := h.Store.ReviewOvertime(ctx, created.ID, true, reviewer); err != nil {
				return err
			}
		}
	}

	return h.addDeductions(ctx, emp.ID, period, map[string]string{
		"GSIS":       "1080.00",
		"PHILHEALTH": "300.00",
		"GSIS_CONSO": "1500.00",
		"CLUB_DUES":  "50.00",
	})
}

// loadDeductionsExceedGrossScenario: two worked days against a salary loan
// larger than the period's gross pay.
func (h *Handler) loadDeductionsExceedGrossScenario(ctx context.Context, period civil.Period) error {
	emp, err := h.createEmployee(ctx, "Pedro Reyes", "pedro.reyes@bisu.edu.ph", "Maintenance", "")
	if err != nil {
		return err
	}
	if err := h.createRule(ctx, `{"type":"daily_rate","amount":"600","is_active":true,"applies_to_all":true}`); err != nil {
		return err
	}

	days := workdays(period, attendance.StandardShift())
	for i := 0; i < 2 && i < len(days); i++ {
		if err := h.punchDay(ctx, emp.ID, days[i], 8*60, 17*60); err != nil {
			return err
		}
	}
	return h.addDeductions(ctx, emp.ID, period, map[string]string{
		"LBP_LOAN": "5000.00",
		"PAGIBIG":  "100.00",
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) createShift(ctx context.Context, jsonStr string) (string, attendance.Shift, error) {
	shift, err := h.Factory.ParseShift(jsonStr)
	if err != nil {
		return "", attendance.Shift{}, fmt.Errorf("parse shift: %w", err)
	}
	normalized, err := json.Marshal(h.Factory.ShiftToJSON("", shift))
	if err != nil {
		return "", attendance.Shift{}, err
	}
	rec, err := h.Store.SaveShift(ctx, sqlite.ShiftRecord{Name: shift.Name, ConfigJSON: string(normalized)})
	if err != nil {
		return "", attendance.Shift{}, err
	}
	return rec.ID, shift, nil
}

func (h *Handler) createRule(ctx context.Context, jsonStr string) error {
	rule, err := h.Factory.ParseRule(jsonStr)
	if err != nil {
		return err
	}
	_, err = h.Store.SaveRule(ctx, rule)
	return err
}

func (h *Handler) createEmployee(ctx context.Context, name, email, department, shiftID string) (sqlite.Employee, error) {
	hash, err := HashPassword(demoPassword)
	if err != nil {
		return sqlite.Employee{}, err
	}
	return h.Store.CreateEmployee(ctx, sqlite.Employee{
		Name:         name,
		Email:        email,
		Role:         sqlite.RoleEmployee,
		Department:   department,
		ShiftID:      shiftID,
		PasswordHash: hash,
	})
}

func (h *Handler) punchDay(ctx context.Context, empID string, d civil.Date, in, out int) error {
	if err := h.appendPunch(ctx, empID, d, in, attendance.DirectionIn); err != nil {
		return err
	}
	return h.appendPunch(ctx, empID, d, out, attendance.DirectionOut)
}

func (h *Handler) appendPunch(ctx context.Context, empID string, d civil.Date, minutes int, dir attendance.Direction) error {
	_, err := h.Store.AppendPunch(ctx, attendance.PunchEvent{
		EmployeeID: empID,
		Timestamp:  d.At(minutes).UTC(),
		Direction:  dir,
	})
	return err
}

func (h *Handler) addDeductions(ctx context.Context, empID string, period civil.Period, amounts map[string]string) error {
	for code, amount := range amounts {
		_, err := h.Store.AddDeduction(ctx, sqlite.Deduction{
			EmployeeID: empID,
			Period:     period,
			Item:       h.Runner.Catalog.Item(code, decimal.RequireFromString(amount), ""),
			CreatedAt:  h.now().UTC(),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// workdays returns the period's dates the shift expects attendance on.
func workdays(period civil.Period, shift attendance.Shift) []civil.Date {
	var out []civil.Date
	for _, d := range period.Days() {
		if shift.Workdays.Contains(d.Weekday()) {
			out = append(out, d)
		}
	}
	return out
}
