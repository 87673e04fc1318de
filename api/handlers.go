/*
handlers.go - HTTP API handlers for the payroll system

PURPOSE:
  Exposes attendance, overtime, configuration and payroll computation via
  a REST API. Handles HTTP request/response, JSON serialization, and
  delegates to the domain packages.

ENDPOINTS:
  Auth:
    POST   /api/auth/login                 Email + password -> token (and cookie)
    GET    /api/auth/me                    Current employee

  Employees (admin):
    GET    /api/employees                  List employees
    POST   /api/employees                  Create employee
    GET    /api/employees/{id}             Employee details (admin or self)

  Attendance:
    POST   /api/attendance/punch           Record a time-in/time-out
    GET    /api/employees/{id}/attendance  Evaluated days for ?from&to

  Overtime:       see overtime.go
  Payroll/report: see payroll.go

  Configuration:
    GET/POST       /api/holidays, DELETE /api/holidays/{id}
    GET/POST       /api/rules
    GET/POST       /api/shifts
    GET            /api/deductions/catalog
    GET/POST       /api/employees/{id}/deductions

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access (also the payroll.Source)
  - Runner: Per-employee payroll computation
  - Factory: JSON to Shift / Rule conversion
  - Auth: Token issuing and verification

ERROR HANDLING:
  Errors are returned as JSON {error, code, details}:
  - 400: Validation errors, invalid input
  - 401/403: Missing token / not allowed
  - 404: Resource not found
  - 409: Duplicate, or overtime request no longer pending
  - 422: Payroll conditions (rate_not_configured, deductions_exceed_gross)
  - 500: Internal errors (logged, details withheld)

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Token middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rottnpotato/BISUpayroll-sub004/attendance"
	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/config"
	"github.com/rottnpotato/BISUpayroll-sub004/factory"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
	"github.com/rottnpotato/BISUpayroll-sub004/report"
	"github.com/rottnpotato/BISUpayroll-sub004/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Runner    *payroll.Runner
	Factory   *factory.ConfigFactory
	Formatter report.Formatter
	Auth      *Authenticator
	PayPeriod civil.PeriodConfig
	Logger    *zap.Logger

	secureCookies bool
	now           func() time.Time

	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store and configuration.
func NewHandler(store *sqlite.Store, cfg config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := payroll.NewRunner(store, cfg.Rates)
	if cfg.Catalog != nil {
		runner.Catalog = cfg.Catalog
	}
	return &Handler{
		Store:         store,
		Runner:        runner,
		Factory:       factory.NewConfigFactory(),
		Formatter:     report.NewFormatter(),
		Auth:          NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL),
		PayPeriod:     cfg.PayPeriod,
		Logger:        logger,
		secureCookies: cfg.IsProduction(),
		now:           time.Now,
	}
}

// Health reports whether the database is reachable.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// periodFromQuery reads ?from&to. With neither, it returns the pay period
// containing today.
func (h *Handler) periodFromQuery(r *http.Request) (civil.Period, error) {
	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" && to == "" {
		return h.PayPeriod.PeriodFor(civil.LocalDateKey(h.now())), nil
	}
	return parsePeriod(from, to)
}

func parsePeriod(from, to string) (civil.Period, error) {
	start, err := civil.ParseDate(from)
	if err != nil {
		return civil.Period{}, invalid("from must be YYYY-MM-DD")
	}
	end, err := civil.ParseDate(to)
	if err != nil {
		return civil.Period{}, invalid("to must be YYYY-MM-DD")
	}
	p, err := civil.NewPeriod(start, end)
	if err != nil {
		return civil.Period{}, fmt.Errorf("%w: %w", errInvalidRequest, err)
	}
	return p, nil
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.respondError(w, r, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": dtos})
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canAccess(r, id) {
		writeError(w, http.StatusForbidden, "Not allowed to view this employee", nil)
		return
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.respondError(w, r, "Failed to get employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee with a login.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(w, r, "Invalid employee", err)
		return
	}
	if req.ShiftID != "" {
		if _, err := h.Store.GetShift(r.Context(), req.ShiftID); err != nil {
			h.respondError(w, r, "Unknown shift", err)
			return
		}
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.respondError(w, r, "Failed to hash password", err)
		return
	}

	emp, err := h.Store.CreateEmployee(r.Context(), sqlite.Employee{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Role:         req.Role,
		Department:   req.Department,
		ShiftID:      req.ShiftID,
		PasswordHash: hash,
	})
	if err != nil {
		h.respondError(w, r, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// RecordPunch records a time-in or time-out for the caller. Admins may punch
// for another employee or at an explicit time.
// POST /api/attendance/punch
func (h *Handler) RecordPunch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := claimsFrom(ctx)

	var req PunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	empID := claims.EmployeeID
	ts := h.now()
	if (req.EmployeeID != "" && req.EmployeeID != empID) || req.Timestamp != "" {
		if !claims.IsAdmin() {
			writeError(w, http.StatusForbidden, "Only admins may record punches for others or at a given time", nil)
			return
		}
		if req.EmployeeID != "" {
			empID = req.EmployeeID
		}
		if req.Timestamp != "" {
			t, err := time.Parse(time.RFC3339, req.Timestamp)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid timestamp (use RFC 3339)", err)
				return
			}
			ts = t
		}
	}

	if _, err := h.Store.GetEmployee(ctx, empID); err != nil {
		h.respondError(w, r, "Unknown employee", err)
		return
	}

	var dir attendance.Direction
	if req.Direction == "" {
		last, err := h.Store.LastPunch(ctx, empID)
		if err != nil {
			h.respondError(w, r, "Failed to read last punch", err)
			return
		}
		dir = nextDirection(last, ts)
	} else {
		d, err := attendance.ParseDirection(req.Direction)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid direction", err)
			return
		}
		dir = d
	}

	p, err := h.Store.AppendPunch(ctx, attendance.PunchEvent{EmployeeID: empID, Timestamp: ts.UTC(), Direction: dir})
	if err != nil {
		h.respondError(w, r, "Failed to record punch", err)
		return
	}
	h.Logger.Debug("punch recorded",
		zap.String("employee_id", empID),
		zap.String("direction", string(dir)),
		zap.Time("at", ts))
	writeJSON(w, http.StatusCreated, toPunchDTO(p))
}

// nextDirection toggles from the last punch of the same civil day.
func nextDirection(last *attendance.PunchEvent, at time.Time) attendance.Direction {
	if last != nil && last.Direction == attendance.DirectionIn &&
		civil.LocalDateKey(last.Timestamp) == civil.LocalDateKey(at) {
		return attendance.DirectionOut
	}
	return attendance.DirectionIn
}

// GetAttendance evaluates an employee's days in a period.
// GET /api/employees/{id}/attendance?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if !canAccess(r, id) {
		writeError(w, http.StatusForbidden, "Not allowed to view this employee", nil)
		return
	}
	period, err := h.periodFromQuery(r)
	if err != nil {
		h.respondError(w, r, "Invalid period", err)
		return
	}

	emp, err := h.Store.Employee(ctx, id)
	if err != nil {
		h.respondError(w, r, "Failed to get employee", err)
		return
	}
	punches, err := h.Store.LoadPunches(ctx, id, period)
	if err != nil {
		h.respondError(w, r, "Failed to load punches", err)
		return
	}
	holidays, err := h.Store.ListHolidays(ctx, period)
	if err != nil {
		h.respondError(w, r, "Failed to load holidays", err)
		return
	}

	shift := emp.Shift
	if shift.EndMinutes == 0 {
		shift = attendance.StandardShift()
	}
	ev := attendance.Evaluator{Shift: shift, Calendar: civil.NewHolidayList(holidays)}
	records := ev.EvaluateRange(id, period, punches)

	days := make([]AttendanceRecordDTO, len(records))
	for i, rec := range records {
		days[i] = toAttendanceRecordDTO(rec)
	}
	punchDTOs := make([]PunchDTO, len(punches))
	for i, p := range punches {
		punchDTOs[i] = toPunchDTO(p)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"employee_id":  id,
		"period_start": period.Start.String(),
		"period_end":   period.End.String(),
		"days":         days,
		"summary":      toAttendanceSummaryDTO(attendance.Summarize(records)),
		"punches":      punchDTOs,
	})
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

// ListHolidays returns holidays for ?from&to, defaulting to the current year.
// GET /api/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	period := h.currentYear()
	if r.URL.Query().Get("from") != "" || r.URL.Query().Get("to") != "" {
		p, err := parsePeriod(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
		if err != nil {
			h.respondError(w, r, "Invalid period", err)
			return
		}
		period = p
	}

	holidays, err := h.Store.ListHolidays(r.Context(), period)
	if err != nil {
		h.respondError(w, r, "Failed to get holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, toHolidayDTO(hol))
	}
	writeJSON(w, http.StatusOK, map[string]any{"holidays": dtos})
}

func (h *Handler) currentYear() civil.Period {
	today := civil.LocalDateKey(h.now())
	return civil.Period{
		Start: civil.NewDate(today.Year, time.January, 1),
		End:   civil.NewDate(today.Year, time.December, 31),
	}
}

// CreateHoliday creates a new holiday.
// POST /api/holidays
func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	date, err := civil.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}
	if req.Type == "" {
		req.Type = string(civil.HolidayRegular)
	}
	typ, err := civil.ParseHolidayType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid holiday type", err)
		return
	}

	holiday, err := h.Store.SaveHoliday(r.Context(), civil.Holiday{Date: date, Name: strings.TrimSpace(req.Name), Type: typ})
	if err != nil {
		h.respondError(w, r, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, toHolidayDTO(holiday))
}

// DeleteHoliday deletes a holiday.
// DELETE /api/holidays/{id}
func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, "Failed to delete holiday", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// =============================================================================
// RULE & SHIFT ENDPOINTS
// =============================================================================

// ListRules returns all payroll rules.
// GET /api/rules
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.Store.ListRules(r.Context())
	if err != nil {
		h.respondError(w, r, "Failed to list rules", err)
		return
	}
	dtos := make([]factory.RuleJSON, len(rules))
	for i, rule := range rules {
		dtos[i] = h.Factory.RuleToJSON(rule)
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": dtos})
}

// SaveRule creates or replaces a payroll rule.
// POST /api/rules
func (h *Handler) SaveRule(w http.ResponseWriter, r *http.Request) {
	var rj factory.RuleJSON
	if err := json.NewDecoder(r.Body).Decode(&rj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rule, err := h.Factory.RuleFromJSON(rj)
	if err != nil {
		h.respondError(w, r, "Invalid rule", asInvalid(err))
		return
	}
	if rule.EmployeeID != "" {
		if _, err := h.Store.GetEmployee(r.Context(), rule.EmployeeID); err != nil {
			h.respondError(w, r, "Unknown employee", err)
			return
		}
	}

	saved, err := h.Store.SaveRule(r.Context(), rule)
	if err != nil {
		h.respondError(w, r, "Failed to save rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.RuleToJSON(saved))
}

// ListShifts returns all shifts with their configuration.
// GET /api/shifts
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	recs, err := h.Store.ListShifts(r.Context())
	if err != nil {
		h.respondError(w, r, "Failed to list shifts", err)
		return
	}
	dtos := make([]ShiftDTO, 0, len(recs))
	for _, rec := range recs {
		var cfg factory.ShiftJSON
		if err := json.Unmarshal([]byte(rec.ConfigJSON), &cfg); err != nil {
			h.Logger.Warn("skipping unreadable shift", zap.String("shift_id", rec.ID), zap.Error(err))
			continue
		}
		cfg.ID = rec.ID
		dtos = append(dtos, ShiftDTO{ID: rec.ID, Name: rec.Name, Config: cfg})
	}
	writeJSON(w, http.StatusOK, map[string]any{"shifts": dtos})
}

// CreateShift validates and stores a shift definition.
// POST /api/shifts
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var sj factory.ShiftJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(sj.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	shift, err := h.Factory.ShiftFromJSON(sj)
	if err != nil {
		h.respondError(w, r, "Invalid shift", asInvalid(err))
		return
	}

	normalized, err := json.Marshal(h.Factory.ShiftToJSON("", shift))
	if err != nil {
		h.respondError(w, r, "Failed to encode shift", err)
		return
	}
	rec, err := h.Store.SaveShift(r.Context(), sqlite.ShiftRecord{ID: sj.ID, Name: shift.Name, ConfigJSON: string(normalized)})
	if err != nil {
		h.respondError(w, r, "Failed to save shift", err)
		return
	}
	writeJSON(w, http.StatusCreated, ShiftDTO{ID: rec.ID, Name: rec.Name, Config: h.Factory.ShiftToJSON(rec.ID, shift)})
}

// =============================================================================
// DEDUCTION ENDPOINTS
// =============================================================================

// DeductionCatalog lists the known deduction codes.
// GET /api/deductions/catalog
func (h *Handler) DeductionCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"catalog": h.Runner.Catalog.Entries()})
}

// ListDeductions returns an employee's deductions overlapping ?from&to.
// GET /api/employees/{id}/deductions
func (h *Handler) ListDeductions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canAccess(r, id) {
		writeError(w, http.StatusForbidden, "Not allowed to view this employee", nil)
		return
	}
	period, err := h.periodFromQuery(r)
	if err != nil {
		h.respondError(w, r, "Invalid period", err)
		return
	}

	ds, err := h.Store.ListDeductions(r.Context(), id, period)
	if err != nil {
		h.respondError(w, r, "Failed to list deductions", err)
		return
	}
	dtos := make([]DeductionDTO, len(ds))
	for i, d := range ds {
		dtos[i] = toDeductionDTO(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"deductions": dtos})
}

// AddDeduction records a deduction for an employee and period. The category
// comes from the catalog; unknown codes are custom.
// POST /api/employees/{id}/deductions
func (h *Handler) AddDeduction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req DeductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	period, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		h.respondError(w, r, "Invalid period", err)
		return
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		writeError(w, http.StatusBadRequest, "Code is required", nil)
		return
	}
	if _, err := h.Store.GetEmployee(r.Context(), id); err != nil {
		h.respondError(w, r, "Unknown employee", err)
		return
	}

	d, err := h.Store.AddDeduction(r.Context(), sqlite.Deduction{
		EmployeeID: id,
		Period:     period,
		Item:       h.Runner.Catalog.Item(code, payroll.Round(req.Amount), strings.TrimSpace(req.Description)),
	})
	if err != nil {
		h.respondError(w, r, "Failed to add deduction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toDeductionDTO(d))
}

// asInvalid marks a domain validation error as a bad request, keeping
// ErrInvalidAmount visible to errors.Is.
func asInvalid(err error) error {
	if errors.Is(err, errInvalidRequest) || errors.Is(err, payroll.ErrInvalidAmount) {
		return err
	}
	return fmt.Errorf("%w: %w", errInvalidRequest, err)
}
