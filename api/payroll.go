package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rottnpotato/BISUpayroll-sub004/civil"
	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
	"github.com/rottnpotato/BISUpayroll-sub004/report"
	"github.com/rottnpotato/BISUpayroll-sub004/store/sqlite"
)

// =============================================================================
// PAYROLL ENDPOINTS
// =============================================================================

// GetEmployeePayroll computes one employee's breakdown for ?from&to.
// Payroll conditions answer 422 with the condition as the error code.
// GET /api/employees/{id}/payroll
func (h *Handler) GetEmployeePayroll(w http.ResponseWriter, r *http.Request) {
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

	b, err := h.Runner.ComputeEmployee(r.Context(), id, period)
	if err != nil {
		h.respondError(w, r, "Payroll could not be computed", err)
		return
	}
	writeJSON(w, http.StatusOK, toBreakdownDTO(b))
}

// CreatePayrollRun computes every active employee for a period and records
// the run. An empty body runs the previous pay period.
// POST /api/payroll/runs
func (h *Handler) CreatePayrollRun(w http.ResponseWriter, r *http.Request) {
	var req RunPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period := h.PayPeriod.Previous(civil.LocalDateKey(h.now()))
	if req.From != "" || req.To != "" {
		p, err := parsePeriod(req.From, req.To)
		if err != nil {
			h.respondError(w, r, "Invalid period", err)
			return
		}
		period = p
	}

	rec, _, err := h.RunPayroll(r.Context(), period, "manual")
	if err != nil {
		h.respondError(w, r, "Payroll run failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPayrollRunDTO(rec))
}

// ListPayrollRuns returns run history, optionally filtered by ?status.
// GET /api/payroll/runs
func (h *Handler) ListPayrollRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListPayrollRuns(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.respondError(w, r, "Failed to get payroll runs", err)
		return
	}
	dtos := make([]PayrollRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toPayrollRunDTO(run)
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": dtos})
}

// PayrollReport returns formatted payslips for every employee in ?from&to.
// Employees the run could not pay are listed with their error code.
// GET /api/reports/payroll
func (h *Handler) PayrollReport(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		h.respondError(w, r, "Invalid period", err)
		return
	}
	run, err := h.Runner.Run(r.Context(), period)
	if err != nil {
		h.respondError(w, r, "Failed to compute payroll", err)
		return
	}

	payslips := make([]report.Payslip, 0, len(run.Results))
	failures := make([]RunFailureDTO, 0)
	totalNet := payroll.Sum()
	for _, res := range run.Results {
		if !res.OK() {
			failures = append(failures, toRunFailure(res.Employee.ID, res.Err))
			continue
		}
		payslips = append(payslips, h.Formatter.Payslip(res.Employee, res.Breakdown))
		totalNet = totalNet.Add(res.Breakdown.NetPay)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"period":    h.Formatter.Date(period.Start) + " - " + h.Formatter.Date(period.End),
		"payslips":  payslips,
		"failures":  failures,
		"processed": run.Processed,
		"failed":    run.Failed,
		"total_net": h.Formatter.Currency(totalNet),
	})
}

// PayrollReportXLSX streams the payroll register as a workbook.
// GET /api/reports/payroll.xlsx
func (h *Handler) PayrollReportXLSX(w http.ResponseWriter, r *http.Request) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		h.respondError(w, r, "Invalid period", err)
		return
	}
	run, err := h.Runner.Run(r.Context(), period)
	if err != nil {
		h.respondError(w, r, "Failed to compute payroll", err)
		return
	}

	var buf bytes.Buffer
	title := "Payroll Register " + h.Formatter.Date(period.Start) + " - " + h.Formatter.Date(period.End)
	if err := report.WritePayrollXLSX(&buf, title, report.RowsFromRun(run)); err != nil {
		h.respondError(w, r, "Failed to build report", err)
		return
	}

	filename := fmt.Sprintf("payroll_%s_%s.xlsx", period.Start, period.End)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// RUN EXECUTION
// =============================================================================

// RunPayroll computes a period and records the run. Per-employee failures
// are part of a completed run; only a failed snapshot or a cancelled ctx
// marks the run failed. The final status is saved even after ctx is done.
func (h *Handler) RunPayroll(ctx context.Context, period civil.Period, trigger string) (sqlite.PayrollRun, *payroll.Run, error) {
	rec := sqlite.PayrollRun{
		Period:    period,
		Status:    sqlite.RunRunning,
		Trigger:   trigger,
		StartedAt: h.now().UTC(),
	}
	rec, err := h.Store.SavePayrollRun(ctx, rec)
	if err != nil {
		return sqlite.PayrollRun{}, nil, fmt.Errorf("failed to save run record: %w", err)
	}

	run, runErr := h.Runner.Run(ctx, period)
	saveCtx := context.WithoutCancel(ctx)
	completed := h.now().UTC()
	rec.CompletedAt = &completed

	if runErr != nil {
		rec.Status = sqlite.RunFailed
		rec.ErrorsJSON = mustJSON([]RunFailureDTO{{Code: "run_failed", Error: runErr.Error()}})
		if _, err := h.Store.SavePayrollRun(saveCtx, rec); err != nil {
			h.Logger.Error("failed to record failed run", zap.String("run_id", rec.ID), zap.Error(err))
		}
		return rec, nil, runErr
	}

	failures := make([]RunFailureDTO, 0, run.Failed)
	for _, res := range run.Results {
		if res.Err == nil {
			continue
		}
		failures = append(failures, toRunFailure(res.Employee.ID, res.Err))
		if !payroll.IsClientError(res.Err) {
			h.Logger.Error("employee payroll failed",
				zap.String("run_id", rec.ID),
				zap.String("employee_id", res.Employee.ID),
				zap.Error(res.Err))
		}
	}
	rec.Status = sqlite.RunCompleted
	rec.Processed = run.Processed
	rec.Failed = run.Failed
	rec.ErrorsJSON = mustJSON(failures)
	if rec, err = h.Store.SavePayrollRun(saveCtx, rec); err != nil {
		return sqlite.PayrollRun{}, nil, fmt.Errorf("failed to update run record: %w", err)
	}

	h.Logger.Info("payroll run completed",
		zap.String("run_id", rec.ID),
		zap.String("period", period.String()),
		zap.String("trigger", trigger),
		zap.Int("processed", run.Processed),
		zap.Int("failed", run.Failed))
	return rec, run, nil
}

func toRunFailure(employeeID string, err error) RunFailureDTO {
	code := "error"
	if c, ok := payroll.ConditionOf(err); ok {
		code = string(c)
	}
	return RunFailureDTO{EmployeeID: employeeID, Code: code, Error: err.Error()}
}

func toPayrollRunDTO(r sqlite.PayrollRun) PayrollRunDTO {
	dto := PayrollRunDTO{
		ID:          r.ID,
		PeriodStart: r.Period.Start.String(),
		PeriodEnd:   r.Period.End.String(),
		Status:      r.Status,
		Trigger:     r.Trigger,
		Processed:   r.Processed,
		Failed:      r.Failed,
		StartedAt:   r.StartedAt.UTC().Format(time.RFC3339),
	}
	if r.ErrorsJSON != "" {
		// Stored by RunPayroll; an unreadable value just drops the detail.
		_ = json.Unmarshal([]byte(r.ErrorsJSON), &dto.Failures)
	}
	if r.CompletedAt != nil {
		dto.CompletedAt = r.CompletedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
