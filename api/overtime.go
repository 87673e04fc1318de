package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
	"github.com/rottnpotato/BISUpayroll-sub004/store/sqlite"
)

// =============================================================================
// OVERTIME ENDPOINTS
// =============================================================================

// CreateOvertime files a pending overtime or overload request. Employees file
// for themselves; admins may file for anyone.
// POST /api/overtime
func (h *Handler) CreateOvertime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := claimsFrom(ctx)

	var body OvertimeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	empID := claims.EmployeeID
	if body.EmployeeID != "" && body.EmployeeID != empID {
		if !claims.IsAdmin() {
			writeError(w, http.StatusForbidden, "Not allowed to file for another employee", nil)
			return
		}
		empID = body.EmployeeID
	}
	if _, err := h.Store.GetEmployee(ctx, empID); err != nil {
		h.respondError(w, r, "Unknown employee", err)
		return
	}

	req, err := body.toDomain(empID)
	if err != nil {
		h.respondError(w, r, "Invalid overtime request", err)
		return
	}
	created, err := h.Store.CreateOvertime(ctx, req)
	if err != nil {
		h.respondError(w, r, "Failed to create overtime request", err)
		return
	}
	writeJSON(w, http.StatusCreated, toOvertimeDTO(created))
}

// ListOvertime lists requests, filtered by ?status and ?employee_id.
// Non-admins only see their own.
// GET /api/overtime
func (h *Handler) ListOvertime(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	q := r.URL.Query()

	filter := sqlite.OvertimeFilter{EmployeeID: q.Get("employee_id")}
	if !claims.IsAdmin() {
		filter.EmployeeID = claims.EmployeeID
	}
	if s := q.Get("status"); s != "" {
		status, err := payroll.ParseOvertimeStatus(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status", err)
			return
		}
		filter.Status = status
	}
	if q.Get("from") != "" || q.Get("to") != "" {
		p, err := parsePeriod(q.Get("from"), q.Get("to"))
		if err != nil {
			h.respondError(w, r, "Invalid period", err)
			return
		}
		filter.Period = &p
	}

	reqs, err := h.Store.ListOvertime(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, "Failed to list overtime requests", err)
		return
	}
	dtos := make([]OvertimeDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toOvertimeDTO(req)
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": dtos})
}

// UpdateOvertime edits a pending request. 409 once reviewed.
// PUT /api/overtime/{id}
func (h *Handler) UpdateOvertime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	existing, ok := h.ownedOvertime(w, r)
	if !ok {
		return
	}

	var body OvertimeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req, err := body.toDomain(existing.EmployeeID)
	if err != nil {
		h.respondError(w, r, "Invalid overtime request", err)
		return
	}
	req.ID = existing.ID

	updated, err := h.Store.UpdateOvertime(ctx, req)
	if err != nil {
		h.respondError(w, r, "Failed to update overtime request", err)
		return
	}
	writeJSON(w, http.StatusOK, toOvertimeDTO(updated))
}

// DeleteOvertime withdraws a pending request. 409 once reviewed.
// DELETE /api/overtime/{id}
func (h *Handler) DeleteOvertime(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedOvertime(w, r)
	if !ok {
		return
	}
	if err := h.Store.DeleteOvertime(r.Context(), existing.ID); err != nil {
		h.respondError(w, r, "Failed to delete overtime request", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

// ApproveOvertime approves a pending request.
// POST /api/overtime/{id}/approve
func (h *Handler) ApproveOvertime(w http.ResponseWriter, r *http.Request) {
	h.reviewOvertime(w, r, true)
}

// RejectOvertime rejects a pending request.
// POST /api/overtime/{id}/reject
func (h *Handler) RejectOvertime(w http.ResponseWriter, r *http.Request) {
	h.reviewOvertime(w, r, false)
}

func (h *Handler) reviewOvertime(w http.ResponseWriter, r *http.Request, approve bool) {
	id := chi.URLParam(r, "id")
	reviewer := claimsFrom(r.Context()).EmployeeID

	req, err := h.Store.ReviewOvertime(r.Context(), id, approve, reviewer)
	if err != nil {
		h.respondError(w, r, "Failed to review overtime request", err)
		return
	}
	h.Logger.Info("overtime reviewed",
		zap.String("request_id", id),
		zap.String("status", string(req.Status)),
		zap.String("reviewer", reviewer))
	writeJSON(w, http.StatusOK, toOvertimeDTO(req))
}

// ownedOvertime loads the {id} request and checks the caller may change it.
func (h *Handler) ownedOvertime(w http.ResponseWriter, r *http.Request) (*payroll.OvertimeRequest, bool) {
	req, err := h.Store.GetOvertime(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, "Failed to get overtime request", err)
		return nil, false
	}
	if !canAccess(r, req.EmployeeID) {
		writeError(w, http.StatusForbidden, "Not allowed to change this request", nil)
		return nil, false
	}
	return req, true
}
