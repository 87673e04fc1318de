package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/rottnpotato/BISUpayroll-sub004/payroll"
	"github.com/rottnpotato/BISUpayroll-sub004/store/sqlite"
)

// =============================================================================
// RESPONSES
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message, Code: codeForStatus(status)}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusUnprocessableEntity:
		return "unprocessable"
	default:
		return "internal"
	}
}

// respondError maps store and payroll errors onto HTTP statuses and codes.
// Payroll conditions are 422 with the condition as the code.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, message string, err error) {
	var dErr *payroll.DeductionsExceedGrossError
	switch {
	case errors.As(err, &dErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: message,
			Code:  string(dErr.Condition()),
			Details: map[string]string{
				"message":          dErr.Error(),
				"gross_pay":        dErr.GrossPay.StringFixed(2),
				"total_deductions": dErr.TotalDeductions.StringFixed(2),
				"shortfall":        dErr.Shortfall.StringFixed(2),
			},
		})
	case errors.Is(err, payroll.ErrRateNotConfigured):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   message,
			Code:    string(payroll.ConditionRateNotConfigured),
			Details: err.Error(),
		})
	case errors.Is(err, sqlite.ErrNotFound), payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, payroll.ErrRequestNotPending):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: message, Code: "request_not_pending", Details: err.Error()})
	case errors.Is(err, sqlite.ErrDuplicate):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: message, Code: "duplicate", Details: err.Error()})
	case errors.Is(err, payroll.ErrInvalidAmount):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Code: "invalid_amount", Details: err.Error()})
	case errors.Is(err, errInvalidRequest):
		writeError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, errUnauthorized):
		writeError(w, http.StatusUnauthorized, message, nil)
	default:
		h.Logger.Error(message,
			zap.Error(err),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path))
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}
