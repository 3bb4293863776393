package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"procurement-console/internal/api"
	"procurement-console/internal/core"
)

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeJSONStatus(w, status, api.ErrorResponse{
		Message:   message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeValidation writes HTTP 422 with every field error keyed by field name.
func writeValidation(w http.ResponseWriter, r *http.Request, verrs core.ValidationErrors) {
	writeJSONStatus(w, http.StatusUnprocessableEntity, api.ErrorResponse{
		Message:   "The given data was invalid.",
		Code:      "VALIDATION_FAILED",
		Errors:    verrs.ByField(),
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeServiceError maps domain errors to HTTP statuses. Anything unrecognised
// is logged and reported as a 500 without leaking its text.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs core.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeValidation(w, r, verrs)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, "purchase order not found", "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrNotEditable):
		writeError(w, r, err.Error(), "NOT_EDITABLE", http.StatusConflict)
	case errors.Is(err, core.ErrInvalidTransition):
		writeError(w, r, err.Error(), "INVALID_TRANSITION", http.StatusConflict)
	case errors.Is(err, core.ErrForbiddenTransition):
		writeError(w, r, err.Error(), "FORBIDDEN", http.StatusForbidden)
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", requestIDFromContext(r.Context()), "err", err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
