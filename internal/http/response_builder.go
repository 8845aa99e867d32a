package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"consultify/internal/core"
	"consultify/internal/log"
)

type errorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are gone; nothing left to tell the client.
		slog.Error("Failed to encode response", log.FieldError, err)
	}
}

// writeError maps domain errors to status codes. Unexpected errors are logged
// and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var invalid *core.InvalidInputError
	switch {
	case errors.Is(err, core.ErrInvalidCursor):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid cursor", Field: "cursor"})
	case errors.As(err, &invalid):
		logger.InfoContext(ctx, "Rejected request",
			log.FieldErrorType, log.ErrorTypeValidation,
			"field", invalid.Field,
			"reason", invalid.Reason)
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:  invalid.Error(),
			Field:  invalid.Field,
			Reason: invalid.Reason,
		})
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		fields := log.NewFields().
			WithError(err, log.ErrorTypeInternal).
			WithHTTPRequest(r.Method, r.URL.Path, "", "")
		logger.ErrorContext(ctx, "Request failed", fields.ToSlice()...)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// badRequest reports a body or query the server could not read at all.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
