package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/costplan/backend/internal/service"
	"github.com/costplan/backend/pkg/auth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeServiceError maps a service error to a status code. Anything it does not
// recognise is logged and reported as failCode.
func writeServiceError(w http.ResponseWriter, err error, failCode string, attrs ...any) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid_input", "fields": verr.Fields})
	case errors.Is(err, service.ErrInvalidYear):
		writeError(w, http.StatusBadRequest, "invalid_year")
	case errors.Is(err, service.ErrMissingRate):
		writeError(w, http.StatusUnprocessableEntity, "missing_rate")
	case errors.Is(err, service.ErrUnknownBusiness):
		writeError(w, http.StatusBadRequest, "unknown_business")
	case errors.Is(err, service.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_input", "message": err.Error()})
	case errors.Is(err, service.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, "record_not_found")
	case errors.Is(err, service.ErrChangeNotFound):
		writeError(w, http.StatusNotFound, "change_not_found")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	default:
		slog.Error(failCode, append([]any{"error", err}, attrs...)...)
		writeError(w, http.StatusInternalServerError, failCode)
	}
}

// workspace returns the session workspace or writes 401.
func workspace(w http.ResponseWriter, r *http.Request) (string, bool) {
	ws, ok := auth.WorkspaceFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return ws, ok
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_"+name)
		return 0, false
	}
	return n, true
}
