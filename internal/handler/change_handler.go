package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/service"
)

// ChangeHandler serves planned changes to records.
type ChangeHandler struct {
	svc service.ChangeService
}

func NewChangeHandler(svc service.ChangeService) *ChangeHandler {
	return &ChangeHandler{svc: svc}
}

// List handles GET /api/changes?record_id=
func (h *ChangeHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}

	recordID := 0
	if raw := r.URL.Query().Get("record_id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_record_id")
			return
		}
		recordID = n
	}

	changes, err := h.svc.List(r.Context(), ws, recordID)
	if err != nil {
		writeServiceError(w, err, "list_failed", "workspace", ws)
		return
	}
	if changes == nil {
		changes = []*model.Change{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"changes": changes})
}

// Create handles POST /api/changes
func (h *ChangeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	var in service.ChangeInput
	if !decodeJSON(w, r, &in) {
		return
	}

	c, err := h.svc.Create(r.Context(), ws, in)
	if err != nil {
		writeServiceError(w, err, "create_failed", "workspace", ws, "record_id", in.RecordID)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Delete handles DELETE /api/changes/{id}
func (h *ChangeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	if err := h.svc.Delete(r.Context(), ws, id); err != nil {
		writeServiceError(w, err, "delete_failed", "workspace", ws, "change_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
