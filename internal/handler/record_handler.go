package handler

import (
	"net/http"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/service"
)

// RecordHandler serves the current cost line items of a workspace.
type RecordHandler struct {
	svc service.RecordService
}

func NewRecordHandler(svc service.RecordService) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// List handles GET /api/records?business=&category=
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}

	var cat model.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, ok := model.ParseCategory(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_category")
			return
		}
		cat = c
	}

	records, err := h.svc.List(r.Context(), ws, r.URL.Query().Get("business"), cat)
	if err != nil {
		writeServiceError(w, err, "list_failed", "workspace", ws)
		return
	}
	if records == nil {
		records = []*model.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

// Get handles GET /api/records/{id}
func (h *RecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	rec, err := h.svc.Get(r.Context(), ws, id)
	if err != nil {
		writeServiceError(w, err, "get_failed", "workspace", ws, "record_id", id)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Create handles POST /api/records
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	var in service.RecordInput
	if !decodeJSON(w, r, &in) {
		return
	}

	rec, err := h.svc.Create(r.Context(), ws, in)
	if err != nil {
		writeServiceError(w, err, "create_failed", "workspace", ws)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// Update handles PATCH /api/records/{id}
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var patch service.RecordPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	rec, err := h.svc.Update(r.Context(), ws, id, patch)
	if err != nil {
		writeServiceError(w, err, "update_failed", "workspace", ws, "record_id", id)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /api/records/{id}. Changes and implementation
// entries of the record go with it.
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), ws, id); err != nil {
		writeServiceError(w, err, "delete_failed", "workspace", ws, "record_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
