package handler

import (
	"net/http"

	"github.com/costplan/backend/internal/service"
)

// ProjectionHandler serves projected costs.
type ProjectionHandler struct {
	svc service.ProjectionService
}

func NewProjectionHandler(svc service.ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{svc: svc}
}

// Record handles GET /api/projections/records/{id}
func (h *ProjectionHandler) Record(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}

	p, err := h.svc.Record(r.Context(), ws, id)
	if err != nil {
		writeServiceError(w, err, "projection_failed", "workspace", ws, "record_id", id)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Dashboard handles GET /api/projections/dashboard?business=
// Without a business the whole workspace is summarized.
func (h *ProjectionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	business := r.URL.Query().Get("business")

	d, err := h.svc.Dashboard(r.Context(), ws, business)
	if err != nil {
		writeServiceError(w, err, "dashboard_failed", "workspace", ws, "business", business)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
