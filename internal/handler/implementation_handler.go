package handler

import (
	"net/http"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/service"
)

// ImplementationHandler serves one-off implementation costs of changes.
type ImplementationHandler struct {
	svc service.ImplementationService
}

func NewImplementationHandler(svc service.ImplementationService) *ImplementationHandler {
	return &ImplementationHandler{svc: svc}
}

// List handles GET /api/implementation?business=
func (h *ImplementationHandler) List(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	business := r.URL.Query().Get("business")
	if business == "" {
		writeError(w, http.StatusBadRequest, "business_required")
		return
	}

	entries, err := h.svc.List(r.Context(), ws, business)
	if err != nil {
		writeServiceError(w, err, "list_failed", "workspace", ws, "business", business)
		return
	}
	if entries == nil {
		entries = []*model.ImplementationEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// Set handles PUT /api/implementation
func (h *ImplementationHandler) Set(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	var in service.ImplementationInput
	if !decodeJSON(w, r, &in) {
		return
	}

	e, err := h.svc.Set(r.Context(), ws, in)
	if err != nil {
		writeServiceError(w, err, "set_failed", "workspace", ws, "change_id", in.ChangeID)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Summary handles GET /api/implementation/summary?business=
func (h *ImplementationHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	business := r.URL.Query().Get("business")
	if business == "" {
		writeError(w, http.StatusBadRequest, "business_required")
		return
	}

	sum, err := h.svc.Summary(r.Context(), ws, business)
	if err != nil {
		writeServiceError(w, err, "summary_failed", "workspace", ws, "business", business)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
