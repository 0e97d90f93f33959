package handler

import (
	"net/http"
	"strings"

	"github.com/costplan/backend/internal/model"
	"github.com/costplan/backend/internal/service"
)

// AssumptionHandler serves rates, business names and the function catalog.
type AssumptionHandler struct {
	svc service.AssumptionService
}

func NewAssumptionHandler(svc service.AssumptionService) *AssumptionHandler {
	return &AssumptionHandler{svc: svc}
}

// Get handles GET /api/assumptions
func (h *AssumptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	settings, err := h.svc.Get(r.Context(), ws)
	if err != nil {
		writeServiceError(w, err, "get_failed", "workspace", ws)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateRates handles PUT /api/assumptions/{business}. Resource records of the
// business are repriced; the response reports how many.
func (h *AssumptionHandler) UpdateRates(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	business := r.PathValue("business")
	var rates model.BusinessRates
	if !decodeJSON(w, r, &rates) {
		return
	}

	n, err := h.svc.UpdateRates(r.Context(), ws, business, rates)
	if err != nil {
		writeServiceError(w, err, "update_failed", "workspace", ws, "business", business)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "repriced": n})
}

// RenameBusiness handles PUT /api/businesses/{key}
func (h *AssumptionHandler) RenameBusiness(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.DisplayName) == "" {
		writeError(w, http.StatusBadRequest, "display_name_required")
		return
	}

	key := r.PathValue("key")
	if err := h.svc.RenameBusiness(r.Context(), ws, key, req.DisplayName); err != nil {
		writeServiceError(w, err, "rename_failed", "workspace", ws, "business", key)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Functions handles GET /api/functions
func (h *AssumptionHandler) Functions(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	names, err := h.svc.Functions(r.Context(), ws)
	if err != nil {
		writeServiceError(w, err, "list_failed", "workspace", ws)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"functions": names})
}

type functionRequest struct {
	Name string `json:"name"`
}

// AddFunction handles POST /api/functions
func (h *AssumptionHandler) AddFunction(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	var req functionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.AddFunction(r.Context(), ws, req.Name); err != nil {
		writeServiceError(w, err, "add_failed", "workspace", ws)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

// RenameFunction handles PUT /api/functions/{name}
func (h *AssumptionHandler) RenameFunction(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	var req functionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	from := r.PathValue("name")
	if err := h.svc.RenameFunction(r.Context(), ws, from, req.Name); err != nil {
		writeServiceError(w, err, "rename_failed", "workspace", ws, "function", from)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// RemoveFunction handles DELETE /api/functions/{name}. Records tagged only
// with the function fall back to Unassigned.
func (h *AssumptionHandler) RemoveFunction(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	if err := h.svc.RemoveFunction(r.Context(), ws, name); err != nil {
		writeServiceError(w, err, "remove_failed", "workspace", ws, "function", name)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
