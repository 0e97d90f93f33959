package handler

import (
	"net/http"
)

type healthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	Workspaces int    `json:"workspaces"`
	Error      string `json:"error,omitempty"`
}

const serviceName = "Cost Planning API"

// Health reports 503 once the repository has been closed for shutdown.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:  "unhealthy",
			Service: serviceName,
			Error:   err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Service:    serviceName,
		Workspaces: h.store.Workspaces(r.Context()),
	})
}
