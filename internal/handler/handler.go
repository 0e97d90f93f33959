package handler

import (
	"context"
	"net/http"
)

// Store is the part of the plan repository the health check needs.
type Store interface {
	Ping(ctx context.Context) error
	Workspaces(ctx context.Context) int
}

// Handler carries the cross-cutting endpoints and middleware.
type Handler struct {
	store       Store
	frontendURL string
}

func New(store Store, frontendURL string) *Handler {
	return &Handler{store: store, frontendURL: frontendURL}
}

// CORS admits the configured frontend origin with credentials. Workbook
// downloads name their file in Content-Disposition, so that header is exposed.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		hdr.Set("Access-Control-Allow-Origin", h.frontendURL)
		hdr.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		hdr.Set("Access-Control-Allow-Headers", "Content-Type")
		hdr.Set("Access-Control-Expose-Headers", "Content-Disposition")
		hdr.Set("Access-Control-Allow-Credentials", "true")
		hdr.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
