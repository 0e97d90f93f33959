package handler

import (
	"log/slog"
	"net/http"

	"github.com/costplan/backend/internal/service"
	"github.com/costplan/backend/pkg/auth"
)

// SessionHandler hands out workspaces. Each browser session gets its own plan.
type SessionHandler struct {
	workbook service.WorkbookService
	secret   []byte
	secure   bool
	seed     bool
}

// NewSessionHandler creates a SessionHandler. With seed set, new workspaces
// start with the sample plan.
func NewSessionHandler(wb service.WorkbookService, secret []byte, secure, seed bool) *SessionHandler {
	return &SessionHandler{workbook: wb, secret: secret, secure: secure, seed: seed}
}

// Create handles POST /api/session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ws := auth.NewWorkspaceID()
	if h.seed {
		if err := h.workbook.LoadSample(r.Context(), ws); err != nil {
			slog.Error("seed workspace failed", "error", err, "workspace", ws)
			writeError(w, http.StatusInternalServerError, "session_failed")
			return
		}
	}

	http.SetCookie(w, auth.SessionCookie(auth.CreateSessionToken(ws, h.secret), h.secure))
	slog.Info("workspace created", "workspace", ws, "seeded", h.seed)
	writeJSON(w, http.StatusCreated, map[string]string{"workspace_id": ws})
}

// Get handles GET /api/session (session required).
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"workspace_id": ws})
}

// Delete handles DELETE /api/session: the workspace is discarded and the
// cookie cleared.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspace(w, r)
	if !ok {
		return
	}
	if err := h.workbook.Reset(r.Context(), ws); err != nil {
		writeServiceError(w, err, "logout_failed", "workspace", ws)
		return
	}
	cookie := auth.SessionCookie("", h.secure)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
