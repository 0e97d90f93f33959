package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey string

const workspaceKey contextKey = "workspace_id"

// WorkspaceFromContext returns the workspace id set by the session middleware.
func WorkspaceFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(workspaceKey).(string)
	return v, ok && v != ""
}

func WithWorkspace(ctx context.Context, workspaceID string) context.Context {
	return context.WithValue(ctx, workspaceKey, workspaceID)
}

func unauthorized(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// RequireSession rejects requests without a valid session cookie and puts the
// workspace id in the context.
func RequireSession(sessionSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName())
			if err != nil {
				unauthorized(w, "no_session")
				return
			}

			workspaceID, err := VerifySessionToken(cookie.Value, sessionSecret)
			if err != nil {
				unauthorized(w, "invalid_session")
				return
			}

			ctx := WithWorkspace(r.Context(), workspaceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DevWorkspaceID is the shared workspace used when sessions are not enforced.
const DevWorkspaceID = "dev-workspace"

// DevSession uses the session cookie when it verifies and falls back to
// DevWorkspaceID otherwise (AUTH_REQUIRED=false).
func DevSession(sessionSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			workspaceID := DevWorkspaceID
			if cookie, err := r.Cookie(SessionCookieName()); err == nil {
				if id, err := VerifySessionToken(cookie.Value, sessionSecret); err == nil {
					workspaceID = id
				}
			}
			ctx := WithWorkspace(r.Context(), workspaceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
