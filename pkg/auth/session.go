package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrInvalidSignature = errors.New("invalid signature")
)

// NewWorkspaceID returns a fresh random workspace id.
func NewWorkspaceID() string {
	return uuid.NewString()
}

// CreateSessionToken signs a workspace id into a cookie-safe token.
func CreateSessionToken(workspaceID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(workspaceID))
	sig := hex.EncodeToString(mac.Sum(nil))
	return base64.URLEncoding.EncodeToString([]byte(workspaceID)) + "." + sig
}

// VerifySessionToken checks the signature and returns the workspace id.
func VerifySessionToken(token string, secret []byte) (string, error) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", ErrInvalidToken
	}
	payload, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil || len(payload) == 0 {
		return "", ErrInvalidToken
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[1])) {
		return "", ErrInvalidSignature
	}
	return string(payload), nil
}

const sessionCookieName = "costplan_session"
const minSecretLen = 32

// SessionMaxAge bounds the cookie lifetime; idle workspaces are pruned server side anyway.
const SessionMaxAge = 30 * 24 * time.Hour

func SessionCookieName() string {
	return sessionCookieName
}

// SessionCookie builds the cookie carrying token.
func SessionCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SessionSecretBytes pads s to at least 32 bytes for signing.
func SessionSecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}
