// internal/handlers/session.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/tmatias/uno/internal/auth"
)

// sessionCookie is the cookie carrying the guest session token.
const sessionCookie = "session_token"

// EnsureGuest resolves the request to a stable player id. A valid
// session cookie yields its embedded id; otherwise a fresh guest
// identity is minted and a new cookie is set. Must run before any
// WebSocket upgrade so the Set-Cookie header makes it into the
// handshake response.
func EnsureGuest(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		sub, err := auth.VerifySession(cookie.Value)
		if err == nil {
			if id, err := uuid.Parse(sub); err == nil {
				return id, nil
			}
		}
		// Fall through and reissue on any validation failure.
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to generate guest id: %w", err)
	}
	token, err := auth.CreateSession(id.String())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create guest session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}
