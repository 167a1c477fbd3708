// internal/handlers/identity.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jason-s-yu/suitmatch/internal/auth"
)

// EnsurePlayer returns the player id carried by the request's token. A request without a valid
// token gets a new guest id and a cookie holding its token.
func (gs *SessionServer) EnsurePlayer(w http.ResponseWriter, r *http.Request) (uuid.UUID, error) {
	if id, err := gs.Authenticate(r); err == nil {
		return id, nil
	}

	id := uuid.New()
	token, err := gs.Signer.CreateToken(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create guest token: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	gs.Logger.WithField("player", id).Debug("issued guest token")
	return id, nil
}

// Authenticate returns the player id from the request's token without minting a new one.
func (gs *SessionServer) Authenticate(r *http.Request) (uuid.UUID, error) {
	token := extractToken(r)
	if token == "" {
		return uuid.Nil, fmt.Errorf("no auth token")
	}
	return gs.Signer.Authenticate(token)
}
