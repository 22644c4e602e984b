package http

import (
	"net/http"

	"safelearn-service/internal/app"
	"safelearn-service/internal/domain"
)

// AuthHandler exposes the identity-provider operations over JSON.
type AuthHandler struct {
	auth *app.AuthService

	// resetTarget is the page that the reset email links to when the
	// client does not name one itself.
	resetTarget string
}

func NewAuthHandler(auth *app.AuthService, resetTarget string) *AuthHandler {
	return &AuthHandler{auth: auth, resetTarget: resetTarget}
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Session app.SessionInfo `json:"session"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var input app.SignUpInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	token, session, err := h.auth.SignUp(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, Session: session})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var input app.SignInInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	token, session, err := h.auth.SignIn(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, Session: session})
}

func (h *AuthHandler) SignInWithGoogle(w http.ResponseWriter, r *http.Request) {
	var input struct {
		IDToken string `json:"idToken"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	token, session, err := h.auth.SignInWithGoogle(r.Context(), input.IDToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, Session: session})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, domain.ErrInvalidToken)
		return
	}
	if err := h.auth.SignOut(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "signed out"})
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, session)
}

func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email          string `json:"email"`
		RedirectTarget string `json:"redirectTarget"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	target := input.RedirectTarget
	if target == "" {
		target = h.resetTarget
	}
	if err := h.auth.RequestPasswordReset(r.Context(), input.Email, target); err != nil {
		writeError(w, err)
		return
	}
	// Deliberately identical for known and unknown addresses.
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset email sent if the account exists"})
}

func (h *AuthHandler) ConfirmReset(w http.ResponseWriter, r *http.Request) {
	var input app.ResetConfirmInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := h.auth.ConfirmPasswordReset(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}
