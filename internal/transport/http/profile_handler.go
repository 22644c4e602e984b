package http

import (
	"net/http"

	"safelearn-service/internal/app"
)

const maxAvatarSize = 5 << 20 // 5 MiB

// ProfileHandler exposes the profile record and the avatar upload.
type ProfileHandler struct {
	profiles *app.ProfileService
	auth     *app.AuthService
}

func NewProfileHandler(profiles *app.ProfileService, auth *app.AuthService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, auth: auth}
}

func (h *ProfileHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	profile, err := h.profiles.Fetch(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	var input struct {
		FullName string `json:"fullName"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	profile, err := h.profiles.UpdateName(r.Context(), session.UserID, input.FullName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	var input struct {
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	if err := h.auth.UpdatePassword(r.Context(), session.UserID, input.NewPassword, input.ConfirmPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		writeError(w, err)
		return
	}
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, err)
		return
	}
	defer file.Close()

	url, err := h.profiles.UpdateAvatar(r.Context(), session.UserID, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"avatarUrl": url})
}
