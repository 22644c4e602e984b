package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"safelearn-service/internal/domain"
	"safelearn-service/internal/validate"
)

type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps domain sentinels and field-validation failures onto
// status codes; anything unrecognized surfaces its message with a 500,
// matching the passed-through-verbatim error policy.
func writeError(w http.ResponseWriter, err error) {
	var fields validate.FieldErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "validation failed", Fields: fields})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrBankNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrOptionOutOfRange),
		errors.Is(err, domain.ErrUnanswered),
		errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrEmptyBank),
		errors.Is(err, domain.ErrInvalidBank):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Message: err.Error()})
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
