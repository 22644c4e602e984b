package http

import (
	"context"
	"net/http"
	"strings"

	"safelearn-service/internal/app"
	"safelearn-service/internal/domain"
)

type contextKey struct{ name string }

var sessionKey = contextKey{name: "session"}

// RequireAuth resolves the bearer token into the ambient user context and
// rejects requests without a live session.
func RequireAuth(auth *app.AuthService, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, domain.ErrInvalidToken)
			return
		}
		session, err := auth.Session(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, session)
		next(w, r.WithContext(ctx))
	}
}

func sessionFromContext(ctx context.Context) (app.SessionInfo, bool) {
	session, ok := ctx.Value(sessionKey).(app.SessionInfo)
	return session, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// Websocket clients cannot set headers from the browser.
	return r.URL.Query().Get("token")
}
