package http

import (
	"net/http"

	"safelearn-service/internal/app"
)

// NewRouter wires every handler onto a ServeMux. All /api/v1 routes other
// than the auth entry points require a bearer token.
func NewRouter(authHandler *AuthHandler, profileHandler *ProfileHandler, quizHandler *QuizHandler, wsHandler *WSHandler, auth *app.AuthService) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /api/v1/auth/signup", authHandler.SignUp)
	mux.HandleFunc("POST /api/v1/auth/signin", authHandler.SignIn)
	mux.HandleFunc("POST /api/v1/auth/signin/google", authHandler.SignInWithGoogle)
	mux.HandleFunc("POST /api/v1/auth/signout", RequireAuth(auth, authHandler.SignOut))
	mux.HandleFunc("GET /api/v1/auth/session", RequireAuth(auth, authHandler.Session))
	mux.HandleFunc("POST /api/v1/auth/reset/request", authHandler.RequestReset)
	mux.HandleFunc("POST /api/v1/auth/reset/confirm", authHandler.ConfirmReset)

	mux.HandleFunc("GET /api/v1/profile", RequireAuth(auth, profileHandler.Fetch))
	mux.HandleFunc("PATCH /api/v1/profile", RequireAuth(auth, profileHandler.UpdateName))
	mux.HandleFunc("PUT /api/v1/profile/password", RequireAuth(auth, profileHandler.UpdatePassword))
	mux.HandleFunc("POST /api/v1/profile/avatar", RequireAuth(auth, profileHandler.UploadAvatar))

	mux.HandleFunc("GET /api/v1/dashboard", RequireAuth(auth, quizHandler.Dashboard))

	mux.HandleFunc("GET /api/v1/quiz/{bankID}", RequireAuth(auth, quizHandler.Bank))
	mux.HandleFunc("POST /api/v1/quiz/{bankID}/session", RequireAuth(auth, quizHandler.Open))
	mux.HandleFunc("POST /api/v1/quiz/{bankID}/session/answer", RequireAuth(auth, quizHandler.SelectAnswer))
	mux.HandleFunc("POST /api/v1/quiz/{bankID}/session/advance", RequireAuth(auth, quizHandler.Advance))
	mux.HandleFunc("POST /api/v1/quiz/{bankID}/session/retreat", RequireAuth(auth, quizHandler.Retreat))
	mux.HandleFunc("POST /api/v1/quiz/{bankID}/session/reset", RequireAuth(auth, quizHandler.Reset))
	mux.HandleFunc("GET /api/v1/quiz/{bankID}/session/results", RequireAuth(auth, quizHandler.Results))
	mux.HandleFunc("DELETE /api/v1/quiz/{bankID}/session", RequireAuth(auth, quizHandler.Close))

	mux.HandleFunc("GET /api/v1/leaderboard", RequireAuth(auth, quizHandler.Leaderboard))
	mux.HandleFunc("GET /ws/leaderboard", RequireAuth(auth, wsHandler.ServeWS))

	return mux
}
