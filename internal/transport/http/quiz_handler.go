package http

import (
	"net/http"

	"safelearn-service/internal/app"
)

// QuizHandler drives a learner's quiz session over the bank named in the path.
type QuizHandler struct {
	quizzes *app.QuizService
}

func NewQuizHandler(quizzes *app.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

func (h *QuizHandler) Bank(w http.ResponseWriter, r *http.Request) {
	id, title, questions, err := h.quizzes.Bank(r.Context(), r.PathValue("bankID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        id,
		"title":     title,
		"questions": questions,
	})
}

func (h *QuizHandler) Open(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	view, err := h.quizzes.Open(r.Context(), session.UserID, r.PathValue("bankID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	var input struct {
		OptionIndex int `json:"optionIndex"`
	}
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	view, err := h.quizzes.SelectAnswer(r.Context(), session.UserID, r.PathValue("bankID"), input.OptionIndex)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) Advance(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	view, err := h.quizzes.Advance(r.Context(), session.UserID, r.PathValue("bankID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	view, err := h.quizzes.Retreat(r.Context(), session.UserID, r.PathValue("bankID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	view, err := h.quizzes.Reset(r.Context(), session.UserID, r.PathValue("bankID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) Close(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	h.quizzes.Close(r.Context(), session.UserID, r.PathValue("bankID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *QuizHandler) Results(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	result, err := h.quizzes.Results(r.Context(), session.UserID, r.PathValue("bankID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *QuizHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	dashboard, err := h.quizzes.Dashboard(r.Context(), session.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (h *QuizHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.quizzes.Leaderboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}
