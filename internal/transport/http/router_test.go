package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"safelearn-service/internal/app"
	"safelearn-service/internal/auth"
	"safelearn-service/internal/domain"
	"safelearn-service/internal/infra/memory"
)

type noopMailer struct{}

func (noopMailer) SendPasswordReset(context.Context, string, string) error { return nil }

type noopVerifier struct{}

func (noopVerifier) Verify(string) (auth.GoogleIdentity, error) {
	return auth.GoogleIdentity{}, domain.ErrInvalidToken
}

func sampleBanks() map[string]domain.QuestionBank {
	return map[string]domain.QuestionBank{
		"disaster-basics": {
			ID:    "disaster-basics",
			Title: "Disaster Preparedness Basics",
			Questions: []domain.QuizQuestion{
				{ID: 1, Prompt: "What should you do first during an earthquake?", Options: []string{"Run outside", "Drop, Cover, and Hold On"}, CorrectIndex: 1, Explanation: "Take cover."},
				{ID: 2, Prompt: "How much water per person per day?", Options: []string{"1 liter", "4 liters"}, CorrectIndex: 1, Explanation: "At least 4 liters."},
			},
		},
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *app.LeaderboardHub) {
	t.Helper()
	logger := zap.NewNop()

	tokens, err := auth.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}

	store := memory.NewUserStore()
	hub := app.NewLeaderboardHub()
	banks := memory.NewBankRepository(memory.NewStaticBankLoader(sampleBanks()), time.Minute)
	objects := memory.NewObjectStore("https://cdn.example.com")

	authService := app.NewAuthService(store, store, tokens, memory.NewDenyList(), memory.NewRecoveryStore(), noopMailer{}, noopVerifier{}, logger)
	profileService := app.NewProfileService(store, objects, logger)
	quizService := app.NewQuizService(memory.NewSessionStore(), banks, store, hub, logger)

	mux := NewRouter(
		NewAuthHandler(authService, "https://app.example.com/reset"),
		NewProfileHandler(profileService, authService),
		NewQuizHandler(quizService),
		NewWSHandler(hub, logger),
		authService,
	)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, hub
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) *http.Response {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, token, body)
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func signUp(t *testing.T, server *httptest.Server, email string) string {
	t.Helper()
	resp := postJSON(t, server.Client(), server.URL+"/api/v1/auth/signup", "", map[string]string{
		"fullName":        "Alice Rivera",
		"email":           email,
		"password":        "hunter22",
		"confirmPassword": "hunter22",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status %d", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &out)
	if out.Token == "" {
		t.Fatalf("expected access token")
	}
	return out.Token
}

func TestSignUpAndQuizFlow(t *testing.T) {
	server, _ := newTestServer(t)
	client := server.Client()
	token := signUp(t, server, "alice@example.com")

	resp := postJSON(t, client, server.URL+"/api/v1/quiz/disaster-basics/session", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("open status %d", resp.StatusCode)
	}
	var view struct {
		CurrentIndex int  `json:"currentIndex"`
		Total        int  `json:"total"`
		Completed    bool `json:"completed"`
		Question     struct {
			Prompt  string   `json:"prompt"`
			Options []string `json:"options"`
		} `json:"question"`
	}
	decodeBody(t, resp, &view)
	if view.Total != 2 || view.CurrentIndex != 0 {
		t.Fatalf("unexpected opening view: %+v", view)
	}
	if len(view.Question.Options) != 2 {
		t.Fatalf("expected options in the view")
	}

	// Answer both questions correctly and complete the quiz.
	for i := 0; i < 2; i++ {
		resp = postJSON(t, client, server.URL+"/api/v1/quiz/disaster-basics/session/answer", token, map[string]int{"optionIndex": 1})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("answer %d status %d", i, resp.StatusCode)
		}
		resp.Body.Close()
		resp = postJSON(t, client, server.URL+"/api/v1/quiz/disaster-basics/session/advance", token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("advance %d status %d", i, resp.StatusCode)
		}
		decodeBody(t, resp, &view)
	}
	if !view.Completed {
		t.Fatalf("expected completion after the final advance")
	}

	resp = doJSON(t, client, http.MethodGet, server.URL+"/api/v1/quiz/disaster-basics/session/results", token, nil)
	var result struct {
		Score      int `json:"score"`
		Total      int `json:"total"`
		Percentage int `json:"percentage"`
	}
	decodeBody(t, resp, &result)
	if result.Score != 2 || result.Percentage != 100 {
		t.Fatalf("unexpected results: %+v", result)
	}

	// Completion awarded points to the profile.
	resp = doJSON(t, client, http.MethodGet, server.URL+"/api/v1/profile", token, nil)
	var profile struct {
		TotalScore   int `json:"totalScore"`
		QuizzesTaken int `json:"quizzesTaken"`
	}
	decodeBody(t, resp, &profile)
	if profile.TotalScore != 2*app.PointsPerCorrectAnswer || profile.QuizzesTaken != 1 {
		t.Fatalf("unexpected profile after completion: %+v", profile)
	}
}

func TestAdvanceWithoutAnswerIsRejected(t *testing.T) {
	server, _ := newTestServer(t)
	client := server.Client()
	token := signUp(t, server, "alice@example.com")

	resp := postJSON(t, client, server.URL+"/api/v1/quiz/disaster-basics/session", token, nil)
	resp.Body.Close()

	resp = postJSON(t, client, server.URL+"/api/v1/quiz/disaster-basics/session/advance", token, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unanswered advance, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAuthRequired(t *testing.T) {
	server, _ := newTestServer(t)
	client := server.Client()

	for _, url := range []string{
		server.URL + "/api/v1/profile",
		server.URL + "/api/v1/quiz/disaster-basics/session/results",
		server.URL + "/api/v1/leaderboard",
	} {
		resp := doJSON(t, client, http.MethodGet, url, "", nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", url, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestSignOutRevokesAccess(t *testing.T) {
	server, _ := newTestServer(t)
	client := server.Client()
	token := signUp(t, server, "alice@example.com")

	resp := postJSON(t, client, server.URL+"/api/v1/auth/signout", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signout status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, client, http.MethodGet, server.URL+"/api/v1/profile", token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after signout, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProfileNameUpdate(t *testing.T) {
	server, _ := newTestServer(t)
	client := server.Client()
	token := signUp(t, server, "alice@example.com")

	resp := doJSON(t, client, http.MethodPatch, server.URL+"/api/v1/profile", token, map[string]string{"fullName": "  Alice R.  "})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update name status %d", resp.StatusCode)
	}
	var profile struct {
		FullName string `json:"fullName"`
	}
	decodeBody(t, resp, &profile)
	if profile.FullName != "Alice R." {
		t.Fatalf("expected trimmed name, got %q", profile.FullName)
	}

	resp = doJSON(t, client, http.MethodPatch, server.URL+"/api/v1/profile", token, map[string]string{"fullName": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank name, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAvatarUpload(t *testing.T) {
	server, _ := newTestServer(t)
	client := server.Client()
	token := signUp(t, server, "alice@example.com")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("avatar", "me.png")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/profile/avatar", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status %d", resp.StatusCode)
	}
	var out struct {
		AvatarURL string `json:"avatarUrl"`
	}
	decodeBody(t, resp, &out)
	if want := "https://cdn.example.com/avatars/"; len(out.AvatarURL) == 0 || out.AvatarURL[:len(want)] != want {
		t.Fatalf("unexpected avatar url %q", out.AvatarURL)
	}
}

func TestLeaderboardEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	client := server.Client()
	token := signUp(t, server, "alice@example.com")

	resp := doJSON(t, client, http.MethodGet, server.URL+"/api/v1/leaderboard", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leaderboard status %d", resp.StatusCode)
	}
	var lb struct {
		Entries []struct {
			UserID string `json:"userId"`
		} `json:"entries"`
	}
	decodeBody(t, resp, &lb)
	if len(lb.Entries) != 1 {
		t.Fatalf("expected the signed-up learner on the board, got %d entries", len(lb.Entries))
	}
}

func TestDashboardEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server, "alice@example.com")

	resp := doJSON(t, server.Client(), http.MethodGet, server.URL+"/api/v1/dashboard", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status %d", resp.StatusCode)
	}
	var dashboard struct {
		Profile struct {
			FullName string `json:"fullName"`
		} `json:"profile"`
		Modules []struct {
			Name    string `json:"name"`
			Percent int    `json:"percent"`
		} `json:"modules"`
		Leaderboard struct {
			Entries []struct {
				UserID string `json:"userId"`
			} `json:"entries"`
		} `json:"leaderboard"`
	}
	decodeBody(t, resp, &dashboard)
	if dashboard.Profile.FullName != "Alice Rivera" {
		t.Fatalf("unexpected profile: %+v", dashboard.Profile)
	}
	if len(dashboard.Modules) != 4 || dashboard.Modules[0].Name != "Earthquake" {
		t.Fatalf("unexpected modules: %+v", dashboard.Modules)
	}
	if len(dashboard.Leaderboard.Entries) != 1 {
		t.Fatalf("expected the learner on the board, got %+v", dashboard.Leaderboard.Entries)
	}
}

func TestUnknownBankIs404(t *testing.T) {
	server, _ := newTestServer(t)
	token := signUp(t, server, "alice@example.com")

	resp := postJSON(t, server.Client(), server.URL+"/api/v1/quiz/nope/session", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}
