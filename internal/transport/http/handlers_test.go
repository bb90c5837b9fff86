package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"footy-quiz-service/internal/app"
	"footy-quiz-service/internal/domain"
	"footy-quiz-service/internal/infra/memory"
	"footy-quiz-service/internal/telegram"
	"footy-quiz-service/internal/token"
)

const (
	testBotToken = "7000000001:AAtestbottokenfortestingonly"
	adminUserID  = "900001"
)

func TestTelegramAuthEndpoint(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	body, _ := json.Marshal(map[string]string{"initData": signedInitData(map[string]string{
		"auth_date": "1727000000",
		"user":      `{"id":421337,"first_name":"Alice"}`,
	})})
	resp, err := http.Post(env.server.URL+"/auth/telegram", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var payload struct {
		CustomToken string `json:"customToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := env.minter.Parse(payload.CustomToken)
	if err != nil {
		t.Fatalf("minted token does not parse: %v", err)
	}
	if claims.Subject != "421337" {
		t.Fatalf("wrong subject: %q", claims.Subject)
	}
}

func TestTelegramAuthRejectsMissingAndInvalid(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	resp, _ := http.Post(env.server.URL+"/auth/telegram", "application/json", strings.NewReader(`{}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing initData, got %d", resp.StatusCode)
	}

	body, _ := json.Marshal(map[string]string{"initData": "auth_date=1&hash=deadbeef"})
	resp, _ = http.Post(env.server.URL+"/auth/telegram", "application/json", bytes.NewReader(body))
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad signature, got %d", resp.StatusCode)
	}
}

func TestSubmitRequiresBearerToken(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	resp, _ := http.Post(env.server.URL+"/quiz/submit", "application/json", strings.NewReader(`{"quizId":"quiz-1","answers":[]}`))
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestSubmitThenDuplicate(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	bearer := env.mint(t, "421337")
	submission := `{"quizId":"quiz-1","answers":[{"questionId":"q1","selectedOption":"B"},{"questionId":"q2","selectedOption":"45"}]}`

	status, body := env.post(t, "/quiz/submit", bearer, submission)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var result struct {
		PointsEarned int `json:"pointsEarned"`
		CorrectCount int `json:"correctCount"`
		TotalScore   int `json:"totalScore"`
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.PointsEarned != 20 || result.CorrectCount != 2 || result.TotalScore != 20 {
		t.Fatalf("unexpected result: %+v", result)
	}

	status, _ = env.post(t, "/quiz/submit", bearer, submission)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate, got %d", status)
	}
}

func TestSubmitUnknownQuizReturns404(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	status, _ := env.post(t, "/quiz/submit", env.mint(t, "421337"), `{"quizId":"nope","answers":[]}`)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestAdminUploadAuthorization(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	quiz := `{"quizId":"quiz-2","questions":[{"questionId":"q1","correctAnswer":"A"}]}`

	status, _ := env.post(t, "/admin/quiz", "", quiz)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, _ = env.post(t, "/admin/quiz", env.mint(t, "421337"), quiz)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", status)
	}

	status, body := env.post(t, "/admin/quiz", env.mint(t, adminUserID), quiz)
	if status != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", status, body)
	}

	resp, err := http.Get(env.server.URL + "/quiz/active")
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	defer resp.Body.Close()
	var active struct {
		Quizzes []domain.PublicQuiz `json:"quizzes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&active); err != nil {
		t.Fatalf("decode active: %v", err)
	}
	found := false
	for _, q := range active.Quizzes {
		if q.QuizID == "quiz-2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("uploaded quiz missing from active list: %+v", active.Quizzes)
	}
}

func TestAdminUploadRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	status, _ := env.post(t, "/admin/quiz", env.mint(t, adminUserID), `{"quizId":"q"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 without questions, got %d", status)
	}
}

func TestGlobalLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	defer env.server.Close()

	submission := `{"quizId":"quiz-1","answers":[{"questionId":"q1","selectedOption":"B"}]}`
	if status, _ := env.post(t, "/quiz/submit", env.mint(t, "421337"), submission); status != http.StatusOK {
		t.Fatalf("seed submit failed: %d", status)
	}

	resp, err := http.Get(env.server.URL + "/leaderboard/global")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var payload struct {
		Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Leaderboard) != 1 || payload.Leaderboard[0].Rank != 1 || payload.Leaderboard[0].Score != 10 {
		t.Fatalf("unexpected leaderboard: %+v", payload.Leaderboard)
	}
}

type testEnv struct {
	server  *httptest.Server
	minter  *token.Minter
	quizzes *app.QuizService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()

	store := memory.NewQuizStoreWith(domain.Quiz{
		QuizID: "quiz-1",
		Questions: []domain.Question{
			{QuestionID: "q1", CorrectAnswer: "B"},
			{QuestionID: "q2", CorrectAnswer: "45"},
		},
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
	})
	cache := memory.NewQuizCache(store, 5*time.Minute)
	profiles := memory.NewProfileStore()
	broadcaster := app.NewLeaderboardBroadcaster()

	minter := token.NewMinter("test-secret", time.Hour)
	authService := app.NewAuthService(testBotToken, minter, profiles, log)
	quizService := app.NewQuizService(cache, store, cache, profiles, profiles, broadcaster, log)

	handler := NewHandler(authService, quizService, minter, adminUserID, log)
	stream := NewStreamHandler(quizService, broadcaster, log)

	return &testEnv{
		server:  httptest.NewServer(NewRouter(handler, stream, log)),
		minter:  minter,
		quizzes: quizService,
	}
}

func (e *testEnv) mint(t *testing.T, telegramID string) string {
	t.Helper()
	credential, err := e.minter.Mint(domain.Identity{TelegramID: telegramID})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return credential
}

func (e *testEnv) post(t *testing.T, path, bearer, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp.StatusCode, buf.String()
}

func signedInitData(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+fields[key])
	}
	hash := telegram.Sign(strings.Join(pairs, "\n"), testBotToken)

	values := url.Values{}
	for key, value := range fields {
		values.Set(key, value)
	}
	values.Set("hash", hash)
	return values.Encode()
}
