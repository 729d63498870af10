package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"eduplay-service/internal/app"
	"eduplay-service/internal/auth"
	"eduplay-service/internal/domain"
	"eduplay-service/internal/infra/store"
	"eduplay-service/internal/platform/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// testServer runs the full router over a throwaway sqlite store with no
// redis board attached.
type testServer struct {
	srv         *httptest.Server
	store       *store.Store
	activity    *app.ActivityService
	leaderboard *app.LeaderboardService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "eduplay_test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := store.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s := store.New(db)

	log := logger.NewNop()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	feed := app.NewFeed()

	progress := app.NewProgressService(s, log)
	streaks := app.NewStreakService(s)
	leaderboard := app.NewLeaderboardService(s, nil, feed, 10, log)
	activity := app.NewActivityService(s, progress, streaks, leaderboard, log)
	accounts := app.NewAccountService(s, auth.NewHasher(), tokens, activity, log)
	games := app.NewGameService(s, s, activity)
	ranking := app.NewRankingService(s, nil, log)
	quizzes := app.NewQuizService(s, s)
	grading := app.NewGradingService(s, s, activity)
	assignments := app.NewAssignmentService(s)
	students := app.NewStudentService(accounts, streaks, progress, games, leaderboard, ranking)

	router := NewRouter(RouterConfig{
		Log:         log,
		Auth:        NewAuthMiddleware(tokens),
		Accounts:    NewAuthHandler(accounts),
		Games:       NewGameHandler(accounts, games, ranking),
		Students:    NewStudentHandler(students, progress, games),
		Leaderboard: NewLeaderboardHandler(leaderboard, ranking, 10),
		Quizzes:     NewQuizHandler(accounts, quizzes, grading),
		Assignments: NewAssignmentHandler(accounts, assignments),
		Feed:        NewFeedHandler(leaderboard, log),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	t.Cleanup(activity.Flush)

	return &testServer{srv: srv, store: s, activity: activity, leaderboard: leaderboard}
}

// request sends a JSON request and decodes the JSON response body.
func (ts *testServer) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil && err != io.EOF {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, payload
}

func (ts *testServer) registerStudent(t *testing.T, name, email string, grade int) (string, int64) {
	t.Helper()
	status, payload := ts.request(t, http.MethodPost, "/api/auth/students/register", "", map[string]interface{}{
		"name": name, "email": email, "password": "hunter22", "grade": grade, "school": "PS 118",
	})
	if status != http.StatusCreated {
		t.Fatalf("register student status = %d, payload %v", status, payload)
	}
	token, _ := payload["token"].(string)
	student, _ := payload["student"].(map[string]interface{})
	if token == "" || student == nil {
		t.Fatalf("register student payload missing token or student: %v", payload)
	}
	return token, int64(student["id"].(float64))
}

func (ts *testServer) registerTeacher(t *testing.T, name, email string) string {
	t.Helper()
	status, payload := ts.request(t, http.MethodPost, "/api/auth/teachers/register", "", map[string]interface{}{
		"name": name, "email": email, "password": "hunter22", "subject": "Math",
	})
	if status != http.StatusCreated {
		t.Fatalf("register teacher status = %d, payload %v", status, payload)
	}
	return payload["token"].(string)
}

func (ts *testServer) seedGame(t *testing.T, name, subject, topic string, maxScore int) domain.Game {
	t.Helper()
	if err := ts.store.SeedGames(context.Background(), []domain.Game{
		{Name: name, Subject: subject, Topic: topic, MaxScore: maxScore},
	}); err != nil {
		t.Fatalf("seed game: %v", err)
	}
	game, err := ts.store.GameByName(context.Background(), name)
	if err != nil {
		t.Fatalf("load game: %v", err)
	}
	return game
}

func TestHealthzAndRequestID(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header")
	}
}

func TestAuthGates(t *testing.T) {
	ts := newTestServer(t)
	studentToken, _ := ts.registerStudent(t, "Ada", "ada@example.com", 4)
	teacherToken := ts.registerTeacher(t, "Mr. Chen", "chen@example.com")

	status, _ := ts.request(t, http.MethodGet, "/api/games", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("missing token status = %d", status)
	}

	status, _ = ts.request(t, http.MethodGet, "/api/games", "not-a-token", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d", status)
	}

	// Student tokens must not open teacher routes and vice versa.
	status, _ = ts.request(t, http.MethodGet, "/api/teachers/me/quizzes", studentToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("student on teacher route status = %d", status)
	}
	status, _ = ts.request(t, http.MethodGet, "/api/games", teacherToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("teacher on student route status = %d", status)
	}
}

func TestRegisterAndLoginOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	status, payload := ts.request(t, http.MethodPost, "/api/auth/students/register", "", map[string]interface{}{
		"name": "Ada", "email": "ada@example.com", "password": "hunter22", "grade": 4,
	})
	if status != http.StatusCreated {
		t.Fatalf("register status = %d", status)
	}
	student := payload["student"].(map[string]interface{})
	if _, leaked := student["passwordHash"]; leaked {
		t.Fatalf("password hash leaked in response: %v", student)
	}
	if student["email"] != "ada@example.com" {
		t.Fatalf("student email = %v", student["email"])
	}

	// Same email again is a conflict.
	status, payload = ts.request(t, http.MethodPost, "/api/auth/students/register", "", map[string]interface{}{
		"name": "Ada Again", "email": "ada@example.com", "password": "hunter22", "grade": 5,
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", status)
	}
	apiErr := payload["error"].(map[string]interface{})
	if apiErr["code"] != "conflict" {
		t.Fatalf("duplicate register code = %v", apiErr["code"])
	}

	status, _ = ts.request(t, http.MethodPost, "/api/auth/students/login", "", map[string]interface{}{
		"email": "ada@example.com", "password": "wrong-password",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", status)
	}

	status, payload = ts.request(t, http.MethodPost, "/api/auth/students/login", "", map[string]interface{}{
		"email": "ada@example.com", "password": "hunter22",
	})
	if status != http.StatusOK {
		t.Fatalf("login status = %d", status)
	}
	streak := payload["streak"].(map[string]interface{})
	if streak["current"].(float64) != 1 || streak["longest"].(float64) != 1 {
		t.Fatalf("login streak = %v", streak)
	}
}

func TestValidationResponses(t *testing.T) {
	ts := newTestServer(t)

	status, payload := ts.request(t, http.MethodPost, "/api/auth/students/register", "", map[string]interface{}{
		"name": "Ada", "email": "not-an-email", "password": "hunter22", "grade": 4,
	})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("bad email status = %d", status)
	}
	apiErr := payload["error"].(map[string]interface{})
	if apiErr["code"] != "validation_failed" {
		t.Fatalf("code = %v", apiErr["code"])
	}
	fields := apiErr["fields"].([]interface{})
	found := false
	for _, f := range fields {
		if f.(map[string]interface{})["field"] == "email" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected email field error, got %v", fields)
	}

	// Malformed JSON is a plain bad request, not a validation failure.
	resp, err := http.Post(ts.srv.URL+"/api/auth/students/register", "application/json", strings.NewReader("{oops"))
	if err != nil {
		t.Fatalf("post malformed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", resp.StatusCode)
	}
}

func TestGameResultFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	game := ts.seedGame(t, "Math Blaster", "Math", "Arithmetic", 50)
	token, _ := ts.registerStudent(t, "Ada", "ada@example.com", 4)

	status, payload := ts.request(t, http.MethodGet, "/api/games", token, nil)
	if status != http.StatusOK {
		t.Fatalf("list games status = %d", status)
	}
	if games := payload["games"].([]interface{}); len(games) != 1 {
		t.Fatalf("games = %v", games)
	}

	status, payload = ts.request(t, http.MethodPost, "/api/games/results", token, map[string]interface{}{
		"game": "Math Blaster", "score": 40, "timeTaken": 60, "completed": true,
	})
	if status != http.StatusCreated {
		t.Fatalf("submit result status = %d, payload %v", status, payload)
	}
	if payload["normalizedScore"].(float64) != 80 {
		t.Fatalf("normalizedScore = %v", payload["normalizedScore"])
	}
	if payload["sessionId"].(float64) <= 0 {
		t.Fatalf("sessionId = %v", payload["sessionId"])
	}

	// Progress, leaderboard, and rankings materialize once the async
	// chain has drained.
	ts.activity.Flush()

	status, payload = ts.request(t, http.MethodGet, "/api/students/me/progress", token, nil)
	if status != http.StatusOK {
		t.Fatalf("progress status = %d", status)
	}
	rows := payload["progress"].([]interface{})
	if len(rows) != 1 {
		t.Fatalf("progress rows = %v", rows)
	}
	row := rows[0].(map[string]interface{})
	if row["completionPercentage"].(float64) != 10 || row["averageScore"].(float64) != 80 {
		t.Fatalf("progress row = %v", row)
	}

	status, payload = ts.request(t, http.MethodGet, "/api/leaderboard", token, nil)
	if status != http.StatusOK {
		t.Fatalf("leaderboard status = %d", status)
	}
	entries := payload["entries"].([]interface{})
	if len(entries) != 1 {
		t.Fatalf("entries = %v", entries)
	}
	if entries[0].(map[string]interface{})["totalScore"].(float64) != 80 {
		t.Fatalf("top entry = %v", entries[0])
	}

	status, payload = ts.request(t, http.MethodGet, "/api/leaderboard/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("leaderboard/me status = %d", status)
	}
	if payload["rank"].(float64) != 1 {
		t.Fatalf("rank = %v", payload["rank"])
	}

	status, payload = ts.request(t, http.MethodGet, "/api/games/"+itoa(game.ID)+"/rankings", token, nil)
	if status != http.StatusOK {
		t.Fatalf("rankings status = %d", status)
	}
	rankings := payload["rankings"].([]interface{})
	if len(rankings) != 1 {
		t.Fatalf("rankings = %v", rankings)
	}
	top := rankings[0].(map[string]interface{})
	if top["rank"].(float64) != 1 || top["bestScore"].(float64) != 80 {
		t.Fatalf("top ranking = %v", top)
	}

	status, payload = ts.request(t, http.MethodGet, "/api/students/me/dashboard", token, nil)
	if status != http.StatusOK {
		t.Fatalf("dashboard status = %d", status)
	}
	if payload["globalRank"].(float64) != 1 {
		t.Fatalf("dashboard globalRank = %v", payload["globalRank"])
	}
	if sessions := payload["recentSessions"].([]interface{}); len(sessions) != 1 {
		t.Fatalf("dashboard sessions = %v", sessions)
	}
}

func TestSubmitResultUnknownGame(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerStudent(t, "Ada", "ada@example.com", 4)

	status, payload := ts.request(t, http.MethodPost, "/api/games/results", token, map[string]interface{}{
		"game": "No Such Game", "score": 10, "timeTaken": 5, "completed": true,
	})
	if status != http.StatusNotFound {
		t.Fatalf("status = %d, payload %v", status, payload)
	}
}

func TestLeaderboardMeBeforeAnyPlay(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.registerStudent(t, "Ada", "ada@example.com", 4)

	status, _ := ts.request(t, http.MethodGet, "/api/leaderboard/me", token, nil)
	if status != http.StatusNotFound {
		t.Fatalf("unranked status = %d", status)
	}
}

func TestQuizLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	teacherToken := ts.registerTeacher(t, "Mr. Chen", "chen@example.com")
	studentToken, _ := ts.registerStudent(t, "Ada", "ada@example.com", 4)

	status, payload := ts.request(t, http.MethodPost, "/api/quizzes", teacherToken, map[string]interface{}{
		"title": "Fractions basics", "subject": "Math", "gradeLevel": 4,
		"questions": []map[string]interface{}{
			{"question": "1/2 + 1/2?", "optionA": "1", "optionB": "2", "optionC": "0", "optionD": "3", "correctAnswer": "A"},
			{"question": "3/4 of 8?", "optionA": "4", "optionB": "6", "optionC": "2", "optionD": "8", "correctAnswer": "B", "points": 20},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("create quiz status = %d, payload %v", status, payload)
	}
	quiz := payload["quiz"].(map[string]interface{})
	quizID := itoa(int64(quiz["id"].(float64)))
	if quiz["maxScore"].(float64) != 30 || quiz["totalQuestions"].(float64) != 2 {
		t.Fatalf("quiz totals = %v", quiz)
	}

	status, payload = ts.request(t, http.MethodGet, "/api/teachers/me/quizzes", teacherToken, nil)
	if status != http.StatusOK {
		t.Fatalf("teacher quizzes status = %d", status)
	}
	if authored := payload["quizzes"].([]interface{}); len(authored) != 1 {
		t.Fatalf("authored quizzes = %v", authored)
	}

	// The student sees the quiz but never the answer key.
	status, payload = ts.request(t, http.MethodGet, "/api/quizzes/"+quizID, studentToken, nil)
	if status != http.StatusOK {
		t.Fatalf("get quiz status = %d", status)
	}
	questions := payload["questions"].([]interface{})
	if len(questions) != 2 {
		t.Fatalf("questions = %v", questions)
	}
	q0 := questions[0].(map[string]interface{})
	if _, leaked := q0["correctAnswer"]; leaked {
		t.Fatalf("answer key leaked: %v", q0)
	}

	status, payload = ts.request(t, http.MethodPost, "/api/quizzes/"+quizID+"/attempts", studentToken, nil)
	if status != http.StatusCreated {
		t.Fatalf("start attempt status = %d, payload %v", status, payload)
	}
	attempt := payload["attempt"].(map[string]interface{})
	attemptID := attempt["id"].(float64)

	// Starting again resumes the open attempt instead of erroring.
	status, payload = ts.request(t, http.MethodPost, "/api/quizzes/"+quizID+"/attempts", studentToken, nil)
	if status != http.StatusOK {
		t.Fatalf("resume attempt status = %d", status)
	}
	if payload["resumed"] != true {
		t.Fatalf("resumed = %v", payload["resumed"])
	}
	if payload["attempt"].(map[string]interface{})["id"].(float64) != attemptID {
		t.Fatalf("resume returned a different attempt: %v", payload)
	}

	answers := []map[string]interface{}{
		{"questionId": q0["id"], "selectedAnswer": "A"},
		{"questionId": questions[1].(map[string]interface{})["id"], "selectedAnswer": "B"},
	}
	status, payload = ts.request(t, http.MethodPost, "/api/quizzes/"+quizID+"/submit", studentToken, map[string]interface{}{
		"attemptId": attemptID, "answers": answers,
	})
	if status != http.StatusOK {
		t.Fatalf("submit status = %d, payload %v", status, payload)
	}
	result := payload["result"].(map[string]interface{})
	if result["score"].(float64) != 30 || result["correctAnswers"].(float64) != 2 {
		t.Fatalf("result = %v", result)
	}
	// Percentage is score over answered-questions-times-ten, so a quiz
	// with a 20-point question grades above 100.
	if result["percentage"].(float64) != 150 {
		t.Fatalf("percentage = %v", result["percentage"])
	}

	status, _ = ts.request(t, http.MethodPost, "/api/quizzes/"+quizID+"/submit", studentToken, map[string]interface{}{
		"attemptId": attemptID, "answers": answers,
	})
	if status != http.StatusConflict {
		t.Fatalf("resubmit status = %d", status)
	}

	status, _ = ts.request(t, http.MethodPost, "/api/quizzes/"+quizID+"/attempts", studentToken, nil)
	if status != http.StatusConflict {
		t.Fatalf("restart after completion status = %d", status)
	}

	status, payload = ts.request(t, http.MethodGet, "/api/quizzes", studentToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list quizzes status = %d", status)
	}
	overviews := payload["quizzes"].([]interface{})
	if len(overviews) != 1 {
		t.Fatalf("overviews = %v", overviews)
	}
	overview := overviews[0].(map[string]interface{})
	if overview["attempt"] == nil {
		t.Fatalf("expected attempt on overview: %v", overview)
	}
}

func TestQuizHiddenFromOtherGrades(t *testing.T) {
	ts := newTestServer(t)
	teacherToken := ts.registerTeacher(t, "Mr. Chen", "chen@example.com")
	studentToken, _ := ts.registerStudent(t, "Zed", "zed@example.com", 8)

	status, payload := ts.request(t, http.MethodPost, "/api/quizzes", teacherToken, map[string]interface{}{
		"title": "Fourth grade only", "subject": "Math", "gradeLevel": 4,
		"questions": []map[string]interface{}{
			{"question": "Q", "optionA": "a", "optionB": "b", "optionC": "c", "optionD": "d", "correctAnswer": "A"},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	quizID := itoa(int64(payload["quiz"].(map[string]interface{})["id"].(float64)))

	status, _ = ts.request(t, http.MethodGet, "/api/quizzes/"+quizID, studentToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("hidden quiz status = %d", status)
	}
	status, _ = ts.request(t, http.MethodPost, "/api/quizzes/"+quizID+"/attempts", studentToken, nil)
	if status != http.StatusNotFound {
		t.Fatalf("hidden attempt status = %d", status)
	}
}

func TestAssignmentFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	teacherToken := ts.registerTeacher(t, "Mr. Chen", "chen@example.com")
	studentToken, _ := ts.registerStudent(t, "Ada", "ada@example.com", 4)

	status, payload := ts.request(t, http.MethodPost, "/api/assignments", teacherToken, map[string]interface{}{
		"title": "Fraction worksheet", "subject": "Math", "gradeLevel": 0,
		"dueDate": time.Now().Add(72 * time.Hour).Format(time.RFC3339),
	})
	if status != http.StatusCreated {
		t.Fatalf("create assignment status = %d, payload %v", status, payload)
	}
	assignmentID := itoa(int64(payload["assignment"].(map[string]interface{})["id"].(float64)))

	status, payload = ts.request(t, http.MethodGet, "/api/assignments", studentToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list assignments status = %d", status)
	}
	list := payload["assignments"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("assignments = %v", list)
	}
	if list[0].(map[string]interface{})["completed"] != false {
		t.Fatalf("fresh assignment already completed: %v", list[0])
	}

	status, payload = ts.request(t, http.MethodPost, "/api/assignments/"+assignmentID+"/complete", studentToken, nil)
	if status != http.StatusCreated {
		t.Fatalf("complete status = %d", status)
	}
	if payload["alreadyCompleted"] != false {
		t.Fatalf("first completion alreadyCompleted = %v", payload["alreadyCompleted"])
	}

	// Completing twice answers 200, not an error.
	status, payload = ts.request(t, http.MethodPost, "/api/assignments/"+assignmentID+"/complete", studentToken, nil)
	if status != http.StatusOK {
		t.Fatalf("re-complete status = %d", status)
	}
	if payload["alreadyCompleted"] != true {
		t.Fatalf("second completion alreadyCompleted = %v", payload["alreadyCompleted"])
	}

	status, payload = ts.request(t, http.MethodGet, "/api/assignments", studentToken, nil)
	if status != http.StatusOK {
		t.Fatalf("relist status = %d", status)
	}
	if payload["assignments"].([]interface{})[0].(map[string]interface{})["completed"] != true {
		t.Fatalf("assignment not marked completed")
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
