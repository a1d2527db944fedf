package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/auth"
	"github.com/abhisek/learnhub/internal/contentgen"
	"github.com/abhisek/learnhub/internal/course"
	"github.com/abhisek/learnhub/internal/dashboard"
	"github.com/abhisek/learnhub/internal/llm"
	"github.com/abhisek/learnhub/internal/quiz"
	"github.com/abhisek/learnhub/internal/store"
	"github.com/abhisek/learnhub/internal/tutor"
)

const testSecret = "handler-test-secret-with-enough-length"

type testServer struct {
	srv    *httptest.Server
	mock   *llm.MockProvider
	store  *store.Store
	issuer *auth.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := store.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	iss, err := auth.NewIssuer(testSecret, "learnhub")
	require.NoError(t, err)

	mock := llm.NewMockProvider()
	h := New(Deps{
		Generator: contentgen.New(mock, contentgen.DefaultConfig()),
		Quizzes:   quiz.NewService(st.QuizResultRepo(), st.ActivityRepo()),
		Courses:   course.NewService(st.ProgressRepo(), st.ActivityRepo()),
		Tutor:     tutor.NewService(mock, st.ActivityRepo(), tutor.DefaultConfig()),
		Dashboard: dashboard.NewService(st.QuizResultRepo(), st.ProgressRepo(), st.ActivityRepo()),
		Issuer:    iss,
	})

	srv := httptest.NewServer(Routes(h, "en"))
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, mock: mock, store: st, issuer: iss}
}

func (ts *testServer) token(t *testing.T, email string) string {
	t.Helper()
	tok, err := ts.issuer.Issue(email, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends a request and decodes the JSON response into out (if non-nil).
func (ts *testServer) do(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func quizText(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"question":"Q%d","options":["a%d","b%d","c%d","d%d"],"answer":"a%d"}`, i, i, i, i, i, i)
	}
	return "```json\n[" + strings.Join(items, ",") + "]\n```"
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]string
	resp := ts.do(t, http.MethodGet, "/healthz", "", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			resp := ts.do(t, http.MethodGet, "/api/dashboard", tt.token, nil, &body)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "unauthorized", body.Code)
			assert.Equal(t, "Authentication is required.", body.Error)
		})
	}
}

func TestGenerateQuiz(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.AddResponse(llm.MockResponse{Text: quizText(5)})

	var body generateQuizResponse
	resp := ts.do(t, http.MethodPost, "/api/quiz/generate", ts.token(t, "ana@example.com"),
		map[string]any{"topic": "JavaScript basics"}, &body)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body.Questions, 5)
}

func TestGenerateQuiz_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		reply  *llm.MockResponse
		status int
		code   string
	}{
		{"missing topic", map[string]any{"topic": " "}, nil, http.StatusBadRequest, "invalid_input"},
		{"bad json", `{"topic":`, nil, http.StatusBadRequest, "invalid_input"},
		{"count out of range", map[string]any{"topic": "Go", "count": 50}, nil, http.StatusBadRequest, "invalid_input"},
		{"refusal", map[string]any{"topic": "Go"}, &llm.MockResponse{Text: "Sorry, I can't help with that."}, http.StatusBadGateway, "payload_not_found"},
		{"bad shape", map[string]any{"topic": "Go", "count": 1},
			&llm.MockResponse{Text: `[{"question":"Q","options":["A","B","C","D"],"answer":"E"}]`}, http.StatusBadGateway, "invalid_shape"},
		{"model down", map[string]any{"topic": "Go"}, &llm.MockResponse{Err: &llm.ErrProviderUnavailable{}}, http.StatusBadGateway, "generation_failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.reply != nil {
				ts.mock.AddResponse(*tt.reply)
			}
			var body errorBody
			resp := ts.do(t, http.MethodPost, "/api/quiz/generate", ts.token(t, "ana@example.com"), tt.body, &body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func submission(score int) map[string]any {
	return map[string]any{
		"topic": "Go",
		"score": score,
		"total": 2,
		"responses": []map[string]any{
			{"question": "q1", "selected": "a", "correct": "a", "isCorrect": true},
			{"question": "q2", "selected": "b", "correct": "c", "isCorrect": false},
		},
	}
}

func TestSubmitAndListResults(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token(t, "ana@example.com")

	var created submitQuizResponse
	resp := ts.do(t, http.MethodPost, "/api/quiz/results", tok, submission(1), &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, created.Stored)
	assert.NotEmpty(t, created.ID)

	var hist quizHistoryResponse
	resp = ts.do(t, http.MethodGet, "/api/quiz/results?limit=10", tok, nil, &hist)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, hist.Results, 1)
	assert.Equal(t, "ana@example.com", hist.Results[0].UserIdentity)
	assert.Equal(t, created.ID, hist.Results[0].ID)

	// Another user sees nothing.
	resp = ts.do(t, http.MethodGet, "/api/quiz/results", ts.token(t, "bo@example.com"), nil, &hist)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, hist.Results)
}

func TestQuizResultOwnerOnly(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token(t, "ana@example.com")

	var created submitQuizResponse
	resp := ts.do(t, http.MethodPost, "/api/quiz/results", tok, submission(1), &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got quiz.Result
	resp = ts.do(t, http.MethodGet, "/api/quiz/results/"+created.ID, tok, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 1, got.Score)
	assert.Len(t, got.Responses, 2)

	var body errorBody
	resp = ts.do(t, http.MethodGet, "/api/quiz/results/"+created.ID, ts.token(t, "bo@example.com"), nil, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body.Code)

	resp = ts.do(t, http.MethodGet, "/api/quiz/results/"+uuid.NewString(), tok, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/quiz/results/"+created.ID, "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSubmitRejectsWrongScore(t *testing.T) {
	ts := newTestServer(t)

	var body errorBody
	resp := ts.do(t, http.MethodPost, "/api/quiz/results", ts.token(t, "ana@example.com"), submission(2), &body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "invalid_shape", body.Code)
}

func TestQuizHistoryBadLimit(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/api/quiz/results?limit=abc", ts.token(t, "ana@example.com"), nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

const courseText = `{"overview":"Go in a week.","objectives":["Learn Go"],"skills":["Go"],"targetAudience":"Everyone"}`

func TestCourseContent(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.AddResponse(llm.MockResponse{Text: courseText})

	var body course.Content
	resp := ts.do(t, http.MethodPost, "/api/course-content", "", map[string]any{"title": "Go"}, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Go in a week.", body.Overview)
	assert.Equal(t, []string{"Everyone"}, body.TargetAudience)
}

func TestCourseContentMissingTitleLocalized(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/course-content", strings.NewReader(`{"title":""}`))
	require.NoError(t, err)
	req.Header.Set("Accept-Language", "es")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Falta el título del curso.", body.Error)
}

func TestTutor(t *testing.T) {
	ts := newTestServer(t)
	ts.mock.AddResponse(llm.MockResponse{Text: "Goroutines are cheap threads."})

	var body tutorResponse
	resp := ts.do(t, http.MethodPost, "/api/tutor", ts.token(t, "ana@example.com"),
		map[string]any{"prompt": "What is a goroutine?"}, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Goroutines are cheap threads.", body.Response)

	acts, err := ts.store.ActivityRepo().RecentActivity(context.Background(), "ana@example.com", 5)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, store.ActivityChat, acts[0].Type)
}

func TestTutorErrors(t *testing.T) {
	ts := newTestServer(t)

	var body errorBody
	resp := ts.do(t, http.MethodPost, "/api/tutor", "", map[string]any{"prompt": ""}, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Prompt is missing.", body.Error)

	resp = ts.do(t, http.MethodPost, "/api/tutor", "bad-token", map[string]any{"prompt": "hi"}, &body)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "a present but invalid token is rejected")
}

func TestProgressAndDashboard(t *testing.T) {
	ts := newTestServer(t)
	tok := ts.token(t, "ana@example.com")

	var p course.Progress
	resp := ts.do(t, http.MethodPut, "/api/progress/go-101", tok,
		map[string]any{"completedPercentage": 70, "completedModules": []string{"Basics"}}, &p)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "go-101", p.CourseID)
	assert.Equal(t, 70, p.CompletedPercentage)

	resp = ts.do(t, http.MethodPut, "/api/progress/go-101", tok, map[string]any{"completedPercentage": 150}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/quiz/results", tok, submission(1), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var d dashboard.Dashboard
	resp = ts.do(t, http.MethodGet, "/api/dashboard", tok, nil, &d)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]int{"go-101": 70}, d.Progress)
	require.Len(t, d.RecentActivity, 2)
	assert.Equal(t, "quiz", d.RecentActivity[0].Type)
	assert.Equal(t, 1, d.Stats.QuizzesTaken)
	assert.Equal(t, 50, d.Stats.AveragePercent)
	assert.Equal(t, 1, d.Stats.CurrentStreak)

	var list map[string][]course.Progress
	resp = ts.do(t, http.MethodGet, "/api/progress", tok, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list["progress"], 1)
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t)
	var body errorBody
	resp := ts.do(t, http.MethodGet, "/nope", "", nil, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind   apperr.Kind
		st     stage
		status int
	}{
		{apperr.InvalidInput, stageGenerate, http.StatusBadRequest},
		{apperr.Unauthorized, stageSubmit, http.StatusUnauthorized},
		{apperr.InvalidShape, stageSubmit, http.StatusUnprocessableEntity},
		{apperr.InvalidShape, stageGenerate, http.StatusBadGateway},
		{apperr.MalformedPayload, stageGenerate, http.StatusBadGateway},
		{apperr.StorageFailure, stageRead, http.StatusInternalServerError},
		{apperr.KindUnknown, stageRead, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		got, _ := statusFor(tt.kind, tt.st)
		assert.Equal(t, tt.status, got, "%s at stage %d", tt.kind, tt.st)
	}
}
