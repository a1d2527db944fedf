// Package handler exposes learnhub over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/learnhub/internal/apperr"
	"github.com/abhisek/learnhub/internal/auth"
	"github.com/abhisek/learnhub/internal/contentgen"
	"github.com/abhisek/learnhub/internal/course"
	"github.com/abhisek/learnhub/internal/dashboard"
	"github.com/abhisek/learnhub/internal/i18n"
	"github.com/abhisek/learnhub/internal/quiz"
	"github.com/abhisek/learnhub/internal/tutor"
)

// Handler serves the JSON API.
type Handler struct {
	gen       contentgen.Generator
	quizzes   *quiz.Service
	courses   *course.Service
	tutor     *tutor.Service
	dashboard *dashboard.Service
	issuer    *auth.Issuer
}

// Deps are the services a Handler needs. All are required.
type Deps struct {
	Generator contentgen.Generator
	Quizzes   *quiz.Service
	Courses   *course.Service
	Tutor     *tutor.Service
	Dashboard *dashboard.Service
	Issuer    *auth.Issuer
}

// New creates a Handler.
func New(d Deps) *Handler {
	return &Handler{
		gen:       d.Generator,
		quizzes:   d.Quizzes,
		courses:   d.Courses,
		tutor:     d.Tutor,
		dashboard: d.Dashboard,
		issuer:    d.Issuer,
	}
}

type generateQuizRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type generateQuizResponse struct {
	Questions []quiz.Question `json:"questions"`
}

// GenerateQuiz handles POST /api/quiz/generate.
func (h *Handler) GenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateQuizRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeMessage(w, r, http.StatusBadRequest, apperr.InvalidInput, i18n.MsgTopicMissing)
		return
	}

	qs, err := h.gen.GenerateQuiz(r.Context(), req.Topic, req.Count)
	if err != nil {
		writeError(w, r, stageGenerate, err)
		return
	}
	JSON(w, http.StatusOK, generateQuizResponse{Questions: qs})
}

type submitQuizRequest struct {
	Topic     string          `json:"topic"`
	Score     int             `json:"score"`
	Total     int             `json:"total"`
	Responses []quiz.Response `json:"responses"`
}

type submitQuizResponse struct {
	Stored bool   `json:"stored"`
	ID     string `json:"id"`
}

// SubmitQuiz handles POST /api/quiz/results. The owner is always the
// authenticated caller, never a field of the body.
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	var req submitQuizRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.quizzes.Submit(r.Context(), quiz.Result{
		UserIdentity: auth.IdentityFrom(r.Context()),
		Topic:        req.Topic,
		Score:        req.Score,
		Total:        req.Total,
		Responses:    req.Responses,
	})
	if err != nil {
		writeError(w, r, stageSubmit, err)
		return
	}
	JSON(w, http.StatusCreated, submitQuizResponse{Stored: true, ID: id})
}

type quizHistoryResponse struct {
	Results []quiz.Result `json:"results"`
}

// QuizHistory handles GET /api/quiz/results.
func (h *Handler) QuizHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeMessage(w, r, http.StatusBadRequest, apperr.InvalidInput, i18n.MsgInvalidInput)
			return
		}
		limit = n
	}

	results, err := h.quizzes.History(r.Context(), auth.IdentityFrom(r.Context()), limit)
	if err != nil {
		writeError(w, r, stageRead, err)
		return
	}
	JSON(w, http.StatusOK, quizHistoryResponse{Results: results})
}

// QuizResult handles GET /api/quiz/results/{id}. Results owned by other
// users are reported as not found.
func (h *Handler) QuizResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.quizzes.Get(r.Context(), auth.IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, stageRead, err)
		return
	}
	if res == nil {
		writeNotFound(w, r)
		return
	}
	JSON(w, http.StatusOK, res)
}

type courseContentRequest struct {
	Title string `json:"title"`
}

// CourseContent handles POST /api/course-content.
func (h *Handler) CourseContent(w http.ResponseWriter, r *http.Request) {
	var req courseContentRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeMessage(w, r, http.StatusBadRequest, apperr.InvalidInput, i18n.MsgTitleMissing)
		return
	}

	content, err := h.gen.GenerateCourseContent(r.Context(), req.Title)
	if err != nil {
		writeError(w, r, stageGenerate, err)
		return
	}
	JSON(w, http.StatusOK, content)
}

type tutorRequest struct {
	Prompt string `json:"prompt"`
}

type tutorResponse struct {
	Response string `json:"response"`
}

// Tutor handles POST /api/tutor.
func (h *Handler) Tutor(w http.ResponseWriter, r *http.Request) {
	var req tutorRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeMessage(w, r, http.StatusBadRequest, apperr.InvalidInput, i18n.MsgPromptMissing)
		return
	}

	answer, err := h.tutor.Ask(r.Context(), auth.IdentityFrom(r.Context()), req.Prompt)
	if err != nil {
		writeError(w, r, stageGenerate, err)
		return
	}
	JSON(w, http.StatusOK, tutorResponse{Response: answer})
}

// Dashboard handles GET /api/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Build(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, stageRead, err)
		return
	}
	JSON(w, http.StatusOK, d)
}

type progressRequest struct {
	CompletedPercentage int      `json:"completedPercentage"`
	CompletedModules    []string `json:"completedModules"`
}

// UpdateProgress handles PUT /api/progress/{courseID}.
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.courses.UpdateProgress(r.Context(), auth.IdentityFrom(r.Context()),
		chi.URLParam(r, "courseID"), req.CompletedPercentage, req.CompletedModules)
	if err != nil {
		writeError(w, r, stageSubmit, err)
		return
	}
	JSON(w, http.StatusOK, p)
}

// ListProgress handles GET /api/progress.
func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	ps, err := h.courses.List(r.Context(), auth.IdentityFrom(r.Context()))
	if err != nil {
		writeError(w, r, stageRead, err)
		return
	}
	JSON(w, http.StatusOK, map[string][]course.Progress{"progress": ps})
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
