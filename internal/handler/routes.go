package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abhisek/learnhub/internal/i18n"
	"github.com/abhisek/learnhub/internal/logging"
)

// Routes builds the router. lang is the fallback language for error
// messages.
func Routes(h *Handler, lang string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(i18n.Middleware(lang))

	r.Get("/healthz", Health)

	r.NotFound(writeNotFound)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireAuth(h.issuer))

			r.Post("/quiz/generate", h.GenerateQuiz)
			r.Post("/quiz/results", h.SubmitQuiz)
			r.Get("/quiz/results", h.QuizHistory)
			r.Get("/quiz/results/{id}", h.QuizResult)
			r.Get("/dashboard", h.Dashboard)
			r.Get("/progress", h.ListProgress)
			r.Put("/progress/{courseID}", h.UpdateProgress)
		})

		r.Group(func(r chi.Router) {
			r.Use(optionalAuth(h.issuer))

			r.Post("/course-content", h.CourseContent)
			r.Post("/tutor", h.Tutor)
		})
	})

	return r
}
