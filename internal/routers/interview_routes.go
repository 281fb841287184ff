package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/msvee3/Interview-prep/internal/auth"
	"github.com/msvee3/Interview-prep/internal/handlers"
	"github.com/msvee3/Interview-prep/internal/middleware"
	"github.com/msvee3/Interview-prep/internal/models"
)

func InterviewRoutes(router *chi.Mux, guard *auth.Guard, interviewHandler *handlers.InterviewHandler) {
	router.Route("/api/interviews", func(r chi.Router) {
		r.Use(auth.Authenticate(guard))
		r.With(middleware.ValidateRequest[*models.StartInterviewRequest]()).Post("/start", interviewHandler.StartHandler)
		r.With(middleware.ValidateRequest[*models.SubmitAnswerRequest]()).Post("/{interviewId}/answer", interviewHandler.AnswerHandler)
		r.Post("/{interviewId}/finish", interviewHandler.FinishHandler)
		r.Get("/{interviewId}", interviewHandler.GetHandler)
		r.Get("/", interviewHandler.ListHandler)
	})
}

func AdminRoutes(router *chi.Mux, guard *auth.Guard, interviewHandler *handlers.InterviewHandler) {
	router.Route("/api/admin", func(r chi.Router) {
		r.Use(auth.Authenticate(guard), auth.AdminOnly)
		r.Get("/users/{userId}/interviews", interviewHandler.AdminListHandler)
	})
}
