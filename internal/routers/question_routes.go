package routers

import (
	"github.com/go-chi/chi/v5"

	"github.com/msvee3/Interview-prep/internal/handlers"
)

func QuestionRoutes(router *chi.Mux, questionHandler *handlers.QuestionHandler) {
	router.Get("/api/questions", questionHandler.ListHandler)
}
