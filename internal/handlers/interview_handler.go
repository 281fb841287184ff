package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/msvee3/Interview-prep/internal/apperr"
	"github.com/msvee3/Interview-prep/internal/auth"
	"github.com/msvee3/Interview-prep/internal/interview"
	"github.com/msvee3/Interview-prep/internal/middleware"
	"github.com/msvee3/Interview-prep/internal/models"
	"github.com/msvee3/Interview-prep/internal/utils"
)

type InterviewHandler struct {
	service *interview.Service
	logger  *zap.Logger
}

func NewInterviewHandler(service *interview.Service, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{
		service: service,
		logger:  logger,
	}
}

func (h *InterviewHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.StartInterviewRequest](r)
	id, _ := auth.IdentityFromContext(r.Context())

	created, err := h.service.Start(r.Context(), id, *req.Config)
	if err != nil {
		h.fail(w, r, err, "Failed to start interview")
		return
	}

	utils.JSON(w, http.StatusOK, models.StartInterviewResponse{
		InterviewID:   created.ID,
		FirstQuestion: created.FirstQuestion,
	})
}

func (h *InterviewHandler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.SubmitAnswerRequest](r)
	id, _ := auth.IdentityFromContext(r.Context())

	res, err := h.service.SubmitAnswer(r.Context(), id, chi.URLParam(r, "interviewId"), req.AnswerText, req.ElapsedMs)
	if err != nil {
		h.fail(w, r, err, "Failed to submit answer")
		return
	}

	utils.JSON(w, http.StatusOK, models.SubmitAnswerResponse{
		NextQuestion: res.NextQuestion,
		Evaluation:   res.Evaluation.Raw,
		Completed:    res.Completed,
	})
}

func (h *InterviewHandler) FinishHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	res, err := h.service.Finish(r.Context(), id, chi.URLParam(r, "interviewId"))
	if err != nil {
		h.fail(w, r, err, "Failed to finish interview")
		return
	}

	utils.JSON(w, http.StatusOK, models.FinishInterviewResponse{
		ReportID:     res.InterviewID,
		OverallScore: res.OverallScore,
	})
}

func (h *InterviewHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	found, err := h.service.Get(r.Context(), id, chi.URLParam(r, "interviewId"))
	if err != nil {
		h.fail(w, r, err, "Failed to get interview")
		return
	}
	utils.JSON(w, http.StatusOK, found)
}

func (h *InterviewHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	list, err := h.service.List(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get interviews")
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

// AdminListHandler lists any user's sessions. Routed behind auth.AdminOnly.
func (h *InterviewHandler) AdminListHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFromContext(r.Context())

	list, err := h.service.ListForUser(r.Context(), id, chi.URLParam(r, "userId"))
	if err != nil {
		h.fail(w, r, err, "Failed to get interviews")
		return
	}
	utils.JSON(w, http.StatusOK, list)
}

func (h *InterviewHandler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
	}
	if apperr.HTTPStatus(err) >= http.StatusInternalServerError {
		h.logger.Error(message, fields...)
	} else {
		h.logger.Info(message, fields...)
	}
	utils.WriteError(w, err, message)
}
