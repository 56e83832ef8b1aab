package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/domain"
	"hackhub/internal/service"
	"hackhub/pkg/logger"
)

// SubmissionHandler exposes submission and judging operations
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	judgingService    *service.JudgingService
	log               *logger.Logger
}

func NewSubmissionHandler(submissionService *service.SubmissionService, judgingService *service.JudgingService, log *logger.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		judgingService:    judgingService,
		log:               log,
	}
}

// Submit handles POST /api/v1/rounds/{roundID}/teams/{teamID}/submissions
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var payload domain.SubmissionPayload
	if err := decodeAndValidate(r, &payload); err != nil {
		respondError(w, h.log, err)
		return
	}

	submission, err := h.submissionService.Submit(r.Context(),
		chi.URLParam(r, "teamID"), chi.URLParam(r, "roundID"), &payload)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, submission)
}

// Status handles GET /api/v1/rounds/{roundID}/teams/{teamID}/status
func (h *SubmissionHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.submissionService.TeamRoundStatus(r.Context(),
		chi.URLParam(r, "teamID"), chi.URLParam(r, "roundID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}
