package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/middleware"
	"hackhub/internal/service"
	apperr "hackhub/pkg/errors"
	"hackhub/pkg/logger"
)

// JudgingHandler exposes score recording and round finalization
type JudgingHandler struct {
	judgingService *service.JudgingService
	log            *logger.Logger
}

func NewJudgingHandler(judgingService *service.JudgingService, log *logger.Logger) *JudgingHandler {
	return &JudgingHandler{
		judgingService: judgingService,
		log:            log,
	}
}

type scoreRequest struct {
	Score   float64 `json:"score" validate:"min=0,max=100"`
	Remarks string  `json:"remarks" validate:"max=2000"`
}

// Score handles POST /api/v1/submissions/{submissionID}/scores
func (h *JudgingHandler) Score(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.log, apperr.NewAuthenticationError("authentication required"))
		return
	}

	var req scoreRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	score, err := h.judgingService.ScoreSubmission(r.Context(),
		chi.URLParam(r, "submissionID"), identity.UserID, req.Score, req.Remarks)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, score)
}

// ListScores handles GET /api/v1/submissions/{submissionID}/scores
func (h *JudgingHandler) ListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := h.judgingService.ListScores(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"scores": scores})
}

// FinalizeRound handles POST /api/v1/rounds/{roundID}/finalize
func (h *JudgingHandler) FinalizeRound(w http.ResponseWriter, r *http.Request) {
	results, err := h.judgingService.FinalizeRound(r.Context(), chi.URLParam(r, "roundID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"round_scores": results})
}
