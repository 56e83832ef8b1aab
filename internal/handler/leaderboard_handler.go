package handler

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/service"
	"hackhub/pkg/logger"
)

// LeaderboardHandler exposes the polled ranking endpoint
type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
	log                *logger.Logger
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService, log *logger.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		log:                log,
	}
}

// Get handles GET /api/v1/hackathons/{hackathonID}/leaderboard?round_id=
// (polling endpoint). Responses carry an ETag so pollers can short-circuit
// with 304.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	board, err := h.leaderboardService.ComputeLeaderboard(r.Context(),
		chi.URLParam(r, "hackathonID"), r.URL.Query().Get("round_id"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	etag := h.generateETag(board)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=10")

	respondJSON(w, http.StatusOK, board)
}

// generateETag hashes the response content
func (h *LeaderboardHandler) generateETag(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return fmt.Sprintf(`"%x"`, md5.Sum(data))
}
