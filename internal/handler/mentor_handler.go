package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/domain"
	"hackhub/internal/service"
	"hackhub/pkg/logger"
)

// MentorHandler exposes mentor assignment and distribution operations
type MentorHandler struct {
	mentorService *service.MentorService
	teamService   *service.TeamService
	log           *logger.Logger
}

func NewMentorHandler(mentorService *service.MentorService, teamService *service.TeamService, log *logger.Logger) *MentorHandler {
	return &MentorHandler{
		mentorService: mentorService,
		teamService:   teamService,
		log:           log,
	}
}

type assignMentorRequest struct {
	MentorID       string `json:"mentor_id" validate:"required"`
	AssignmentType string `json:"assignment_type" validate:"required,oneof=global specific"`
}

// Assign handles POST /api/v1/hackathons/{hackathonID}/mentors
func (h *MentorHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignMentorRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	assignment, err := h.mentorService.AssignMentor(r.Context(),
		chi.URLParam(r, "hackathonID"), req.MentorID, domain.AssignmentType(req.AssignmentType))
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, assignment)
}

// List handles GET /api/v1/hackathons/{hackathonID}/mentors
func (h *MentorHandler) List(w http.ResponseWriter, r *http.Request) {
	mentors, err := h.mentorService.ListMentors(r.Context(), chi.URLParam(r, "hackathonID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"mentors": mentors})
}

// Remove handles DELETE /api/v1/hackathons/{hackathonID}/mentors/{mentorID}?cascade=true
func (h *MentorHandler) Remove(w http.ResponseWriter, r *http.Request) {
	cascade := r.URL.Query().Get("cascade") == "true"

	result, err := h.mentorService.RemoveMentor(r.Context(),
		chi.URLParam(r, "hackathonID"), chi.URLParam(r, "mentorID"), cascade)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Distribute handles POST /api/v1/hackathons/{hackathonID}/mentors/distribute
func (h *MentorHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	report, err := h.mentorService.DistributeTeams(r.Context(), chi.URLParam(r, "hackathonID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Teams handles GET /api/v1/hackathons/{hackathonID}/mentors/{mentorID}/teams
func (h *MentorHandler) Teams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeamsByMentor(r.Context(),
		chi.URLParam(r, "hackathonID"), chi.URLParam(r, "mentorID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}
