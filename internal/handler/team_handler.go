package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/middleware"
	"hackhub/internal/service"
	apperr "hackhub/pkg/errors"
	"hackhub/pkg/logger"
)

// defaultInvitationTTL applies when an invitation request does not set one
const defaultInvitationTTL = 72 * time.Hour

// TeamHandler exposes registration, team membership and approval operations
type TeamHandler struct {
	teamService *service.TeamService
	log         *logger.Logger
}

func NewTeamHandler(teamService *service.TeamService, log *logger.Logger) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		log:         log,
	}
}

// RegisterIndividual handles POST /api/v1/hackathons/{hackathonID}/registrations/individual
func (h *TeamHandler) RegisterIndividual(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.log, apperr.NewAuthenticationError("authentication required"))
		return
	}

	err := h.teamService.RegisterIndividual(r.Context(), chi.URLParam(r, "hackathonID"), identity.UserID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

type registerTeamRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// RegisterTeam handles POST /api/v1/hackathons/{hackathonID}/registrations/team
func (h *TeamHandler) RegisterTeam(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.log, apperr.NewAuthenticationError("authentication required"))
		return
	}

	var req registerTeamRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	team, err := h.teamService.RegisterTeam(r.Context(), chi.URLParam(r, "hackathonID"), identity.UserID, req.Name)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, team)
}

type inviteRequest struct {
	Email    string `json:"email" validate:"required,email"`
	TTLHours int    `json:"ttl_hours" validate:"min=0,max=720"`
}

// Invite handles POST /api/v1/teams/{teamID}/invitations
func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.log, apperr.NewAuthenticationError("authentication required"))
		return
	}

	var req inviteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	ttl := defaultInvitationTTL
	if req.TTLHours > 0 {
		ttl = time.Duration(req.TTLHours) * time.Hour
	}

	inv, err := h.teamService.InviteMember(r.Context(), chi.URLParam(r, "teamID"), req.Email, identity.UserID, ttl)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, inv)
}

// AcceptInvitation handles POST /api/v1/invitations/{invitationID}/accept
func (h *TeamHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, h.log, apperr.NewAuthenticationError("authentication required"))
		return
	}

	if err := h.teamService.AcceptInvitation(r.Context(), chi.URLParam(r, "invitationID"), identity.UserID); err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

// DeclineInvitation handles POST /api/v1/invitations/{invitationID}/decline
func (h *TeamHandler) DeclineInvitation(w http.ResponseWriter, r *http.Request) {
	if err := h.teamService.DeclineInvitation(r.Context(), chi.URLParam(r, "invitationID")); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "declined"})
}

// FinalizeTeams handles POST /api/v1/hackathons/{hackathonID}/finalize-teams
func (h *TeamHandler) FinalizeTeams(w http.ResponseWriter, r *http.Request) {
	if err := h.teamService.FinalizeTeams(r.Context(), chi.URLParam(r, "hackathonID")); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "teams_forming"})
}

// Approve handles POST /api/v1/teams/{teamID}/approve
func (h *TeamHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if err := h.teamService.ApproveTeam(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Reject handles POST /api/v1/teams/{teamID}/reject
func (h *TeamHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	if err := h.teamService.RejectTeam(r.Context(), chi.URLParam(r, "teamID"), req.Reason); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// Get handles GET /api/v1/teams/{teamID}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.GetTeam(r.Context(), chi.URLParam(r, "teamID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// List handles GET /api/v1/hackathons/{hackathonID}/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context(), chi.URLParam(r, "hackathonID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}
