package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"hackhub/internal/domain"
	"hackhub/internal/metrics"
	"hackhub/internal/repository"
	apperr "hackhub/pkg/errors"
	"hackhub/pkg/logger"
)

// TeamService drives the team lifecycle: registration, the invitation
// handshake, finalization of individual registrants into singleton teams
// and mentor approval/rejection.
type TeamService struct {
	hackathons repository.HackathonRepository
	teams      repository.TeamRepository
	log        *logger.Logger
	now        func() time.Time
}

func NewTeamService(hackathons repository.HackathonRepository, teams repository.TeamRepository, log *logger.Logger) *TeamService {
	return &TeamService{
		hackathons: hackathons,
		teams:      teams,
		log:        log,
		now:        time.Now,
	}
}

// registrationGuards runs the shared window, capacity and duplicate checks
func (s *TeamService) registrationGuards(ctx context.Context, h *domain.Hackathon, studentID string) error {
	if h.Status != domain.HackathonStatusRegistrationOpen {
		return apperr.NewStateConflictError("registration is not open")
	}
	if !h.RegistrationWindowOpen(s.now()) {
		return apperr.NewWindowClosedError("outside the registration window")
	}

	count, err := s.teams.CountRegistrations(ctx, h.ID)
	if err != nil {
		return apperr.NewInternalError("failed to count registrations", err)
	}
	if count >= h.MaxParticipants {
		return apperr.NewCapacityExceededError(
			fmt.Sprintf("hackathon is full (%d participants)", h.MaxParticipants))
	}

	registered, err := s.teams.HasRegistration(ctx, h.ID, studentID)
	if err != nil {
		return apperr.NewInternalError("failed to check registration", err)
	}
	if registered {
		return apperr.NewStateConflictError("student is already registered for this hackathon")
	}
	return nil
}

// RegisterIndividual registers a solo participant. The singleton team is
// only created later, at finalize-teams.
func (s *TeamService) RegisterIndividual(ctx context.Context, hackathonID, studentID string) error {
	h, err := s.getHackathon(ctx, hackathonID)
	if err != nil {
		return err
	}
	if !h.AllowIndividual {
		return apperr.NewValidationError("this hackathon does not accept individual registration", nil)
	}
	if err := s.registrationGuards(ctx, h, studentID); err != nil {
		return err
	}

	if err := s.teams.CreateRegistration(ctx, hackathonID, studentID, domain.RegistrationTypeIndividual); err != nil {
		return apperr.NewInternalError("failed to register", err)
	}

	s.log.WithFields(map[string]interface{}{
		"hackathon_id": hackathonID,
		"student_id":   studentID,
	}).Info("Individual registered")
	return nil
}

// RegisterTeam registers a team with the caller as lead
func (s *TeamService) RegisterTeam(ctx context.Context, hackathonID, leadID, name string) (*domain.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.NewValidationError("team name is required", nil)
	}

	h, err := s.getHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if !h.AllowTeam {
		return nil, apperr.NewValidationError("this hackathon does not accept team registration", nil)
	}
	if err := s.registrationGuards(ctx, h, leadID); err != nil {
		return nil, err
	}

	if err := s.teams.CreateRegistration(ctx, hackathonID, leadID, domain.RegistrationTypeTeam); err != nil {
		return nil, apperr.NewInternalError("failed to register", err)
	}

	team := &domain.Team{
		ID:               uuid.New().String(),
		HackathonID:      hackathonID,
		Name:             name,
		LeadID:           leadID,
		Status:           domain.TeamStatusPendingApproval,
		RegistrationType: domain.RegistrationTypeTeam,
	}
	lead := &domain.TeamMember{
		TeamID:    team.ID,
		StudentID: leadID,
		Role:      domain.TeamRoleLead,
	}

	if err := s.teams.CreateTeam(ctx, team, lead); err != nil {
		return nil, apperr.NewInternalError("failed to create team", err)
	}

	s.log.WithFields(map[string]interface{}{
		"hackathon_id": hackathonID,
		"team_id":      team.ID,
		"lead_id":      leadID,
	}).Info("Team registered")
	return team, nil
}

// InviteMember invites an email address to a team with the given TTL
func (s *TeamService) InviteMember(ctx context.Context, teamID, email, invitedBy string, ttl time.Duration) (*domain.Invitation, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.NewValidationError("valid email is required", nil)
	}
	if ttl <= 0 {
		return nil, apperr.NewValidationError("invitation TTL must be positive", nil)
	}

	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	h, err := s.getHackathon(ctx, team.HackathonID)
	if err != nil {
		return nil, err
	}
	// membership locks at finalize-teams; invitations issued before that
	// point are void afterwards via the hackathon status check here and in
	// AcceptInvitation
	if h.Status != domain.HackathonStatusRegistrationOpen && h.Status != domain.HackathonStatusRegistrationClosed {
		return nil, apperr.NewStateConflictError("team membership is locked")
	}

	count, err := s.teams.CountMembers(ctx, teamID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to count members", err)
	}
	if count >= h.MaxTeamSize {
		return nil, apperr.NewCapacityExceededError(
			fmt.Sprintf("team already at maximum size %d", h.MaxTeamSize))
	}

	inv := &domain.Invitation{
		ID:           uuid.New().String(),
		TeamID:       teamID,
		InvitedEmail: email,
		InvitedBy:    invitedBy,
		Status:       domain.InvitationStatusPending,
		ExpiresAt:    s.now().Add(ttl),
	}
	if err := s.teams.CreateInvitation(ctx, inv); err != nil {
		return nil, apperr.NewInternalError("failed to create invitation", err)
	}

	s.log.WithFields(map[string]interface{}{
		"team_id":       teamID,
		"invitation_id": inv.ID,
	}).Info("Member invited")
	return inv, nil
}

// AcceptInvitation resolves a pending invitation and joins the student to
// the team. The repository's check-and-set guarantees only one acceptance
// ever wins per invitation.
func (s *TeamService) AcceptInvitation(ctx context.Context, invitationID, studentID string) error {
	inv, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return err
	}

	switch inv.EffectiveStatus(s.now()) {
	case domain.InvitationStatusPending:
	case domain.InvitationStatusExpired:
		// lazily persist the expiry so it is never silently re-opened
		if inv.Status == domain.InvitationStatusPending {
			if err := s.teams.ExpireInvitation(ctx, invitationID); err != nil {
				s.log.WithError(err).Warn("Failed to persist invitation expiry")
			}
		}
		return apperr.NewExpiredError("invitation has expired")
	default:
		return apperr.NewAlreadyResolvedError(
			fmt.Sprintf("invitation already %s", inv.Status))
	}

	team, err := s.getTeam(ctx, inv.TeamID)
	if err != nil {
		return err
	}
	h, err := s.getHackathon(ctx, team.HackathonID)
	if err != nil {
		return err
	}
	if h.Status != domain.HackathonStatusRegistrationOpen && h.Status != domain.HackathonStatusRegistrationClosed {
		return apperr.NewStateConflictError("team membership is locked")
	}

	member := &domain.TeamMember{
		TeamID:    inv.TeamID,
		StudentID: studentID,
		Role:      domain.TeamRoleMember,
	}
	// capacity is enforced inside the resolution transaction, where the
	// member count cannot go stale under concurrent accepts
	won, err := s.teams.ResolveInvitation(ctx, invitationID, domain.InvitationStatusAccepted, member, h.MaxTeamSize)
	if errors.Is(err, repository.ErrTeamFull) {
		return apperr.NewCapacityExceededError(
			fmt.Sprintf("team already at maximum size %d", h.MaxTeamSize))
	}
	if err != nil {
		return apperr.NewInternalError("failed to accept invitation", err)
	}
	if !won {
		return apperr.NewAlreadyResolvedError("invitation was resolved concurrently")
	}

	s.log.WithFields(map[string]interface{}{
		"invitation_id": invitationID,
		"team_id":       inv.TeamID,
		"student_id":    studentID,
	}).Info("Invitation accepted")
	return nil
}

// DeclineInvitation resolves a pending invitation without joining
func (s *TeamService) DeclineInvitation(ctx context.Context, invitationID string) error {
	inv, err := s.getInvitation(ctx, invitationID)
	if err != nil {
		return err
	}

	switch inv.EffectiveStatus(s.now()) {
	case domain.InvitationStatusPending:
	case domain.InvitationStatusExpired:
		return apperr.NewExpiredError("invitation has expired")
	default:
		return apperr.NewAlreadyResolvedError(
			fmt.Sprintf("invitation already %s", inv.Status))
	}

	won, err := s.teams.ResolveInvitation(ctx, invitationID, domain.InvitationStatusDeclined, nil, 0)
	if err != nil {
		return apperr.NewInternalError("failed to decline invitation", err)
	}
	if !won {
		return apperr.NewAlreadyResolvedError("invitation was resolved concurrently")
	}
	return nil
}

// FinalizeTeams converts every unteamed individual registrant into a
// singleton team and locks membership. One-shot on the hackathon state
// machine; a retry after success is a no-op, not an error.
func (s *TeamService) FinalizeTeams(ctx context.Context, hackathonID string) error {
	h, err := s.getHackathon(ctx, hackathonID)
	if err != nil {
		return err
	}

	switch h.Status {
	case domain.HackathonStatusRegistrationClosed:
	case domain.HackathonStatusTeamsForming:
		// idempotent retry after a successful finalization
		return nil
	default:
		return apperr.NewStateConflictError(
			fmt.Sprintf("cannot finalize teams while hackathon is %s", h.Status))
	}

	// the status flip and the singleton inserts share one transaction, so
	// a failed batch leaves the hackathon at registration_closed and the
	// finalization retryable
	created, won, err := s.teams.FinalizeIndividuals(ctx, hackathonID, func(students []string) ([]domain.Team, []domain.TeamMember) {
		teams := make([]domain.Team, 0, len(students))
		leads := make([]domain.TeamMember, 0, len(students))
		for _, studentID := range students {
			teamID := uuid.New().String()
			teams = append(teams, domain.Team{
				ID:               teamID,
				HackathonID:      hackathonID,
				Name:             fmt.Sprintf("Individual %s", shortID(studentID)),
				LeadID:           studentID,
				Status:           domain.TeamStatusPendingApproval,
				RegistrationType: domain.RegistrationTypeIndividual,
			})
			leads = append(leads, domain.TeamMember{
				TeamID:    teamID,
				StudentID: studentID,
				Role:      domain.TeamRoleLead,
			})
		}
		return teams, leads
	})
	if err != nil {
		return apperr.NewInternalError("failed to finalize teams", err)
	}
	if !won {
		// a concurrent finalization won the compare-and-set; treat like a
		// retry
		return nil
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("hackathon", string(domain.HackathonStatusTeamsForming)).Inc()
	s.log.WithFields(map[string]interface{}{
		"hackathon_id":    hackathonID,
		"singleton_teams": created,
	}).Info("Teams finalized")
	return nil
}

// ApproveTeam approves a pending team during the approval phase
func (s *TeamService) ApproveTeam(ctx context.Context, teamID string) error {
	return s.resolveApproval(ctx, teamID, domain.TeamStatusApproved, "")
}

// RejectTeam rejects a pending team; a non-empty reason is required
func (s *TeamService) RejectTeam(ctx context.Context, teamID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apperr.NewValidationError("rejection requires a non-empty reason", nil)
	}
	return s.resolveApproval(ctx, teamID, domain.TeamStatusRejected, reason)
}

func (s *TeamService) resolveApproval(ctx context.Context, teamID string, to domain.TeamStatus, reason string) error {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return err
	}
	h, err := s.getHackathon(ctx, team.HackathonID)
	if err != nil {
		return err
	}
	if h.Status != domain.HackathonStatusApprovalInProgress {
		return apperr.NewStateConflictError("hackathon is not in the approval phase")
	}
	if team.Status != domain.TeamStatusPendingApproval {
		return apperr.NewStateConflictError(
			fmt.Sprintf("team is %s, not pending approval", team.Status))
	}

	won, err := s.teams.UpdateStatus(ctx, teamID, domain.TeamStatusPendingApproval, to, reason)
	if err != nil {
		return apperr.NewInternalError("failed to update team status", err)
	}
	if !won {
		return apperr.NewStateConflictError("team status changed concurrently")
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("team", string(to)).Inc()
	s.log.WithFields(map[string]interface{}{
		"team_id": teamID,
		"status":  string(to),
	}).Info("Team approval resolved")
	return nil
}

// GetTeam returns a team with its members
func (s *TeamService) GetTeam(ctx context.Context, teamID string) (*domain.Team, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	members, err := s.teams.ListMembers(ctx, teamID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list members", err)
	}
	team.Members = members
	return team, nil
}

// ListTeams lists a hackathon's teams in creation order
func (s *TeamService) ListTeams(ctx context.Context, hackathonID string) ([]domain.Team, error) {
	if _, err := s.getHackathon(ctx, hackathonID); err != nil {
		return nil, err
	}
	teams, err := s.teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list teams", err)
	}
	return teams, nil
}

// ListTeamsByMentor lists the teams linked to a mentor
func (s *TeamService) ListTeamsByMentor(ctx context.Context, hackathonID, mentorID string) ([]domain.Team, error) {
	teams, err := s.teams.ListByMentor(ctx, hackathonID, mentorID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list mentor teams", err)
	}
	return teams, nil
}

func (s *TeamService) getHackathon(ctx context.Context, id string) (*domain.Hackathon, error) {
	h, err := s.hackathons.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get hackathon", err)
	}
	if h == nil {
		return nil, apperr.NewNotFoundError("hackathon not found")
	}
	return h, nil
}

func (s *TeamService) getTeam(ctx context.Context, id string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get team", err)
	}
	if team == nil {
		return nil, apperr.NewNotFoundError("team not found")
	}
	return team, nil
}

func (s *TeamService) getInvitation(ctx context.Context, id string) (*domain.Invitation, error) {
	inv, err := s.teams.GetInvitation(ctx, id)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get invitation", err)
	}
	if inv == nil {
		return nil, apperr.NewNotFoundError("invitation not found")
	}
	return inv, nil
}

// shortID keeps generated singleton team names readable
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
