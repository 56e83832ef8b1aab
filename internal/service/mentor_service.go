package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hackhub/internal/domain"
	"hackhub/internal/repository"
	apperr "hackhub/pkg/errors"
	"hackhub/pkg/logger"
)

// MentorService assigns mentors to hackathons and distributes pending
// teams across global mentors.
type MentorService struct {
	hackathons repository.HackathonRepository
	mentors    repository.MentorRepository

	// targetTeamsPerMentor drives the advisory required-headcount figure
	// on distribution reports (reference ratio 5:1)
	targetTeamsPerMentor int

	log *logger.Logger
}

func NewMentorService(hackathons repository.HackathonRepository, mentors repository.MentorRepository, targetTeamsPerMentor int, log *logger.Logger) *MentorService {
	if targetTeamsPerMentor <= 0 {
		targetTeamsPerMentor = 5
	}
	return &MentorService{
		hackathons:           hackathons,
		mentors:              mentors,
		targetTeamsPerMentor: targetTeamsPerMentor,
		log:                  log,
	}
}

// AssignMentor registers a mentor with a hackathon as global or specific
func (s *MentorService) AssignMentor(ctx context.Context, hackathonID, mentorID string, assignmentType domain.AssignmentType) (*domain.MentorAssignment, error) {
	if assignmentType != domain.AssignmentTypeGlobal && assignmentType != domain.AssignmentTypeSpecific {
		return nil, apperr.NewValidationError(fmt.Sprintf("unknown assignment type %q", assignmentType), nil)
	}
	if _, err := s.getHackathon(ctx, hackathonID); err != nil {
		return nil, err
	}

	a := &domain.MentorAssignment{
		ID:             uuid.New().String(),
		HackathonID:    hackathonID,
		MentorID:       mentorID,
		AssignmentType: assignmentType,
	}
	inserted, err := s.mentors.CreateAssignment(ctx, a)
	if err != nil {
		return nil, apperr.NewInternalError("failed to assign mentor", err)
	}
	if !inserted {
		return nil, apperr.NewStateConflictError("mentor already holds an assignment for this hackathon")
	}

	s.log.WithFields(map[string]interface{}{
		"hackathon_id": hackathonID,
		"mentor_id":    mentorID,
		"type":         string(assignmentType),
	}).Info("Mentor assigned")
	return a, nil
}

// ListMentors lists mentor assignments for a hackathon
func (s *MentorService) ListMentors(ctx context.Context, hackathonID string) ([]domain.MentorAssignment, error) {
	if _, err := s.getHackathon(ctx, hackathonID); err != nil {
		return nil, err
	}
	assignments, err := s.mentors.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list mentors", err)
	}
	return assignments, nil
}

// RemoveMentor removes a mentor's assignment. Teams still bound to the
// mentor block the removal unless cascade is set; cascaded removals report
// the unlinked teams so they can be re-distributed.
func (s *MentorService) RemoveMentor(ctx context.Context, hackathonID, mentorID string, cascade bool) (*domain.MentorRemovalResult, error) {
	result, err := s.mentors.RemoveMentor(ctx, hackathonID, mentorID, cascade)
	if err != nil {
		if errors.Is(err, repository.ErrHasActiveAssignments) {
			return nil, apperr.NewHasActiveAssignmentsError(
				"mentor still has assigned teams; pass cascade to unassign them", nil)
		}
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return nil, apperr.NewNotFoundError("mentor assignment not found")
		}
		return nil, apperr.NewInternalError("failed to remove mentor", err)
	}

	if len(result.UnassignedTeams) > 0 {
		s.log.WithFields(map[string]interface{}{
			"hackathon_id":   hackathonID,
			"mentor_id":      mentorID,
			"orphaned_teams": len(result.UnassignedTeams),
		}).Warn("Mentor removed with cascade; teams need re-distribution")
	}
	return result, nil
}

// DistributeTeams spreads unassigned pending teams across global mentors
// round-robin, in team creation order. The whole batch commits in one
// transaction; re-running only touches teams still unassigned.
func (s *MentorService) DistributeTeams(ctx context.Context, hackathonID string) (*domain.DistributionReport, error) {
	h, err := s.getHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if h.Status != domain.HackathonStatusApprovalInProgress {
		return nil, apperr.NewStateConflictError("teams can only be distributed during the approval phase")
	}

	mentors, err := s.mentors.ListGlobalMentors(ctx, hackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list global mentors", err)
	}
	if len(mentors) == 0 {
		return nil, apperr.NewStateConflictError("no global mentors to distribute teams to")
	}

	teams, err := s.mentors.ListUnassignedPendingTeams(ctx, hackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list unassigned teams", err)
	}

	assignments := make(map[string]string, len(teams))
	for i, team := range teams {
		assignments[team.ID] = mentors[i%len(mentors)].MentorID
	}

	assigned := 0
	if len(assignments) > 0 {
		assigned, err = s.mentors.AssignTeamsBatch(ctx, assignments)
		if err != nil {
			return nil, apperr.NewInternalError(
				fmt.Sprintf("distribution failed; no teams were committed (%d staged)", len(assignments)), err)
		}
	}

	report := &domain.DistributionReport{
		TeamsAssigned:   assigned,
		TeamsTotal:      len(teams),
		MentorCount:     len(mentors),
		RequiredMentors: requiredMentors(len(teams), s.targetTeamsPerMentor),
		Assignments:     assignments,
	}

	s.log.WithFields(map[string]interface{}{
		"hackathon_id":   hackathonID,
		"teams_assigned": assigned,
		"mentor_count":   len(mentors),
	}).Info("Teams distributed")
	return report, nil
}

// requiredMentors is ceil(teams / target), the advisory headcount for a
// balanced load
func requiredMentors(teamCount, target int) int {
	if teamCount == 0 {
		return 0
	}
	return (teamCount + target - 1) / target
}

func (s *MentorService) getHackathon(ctx context.Context, id string) (*domain.Hackathon, error) {
	h, err := s.hackathons.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get hackathon", err)
	}
	if h == nil {
		return nil, apperr.NewNotFoundError("hackathon not found")
	}
	return h, nil
}
