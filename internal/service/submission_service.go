package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"hackhub/internal/domain"
	"hackhub/internal/metrics"
	"hackhub/internal/repository"
	apperr "hackhub/pkg/errors"
	"hackhub/pkg/logger"
)

// SubmissionService accepts versioned submissions and enforces each
// round's format rules.
type SubmissionService struct {
	rounds      repository.RoundRepository
	teams       repository.TeamRepository
	submissions repository.SubmissionRepository
	log         *logger.Logger
}

func NewSubmissionService(rounds repository.RoundRepository, teams repository.TeamRepository, submissions repository.SubmissionRepository, log *logger.Logger) *SubmissionService {
	return &SubmissionService{
		rounds:      rounds,
		teams:       teams,
		submissions: submissions,
		log:         log,
	}
}

// Submit validates the payload against the round's format flags and stores
// it as the team's next submission version. Prior versions lose their
// final flag atomically with the insert.
func (s *SubmissionService) Submit(ctx context.Context, teamID, roundID string, payload *domain.SubmissionPayload) (*domain.Submission, error) {
	round, err := s.getRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != domain.RoundStatusActive {
		return nil, apperr.NewStateConflictError(
			fmt.Sprintf("round is %s; submissions are only accepted while active", round.Status))
	}

	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.HackathonID != round.HackathonID {
		return nil, apperr.NewValidationError("team does not belong to this round's hackathon", nil)
	}
	switch team.Status {
	case domain.TeamStatusApproved:
	case domain.TeamStatusEliminated:
		return nil, apperr.NewNotEligibleError("eliminated teams cannot submit")
	case domain.TeamStatusRejected:
		return nil, apperr.NewNotEligibleError("rejected teams cannot submit")
	default:
		return nil, apperr.NewNotEligibleError(
			fmt.Sprintf("team is %s; only approved teams can submit", team.Status))
	}

	if err := validatePayload(round, payload); err != nil {
		return nil, err
	}

	sub := &domain.Submission{
		ID:          uuid.New().String(),
		TeamID:      teamID,
		RoundID:     roundID,
		ZipURL:      payload.ZipURL,
		GithubLink:  payload.GithubLink,
		VideoURL:    payload.VideoURL,
		Description: payload.Description,
		FileSizeMB:  payload.FileSizeMB,
	}
	if err := s.submissions.CreateVersioned(ctx, sub); err != nil {
		return nil, apperr.NewInternalError("failed to store submission", err)
	}

	metrics.SubmissionsTotal.WithLabelValues(round.HackathonID).Inc()
	s.log.WithFields(map[string]interface{}{
		"team_id":  teamID,
		"round_id": roundID,
		"version":  sub.VersionNumber,
	}).Info("Submission accepted")
	return sub, nil
}

// validatePayload rejects fields the round does not allow, empty payloads
// and oversize files
func validatePayload(round *domain.Round, p *domain.SubmissionPayload) error {
	details := map[string]interface{}{}
	if p.ZipURL != "" && !round.AllowZip {
		details["zip_url"] = "not allowed in this round"
	}
	if p.GithubLink != "" && !round.AllowGithub {
		details["github_link"] = "not allowed in this round"
	}
	if p.VideoURL != "" && !round.AllowVideo {
		details["video_url"] = "not allowed in this round"
	}
	if p.Description != "" && !round.AllowDescription {
		details["description"] = "not allowed in this round"
	}
	if len(details) > 0 {
		return apperr.NewValidationError("payload contains fields the round does not accept", details)
	}

	if strings.TrimSpace(p.ZipURL) == "" &&
		strings.TrimSpace(p.GithubLink) == "" &&
		strings.TrimSpace(p.VideoURL) == "" &&
		strings.TrimSpace(p.Description) == "" {
		return apperr.NewValidationError("submission payload is empty", nil)
	}

	if round.MaxFileSizeMB > 0 && p.FileSizeMB > float64(round.MaxFileSizeMB) {
		return apperr.NewValidationError(
			fmt.Sprintf("file exceeds the %d MB limit", round.MaxFileSizeMB), nil)
	}
	if p.FileSizeMB < 0 {
		return apperr.NewValidationError("file size cannot be negative", nil)
	}
	return nil
}

// TeamRoundStatus returns the team's standing and full submission history
// for a round
func (s *SubmissionService) TeamRoundStatus(ctx context.Context, teamID, roundID string) (*domain.TeamRoundStatus, error) {
	round, err := s.getRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	history, err := s.submissions.ListByTeamRound(ctx, teamID, roundID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list submissions", err)
	}

	status := &domain.TeamRoundStatus{
		TeamID:      teamID,
		RoundID:     roundID,
		TeamStatus:  team.Status,
		RoundStatus: round.Status,
		History:     history,
	}
	for i := range history {
		if history[i].IsFinal {
			status.FinalSubmission = &history[i]
			break
		}
	}
	return status, nil
}

func (s *SubmissionService) getRound(ctx context.Context, id string) (*domain.Round, error) {
	round, err := s.rounds.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get round", err)
	}
	if round == nil {
		return nil, apperr.NewNotFoundError("round not found")
	}
	return round, nil
}

func (s *SubmissionService) getTeam(ctx context.Context, id string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get team", err)
	}
	if team == nil {
		return nil, apperr.NewNotFoundError("team not found")
	}
	return team, nil
}
