package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"hackhub/internal/domain"
	"hackhub/internal/metrics"
	"hackhub/internal/repository"
	apperr "hackhub/pkg/errors"
	"hackhub/pkg/logger"
)

// JudgingPolicy holds the product decisions around scoring that are
// configuration, not code: what an unscored team receives when a round is
// finalized.
type JudgingPolicy struct {
	// DefaultScore is assigned to approved teams with no judge score at
	// finalization. 0 sinks unscored teams to the bottom instead of
	// blocking progression.
	DefaultScore float64
}

// RoundScore aggregates one team's judge scores into its round score: the
// mean of all judge scores on the final submission, or the policy default
// when none exist.
func (p JudgingPolicy) RoundScore(scores []domain.Score) (float64, bool) {
	if len(scores) == 0 {
		return p.DefaultScore, true
	}
	sum := 0.0
	for _, s := range scores {
		sum += s.Score
	}
	return sum / float64(len(scores)), false
}

// JudgingService collects per-judge scores and finalizes rounds, defaulting
// unscored teams, applying elimination and closing the round in one shot.
type JudgingService struct {
	rounds      repository.RoundRepository
	teams       repository.TeamRepository
	submissions repository.SubmissionRepository
	scores      repository.ScoreRepository
	mentors     repository.MentorRepository
	policy      JudgingPolicy
	log         *logger.Logger
}

func NewJudgingService(
	rounds repository.RoundRepository,
	teams repository.TeamRepository,
	submissions repository.SubmissionRepository,
	scores repository.ScoreRepository,
	mentors repository.MentorRepository,
	policy JudgingPolicy,
	log *logger.Logger,
) *JudgingService {
	return &JudgingService{
		rounds:      rounds,
		teams:       teams,
		submissions: submissions,
		scores:      scores,
		mentors:     mentors,
		policy:      policy,
		log:         log,
	}
}

// ScoreSubmission upserts a judge's score for a submission. Valid only
// while the owning round is judging; a judge re-scoring overwrites their
// earlier score.
func (s *JudgingService) ScoreSubmission(ctx context.Context, submissionID, judgeID string, score float64, remarks string) (*domain.Score, error) {
	if score < domain.ScoreMin || score > domain.ScoreMax {
		return nil, apperr.NewValidationError(
			fmt.Sprintf("score must be between %.0f and %.0f", domain.ScoreMin, domain.ScoreMax),
			map[string]interface{}{"score": score})
	}

	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get submission", err)
	}
	if sub == nil {
		return nil, apperr.NewNotFoundError("submission not found")
	}

	round, err := s.rounds.GetByID(ctx, sub.RoundID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get round", err)
	}
	if round == nil {
		return nil, apperr.NewNotFoundError("round not found")
	}
	if round.Status != domain.RoundStatusJudging {
		return nil, apperr.NewStateConflictError(
			fmt.Sprintf("round is %s; scores are only accepted while judging", round.Status))
	}

	assignment, err := s.mentors.GetAssignment(ctx, round.HackathonID, judgeID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to check judge assignment", err)
	}
	if assignment == nil {
		return nil, apperr.NewNotEligibleError("judge is not assigned to this hackathon")
	}

	sc := &domain.Score{
		ID:           uuid.New().String(),
		SubmissionID: submissionID,
		JudgeID:      judgeID,
		Score:        score,
		Remarks:      remarks,
	}
	if err := s.scores.Upsert(ctx, sc); err != nil {
		return nil, apperr.NewInternalError("failed to record score", err)
	}

	metrics.ScoresTotal.WithLabelValues(round.HackathonID).Inc()
	metrics.JudgeScoreHistogram.WithLabelValues(round.HackathonID).Observe(score)
	s.log.WithFields(map[string]interface{}{
		"submission_id": submissionID,
		"judge_id":      judgeID,
		"score":         score,
	}).Info("Score recorded")
	return sc, nil
}

// ListScores lists all judge scores for a submission
func (s *JudgingService) ListScores(ctx context.Context, submissionID string) ([]domain.Score, error) {
	scores, err := s.scores.ListBySubmission(ctx, submissionID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list scores", err)
	}
	return scores, nil
}

// FinalizeRound computes every approved team's round score (defaulting
// stragglers via policy), applies elimination and closes the round. The
// repository's compare-and-set makes this one-shot: a second invocation
// fails with AlreadyFinalized because elimination is a terminal side
// effect.
func (s *JudgingService) FinalizeRound(ctx context.Context, roundID string) ([]domain.TeamRoundScore, error) {
	round, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get round", err)
	}
	if round == nil {
		return nil, apperr.NewNotFoundError("round not found")
	}
	if round.IsScoringFinalized {
		return nil, apperr.NewAlreadyFinalizedError("round scoring is already finalized")
	}
	if round.Status != domain.RoundStatusJudging {
		return nil, apperr.NewStateConflictError(
			fmt.Sprintf("round is %s; only judging rounds can be finalized", round.Status))
	}

	roundScores, err := s.computeRoundScores(ctx, round)
	if err != nil {
		return nil, err
	}

	var eliminated []string
	if round.IsElimination {
		for _, rs := range roundScores {
			if rs.Score < round.EliminationThreshold {
				eliminated = append(eliminated, rs.TeamID)
			}
		}
	}

	won, err := s.rounds.FinalizeRound(ctx, roundID, eliminated)
	if err != nil {
		return nil, apperr.NewInternalError("failed to finalize round", err)
	}
	if !won {
		return nil, apperr.NewAlreadyFinalizedError("round was finalized concurrently")
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("round", string(domain.RoundStatusClosed)).Inc()
	s.log.WithFields(map[string]interface{}{
		"round_id":   roundID,
		"teams":      len(roundScores),
		"eliminated": len(eliminated),
	}).Info("Round finalized")
	return roundScores, nil
}

// computeRoundScores builds the per-team round scores for all approved
// teams from their final submissions' judge scores
func (s *JudgingService) computeRoundScores(ctx context.Context, round *domain.Round) ([]domain.TeamRoundScore, error) {
	teams, err := s.teams.ListByHackathon(ctx, round.HackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list teams", err)
	}
	finals, err := s.submissions.ListFinalByRound(ctx, round.ID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list final submissions", err)
	}
	scores, err := s.scores.ScoresForRound(ctx, round.ID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to load round scores", err)
	}

	finalByTeam := make(map[string]string, len(finals))
	for _, f := range finals {
		finalByTeam[f.TeamID] = f.ID
	}

	var results []domain.TeamRoundScore
	for _, team := range teams {
		if team.Status != domain.TeamStatusApproved {
			continue
		}
		var teamScores []domain.Score
		if subID, ok := finalByTeam[team.ID]; ok {
			teamScores = scores[subID]
		}
		score, defaulted := s.policy.RoundScore(teamScores)
		results = append(results, domain.TeamRoundScore{
			TeamID:    team.ID,
			RoundID:   round.ID,
			Score:     score,
			Defaulted: defaulted,
		})
	}
	return results, nil
}
