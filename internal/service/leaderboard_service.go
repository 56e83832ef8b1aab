package service

import (
	"context"
	"fmt"
	"sort"

	"hackhub/internal/domain"
	"hackhub/internal/repository"
	apperr "hackhub/pkg/errors"
	"hackhub/pkg/logger"
)

// LeaderboardService computes rankings on demand from persisted scores.
// Nothing here is stored back except the rank snapshot that feeds the
// previous-rank trend on the next poll.
type LeaderboardService struct {
	hackathons  repository.HackathonRepository
	rounds      repository.RoundRepository
	teams       repository.TeamRepository
	submissions repository.SubmissionRepository
	scores      repository.ScoreRepository
	snapshots   SnapshotStore
	policy      JudgingPolicy
	log         *logger.Logger
}

func NewLeaderboardService(
	hackathons repository.HackathonRepository,
	rounds repository.RoundRepository,
	teams repository.TeamRepository,
	submissions repository.SubmissionRepository,
	scores repository.ScoreRepository,
	snapshots SnapshotStore,
	policy JudgingPolicy,
	log *logger.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		hackathons:  hackathons,
		rounds:      rounds,
		teams:       teams,
		submissions: submissions,
		scores:      scores,
		snapshots:   snapshots,
		policy:      policy,
		log:         log,
	}
}

// rankedTeam is the working row before ranks are assigned
type rankedTeam struct {
	team       domain.Team
	roundScore float64
	cumulative float64
}

// ComputeLeaderboard builds the ranking for one round or, with an empty
// roundID, the weighted cumulative ranking across all finalized rounds.
// The board covers approved and eliminated teams; eliminated teams keep
// their last scores and sort by them like everyone else.
func (s *LeaderboardService) ComputeLeaderboard(ctx context.Context, hackathonID, roundID string) (*domain.Leaderboard, error) {
	hackathon, err := s.hackathons.GetByID(ctx, hackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get hackathon", err)
	}
	if hackathon == nil {
		return nil, apperr.NewNotFoundError("hackathon not found")
	}

	allTeams, err := s.teams.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list teams", err)
	}
	var teams []domain.Team
	for _, t := range allTeams {
		if t.Status == domain.TeamStatusApproved || t.Status == domain.TeamStatusEliminated {
			teams = append(teams, t)
		}
	}

	scope := domain.LeaderboardScopeOverall
	var rows []rankedTeam
	if roundID != "" {
		scope = roundID
		rows, err = s.singleRoundRows(ctx, hackathonID, roundID, teams)
	} else {
		rows, err = s.overallRows(ctx, hackathonID, teams)
	}
	if err != nil {
		return nil, err
	}

	sortRows(rows, roundID != "")
	entries := rankRows(rows, roundID != "")

	s.applyRankTrend(ctx, hackathonID, scope, entries)

	if roundID == "" && hackathon.Status == domain.HackathonStatusCompleted {
		for i := range entries {
			entries[i].FinalPosition = ordinal(entries[i].Rank)
		}
	}

	return &domain.Leaderboard{
		HackathonID:     hackathonID,
		RoundID:         roundID,
		HackathonStatus: hackathon.Status,
		Entries:         entries,
	}, nil
}

// singleRoundRows scores every team against one round only
func (s *LeaderboardService) singleRoundRows(ctx context.Context, hackathonID, roundID string, teams []domain.Team) ([]rankedTeam, error) {
	round, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get round", err)
	}
	if round == nil || round.HackathonID != hackathonID {
		return nil, apperr.NewNotFoundError("round not found")
	}

	scoreByTeam, err := s.roundScoreByTeam(ctx, round, teams)
	if err != nil {
		return nil, err
	}

	rows := make([]rankedTeam, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, rankedTeam{team: t, roundScore: scoreByTeam[t.ID]})
	}
	return rows, nil
}

// overallRows computes the weighted cumulative score over every finalized
// round. RoundScore on each row is the team's score in the most recent
// finalized round.
func (s *LeaderboardService) overallRows(ctx context.Context, hackathonID string, teams []domain.Team) ([]rankedTeam, error) {
	rounds, err := s.rounds.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list rounds", err)
	}
	sort.Slice(rounds, func(i, j int) bool { return rounds[i].RoundNumber < rounds[j].RoundNumber })

	cumulative := make(map[string]float64, len(teams))
	latest := make(map[string]float64, len(teams))
	for i := range rounds {
		round := rounds[i]
		if !round.IsScoringFinalized {
			continue
		}
		scoreByTeam, err := s.roundScoreByTeam(ctx, &round, teams)
		if err != nil {
			return nil, err
		}
		for teamID, score := range scoreByTeam {
			cumulative[teamID] += score * round.WeightagePercentage / 100
			latest[teamID] = score
		}
	}

	rows := make([]rankedTeam, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, rankedTeam{
			team:       t,
			roundScore: latest[t.ID],
			cumulative: cumulative[t.ID],
		})
	}
	return rows, nil
}

// roundScoreByTeam aggregates judge scores on final submissions into one
// score per team. Teams without scores or submissions get the policy
// default once the round is finalized; before that they read as zero so a
// live board does not over-promise.
func (s *LeaderboardService) roundScoreByTeam(ctx context.Context, round *domain.Round, teams []domain.Team) (map[string]float64, error) {
	finals, err := s.submissions.ListFinalByRound(ctx, round.ID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list final submissions", err)
	}
	scores, err := s.scores.ScoresForRound(ctx, round.ID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to load round scores", err)
	}

	scoresByTeam := make(map[string][]domain.Score, len(finals))
	for _, f := range finals {
		scoresByTeam[f.TeamID] = scores[f.ID]
	}

	out := make(map[string]float64, len(teams))
	for _, t := range teams {
		if !round.IsScoringFinalized && len(scoresByTeam[t.ID]) == 0 {
			out[t.ID] = 0
			continue
		}
		score, _ := s.policy.RoundScore(scoresByTeam[t.ID])
		out[t.ID] = score
	}
	return out, nil
}

// applyRankTrend fills PreviousRank from the last stored snapshot and
// stores the current ranks for the next poll. Snapshot failures degrade to
// trendless entries, never to a failed request.
func (s *LeaderboardService) applyRankTrend(ctx context.Context, hackathonID, scope string, entries []domain.LeaderboardEntry) {
	previous, err := s.snapshots.Get(ctx, hackathonID, scope)
	if err != nil {
		s.log.WithError(err).Warn("Failed to load leaderboard snapshot")
	}
	current := make(map[string]int, len(entries))
	for i := range entries {
		if prev, ok := previous[entries[i].TeamID]; ok {
			p := prev
			entries[i].PreviousRank = &p
		}
		current[entries[i].TeamID] = entries[i].Rank
	}
	if err := s.snapshots.Put(ctx, hackathonID, scope, current); err != nil {
		s.log.WithError(err).Warn("Failed to store leaderboard snapshot")
	}
}

// sortRows orders by score descending, then team creation time, then team
// ID, so equal inputs always produce the same order.
func sortRows(rows []rankedTeam, singleRound bool) {
	sort.Slice(rows, func(i, j int) bool {
		si, sj := rows[i].cumulative, rows[j].cumulative
		if singleRound {
			si, sj = rows[i].roundScore, rows[j].roundScore
		}
		if si != sj {
			return si > sj
		}
		if !rows[i].team.CreatedAt.Equal(rows[j].team.CreatedAt) {
			return rows[i].team.CreatedAt.Before(rows[j].team.CreatedAt)
		}
		return rows[i].team.ID < rows[j].team.ID
	})
}

// rankRows assigns standard competition ranks: teams with equal scores
// share a rank and the next distinct score lands at its list position,
// so two teams tied at 2 are followed by rank 4.
func rankRows(rows []rankedTeam, singleRound bool) []domain.LeaderboardEntry {
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		rank := i + 1
		if i > 0 && sortScore(rows[i], singleRound) == sortScore(rows[i-1], singleRound) {
			rank = entries[i-1].Rank
		}
		entries = append(entries, domain.LeaderboardEntry{
			TeamID:          row.team.ID,
			TeamName:        row.team.Name,
			Rank:            rank,
			RoundScore:      row.roundScore,
			CumulativeScore: row.cumulative,
			Status:          row.team.Status,
		})
	}
	return entries
}

func sortScore(row rankedTeam, singleRound bool) float64 {
	if singleRound {
		return row.roundScore
	}
	return row.cumulative
}

// ordinal renders 1 → "1st", 2 → "2nd", 11 → "11th"
func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
