package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackhub/internal/domain"
	apperr "hackhub/pkg/errors"
)

func newSubmissionFixture(t *testing.T) (*SubmissionService, *fakeRoundRepo, *fakeTeamRepo, *fakeSubmissionRepo) {
	t.Helper()
	teams := newFakeTeamRepo(newFakeHackathonRepo())
	rounds := newFakeRoundRepo(teams)
	submissions := newFakeSubmissionRepo()
	return NewSubmissionService(rounds, teams, submissions, testLogger()), rounds, teams, submissions
}

func seedActiveRound(t *testing.T, rounds *fakeRoundRepo, teams *fakeTeamRepo) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, rounds.Create(ctx, &domain.Round{
		ID:               "round-1",
		HackathonID:      "hack-1",
		RoundNumber:      1,
		Status:           domain.RoundStatusActive,
		AllowGithub:      true,
		AllowDescription: true,
		MaxFileSizeMB:    100,
	}))
	require.NoError(t, teams.CreateTeam(ctx, &domain.Team{
		ID:          "team-1",
		HackathonID: "hack-1",
		Name:        "Rocket",
		Status:      domain.TeamStatusApproved,
	}, nil))
}

func TestSubmitVersionsIncrease(t *testing.T) {
	svc, rounds, teams, submissions := newSubmissionFixture(t)
	ctx := context.Background()
	seedActiveRound(t, rounds, teams)

	first, err := svc.Submit(ctx, "team-1", "round-1", &domain.SubmissionPayload{
		GithubLink: "https://github.com/rocket/app",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.VersionNumber)
	assert.True(t, first.IsFinal)

	second, err := svc.Submit(ctx, "team-1", "round-1", &domain.SubmissionPayload{
		GithubLink: "https://github.com/rocket/app",
		Description: "final polish",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.VersionNumber)
	assert.True(t, second.IsFinal)

	// only the newest submission stays final
	history, _ := submissions.ListByTeamRound(ctx, "team-1", "round-1")
	require.Len(t, history, 2)
	finals := 0
	for _, s := range history {
		if s.IsFinal {
			finals++
			assert.Equal(t, 2, s.VersionNumber)
		}
	}
	assert.Equal(t, 1, finals)
}

func TestSubmitOnlyWhileRoundActive(t *testing.T) {
	svc, rounds, teams, _ := newSubmissionFixture(t)
	ctx := context.Background()
	seedActiveRound(t, rounds, teams)
	rounds.rounds["round-1"].Status = domain.RoundStatusJudging

	_, err := svc.Submit(ctx, "team-1", "round-1", &domain.SubmissionPayload{
		GithubLink: "https://github.com/rocket/app",
	})
	assertKind(t, err, apperr.KindStateConflict)
}

func TestSubmitEliminatedTeam(t *testing.T) {
	svc, rounds, teams, _ := newSubmissionFixture(t)
	ctx := context.Background()
	seedActiveRound(t, rounds, teams)
	teams.teams["team-1"].Status = domain.TeamStatusEliminated

	_, err := svc.Submit(ctx, "team-1", "round-1", &domain.SubmissionPayload{
		GithubLink: "https://github.com/rocket/app",
	})
	assertKind(t, err, apperr.KindNotEligible)
}

func TestSubmitWrongHackathon(t *testing.T) {
	svc, rounds, teams, _ := newSubmissionFixture(t)
	ctx := context.Background()
	seedActiveRound(t, rounds, teams)
	teams.teams["team-1"].HackathonID = "hack-other"

	_, err := svc.Submit(ctx, "team-1", "round-1", &domain.SubmissionPayload{
		GithubLink: "https://github.com/rocket/app",
	})
	assertKind(t, err, apperr.KindValidation)
}

func TestSubmitPayloadValidation(t *testing.T) {
	svc, rounds, teams, _ := newSubmissionFixture(t)
	ctx := context.Background()
	seedActiveRound(t, rounds, teams)

	// disallowed field is named in the error details
	_, err := svc.Submit(ctx, "team-1", "round-1", &domain.SubmissionPayload{
		VideoURL: "https://video.example.com/demo",
	})
	assertKind(t, err, apperr.KindValidation)
	appErr := err.(*apperr.Error)
	assert.Contains(t, appErr.Details, "video_url")

	// empty payload
	_, err = svc.Submit(ctx, "team-1", "round-1", &domain.SubmissionPayload{})
	assertKind(t, err, apperr.KindValidation)

	// oversize file
	_, err = svc.Submit(ctx, "team-1", "round-1", &domain.SubmissionPayload{
		GithubLink: "https://github.com/rocket/app",
		FileSizeMB: 250,
	})
	assertKind(t, err, apperr.KindValidation)
}

func TestTeamRoundStatus(t *testing.T) {
	svc, rounds, teams, _ := newSubmissionFixture(t)
	ctx := context.Background()
	seedActiveRound(t, rounds, teams)

	_, err := svc.Submit(ctx, "team-1", "round-1", &domain.SubmissionPayload{
		GithubLink: "https://github.com/rocket/app",
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "team-1", "round-1", &domain.SubmissionPayload{
		GithubLink: "https://github.com/rocket/app-v2",
	})
	require.NoError(t, err)

	status, err := svc.TeamRoundStatus(ctx, "team-1", "round-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TeamStatusApproved, status.TeamStatus)
	assert.Equal(t, domain.RoundStatusActive, status.RoundStatus)
	assert.Len(t, status.History, 2)
	require.NotNil(t, status.FinalSubmission)
	assert.Equal(t, 2, status.FinalSubmission.VersionNumber)
}
