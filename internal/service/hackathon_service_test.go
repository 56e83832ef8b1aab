package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackhub/internal/domain"
	apperr "hackhub/pkg/errors"
)

func newHackathonFixture(t *testing.T) (*HackathonService, *fakeHackathonRepo, *fakeRoundRepo) {
	t.Helper()
	hackathons := newFakeHackathonRepo()
	teams := newFakeTeamRepo(hackathons)
	rounds := newFakeRoundRepo(teams)
	return NewHackathonService(hackathons, rounds, testLogger()), hackathons, rounds
}

func seedHackathon(t *testing.T, repo *fakeHackathonRepo, status domain.HackathonStatus) *domain.Hackathon {
	t.Helper()
	h := &domain.Hackathon{
		ID:                "hack-1",
		Title:             "Spring Hack",
		Status:            status,
		RegistrationStart: time.Now().Add(-time.Hour),
		RegistrationEnd:   time.Now().Add(time.Hour),
		StartDate:         time.Now().Add(2 * time.Hour),
		EndDate:           time.Now().Add(48 * time.Hour),
		MaxTeamSize:       4,
		MaxParticipants:   100,
		AllowIndividual:   true,
		AllowTeam:         true,
	}
	require.NoError(t, repo.Create(context.Background(), h))
	return h
}

func TestCreateHackathon(t *testing.T) {
	svc, _, _ := newHackathonFixture(t)
	ctx := context.Background()

	input := &CreateHackathonInput{
		Title:             "Spring Hack",
		RegistrationStart: time.Now(),
		RegistrationEnd:   time.Now().Add(24 * time.Hour),
		StartDate:         time.Now().Add(48 * time.Hour),
		EndDate:           time.Now().Add(72 * time.Hour),
		MaxTeamSize:       4,
		MaxParticipants:   100,
		AllowIndividual:   true,
		AllowTeam:         true,
	}

	h, err := svc.CreateHackathon(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, domain.HackathonStatusDraft, h.Status)
	assert.NotEmpty(t, h.ID)
}

func TestCreateHackathonRejectsInvertedWindows(t *testing.T) {
	svc, _, _ := newHackathonFixture(t)

	input := &CreateHackathonInput{
		Title:             "Bad Windows",
		RegistrationStart: time.Now().Add(24 * time.Hour),
		RegistrationEnd:   time.Now(),
		StartDate:         time.Now().Add(48 * time.Hour),
		EndDate:           time.Now().Add(72 * time.Hour),
		MaxTeamSize:       4,
		MaxParticipants:   100,
		AllowIndividual:   true,
	}

	_, err := svc.CreateHackathon(context.Background(), input)
	assertKind(t, err, apperr.KindValidation)
}

func TestTransitionStatusFollowsTable(t *testing.T) {
	svc, hackathons, _ := newHackathonFixture(t)
	ctx := context.Background()
	seedHackathon(t, hackathons, domain.HackathonStatusDraft)

	h, err := svc.TransitionStatus(ctx, "hack-1", domain.HackathonStatusRegistrationOpen)
	require.NoError(t, err)
	assert.Equal(t, domain.HackathonStatusRegistrationOpen, h.Status)

	// skipping states is rejected
	_, err = svc.TransitionStatus(ctx, "hack-1", domain.HackathonStatusApprovalInProgress)
	assertKind(t, err, apperr.KindStateConflict)

	// backward to draft is rejected
	_, err = svc.TransitionStatus(ctx, "hack-1", domain.HackathonStatusDraft)
	assertKind(t, err, apperr.KindStateConflict)
}

func TestTransitionJudgingBackToRoundActive(t *testing.T) {
	svc, hackathons, _ := newHackathonFixture(t)
	ctx := context.Background()
	seedHackathon(t, hackathons, domain.HackathonStatusJudging)

	h, err := svc.TransitionStatus(ctx, "hack-1", domain.HackathonStatusRoundActive)
	require.NoError(t, err)
	assert.Equal(t, domain.HackathonStatusRoundActive, h.Status)
}

func TestCompleteBlockedByOpenRound(t *testing.T) {
	svc, hackathons, rounds := newHackathonFixture(t)
	ctx := context.Background()
	seedHackathon(t, hackathons, domain.HackathonStatusJudging)

	require.NoError(t, rounds.Create(ctx, &domain.Round{
		ID: "round-1", HackathonID: "hack-1", RoundNumber: 1,
		Status: domain.RoundStatusJudging,
	}))

	_, err := svc.TransitionStatus(ctx, "hack-1", domain.HackathonStatusCompleted)
	assertKind(t, err, apperr.KindStateConflict)

	rounds.rounds["round-1"].Status = domain.RoundStatusClosed

	h, err := svc.TransitionStatus(ctx, "hack-1", domain.HackathonStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.HackathonStatusCompleted, h.Status)
}

func TestArchiveRequiresCompleted(t *testing.T) {
	svc, hackathons, _ := newHackathonFixture(t)
	ctx := context.Background()
	h := seedHackathon(t, hackathons, domain.HackathonStatusRoundActive)

	err := svc.ArchiveHackathon(ctx, h.ID)
	assertKind(t, err, apperr.KindStateConflict)

	hackathons.hackathons[h.ID].Status = domain.HackathonStatusCompleted
	require.NoError(t, svc.ArchiveHackathon(ctx, h.ID))
	assert.True(t, hackathons.hackathons[h.ID].Archived)
}

func TestCreateRoundNumbersIncrease(t *testing.T) {
	svc, hackathons, _ := newHackathonFixture(t)
	ctx := context.Background()
	seedHackathon(t, hackathons, domain.HackathonStatusDraft)

	input := &CreateRoundInput{
		StartDate:           time.Now(),
		EndDate:             time.Now().Add(time.Hour),
		WeightagePercentage: 50,
		AllowDescription:    true,
	}

	r1, err := svc.CreateRound(ctx, "hack-1", input)
	require.NoError(t, err)
	r2, err := svc.CreateRound(ctx, "hack-1", input)
	require.NoError(t, err)

	assert.Equal(t, 1, r1.RoundNumber)
	assert.Equal(t, 2, r2.RoundNumber)
	assert.Equal(t, domain.RoundStatusUpcoming, r1.Status)
}

func TestCreateRoundValidatesEliminationThreshold(t *testing.T) {
	svc, hackathons, _ := newHackathonFixture(t)
	ctx := context.Background()
	seedHackathon(t, hackathons, domain.HackathonStatusDraft)

	_, err := svc.CreateRound(ctx, "hack-1", &CreateRoundInput{
		StartDate:        time.Now(),
		EndDate:          time.Now().Add(time.Hour),
		IsElimination:    true,
		AllowDescription: true,
	})
	assertKind(t, err, apperr.KindValidation)

	_, err = svc.CreateRound(ctx, "hack-1", &CreateRoundInput{
		StartDate:            time.Now(),
		EndDate:              time.Now().Add(time.Hour),
		EliminationThreshold: 50,
		AllowDescription:     true,
	})
	assertKind(t, err, apperr.KindValidation)
}

func TestTransitionRoundRequiresHackathonState(t *testing.T) {
	svc, hackathons, rounds := newHackathonFixture(t)
	ctx := context.Background()
	seedHackathon(t, hackathons, domain.HackathonStatusApprovalInProgress)

	require.NoError(t, rounds.Create(ctx, &domain.Round{
		ID: "round-1", HackathonID: "hack-1", RoundNumber: 1,
		Status: domain.RoundStatusUpcoming,
	}))

	_, err := svc.TransitionRound(ctx, "round-1", domain.RoundStatusActive)
	assertKind(t, err, apperr.KindStateConflict)

	hackathons.hackathons["hack-1"].Status = domain.HackathonStatusReadyForRound1

	r, err := svc.TransitionRound(ctx, "round-1", domain.RoundStatusActive)
	require.NoError(t, err)
	assert.Equal(t, domain.RoundStatusActive, r.Status)
}

func TestTransitionRoundBlocksWhilePriorOpen(t *testing.T) {
	svc, hackathons, rounds := newHackathonFixture(t)
	ctx := context.Background()
	seedHackathon(t, hackathons, domain.HackathonStatusRoundActive)

	require.NoError(t, rounds.Create(ctx, &domain.Round{
		ID: "round-1", HackathonID: "hack-1", RoundNumber: 1,
		Status: domain.RoundStatusJudging,
	}))
	require.NoError(t, rounds.Create(ctx, &domain.Round{
		ID: "round-2", HackathonID: "hack-1", RoundNumber: 2,
		Status: domain.RoundStatusUpcoming,
	}))

	_, err := svc.TransitionRound(ctx, "round-2", domain.RoundStatusActive)
	assertKind(t, err, apperr.KindStateConflict)
}

func TestCloseRoundRequiresFinalizedScoring(t *testing.T) {
	svc, hackathons, rounds := newHackathonFixture(t)
	ctx := context.Background()
	seedHackathon(t, hackathons, domain.HackathonStatusJudging)

	require.NoError(t, rounds.Create(ctx, &domain.Round{
		ID: "round-1", HackathonID: "hack-1", RoundNumber: 1,
		Status: domain.RoundStatusJudging,
	}))

	_, err := svc.TransitionRound(ctx, "round-1", domain.RoundStatusClosed)
	assertKind(t, err, apperr.KindStateConflict)

	rounds.rounds["round-1"].IsScoringFinalized = true

	r, err := svc.TransitionRound(ctx, "round-1", domain.RoundStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.RoundStatusClosed, r.Status)
}

// assertKind checks the error is an application error of the given kind
func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*apperr.Error)
	require.True(t, ok, "expected *errors.Error, got %T: %v", err, err)
	assert.Equal(t, kind, appErr.Kind)
}
