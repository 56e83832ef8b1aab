package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHackathonStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    HackathonStatus
		to      HackathonStatus
		allowed bool
	}{
		{"draft opens registration", HackathonStatusDraft, HackathonStatusRegistrationOpen, true},
		{"no skipping ahead", HackathonStatusDraft, HackathonStatusTeamsForming, false},
		{"no going back", HackathonStatusTeamsForming, HackathonStatusRegistrationOpen, false},
		{"judging back to round active", HackathonStatusJudging, HackathonStatusRoundActive, true},
		{"judging to completed", HackathonStatusJudging, HackathonStatusCompleted, true},
		{"round active cannot complete directly", HackathonStatusRoundActive, HackathonStatusCompleted, false},
		{"completed is terminal", HackathonStatusCompleted, HackathonStatusRoundActive, false},
		{"self transition rejected", HackathonStatusJudging, HackathonStatusJudging, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestRoundStatusForwardOnly(t *testing.T) {
	assert.True(t, RoundStatusUpcoming.CanTransitionTo(RoundStatusActive))
	assert.True(t, RoundStatusActive.CanTransitionTo(RoundStatusJudging))
	assert.True(t, RoundStatusJudging.CanTransitionTo(RoundStatusClosed))

	assert.False(t, RoundStatusJudging.CanTransitionTo(RoundStatusActive))
	assert.False(t, RoundStatusUpcoming.CanTransitionTo(RoundStatusJudging))
	assert.False(t, RoundStatusClosed.CanTransitionTo(RoundStatusUpcoming))
}

func TestTeamStatusTransitions(t *testing.T) {
	assert.True(t, TeamStatusPendingApproval.CanTransitionTo(TeamStatusApproved))
	assert.True(t, TeamStatusPendingApproval.CanTransitionTo(TeamStatusRejected))
	assert.True(t, TeamStatusApproved.CanTransitionTo(TeamStatusEliminated))

	assert.False(t, TeamStatusRejected.CanTransitionTo(TeamStatusApproved))
	assert.False(t, TeamStatusEliminated.CanTransitionTo(TeamStatusApproved))
	assert.False(t, TeamStatusPendingApproval.CanTransitionTo(TeamStatusEliminated))
}

func TestInvitationEffectiveStatus(t *testing.T) {
	now := time.Now()
	inv := &Invitation{Status: InvitationStatusPending, ExpiresAt: now.Add(time.Hour)}

	assert.Equal(t, InvitationStatusPending, inv.EffectiveStatus(now))
	assert.Equal(t, InvitationStatusExpired, inv.EffectiveStatus(now.Add(2*time.Hour)))

	// resolved invitations never flip to expired
	inv.Status = InvitationStatusAccepted
	assert.Equal(t, InvitationStatusAccepted, inv.EffectiveStatus(now.Add(2*time.Hour)))
}

func TestRegistrationWindowOpen(t *testing.T) {
	now := time.Now()
	h := &Hackathon{
		RegistrationStart: now.Add(-time.Hour),
		RegistrationEnd:   now.Add(time.Hour),
	}

	assert.True(t, h.RegistrationWindowOpen(now))
	assert.True(t, h.RegistrationWindowOpen(h.RegistrationStart))
	assert.True(t, h.RegistrationWindowOpen(h.RegistrationEnd))
	assert.False(t, h.RegistrationWindowOpen(now.Add(-2*time.Hour)))
	assert.False(t, h.RegistrationWindowOpen(now.Add(2*time.Hour)))
}
