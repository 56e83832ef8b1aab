package domain

import "time"

// HackathonStatus is the top-level lifecycle state of a competition
type HackathonStatus string

const (
	HackathonStatusDraft               HackathonStatus = "draft"
	HackathonStatusRegistrationOpen    HackathonStatus = "registration_open"
	HackathonStatusRegistrationClosed  HackathonStatus = "registration_closed"
	HackathonStatusTeamsForming        HackathonStatus = "teams_forming"
	HackathonStatusApprovalInProgress  HackathonStatus = "approval_in_progress"
	HackathonStatusReadyForRound1      HackathonStatus = "ready_for_round_1"
	HackathonStatusRoundActive         HackathonStatus = "round_active"
	HackathonStatusJudging             HackathonStatus = "judging"
	HackathonStatusCompleted           HackathonStatus = "completed"
)

// hackathonTransitions is the closed allowed-from → allowed-to table. Any
// transition not listed here is a state conflict. judging → round_active is
// the only backward edge and exists so the next round can start.
var hackathonTransitions = map[HackathonStatus][]HackathonStatus{
	HackathonStatusDraft:              {HackathonStatusRegistrationOpen},
	HackathonStatusRegistrationOpen:   {HackathonStatusRegistrationClosed},
	HackathonStatusRegistrationClosed: {HackathonStatusTeamsForming},
	HackathonStatusTeamsForming:       {HackathonStatusApprovalInProgress},
	HackathonStatusApprovalInProgress: {HackathonStatusReadyForRound1},
	HackathonStatusReadyForRound1:     {HackathonStatusRoundActive},
	HackathonStatusRoundActive:        {HackathonStatusJudging},
	HackathonStatusJudging:            {HackathonStatusRoundActive, HackathonStatusCompleted},
	HackathonStatusCompleted:          {},
}

// CanTransitionTo reports whether moving to next is an allowed edge
func (s HackathonStatus) CanTransitionTo(next HackathonStatus) bool {
	for _, allowed := range hackathonTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known status
func (s HackathonStatus) IsValid() bool {
	_, ok := hackathonTransitions[s]
	return ok
}

// RoundsAllowed reports whether rounds may run (activate/judge) at this
// hackathon status
func (s HackathonStatus) RoundsAllowed() bool {
	switch s {
	case HackathonStatusReadyForRound1, HackathonStatusRoundActive, HackathonStatusJudging:
		return true
	}
	return false
}

// Hackathon is the root competition entity. Status is mutated only through
// the orchestrator's transition table; hackathons are archived, never
// deleted.
type Hackathon struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Status            HackathonStatus `json:"status"`
	RegistrationStart time.Time       `json:"registration_start"`
	RegistrationEnd   time.Time       `json:"registration_end"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           time.Time       `json:"end_date"`
	MaxTeamSize       int             `json:"max_team_size"`
	MaxParticipants   int             `json:"max_participants"`
	AllowIndividual   bool            `json:"allow_individual"`
	AllowTeam         bool            `json:"allow_team"`
	Archived          bool            `json:"archived"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// RegistrationWindowOpen reports whether now falls inside the registration
// window
func (h *Hackathon) RegistrationWindowOpen(now time.Time) bool {
	return !now.Before(h.RegistrationStart) && !now.After(h.RegistrationEnd)
}
