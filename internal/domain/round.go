package domain

import "time"

// RoundStatus is the sub-state of a single competition round
type RoundStatus string

const (
	RoundStatusUpcoming RoundStatus = "upcoming"
	RoundStatusActive   RoundStatus = "active"
	RoundStatusJudging  RoundStatus = "judging"
	RoundStatusClosed   RoundStatus = "closed"
)

// roundTransitions is strictly forward-only; closed is terminal
var roundTransitions = map[RoundStatus]RoundStatus{
	RoundStatusUpcoming: RoundStatusActive,
	RoundStatusActive:   RoundStatusJudging,
	RoundStatusJudging:  RoundStatusClosed,
}

// CanTransitionTo reports whether moving to next is allowed. Rounds cannot
// skip states or reopen.
func (s RoundStatus) CanTransitionTo(next RoundStatus) bool {
	allowed, ok := roundTransitions[s]
	return ok && allowed == next
}

// IsValid reports whether s is a known status
func (s RoundStatus) IsValid() bool {
	switch s {
	case RoundStatusUpcoming, RoundStatusActive, RoundStatusJudging, RoundStatusClosed:
		return true
	}
	return false
}

// Round is one judged stage of a hackathon. RoundNumber is 1-based and
// strictly increasing per hackathon. IsScoringFinalized only ever moves
// false → true.
type Round struct {
	ID                   string      `json:"id"`
	HackathonID          string      `json:"hackathon_id"`
	RoundNumber          int         `json:"round_number"`
	Status               RoundStatus `json:"status"`
	StartDate            time.Time   `json:"start_date"`
	EndDate              time.Time   `json:"end_date"`
	IsElimination        bool        `json:"is_elimination"`
	EliminationThreshold float64     `json:"elimination_threshold"`
	WeightagePercentage  float64     `json:"weightage_percentage"`
	IsScoringFinalized   bool        `json:"is_scoring_finalized"`
	AllowZip             bool        `json:"allow_zip"`
	AllowGithub          bool        `json:"allow_github"`
	AllowVideo           bool        `json:"allow_video"`
	AllowDescription     bool        `json:"allow_description"`
	MaxFileSizeMB        int         `json:"max_file_size_mb"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// RoundJudgingSummary is the admin dashboard view of judging progress for
// one round
type RoundJudgingSummary struct {
	RoundID             string      `json:"round_id"`
	RoundNumber         int         `json:"round_number"`
	Status              RoundStatus `json:"status"`
	IsScoringFinalized  bool        `json:"is_scoring_finalized"`
	TeamsExpected       int         `json:"teams_expected"`
	SubmissionsReceived int         `json:"submissions_received"`
	SubmissionsScored   int         `json:"submissions_scored"`
}
