package domain

import "time"

// Score is one judge's evaluation of one submission. At most one score
// exists per (submission, judge); re-scoring overwrites in place.
type Score struct {
	ID           string    `json:"id"`
	SubmissionID string    `json:"submission_id"`
	JudgeID      string    `json:"judge_id"`
	Score        float64   `json:"score"`
	Remarks      string    `json:"remarks,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ScoreMin and ScoreMax bound every judge score
const (
	ScoreMin = 0.0
	ScoreMax = 100.0
)

// TeamRoundScore is a team's aggregated result for one finalized round:
// the mean of all judge scores on its final submission, or the default
// policy score when no judge scored it
type TeamRoundScore struct {
	TeamID    string  `json:"team_id"`
	RoundID   string  `json:"round_id"`
	Score     float64 `json:"score"`
	Defaulted bool    `json:"defaulted"`
}
