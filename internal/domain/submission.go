package domain

import "time"

// Submission is one versioned entry by a team for a round. VersionNumber is
// 1-based and monotonically increasing per (team, round); exactly one
// submission per (team, round) carries IsFinal = true, always the most
// recent.
type Submission struct {
	ID            string    `json:"id"`
	TeamID        string    `json:"team_id"`
	RoundID       string    `json:"round_id"`
	VersionNumber int       `json:"version_number"`
	ZipURL        string    `json:"zip_url,omitempty"`
	GithubLink    string    `json:"github_link,omitempty"`
	VideoURL      string    `json:"video_url,omitempty"`
	Description   string    `json:"description,omitempty"`
	FileSizeMB    float64   `json:"file_size_mb,omitempty"`
	IsFinal       bool      `json:"is_final"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// SubmissionPayload is the submitted content before it becomes a versioned
// Submission. File storage is external; the payload carries the uploaded
// file's URL and declared size only.
type SubmissionPayload struct {
	ZipURL      string  `json:"zip_url,omitempty"`
	GithubLink  string  `json:"github_link,omitempty"`
	VideoURL    string  `json:"video_url,omitempty"`
	Description string  `json:"description,omitempty"`
	FileSizeMB  float64 `json:"file_size_mb,omitempty"`
}

// TeamRoundStatus bundles a team's standing in a round with its submission
// history for the team dashboard
type TeamRoundStatus struct {
	TeamID          string       `json:"team_id"`
	RoundID         string       `json:"round_id"`
	TeamStatus      TeamStatus   `json:"team_status"`
	RoundStatus     RoundStatus  `json:"round_status"`
	FinalSubmission *Submission  `json:"final_submission,omitempty"`
	History         []Submission `json:"history"`
}
