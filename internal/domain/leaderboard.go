package domain

// LeaderboardEntry is a derived ranking row, computed on demand from
// Score/Submission/Team state. PreviousRank comes from the last snapshot
// for the same scope; nil means the team is new to the board.
type LeaderboardEntry struct {
	TeamID          string     `json:"team_id"`
	TeamName        string     `json:"team_name"`
	Rank            int        `json:"rank"`
	PreviousRank    *int       `json:"previous_rank"`
	RoundScore      float64    `json:"round_score"`
	CumulativeScore float64    `json:"cumulative_score"`
	Status          TeamStatus `json:"status"`
	FinalPosition   string     `json:"final_position,omitempty"`
}

// Leaderboard is the polled response for a hackathon-wide or single-round
// ranking
type Leaderboard struct {
	HackathonID     string             `json:"hackathon_id"`
	RoundID         string             `json:"round_id,omitempty"`
	HackathonStatus HackathonStatus    `json:"hackathon_status"`
	Entries         []LeaderboardEntry `json:"entries"`
}

// LeaderboardScopeOverall is the round scope used for cumulative rankings
const LeaderboardScopeOverall = "overall"
