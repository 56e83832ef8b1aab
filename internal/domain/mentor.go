package domain

import "time"

// AssignmentType distinguishes mentors eligible for any team (global) from
// mentors bound to an explicit team (specific)
type AssignmentType string

const (
	AssignmentTypeGlobal   AssignmentType = "global"
	AssignmentTypeSpecific AssignmentType = "specific"
)

// MentorAssignment registers a mentor with a hackathon. A mentor holds at
// most one assignment per hackathon.
type MentorAssignment struct {
	ID             string         `json:"id"`
	HackathonID    string         `json:"hackathon_id"`
	MentorID       string         `json:"mentor_id"`
	AssignmentType AssignmentType `json:"assignment_type"`
	CreatedAt      time.Time      `json:"created_at"`
}

// DistributionReport describes the outcome of one distribute-teams run.
// RequiredMentors is advisory headcount for a balanced load, never a
// precondition.
type DistributionReport struct {
	TeamsAssigned   int               `json:"teams_assigned"`
	TeamsTotal      int               `json:"teams_total"`
	MentorCount     int               `json:"mentor_count"`
	RequiredMentors int               `json:"required_mentors"`
	Assignments     map[string]string `json:"assignments"` // teamID → mentorID
}

// MentorRemovalResult reports which teams lost their only mentor and need
// re-distribution after a cascaded removal
type MentorRemovalResult struct {
	MentorID        string   `json:"mentor_id"`
	UnassignedTeams []string `json:"unassigned_teams"`
}
