package domain

import "time"

// TeamStatus is the lifecycle state of a team within one hackathon
type TeamStatus string

const (
	TeamStatusPendingApproval TeamStatus = "pending_approval"
	TeamStatusApproved        TeamStatus = "approved"
	TeamStatusRejected        TeamStatus = "rejected"
	TeamStatusEliminated      TeamStatus = "eliminated"
)

// teamTransitions: rejected and eliminated are terminal for the competition
var teamTransitions = map[TeamStatus][]TeamStatus{
	TeamStatusPendingApproval: {TeamStatusApproved, TeamStatusRejected},
	TeamStatusApproved:        {TeamStatusEliminated},
	TeamStatusRejected:        {},
	TeamStatusEliminated:      {},
}

// CanTransitionTo reports whether moving to next is allowed
func (s TeamStatus) CanTransitionTo(next TeamStatus) bool {
	for _, allowed := range teamTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RegistrationType distinguishes individual registrants (converted to
// singleton teams at finalization) from teams registered as such
type RegistrationType string

const (
	RegistrationTypeIndividual RegistrationType = "individual"
	RegistrationTypeTeam       RegistrationType = "team"
)

// TeamRole is a member's role inside a team
type TeamRole string

const (
	TeamRoleLead   TeamRole = "lead"
	TeamRoleMember TeamRole = "member"
)

// Team is a competing unit. Membership is immutable once the hackathon's
// teams are finalized. CreatedAt doubles as the deterministic tie-breaker in
// ranking and the ordering key for mentor distribution.
type Team struct {
	ID               string           `json:"id"`
	HackathonID      string           `json:"hackathon_id"`
	Name             string           `json:"name"`
	LeadID           string           `json:"lead_id"`
	Status           TeamStatus       `json:"status"`
	RegistrationType RegistrationType `json:"registration_type"`
	RejectionReason  string           `json:"rejection_reason,omitempty"`
	MentorID         string           `json:"mentor_id,omitempty"`
	Members          []TeamMember     `json:"members,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TeamMember links a student to a team. Exactly one member per team holds
// the lead role.
type TeamMember struct {
	TeamID    string    `json:"team_id"`
	StudentID string    `json:"student_id"`
	Role      TeamRole  `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}

// InvitationStatus is the resolution state of a team invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// Invitation is a pending offer to join a team. Expiry is evaluated lazily:
// a pending invitation past ExpiresAt reads as expired and is never
// silently re-opened.
type Invitation struct {
	ID           string           `json:"id"`
	TeamID       string           `json:"team_id"`
	InvitedEmail string           `json:"invited_email"`
	InvitedBy    string           `json:"invited_by"`
	Status       InvitationStatus `json:"status"`
	ExpiresAt    time.Time        `json:"expires_at"`
	CreatedAt    time.Time        `json:"created_at"`
}

// EffectiveStatus folds lazy expiry into the stored status
func (i *Invitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationStatusPending && now.After(i.ExpiresAt) {
		return InvitationStatusExpired
	}
	return i.Status
}
