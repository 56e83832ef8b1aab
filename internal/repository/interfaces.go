package repository

import (
	"context"

	"hackhub/internal/domain"
)

// HackathonRepository persists hackathon records. Status changes go through
// conditional updates so concurrent admin transitions cannot both win.
type HackathonRepository interface {
	Create(ctx context.Context, h *domain.Hackathon) error
	GetByID(ctx context.Context, id string) (*domain.Hackathon, error)
	List(ctx context.Context, status domain.HackathonStatus, includeArchived bool) ([]domain.Hackathon, error)
	// UpdateStatus performs a compare-and-set from → to and reports whether
	// this caller won the transition.
	UpdateStatus(ctx context.Context, id string, from, to domain.HackathonStatus) (bool, error)
	Archive(ctx context.Context, id string) error
}

// RoundRepository persists rounds and runs the transactional round
// finalization batch.
type RoundRepository interface {
	Create(ctx context.Context, r *domain.Round) error
	GetByID(ctx context.Context, id string) (*domain.Round, error)
	ListByHackathon(ctx context.Context, hackathonID string) ([]domain.Round, error)
	MaxRoundNumber(ctx context.Context, hackathonID string) (int, error)
	UpdateStatus(ctx context.Context, id string, from, to domain.RoundStatus) (bool, error)
	// FinalizeRound atomically flips is_scoring_finalized false → true,
	// closes the round and eliminates the given teams. Returns false when
	// another caller already finalized; nothing is applied in that case.
	FinalizeRound(ctx context.Context, roundID string, eliminatedTeamIDs []string) (bool, error)
	JudgingSummaries(ctx context.Context, hackathonID string) ([]domain.RoundJudgingSummary, error)
}

// TeamRepository persists teams, members, registrations and invitations.
type TeamRepository interface {
	CreateTeam(ctx context.Context, t *domain.Team, lead *domain.TeamMember) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListByHackathon(ctx context.Context, hackathonID string) ([]domain.Team, error)
	ListByMentor(ctx context.Context, hackathonID, mentorID string) ([]domain.Team, error)
	ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error)
	CountMembers(ctx context.Context, teamID string) (int, error)
	// UpdateStatus is a compare-and-set on team status; reason is stored on
	// rejection.
	UpdateStatus(ctx context.Context, id string, from, to domain.TeamStatus, reason string) (bool, error)

	CreateRegistration(ctx context.Context, hackathonID, studentID string, regType domain.RegistrationType) error
	CountRegistrations(ctx context.Context, hackathonID string) (int, error)
	HasRegistration(ctx context.Context, hackathonID, studentID string) (bool, error)
	// FinalizeIndividuals flips the hackathon from registration_closed to
	// teams_forming and inserts one singleton team per unteamed individual
	// registrant, all in one transaction, so a failed insert rolls the
	// status back and the finalization stays retryable. buildTeams maps the
	// registrants (in registration order) to the teams and leads to insert.
	// Returns the number of teams created and false when the status
	// compare-and-set lost to a concurrent finalization.
	FinalizeIndividuals(ctx context.Context, hackathonID string, buildTeams func(studentIDs []string) ([]domain.Team, []domain.TeamMember)) (int, bool, error)

	CreateInvitation(ctx context.Context, inv *domain.Invitation) error
	GetInvitation(ctx context.Context, id string) (*domain.Invitation, error)
	ListInvitations(ctx context.Context, teamID string) ([]domain.Invitation, error)
	// ResolveInvitation is the atomic check-and-set from pending to the
	// given resolution, adding the member in the same transaction on
	// acceptance. The team's member count is re-checked under a row lock
	// inside that transaction; ErrTeamFull aborts the resolution when the
	// insert would exceed maxTeamSize. Returns false when the invitation
	// was no longer pending.
	ResolveInvitation(ctx context.Context, id string, to domain.InvitationStatus, member *domain.TeamMember, maxTeamSize int) (bool, error)
	// ExpireInvitation marks a pending invitation expired; lazy, invoked on
	// read past expires_at.
	ExpireInvitation(ctx context.Context, id string) error
}

// MentorRepository persists mentor assignments and the team→mentor links
// produced by distribution.
type MentorRepository interface {
	// CreateAssignment inserts the assignment unless the mentor already
	// holds one for the hackathon; reports whether the insert happened.
	CreateAssignment(ctx context.Context, a *domain.MentorAssignment) (bool, error)
	ListByHackathon(ctx context.Context, hackathonID string) ([]domain.MentorAssignment, error)
	ListGlobalMentors(ctx context.Context, hackathonID string) ([]domain.MentorAssignment, error)
	GetAssignment(ctx context.Context, hackathonID, mentorID string) (*domain.MentorAssignment, error)
	// AssignTeamsBatch links each team to its mentor in one transaction,
	// touching only teams that are still unassigned. Returns the number of
	// teams actually linked.
	AssignTeamsBatch(ctx context.Context, assignments map[string]string) (int, error)
	// RemoveMentor deletes the assignment. Without cascade it fails when
	// the mentor still has linked teams; with cascade those teams are
	// unlinked and returned for re-distribution.
	RemoveMentor(ctx context.Context, hackathonID, mentorID string, cascade bool) (*domain.MentorRemovalResult, error)
	ListUnassignedPendingTeams(ctx context.Context, hackathonID string) ([]domain.Team, error)
}

// SubmissionRepository persists versioned submissions. Version assignment
// serializes per (team, round) behind an advisory transaction lock.
type SubmissionRepository interface {
	// CreateVersioned assigns the next version number, demotes the previous
	// final submission and inserts the new one as final, all in one
	// transaction.
	CreateVersioned(ctx context.Context, s *domain.Submission) error
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
	GetFinal(ctx context.Context, teamID, roundID string) (*domain.Submission, error)
	ListByTeamRound(ctx context.Context, teamID, roundID string) ([]domain.Submission, error)
	ListFinalByRound(ctx context.Context, roundID string) ([]domain.Submission, error)
}

// ScoreRepository persists judge scores, one row per (submission, judge).
type ScoreRepository interface {
	// Upsert overwrites the judge's previous score for the submission
	// instead of duplicating it.
	Upsert(ctx context.Context, s *domain.Score) error
	ListBySubmission(ctx context.Context, submissionID string) ([]domain.Score, error)
	// ScoresForRound returns all scores on final submissions of the round,
	// keyed by submission ID.
	ScoresForRound(ctx context.Context, roundID string) (map[string][]domain.Score, error)
}
