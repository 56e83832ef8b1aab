package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hackhub/internal/domain"
	"hackhub/pkg/database"
)

// ErrTeamFull aborts an invitation acceptance whose member insert would
// push the team past its maximum size.
var ErrTeamFull = errors.New("team is at maximum size")

type PgTeamRepository struct {
	db *database.PostgresDB
}

func NewTeamRepository(db *database.PostgresDB) *PgTeamRepository {
	return &PgTeamRepository{db: db}
}

const teamColumns = `
	id, hackathon_id, name, lead_id, status, registration_type,
	COALESCE(rejection_reason, ''), COALESCE(mentor_id, ''),
	created_at, updated_at
`

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	err := row.Scan(
		&t.ID,
		&t.HackathonID,
		&t.Name,
		&t.LeadID,
		&t.Status,
		&t.RegistrationType,
		&t.RejectionReason,
		&t.MentorID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const insertTeamSQL = `
	INSERT INTO teams (id, hackathon_id, name, lead_id, status, registration_type)
	VALUES ($1, $2, $3, $4, $5, $6)
`

const insertMemberSQL = `
	INSERT INTO team_members (team_id, student_id, role)
	VALUES ($1, $2, $3)
`

// CreateTeam inserts the team and its lead member in one transaction
func (r *PgTeamRepository) CreateTeam(ctx context.Context, t *domain.Team, lead *domain.TeamMember) error {
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertTeamSQL,
			t.ID, t.HackathonID, t.Name, t.LeadID, t.Status, t.RegistrationType); err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}
		if _, err := tx.Exec(ctx, insertMemberSQL,
			lead.TeamID, lead.StudentID, lead.Role); err != nil {
			return fmt.Errorf("failed to add team lead: %w", err)
		}
		return nil
	})
	return err
}

// GetByID gets a team by ID; returns (nil, nil) when missing
func (r *PgTeamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	t, err := scanTeam(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return t, nil
}

// ListByHackathon lists teams in creation order, the canonical ordering
// for distribution and ranking tie-breaks
func (r *PgTeamRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE hackathon_id = $1 ORDER BY created_at ASC, id ASC`
	return r.listTeams(ctx, query, hackathonID)
}

// ListByMentor lists teams linked to a mentor within a hackathon
func (r *PgTeamRepository) ListByMentor(ctx context.Context, hackathonID, mentorID string) ([]domain.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE hackathon_id = $1 AND mentor_id = $2 ORDER BY created_at ASC, id ASC`
	return r.listTeams(ctx, query, hackathonID, mentorID)
}

func (r *PgTeamRepository) listTeams(ctx context.Context, query string, args ...interface{}) ([]domain.Team, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *t)
	}
	return teams, rows.Err()
}

// ListMembers lists a team's members, lead first
func (r *PgTeamRepository) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	query := `
		SELECT team_id, student_id, role, joined_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY role = 'lead' DESC, joined_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	defer rows.Close()

	var members []domain.TeamMember
	for rows.Next() {
		var m domain.TeamMember
		if err := rows.Scan(&m.TeamID, &m.StudentID, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CountMembers returns the team's current member count
func (r *PgTeamRepository) CountMembers(ctx context.Context, teamID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM team_members WHERE team_id = $1`

	if err := r.db.Pool.QueryRow(ctx, query, teamID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count team members: %w", err)
	}
	return count, nil
}

// UpdateStatus compare-and-sets the team status, recording the rejection
// reason when given
func (r *PgTeamRepository) UpdateStatus(ctx context.Context, id string, from, to domain.TeamStatus, reason string) (bool, error) {
	query := `
		UPDATE teams
		SET status = $3, rejection_reason = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query, id, from, to, reason)
	if err != nil {
		return false, fmt.Errorf("failed to update team status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CreateRegistration records a participant registration; the primary key on
// (hackathon_id, student_id) rejects double registration
func (r *PgTeamRepository) CreateRegistration(ctx context.Context, hackathonID, studentID string, regType domain.RegistrationType) error {
	query := `
		INSERT INTO registrations (hackathon_id, student_id, registration_type)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.Pool.Exec(ctx, query, hackathonID, studentID, regType); err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

// CountRegistrations counts participants registered for the hackathon
func (r *PgTeamRepository) CountRegistrations(ctx context.Context, hackathonID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM registrations WHERE hackathon_id = $1`

	if err := r.db.Pool.QueryRow(ctx, query, hackathonID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

// HasRegistration reports whether the student already registered
func (r *PgTeamRepository) HasRegistration(ctx context.Context, hackathonID, studentID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM registrations WHERE hackathon_id = $1 AND student_id = $2)`

	if err := r.db.Pool.QueryRow(ctx, query, hackathonID, studentID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check registration: %w", err)
	}
	return exists, nil
}

const unteamedIndividualsSQL = `
	SELECT reg.student_id
	FROM registrations reg
	WHERE reg.hackathon_id = $1
	  AND reg.registration_type = 'individual'
	  AND NOT EXISTS (
		SELECT 1 FROM team_members tm
		JOIN teams t ON t.id = tm.team_id
		WHERE tm.student_id = reg.student_id AND t.hackathon_id = reg.hackathon_id
	  )
	ORDER BY reg.created_at ASC
`

// FinalizeIndividuals runs the whole finalization in one transaction: the
// hackathon status compare-and-set, the unteamed-registrant read and the
// singleton inserts. The UPDATE takes the hackathon row lock, so concurrent
// finalizations serialize on it and the loser sees zero rows affected; a
// failed insert rolls the status flip back with it.
func (r *PgTeamRepository) FinalizeIndividuals(ctx context.Context, hackathonID string, buildTeams func(studentIDs []string) ([]domain.Team, []domain.TeamMember)) (int, bool, error) {
	created := 0
	won := false
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE hackathons
			SET status = $2, updated_at = NOW()
			WHERE id = $1 AND status = $3
		`, hackathonID, domain.HackathonStatusTeamsForming, domain.HackathonStatusRegistrationClosed)
		if err != nil {
			return fmt.Errorf("failed to transition hackathon: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		won = true

		rows, err := tx.Query(ctx, unteamedIndividualsSQL, hackathonID)
		if err != nil {
			return fmt.Errorf("failed to list unteamed individuals: %w", err)
		}
		defer rows.Close()

		var studentIDs []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("failed to scan student id: %w", err)
			}
			studentIDs = append(studentIDs, id)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to list unteamed individuals: %w", err)
		}
		rows.Close()

		teams, leads := buildTeams(studentIDs)
		for i := range teams {
			t := &teams[i]
			if _, err := tx.Exec(ctx, insertTeamSQL,
				t.ID, t.HackathonID, t.Name, t.LeadID, t.Status, t.RegistrationType); err != nil {
				return fmt.Errorf("failed to create team %s: %w", t.Name, err)
			}
			m := &leads[i]
			if _, err := tx.Exec(ctx, insertMemberSQL,
				m.TeamID, m.StudentID, m.Role); err != nil {
				return fmt.Errorf("failed to add lead for team %s: %w", t.Name, err)
			}
		}
		created = len(teams)
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return created, won, nil
}

// CreateInvitation inserts a pending invitation
func (r *PgTeamRepository) CreateInvitation(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO invitations (id, team_id, invited_email, invited_by, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		inv.ID, inv.TeamID, inv.InvitedEmail, inv.InvitedBy, inv.Status, inv.ExpiresAt,
	).Scan(&inv.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

// GetInvitation gets an invitation by ID; returns (nil, nil) when missing
func (r *PgTeamRepository) GetInvitation(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `
		SELECT id, team_id, invited_email, invited_by, status, expires_at, created_at
		FROM invitations
		WHERE id = $1
	`

	var inv domain.Invitation
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&inv.ID,
		&inv.TeamID,
		&inv.InvitedEmail,
		&inv.InvitedBy,
		&inv.Status,
		&inv.ExpiresAt,
		&inv.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return &inv, nil
}

// ListInvitations lists a team's invitations, newest first
func (r *PgTeamRepository) ListInvitations(ctx context.Context, teamID string) ([]domain.Invitation, error) {
	query := `
		SELECT id, team_id, invited_email, invited_by, status, expires_at, created_at
		FROM invitations
		WHERE team_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []domain.Invitation
	for rows.Next() {
		var inv domain.Invitation
		err := rows.Scan(
			&inv.ID,
			&inv.TeamID,
			&inv.InvitedEmail,
			&inv.InvitedBy,
			&inv.Status,
			&inv.ExpiresAt,
			&inv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// ResolveInvitation moves a pending invitation to accepted/declined and, on
// acceptance, adds the member in the same transaction. The status guard in
// the UPDATE means only one acceptance can ever win, and the member count
// is re-checked under the team row lock so concurrent accepts on different
// invitations cannot both slip past the size limit.
func (r *PgTeamRepository) ResolveInvitation(ctx context.Context, id string, to domain.InvitationStatus, member *domain.TeamMember, maxTeamSize int) (bool, error) {
	won := false
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE invitations
			SET status = $2
			WHERE id = $1 AND status = $3
		`, id, to, domain.InvitationStatusPending)
		if err != nil {
			return fmt.Errorf("failed to resolve invitation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil
		}
		won = true

		if member != nil {
			if _, err := tx.Exec(ctx,
				`SELECT id FROM teams WHERE id = $1 FOR UPDATE`, member.TeamID); err != nil {
				return fmt.Errorf("failed to lock team: %w", err)
			}
			var count int
			if err := tx.QueryRow(ctx,
				`SELECT COUNT(*) FROM team_members WHERE team_id = $1`, member.TeamID).Scan(&count); err != nil {
				return fmt.Errorf("failed to count team members: %w", err)
			}
			if count >= maxTeamSize {
				return ErrTeamFull
			}
			if _, err := tx.Exec(ctx, insertMemberSQL,
				member.TeamID, member.StudentID, member.Role); err != nil {
				return fmt.Errorf("failed to add invited member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

// ExpireInvitation marks a pending invitation expired
func (r *PgTeamRepository) ExpireInvitation(ctx context.Context, id string) error {
	query := `UPDATE invitations SET status = $2 WHERE id = $1 AND status = $3`

	if _, err := r.db.Pool.Exec(ctx, query, id, domain.InvitationStatusExpired, domain.InvitationStatusPending); err != nil {
		return fmt.Errorf("failed to expire invitation: %w", err)
	}
	return nil
}
