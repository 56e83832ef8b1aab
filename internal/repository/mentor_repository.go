package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hackhub/internal/domain"
	"hackhub/pkg/database"
)

type PgMentorRepository struct {
	db *database.PostgresDB
}

func NewMentorRepository(db *database.PostgresDB) *PgMentorRepository {
	return &PgMentorRepository{db: db}
}

// CreateAssignment inserts a mentor assignment; the unique
// (hackathon_id, mentor_id) index enforces one assignment per mentor
func (r *PgMentorRepository) CreateAssignment(ctx context.Context, a *domain.MentorAssignment) (bool, error) {
	query := `
		INSERT INTO mentor_assignments (id, hackathon_id, mentor_id, assignment_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hackathon_id, mentor_id) DO NOTHING
	`

	tag, err := r.db.Pool.Exec(ctx, query, a.ID, a.HackathonID, a.MentorID, a.AssignmentType)
	if err != nil {
		return false, fmt.Errorf("failed to create mentor assignment: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgMentorRepository) listAssignments(ctx context.Context, query string, args ...interface{}) ([]domain.MentorAssignment, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list mentor assignments: %w", err)
	}
	defer rows.Close()

	var assignments []domain.MentorAssignment
	for rows.Next() {
		var a domain.MentorAssignment
		if err := rows.Scan(&a.ID, &a.HackathonID, &a.MentorID, &a.AssignmentType, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mentor assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// ListByHackathon lists all mentor assignments for a hackathon
func (r *PgMentorRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]domain.MentorAssignment, error) {
	query := `
		SELECT id, hackathon_id, mentor_id, assignment_type, created_at
		FROM mentor_assignments
		WHERE hackathon_id = $1
		ORDER BY created_at ASC
	`
	return r.listAssignments(ctx, query, hackathonID)
}

// ListGlobalMentors lists distribution-eligible mentors in assignment
// order, the order the round-robin walks
func (r *PgMentorRepository) ListGlobalMentors(ctx context.Context, hackathonID string) ([]domain.MentorAssignment, error) {
	query := `
		SELECT id, hackathon_id, mentor_id, assignment_type, created_at
		FROM mentor_assignments
		WHERE hackathon_id = $1 AND assignment_type = 'global'
		ORDER BY created_at ASC, id ASC
	`
	return r.listAssignments(ctx, query, hackathonID)
}

// GetAssignment gets a mentor's assignment for a hackathon; (nil, nil) when
// missing
func (r *PgMentorRepository) GetAssignment(ctx context.Context, hackathonID, mentorID string) (*domain.MentorAssignment, error) {
	query := `
		SELECT id, hackathon_id, mentor_id, assignment_type, created_at
		FROM mentor_assignments
		WHERE hackathon_id = $1 AND mentor_id = $2
	`

	var a domain.MentorAssignment
	err := r.db.Pool.QueryRow(ctx, query, hackathonID, mentorID).Scan(
		&a.ID, &a.HackathonID, &a.MentorID, &a.AssignmentType, &a.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mentor assignment: %w", err)
	}
	return &a, nil
}

// AssignTeamsBatch links teams to mentors in one transaction. The
// mentor_id IS NULL guard keeps re-runs incremental: a team assigned by an
// earlier run is never touched again.
func (r *PgMentorRepository) AssignTeamsBatch(ctx context.Context, assignments map[string]string) (int, error) {
	assigned := 0
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		for teamID, mentorID := range assignments {
			tag, err := tx.Exec(ctx, `
				UPDATE teams
				SET mentor_id = $2, updated_at = NOW()
				WHERE id = $1 AND mentor_id IS NULL
			`, teamID, mentorID)
			if err != nil {
				return fmt.Errorf("failed to assign team %s after %d assignments: %w", teamID, assigned, err)
			}
			assigned += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return assigned, nil
}

// RemoveMentor deletes the mentor's assignment. Teams bound only to this
// mentor are unlinked when cascade is set and reported back for
// re-distribution; without cascade the removal fails while links exist.
func (r *PgMentorRepository) RemoveMentor(ctx context.Context, hackathonID, mentorID string, cascade bool) (*domain.MentorRemovalResult, error) {
	result := &domain.MentorRemovalResult{MentorID: mentorID}

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id FROM teams
			WHERE hackathon_id = $1 AND mentor_id = $2
			ORDER BY created_at ASC
		`, hackathonID, mentorID)
		if err != nil {
			return fmt.Errorf("failed to list mentor teams: %w", err)
		}
		var teamIDs []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan team id: %w", err)
			}
			teamIDs = append(teamIDs, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to list mentor teams: %w", err)
		}

		if len(teamIDs) > 0 {
			if !cascade {
				return ErrHasActiveAssignments
			}
			if _, err := tx.Exec(ctx, `
				UPDATE teams SET mentor_id = NULL, updated_at = NOW()
				WHERE id = ANY($1)
			`, teamIDs); err != nil {
				return fmt.Errorf("failed to unlink mentor teams: %w", err)
			}
			result.UnassignedTeams = teamIDs
		}

		tag, err := tx.Exec(ctx, `
			DELETE FROM mentor_assignments
			WHERE hackathon_id = $1 AND mentor_id = $2
		`, hackathonID, mentorID)
		if err != nil {
			return fmt.Errorf("failed to remove mentor assignment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAssignmentNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListUnassignedPendingTeams returns pending-approval teams without a
// mentor, in team creation order
func (r *PgMentorRepository) ListUnassignedPendingTeams(ctx context.Context, hackathonID string) ([]domain.Team, error) {
	query := `SELECT ` + teamColumns + `
		FROM teams
		WHERE hackathon_id = $1 AND status = $2 AND mentor_id IS NULL
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, hackathonID, domain.TeamStatusPendingApproval)
	if err != nil {
		return nil, fmt.Errorf("failed to list unassigned teams: %w", err)
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

// Sentinels the service layer maps onto API error kinds
var (
	ErrHasActiveAssignments = errors.New("mentor has active team assignments")
	ErrAssignmentNotFound   = errors.New("mentor assignment not found")
)
