package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hackhub/internal/domain"
	"hackhub/pkg/database"
)

type PgHackathonRepository struct {
	db *database.PostgresDB
}

func NewHackathonRepository(db *database.PostgresDB) *PgHackathonRepository {
	return &PgHackathonRepository{db: db}
}

const hackathonColumns = `
	id, title, status, registration_start, registration_end,
	start_date, end_date, max_team_size, max_participants,
	allow_individual, allow_team, archived, created_at, updated_at
`

func scanHackathon(row pgx.Row) (*domain.Hackathon, error) {
	var h domain.Hackathon
	err := row.Scan(
		&h.ID,
		&h.Title,
		&h.Status,
		&h.RegistrationStart,
		&h.RegistrationEnd,
		&h.StartDate,
		&h.EndDate,
		&h.MaxTeamSize,
		&h.MaxParticipants,
		&h.AllowIndividual,
		&h.AllowTeam,
		&h.Archived,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Create inserts a new hackathon in draft status
func (r *PgHackathonRepository) Create(ctx context.Context, h *domain.Hackathon) error {
	query := `
		INSERT INTO hackathons (
			id, title, status, registration_start, registration_end,
			start_date, end_date, max_team_size, max_participants,
			allow_individual, allow_team
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		h.ID,
		h.Title,
		h.Status,
		h.RegistrationStart,
		h.RegistrationEnd,
		h.StartDate,
		h.EndDate,
		h.MaxTeamSize,
		h.MaxParticipants,
		h.AllowIndividual,
		h.AllowTeam,
	).Scan(&h.CreatedAt, &h.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create hackathon: %w", err)
	}
	return nil
}

// GetByID gets a hackathon by ID; returns (nil, nil) when missing
func (r *PgHackathonRepository) GetByID(ctx context.Context, id string) (*domain.Hackathon, error) {
	query := `SELECT ` + hackathonColumns + ` FROM hackathons WHERE id = $1`

	h, err := scanHackathon(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hackathon: %w", err)
	}
	return h, nil
}

// List lists hackathons, optionally filtered by status
func (r *PgHackathonRepository) List(ctx context.Context, status domain.HackathonStatus, includeArchived bool) ([]domain.Hackathon, error) {
	query := `SELECT ` + hackathonColumns + ` FROM hackathons WHERE ($1 = '' OR status = $1) AND (archived = false OR $2) ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, string(status), includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list hackathons: %w", err)
	}
	defer rows.Close()

	var hackathons []domain.Hackathon
	for rows.Next() {
		h, err := scanHackathon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hackathon: %w", err)
		}
		hackathons = append(hackathons, *h)
	}
	return hackathons, rows.Err()
}

// UpdateStatus compare-and-sets the hackathon status
func (r *PgHackathonRepository) UpdateStatus(ctx context.Context, id string, from, to domain.HackathonStatus) (bool, error) {
	query := `UPDATE hackathons SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	tag, err := r.db.Pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update hackathon status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Archive soft-deletes a hackathon; records are never physically removed
func (r *PgHackathonRepository) Archive(ctx context.Context, id string) error {
	query := `UPDATE hackathons SET archived = true, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to archive hackathon: %w", err)
	}
	return nil
}
