package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hackhub/internal/domain"
	"hackhub/pkg/database"
)

type PgSubmissionRepository struct {
	db *database.PostgresDB
}

func NewSubmissionRepository(db *database.PostgresDB) *PgSubmissionRepository {
	return &PgSubmissionRepository{db: db}
}

const submissionColumns = `
	id, team_id, round_id, version_number,
	COALESCE(zip_url, ''), COALESCE(github_link, ''), COALESCE(video_url, ''),
	COALESCE(description, ''), COALESCE(file_size_mb, 0), is_final, submitted_at
`

func scanSubmission(row pgx.Row) (*domain.Submission, error) {
	var s domain.Submission
	err := row.Scan(
		&s.ID,
		&s.TeamID,
		&s.RoundID,
		&s.VersionNumber,
		&s.ZipURL,
		&s.GithubLink,
		&s.VideoURL,
		&s.Description,
		&s.FileSizeMB,
		&s.IsFinal,
		&s.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateVersioned inserts the next submission version for (team, round).
// The advisory transaction lock serializes concurrent submissions so two
// requests can never draw the same version number or both stay final.
func (r *PgSubmissionRepository) CreateVersioned(ctx context.Context, s *domain.Submission) error {
	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`SELECT pg_advisory_xact_lock(hashtext($1 || ':' || $2))`,
			s.TeamID, s.RoundID); err != nil {
			return fmt.Errorf("failed to take submission lock: %w", err)
		}

		var maxVersion int
		if err := tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(version_number), 0)
			FROM submissions
			WHERE team_id = $1 AND round_id = $2
		`, s.TeamID, s.RoundID).Scan(&maxVersion); err != nil {
			return fmt.Errorf("failed to get max version: %w", err)
		}
		s.VersionNumber = maxVersion + 1

		if _, err := tx.Exec(ctx, `
			UPDATE submissions
			SET is_final = false
			WHERE team_id = $1 AND round_id = $2 AND is_final = true
		`, s.TeamID, s.RoundID); err != nil {
			return fmt.Errorf("failed to demote prior final submission: %w", err)
		}

		s.IsFinal = true
		err := tx.QueryRow(ctx, `
			INSERT INTO submissions (
				id, team_id, round_id, version_number,
				zip_url, github_link, video_url, description, file_size_mb,
				is_final
			)
			VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, true)
			RETURNING submitted_at
		`,
			s.ID, s.TeamID, s.RoundID, s.VersionNumber,
			s.ZipURL, s.GithubLink, s.VideoURL, s.Description, s.FileSizeMB,
		).Scan(&s.SubmittedAt)
		if err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		return nil
	})
}

// GetByID gets a submission by ID; returns (nil, nil) when missing
func (r *PgSubmissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	s, err := scanSubmission(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return s, nil
}

// GetFinal gets the team's final submission for a round; (nil, nil) when
// the team has not submitted
func (r *PgSubmissionRepository) GetFinal(ctx context.Context, teamID, roundID string) (*domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE team_id = $1 AND round_id = $2 AND is_final = true`

	s, err := scanSubmission(r.db.Pool.QueryRow(ctx, query, teamID, roundID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get final submission: %w", err)
	}
	return s, nil
}

// ListByTeamRound lists the team's submission history, newest version first
func (r *PgSubmissionRepository) ListByTeamRound(ctx context.Context, teamID, roundID string) ([]domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE team_id = $1 AND round_id = $2 ORDER BY version_number DESC`
	return r.listSubmissions(ctx, query, teamID, roundID)
}

// ListFinalByRound lists every team's final submission for the round
func (r *PgSubmissionRepository) ListFinalByRound(ctx context.Context, roundID string) ([]domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE round_id = $1 AND is_final = true`
	return r.listSubmissions(ctx, query, roundID)
}

func (r *PgSubmissionRepository) listSubmissions(ctx context.Context, query string, args ...interface{}) ([]domain.Submission, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		submissions = append(submissions, *s)
	}
	return submissions, rows.Err()
}
