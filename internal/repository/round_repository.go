package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hackhub/internal/domain"
	"hackhub/pkg/database"
)

type PgRoundRepository struct {
	db *database.PostgresDB
}

func NewRoundRepository(db *database.PostgresDB) *PgRoundRepository {
	return &PgRoundRepository{db: db}
}

const roundColumns = `
	id, hackathon_id, round_number, status, start_date, end_date,
	is_elimination, elimination_threshold, weightage_percentage,
	is_scoring_finalized, allow_zip, allow_github, allow_video,
	allow_description, max_file_size_mb, created_at, updated_at
`

func scanRound(row pgx.Row) (*domain.Round, error) {
	var rd domain.Round
	err := row.Scan(
		&rd.ID,
		&rd.HackathonID,
		&rd.RoundNumber,
		&rd.Status,
		&rd.StartDate,
		&rd.EndDate,
		&rd.IsElimination,
		&rd.EliminationThreshold,
		&rd.WeightagePercentage,
		&rd.IsScoringFinalized,
		&rd.AllowZip,
		&rd.AllowGithub,
		&rd.AllowVideo,
		&rd.AllowDescription,
		&rd.MaxFileSizeMB,
		&rd.CreatedAt,
		&rd.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rd, nil
}

// Create inserts a new round; the unique (hackathon_id, round_number) index
// rejects duplicate numbers under concurrent creation
func (r *PgRoundRepository) Create(ctx context.Context, rd *domain.Round) error {
	query := `
		INSERT INTO rounds (
			id, hackathon_id, round_number, status, start_date, end_date,
			is_elimination, elimination_threshold, weightage_percentage,
			allow_zip, allow_github, allow_video, allow_description,
			max_file_size_mb
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		rd.ID,
		rd.HackathonID,
		rd.RoundNumber,
		rd.Status,
		rd.StartDate,
		rd.EndDate,
		rd.IsElimination,
		rd.EliminationThreshold,
		rd.WeightagePercentage,
		rd.AllowZip,
		rd.AllowGithub,
		rd.AllowVideo,
		rd.AllowDescription,
		rd.MaxFileSizeMB,
	).Scan(&rd.CreatedAt, &rd.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

// GetByID gets a round by ID; returns (nil, nil) when missing
func (r *PgRoundRepository) GetByID(ctx context.Context, id string) (*domain.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`

	rd, err := scanRound(r.db.Pool.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return rd, nil
}

// ListByHackathon lists rounds in round-number order
func (r *PgRoundRepository) ListByHackathon(ctx context.Context, hackathonID string) ([]domain.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE hackathon_id = $1 ORDER BY round_number ASC`

	rows, err := r.db.Pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []domain.Round
	for rows.Next() {
		rd, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, *rd)
	}
	return rounds, rows.Err()
}

// MaxRoundNumber returns the highest round number for the hackathon, 0 when
// no rounds exist
func (r *PgRoundRepository) MaxRoundNumber(ctx context.Context, hackathonID string) (int, error) {
	var max int
	query := `SELECT COALESCE(MAX(round_number), 0) FROM rounds WHERE hackathon_id = $1`

	if err := r.db.Pool.QueryRow(ctx, query, hackathonID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max round number: %w", err)
	}
	return max, nil
}

// UpdateStatus compare-and-sets the round status
func (r *PgRoundRepository) UpdateStatus(ctx context.Context, id string, from, to domain.RoundStatus) (bool, error) {
	query := `UPDATE rounds SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`

	tag, err := r.db.Pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update round status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// FinalizeRound flips the finalization flag, closes the round and
// eliminates the listed teams in one transaction. The compare-and-set on
// is_scoring_finalized makes a concurrent second finalization lose cleanly.
func (r *PgRoundRepository) FinalizeRound(ctx context.Context, roundID string, eliminatedTeamIDs []string) (bool, error) {
	won := false
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE rounds
			SET is_scoring_finalized = true, status = $2, updated_at = NOW()
			WHERE id = $1 AND is_scoring_finalized = false
		`, roundID, domain.RoundStatusClosed)
		if err != nil {
			return fmt.Errorf("failed to finalize round: %w", err)
		}
		if tag.RowsAffected() == 0 {
			// already finalized by another caller; nothing else may run
			return nil
		}
		won = true

		if len(eliminatedTeamIDs) == 0 {
			return nil
		}
		if _, err := tx.Exec(ctx, `
			UPDATE teams
			SET status = $2, updated_at = NOW()
			WHERE id = ANY($1) AND status = $3
		`, eliminatedTeamIDs, domain.TeamStatusEliminated, domain.TeamStatusApproved); err != nil {
			return fmt.Errorf("failed to eliminate teams: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

// JudgingSummaries reports per-round judging progress for a hackathon
func (r *PgRoundRepository) JudgingSummaries(ctx context.Context, hackathonID string) ([]domain.RoundJudgingSummary, error) {
	query := `
		SELECT
			r.id,
			r.round_number,
			r.status,
			r.is_scoring_finalized,
			(SELECT COUNT(*) FROM teams t
				WHERE t.hackathon_id = r.hackathon_id AND t.status = 'approved') AS teams_expected,
			(SELECT COUNT(*) FROM submissions s
				WHERE s.round_id = r.id AND s.is_final = true) AS submissions_received,
			(SELECT COUNT(DISTINCT s.id) FROM submissions s
				JOIN scores sc ON sc.submission_id = s.id
				WHERE s.round_id = r.id AND s.is_final = true) AS submissions_scored
		FROM rounds r
		WHERE r.hackathon_id = $1
		ORDER BY r.round_number ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, hackathonID)
	if err != nil {
		return nil, fmt.Errorf("failed to get judging summaries: %w", err)
	}
	defer rows.Close()

	var summaries []domain.RoundJudgingSummary
	for rows.Next() {
		var s domain.RoundJudgingSummary
		err := rows.Scan(
			&s.RoundID,
			&s.RoundNumber,
			&s.Status,
			&s.IsScoringFinalized,
			&s.TeamsExpected,
			&s.SubmissionsReceived,
			&s.SubmissionsScored,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan judging summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}
