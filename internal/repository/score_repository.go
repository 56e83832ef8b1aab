package repository

import (
	"context"
	"fmt"

	"hackhub/internal/domain"
	"hackhub/pkg/database"
)

type PgScoreRepository struct {
	db *database.PostgresDB
}

func NewScoreRepository(db *database.PostgresDB) *PgScoreRepository {
	return &PgScoreRepository{db: db}
}

// Upsert writes a judge's score for a submission. The unique
// (submission_id, judge_id) index turns re-scoring into an overwrite, never
// a duplicate.
func (r *PgScoreRepository) Upsert(ctx context.Context, s *domain.Score) error {
	query := `
		INSERT INTO scores (id, submission_id, judge_id, score, remarks)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (submission_id, judge_id) DO UPDATE SET
			score = EXCLUDED.score,
			remarks = EXCLUDED.remarks,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		s.ID, s.SubmissionID, s.JudgeID, s.Score, s.Remarks,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert score: %w", err)
	}
	return nil
}

// ListBySubmission lists all judge scores for a submission
func (r *PgScoreRepository) ListBySubmission(ctx context.Context, submissionID string) ([]domain.Score, error) {
	query := `
		SELECT id, submission_id, judge_id, score, COALESCE(remarks, ''), created_at, updated_at
		FROM scores
		WHERE submission_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.Score
	for rows.Next() {
		var s domain.Score
		if err := rows.Scan(&s.ID, &s.SubmissionID, &s.JudgeID, &s.Score, &s.Remarks, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// ScoresForRound returns all scores attached to final submissions of the
// round, keyed by submission ID
func (r *PgScoreRepository) ScoresForRound(ctx context.Context, roundID string) (map[string][]domain.Score, error) {
	query := `
		SELECT sc.id, sc.submission_id, sc.judge_id, sc.score, COALESCE(sc.remarks, ''), sc.created_at, sc.updated_at
		FROM scores sc
		JOIN submissions s ON s.id = sc.submission_id
		WHERE s.round_id = $1 AND s.is_final = true
	`

	rows, err := r.db.Pool.Query(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to get round scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string][]domain.Score)
	for rows.Next() {
		var s domain.Score
		if err := rows.Scan(&s.ID, &s.SubmissionID, &s.JudgeID, &s.Score, &s.Remarks, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores[s.SubmissionID] = append(scores[s.SubmissionID], s)
	}
	return scores, rows.Err()
}
