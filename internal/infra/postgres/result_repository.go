package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"iq-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultRepository persists completed submissions and serves the dashboard
// read path.
type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func (r *ResultRepository) SaveResult(ctx context.Context, submission domain.TestSubmission) error {
	answers, err := json.Marshal(submission.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO results (name, score, total_questions, iq_score, percentage, time_spent, time_expired_count, answers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)`,
		submission.Name, submission.Score, submission.TotalQuestions, submission.IQScore,
		submission.Percentage, submission.TimeSpent, submission.TimeExpiredCount, answers,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// RecentResults returns up to limit records ordered by insertion time descending.
func (r *ResultRepository) RecentResults(ctx context.Context, limit int) ([]domain.ResultRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, score, total_questions, iq_score, percentage, time_spent, time_expired_count, answers, created_at
		FROM results
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var records []domain.ResultRecord
	for rows.Next() {
		var rec domain.ResultRecord
		var answers []byte
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Score, &rec.TotalQuestions, &rec.IQScore,
			&rec.Percentage, &rec.TimeSpent, &rec.TimeExpiredCount, &answers, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal(answers, &rec.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return records, nil
}
