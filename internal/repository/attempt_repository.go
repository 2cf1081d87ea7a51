package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-prep/internal/model"
)

// AttemptRepository archives finalized exams.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

var attemptColumns = []string{
	"id", "taken_at", "score", "total", "percentage", "time_spent",
	"question_ids", "user_answers", "shuffled_options",
}

// CopyBatch bulk-inserts entries with COPY. Any duplicate id fails the
// whole batch.
func (r *AttemptRepository) CopyBatch(ctx context.Context, entries []model.ExamHistoryEntry) error {
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return err
		}
		rows = append(rows, []interface{}{
			id, e.Date, e.Score, e.Total, e.Percentage, e.TimeSpent,
			e.QuestionIDs, e.UserAnswers, e.ShuffledOptions,
		})
	}

	_, err := r.pool.CopyFrom(ctx, pgx.Identifier{"exam_attempts"}, attemptColumns, pgx.CopyFromRows(rows))
	return err
}

// Insert stores one entry, ignoring an already archived id.
func (r *AttemptRepository) Insert(ctx context.Context, e model.ExamHistoryEntry) error {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO exam_attempts (id, taken_at, score, total, percentage, time_spent, question_ids, user_answers, shuffled_options)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb)
		 ON CONFLICT (id) DO NOTHING`,
		id, e.Date, e.Score, e.Total, e.Percentage, e.TimeSpent, e.QuestionIDs, e.UserAnswers, e.ShuffledOptions,
	)
	return err
}
