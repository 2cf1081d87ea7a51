package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-prep/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListAll retrieves the whole bank in its stored order.
func (r *QuestionRepository) ListAll(ctx context.Context) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, domain, subdomain, question, options, correct, explanation, wrong_explanations
		 FROM questions
		 ORDER BY position, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Domain, &q.Subdomain, &q.Question, &q.Options, &q.Correct, &q.Explanation, &q.WrongExplanations); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// ReplaceAll upserts questions keeping their slice order and deletes any
// stored question not in the slice, in one transaction.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	ids := make([]int, 0, len(questions))
	for i, q := range questions {
		wrong := q.WrongExplanations
		if wrong == nil {
			wrong = map[int]string{}
		}
		batch.Queue(
			`INSERT INTO questions (id, position, domain, subdomain, question, options, correct, explanation, wrong_explanations)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id) DO UPDATE
			 SET position = EXCLUDED.position,
			     domain = EXCLUDED.domain,
			     subdomain = EXCLUDED.subdomain,
			     question = EXCLUDED.question,
			     options = EXCLUDED.options,
			     correct = EXCLUDED.correct,
			     explanation = EXCLUDED.explanation,
			     wrong_explanations = EXCLUDED.wrong_explanations,
			     updated_at = NOW()`,
			q.ID, i, q.Domain, q.Subdomain, q.Question, q.Options, q.Correct, q.Explanation, wrong,
		)
		ids = append(ids, q.ID)
	}
	batch.Queue(`DELETE FROM questions WHERE NOT (id = ANY($1::int[]))`, ids)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert questions: %w", err)
	}
	return tx.Commit(ctx)
}

// Count returns the number of stored questions.
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n)
	return n, err
}
