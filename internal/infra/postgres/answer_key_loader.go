package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizcraft-service/internal/domain"
)

// AnswerKeyLoader reads the quiz's current answer key straight from the
// quizzes JSONB on every call. This is the scoring hot path: no caching,
// so quiz edits are visible to in-flight sessions immediately.
type AnswerKeyLoader struct {
	pool *pgxpool.Pool
}

func NewAnswerKeyLoader(pool *pgxpool.Pool) *AnswerKeyLoader {
	return &AnswerKeyLoader{pool: pool}
}

func (l *AnswerKeyLoader) AnswerKey(ctx context.Context, quizID string) (map[string]domain.AnswerValue, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT questions FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load answer key: %w", err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions: %w", err)
	}
	key := make(map[string]domain.AnswerValue, len(questions))
	for _, q := range questions {
		key[q.ID] = q.Answer
	}
	return key, nil
}
