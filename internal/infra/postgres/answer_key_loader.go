package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mathfalta-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AnswerKeyLoader loads answer keys of live quizzes straight from the quizzes table.
type AnswerKeyLoader struct {
	pool *pgxpool.Pool
}

func NewAnswerKeyLoader(pool *pgxpool.Pool) *AnswerKeyLoader {
	return &AnswerKeyLoader{pool: pool}
}

func (l *AnswerKeyLoader) LoadAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	var (
		title, grade string
		raw          []byte
	)
	err := l.pool.QueryRow(ctx,
		`SELECT title, grade, questions FROM quizzes WHERE id=$1 AND NOT is_deleted`, quizID,
	).Scan(&title, &grade, &raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.AnswerKey{}, domain.NotFound("quiz", quizID)
		}
		return domain.AnswerKey{}, fmt.Errorf("load answer key: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return domain.AnswerKey{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	quiz := domain.Quiz{ID: quizID, Title: title, Grade: grade, Questions: questions}
	return quiz.AnswerKey(), nil
}
