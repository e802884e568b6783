package postgres

import (
	"context"
	"fmt"
	"time"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
	"github.com/uptrace/bun"
)

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts"`

	ID               string                    `bun:"id,pk"`
	QuizID           string                    `bun:"quiz_id,notnull"`
	QuizTitle        string                    `bun:"quiz_title,notnull"`
	UserID           string                    `bun:"user_id,notnull"`
	SubmittedAt      time.Time                 `bun:"submitted_at,notnull"`
	TimeTakenSeconds *int                      `bun:"time_taken_seconds"`
	Answers          []domain.AnsweredQuestion `bun:"answers,type:jsonb,notnull"`
	Score            int                       `bun:"score,notnull"`
}

type attemptLockRow struct {
	bun.BaseModel `bun:"table:attempt_locks"`

	UserID    string `bun:"user_id,pk"`
	QuizID    string `bun:"quiz_id,pk"`
	AttemptID string `bun:"attempt_id,notnull"`
}

func (r attemptRow) toDomain() domain.Attempt {
	return domain.Attempt{
		ID:               r.ID,
		QuizID:           r.QuizID,
		QuizTitle:        r.QuizTitle,
		UserID:           r.UserID,
		SubmittedAt:      r.SubmittedAt,
		TimeTakenSeconds: r.TimeTakenSeconds,
		Answers:          r.Answers,
		Score:            r.Score,
	}
}

// AttemptStore persists attempts. With unique set, a lock row keyed by (user_id, quiz_id)
// is inserted in the same transaction so concurrent submissions cannot both succeed.
type AttemptStore struct {
	db     *bun.DB
	unique bool
}

var _ app.AttemptStore = (*AttemptStore)(nil)

func NewAttemptStore(db *bun.DB, unique bool) *AttemptStore {
	return &AttemptStore{db: db, unique: unique}
}

func (s *AttemptStore) Create(ctx context.Context, attempt domain.Attempt) error {
	row := &attemptRow{
		ID:               attempt.ID,
		QuizID:           attempt.QuizID,
		QuizTitle:        attempt.QuizTitle,
		UserID:           attempt.UserID,
		SubmittedAt:      attempt.SubmittedAt,
		TimeTakenSeconds: attempt.TimeTakenSeconds,
		Answers:          attempt.Answers,
		Score:            attempt.Score,
	}
	if !s.unique {
		if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		return nil
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return err
		}
		lock := &attemptLockRow{UserID: attempt.UserID, QuizID: attempt.QuizID, AttemptID: attempt.ID}
		_, err := tx.NewInsert().Model(lock).Exec(ctx)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAttempt
		}
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) FindByID(ctx context.Context, id string) (domain.Attempt, error) {
	var row attemptRow
	if err := s.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		if isNoRows(err) {
			return domain.Attempt{}, domain.NotFound("attempt", id)
		}
		return domain.Attempt{}, fmt.Errorf("find attempt %s: %w", id, err)
	}
	return row.toDomain(), nil
}

func (s *AttemptStore) FindByUserAndQuiz(ctx context.Context, userID, quizID string) (domain.Attempt, error) {
	var row attemptRow
	err := s.db.NewSelect().Model(&row).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Order("submitted_at DESC", "id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return domain.Attempt{}, domain.NotFound("attempt", "")
		}
		return domain.Attempt{}, fmt.Errorf("find attempt: %w", err)
	}
	return row.toDomain(), nil
}

func (s *AttemptStore) FindByUser(ctx context.Context, userID string) ([]domain.Attempt, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("user_id = ?", userID)
	})
}

func (s *AttemptStore) FindByQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("quiz_id = ?", quizID)
	})
}

func (s *AttemptStore) List(ctx context.Context) ([]domain.Attempt, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery { return q })
}

func (s *AttemptStore) list(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]domain.Attempt, error) {
	var rows []attemptRow
	q := filter(s.db.NewSelect().Model(&rows)).Order("submitted_at ASC", "id ASC")
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	out := make([]domain.Attempt, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
