package postgres

import (
	"context"
	"fmt"
	"time"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
	"github.com/uptrace/bun"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID        string            `bun:"id,pk"`
	Title     string            `bun:"title,notnull"`
	Grade     string            `bun:"grade,notnull"`
	Questions []domain.Question `bun:"questions,type:jsonb,notnull"`
	IsDeleted bool              `bun:"is_deleted,notnull"`
	DeletedAt *time.Time        `bun:"deleted_at"`
	CreatedAt time.Time         `bun:"created_at,notnull"`
	UpdatedAt time.Time         `bun:"updated_at,notnull"`
}

func toQuizRow(q domain.Quiz) *quizRow {
	return &quizRow{
		ID:        q.ID,
		Title:     q.Title,
		Grade:     q.Grade,
		Questions: q.Questions,
		IsDeleted: q.IsDeleted,
		DeletedAt: q.DeletedAt,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

func (r quizRow) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:        r.ID,
		Title:     r.Title,
		Grade:     r.Grade,
		Questions: r.Questions,
		IsDeleted: r.IsDeleted,
		DeletedAt: r.DeletedAt,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// QuizStore persists quizzes in the quizzes table; questions live in a jsonb column.
type QuizStore struct {
	db *bun.DB
}

var _ app.QuizStore = (*QuizStore)(nil)

func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) FindByID(ctx context.Context, id string, opts app.FindOptions) (domain.Quiz, error) {
	var row quizRow
	q := s.db.NewSelect().Model(&row).Where("id = ?", id)
	if !opts.IncludeDeleted {
		q = q.Where("NOT is_deleted")
	}
	if err := q.Scan(ctx); err != nil {
		if isNoRows(err) {
			return domain.Quiz{}, domain.NotFound("quiz", id)
		}
		return domain.Quiz{}, fmt.Errorf("find quiz %s: %w", id, err)
	}
	return row.toDomain(), nil
}

func (s *QuizStore) FindByGrade(ctx context.Context, grade string) ([]domain.Quiz, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("grade = ?", grade).Where("NOT is_deleted")
	})
}

func (s *QuizStore) List(ctx context.Context, opts app.ListOptions) ([]domain.Quiz, error) {
	return s.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("is_deleted = ?", opts.Deleted)
	})
}

func (s *QuizStore) Create(ctx context.Context, quiz domain.Quiz) error {
	if _, err := s.db.NewInsert().Model(toQuizRow(quiz)).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.NewValidationError("id", quiz.ID, "quiz already exists")
		}
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) Update(ctx context.Context, quiz domain.Quiz) error {
	res, err := s.db.NewUpdate().Model(toQuizRow(quiz)).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz %s: %w", quiz.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("quiz", quiz.ID)
	}
	return nil
}

func (s *QuizStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*quizRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete quiz %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("quiz", id)
	}
	return nil
}

func (s *QuizStore) Count(ctx context.Context) (int, error) {
	n, err := s.db.NewSelect().Model((*quizRow)(nil)).Where("NOT is_deleted").Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}
	return n, nil
}

func (s *QuizStore) list(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]domain.Quiz, error) {
	var rows []quizRow
	q := filter(s.db.NewSelect().Model(&rows)).Order("created_at ASC", "id ASC")
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	out := make([]domain.Quiz, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
