package postgres

import (
	"context"
	"fmt"
	"time"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
	"github.com/uptrace/bun"
)

type userRow struct {
	bun.BaseModel `bun:"table:users"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	Email     string    `bun:"email,notnull"`
	Grade     string    `bun:"grade,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{ID: r.ID, Name: r.Name, Email: r.Email, Grade: r.Grade, CreatedAt: r.CreatedAt}
}

// UserDirectory reads students from the users table, oldest first.
type UserDirectory struct {
	db *bun.DB
}

var _ app.UserDirectory = (*UserDirectory)(nil)

func NewUserDirectory(db *bun.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

func (d *UserDirectory) FindByID(ctx context.Context, id string) (domain.User, error) {
	var row userRow
	if err := d.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx); err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.NotFound("user", id)
		}
		return domain.User{}, fmt.Errorf("find user %s: %w", id, err)
	}
	return row.toDomain(), nil
}

func (d *UserDirectory) FindByGrade(ctx context.Context, grade string) ([]domain.User, error) {
	return d.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("grade = ?", grade)
	})
}

func (d *UserDirectory) List(ctx context.Context) ([]domain.User, error) {
	return d.list(ctx, func(q *bun.SelectQuery) *bun.SelectQuery { return q })
}

func (d *UserDirectory) Count(ctx context.Context) (int, error) {
	n, err := d.db.NewSelect().Model((*userRow)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (d *UserDirectory) list(ctx context.Context, filter func(*bun.SelectQuery) *bun.SelectQuery) ([]domain.User, error) {
	var rows []userRow
	if err := filter(d.db.NewSelect().Model(&rows)).Order("created_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// CreateUser inserts a user; the directory itself is read-only for the services.
func (d *UserDirectory) CreateUser(ctx context.Context, user domain.User) error {
	row := &userRow{ID: user.ID, Name: user.Name, Email: user.Email, Grade: user.Grade, CreatedAt: user.CreatedAt}
	if _, err := d.db.NewInsert().Model(row).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// LessonCounter counts live rows of the lessons table.
type LessonCounter struct {
	db *bun.DB
}

var _ app.LessonCounter = (*LessonCounter)(nil)

func NewLessonCounter(db *bun.DB) *LessonCounter {
	return &LessonCounter{db: db}
}

func (c *LessonCounter) CountLessons(ctx context.Context) (int, error) {
	var n int
	err := c.db.NewSelect().
		TableExpr("lessons").
		ColumnExpr("count(*)").
		Where("NOT is_deleted").
		Scan(ctx, &n)
	if err != nil {
		return 0, fmt.Errorf("count lessons: %w", err)
	}
	return n, nil
}
