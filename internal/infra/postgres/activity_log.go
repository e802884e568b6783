package postgres

import (
	"context"
	"fmt"
	"time"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
	"github.com/uptrace/bun"
)

type activityRow struct {
	bun.BaseModel `bun:"table:activities"`

	ID          string              `bun:"id,pk"`
	UserID      string              `bun:"user_id,notnull"`
	Type        domain.ActivityType `bun:"activity_type,notnull"`
	ActivityID  string              `bun:"activity_id,notnull"`
	Description string              `bun:"description,notnull"`
	Score       *int                `bun:"score"`
	CreatedAt   time.Time           `bun:"created_at,notnull"`
}

// ActivityLog stores activities in the activities table.
type ActivityLog struct {
	db *bun.DB
}

var _ app.ActivityLog = (*ActivityLog)(nil)

func NewActivityLog(db *bun.DB) *ActivityLog {
	return &ActivityLog{db: db}
}

func (l *ActivityLog) Record(ctx context.Context, a domain.Activity) error {
	row := &activityRow{
		ID:          a.ID,
		UserID:      a.UserID,
		Type:        a.Type,
		ActivityID:  a.ActivityID,
		Description: a.Description,
		Score:       a.Score,
		CreatedAt:   a.CreatedAt,
	}
	if _, err := l.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (l *ActivityLog) Latest(ctx context.Context, userID string, limit int) ([]domain.Activity, error) {
	var rows []activityRow
	q := l.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Order("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("latest activities: %w", err)
	}
	out := make([]domain.Activity, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Activity{
			ID:          r.ID,
			UserID:      r.UserID,
			Type:        r.Type,
			ActivityID:  r.ActivityID,
			Description: r.Description,
			Score:       r.Score,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out, nil
}

func (l *ActivityLog) CountDistinct(ctx context.Context, userID string, typ domain.ActivityType) (int, error) {
	var n int
	err := l.db.NewSelect().
		Model((*activityRow)(nil)).
		ColumnExpr("count(DISTINCT activity_id)").
		Where("user_id = ?", userID).
		Where("activity_type = ?", typ).
		Scan(ctx, &n)
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return n, nil
}
