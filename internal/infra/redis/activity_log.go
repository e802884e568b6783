package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ActivityLog keeps a capped per-user activity feed in Redis.
// Feed entries:      LPUSH activity:{userID} {json}
// Distinct subjects: SADD  activity:{userID}:{type} {activityID}
type ActivityLog struct {
	client     *redis.Client
	feedLength int64
}

var _ app.ActivityLog = (*ActivityLog)(nil)

func NewActivityLog(client *redis.Client, feedLength int) *ActivityLog {
	if feedLength <= 0 {
		feedLength = 50
	}
	return &ActivityLog{client: client, feedLength: int64(feedLength)}
}

func (l *ActivityLog) Record(ctx context.Context, activity domain.Activity) error {
	raw, err := json.Marshal(activity)
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}
	feedKey := l.feedKey(activity.UserID)
	pipe := l.client.TxPipeline()
	pipe.LPush(ctx, feedKey, raw)
	pipe.LTrim(ctx, feedKey, 0, l.feedLength-1)
	pipe.SAdd(ctx, l.subjectsKey(activity.UserID, activity.Type), activity.ActivityID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// Latest returns the user's most recent activities, newest first.
func (l *ActivityLog) Latest(ctx context.Context, userID string, limit int) ([]domain.Activity, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}
	items, err := l.client.LRange(ctx, l.feedKey(userID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity feed: %w", err)
	}
	out := make([]domain.Activity, 0, len(items))
	for _, item := range items {
		var activity domain.Activity
		if err := json.Unmarshal([]byte(item), &activity); err != nil {
			return nil, fmt.Errorf("unmarshal activity: %w", err)
		}
		out = append(out, activity)
	}
	return out, nil
}

func (l *ActivityLog) CountDistinct(ctx context.Context, userID string, typ domain.ActivityType) (int, error) {
	n, err := l.client.SCard(ctx, l.subjectsKey(userID, typ)).Result()
	if err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return int(n), nil
}

func (l *ActivityLog) feedKey(userID string) string {
	return "activity:" + userID
}

func (l *ActivityLog) subjectsKey(userID string, typ domain.ActivityType) string {
	return "activity:" + userID + ":" + string(typ)
}
