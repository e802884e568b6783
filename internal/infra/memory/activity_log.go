package memory

import (
	"context"
	"sync"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
)

// ActivityLog is an in-memory implementation of app.ActivityLog.
type ActivityLog struct {
	mu         sync.RWMutex
	activities []domain.Activity
}

var _ app.ActivityLog = (*ActivityLog)(nil)

func NewActivityLog() *ActivityLog {
	return &ActivityLog{}
}

func (l *ActivityLog) Record(_ context.Context, activity domain.Activity) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activities = append(l.activities, activity)
	return nil
}

// Latest returns the user's most recent activities, newest first.
func (l *ActivityLog) Latest(_ context.Context, userID string, limit int) ([]domain.Activity, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Activity, 0)
	for i := len(l.activities) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if a := l.activities[i]; a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (l *ActivityLog) CountDistinct(_ context.Context, userID string, typ domain.ActivityType) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, a := range l.activities {
		if a.UserID == userID && a.Type == typ {
			seen[a.ActivityID] = struct{}{}
		}
	}
	return len(seen), nil
}
