package app

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"mathfalta-service/internal/domain"
)

// LeaderboardFeed pushes per-grade leaderboards to subscribers whenever an attempt is committed.
type LeaderboardFeed struct {
	stats  *StatsService
	limit  int
	now    func() time.Time
	logger *log.Logger

	mu          sync.Mutex
	subscribers map[string]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardFeed(stats *StatsService, limit int) *LeaderboardFeed {
	return &LeaderboardFeed{
		stats:       stats,
		limit:       limit,
		now:         time.Now,
		logger:      log.New(os.Stderr, "", log.LstdFlags),
		subscribers: make(map[string]map[chan domain.Leaderboard]struct{}),
	}
}

// Subscribe returns a channel primed with the grade's current leaderboard.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *LeaderboardFeed) Subscribe(ctx context.Context, grade string) (<-chan domain.Leaderboard, func(), error) {
	if !domain.IsValidGrade(grade) {
		return nil, nil, domain.NewValidationError("grade", grade, "must be one of 5, 6, 7, 8, 9")
	}
	initial, err := f.snapshot(ctx, grade)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	f.mu.Lock()
	if f.subscribers[grade] == nil {
		f.subscribers[grade] = make(map[chan domain.Leaderboard]struct{})
	}
	f.subscribers[grade][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if subs, ok := f.subscribers[grade]; ok {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
			}
			if len(subs) == 0 {
				delete(f.subscribers, grade)
			}
		}
	}
	return ch, cancel, nil
}

// AttemptRecorded recomputes and broadcasts the grade's leaderboard.
func (f *LeaderboardFeed) AttemptRecorded(ctx context.Context, _ domain.Attempt, grade string) {
	f.mu.Lock()
	watched := len(f.subscribers[grade]) > 0
	f.mu.Unlock()
	if !watched {
		return
	}

	lb, err := f.snapshot(ctx, grade)
	if err != nil {
		f.logger.Printf("refresh leaderboard for grade %s: %v", grade, err)
		return
	}
	f.broadcast(grade, lb)
}

func (f *LeaderboardFeed) snapshot(ctx context.Context, grade string) (domain.Leaderboard, error) {
	entries, err := f.stats.GradeLeaderboard(ctx, grade, f.limit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Grade: grade, Entries: entries, UpdatedAt: f.now().UTC()}, nil
}

func (f *LeaderboardFeed) broadcast(grade string, lb domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[grade] {
		select {
		case ch <- lb:
		default:
			// Slow subscriber: drop its oldest snapshot so it only ever sees the latest.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}
