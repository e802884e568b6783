package redis

import (
	"context"
	"testing"

	"mathfalta-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestActivityLogFeedIsCapped(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	log := NewActivityLog(newClient(mr), 3)
	ctx := context.Background()
	for _, id := range []string{"1", "2", "3", "4"} {
		err := log.Record(ctx, domain.Activity{ID: id, UserID: "u1", Type: domain.ActivityQuiz, ActivityID: "quiz-" + id})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	all, err := log.Latest(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(all) != 3 || all[0].ID != "4" || all[2].ID != "2" {
		t.Fatalf("unexpected feed: %+v", all)
	}
	two, _ := log.Latest(ctx, "u1", 2)
	if len(two) != 2 {
		t.Fatalf("expected two activities, got %d", len(two))
	}
}

func TestActivityLogCountsDistinctSubjects(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	log := NewActivityLog(newClient(mr), 10)
	ctx := context.Background()
	_ = log.Record(ctx, domain.Activity{ID: "1", UserID: "u1", Type: domain.ActivityLesson, ActivityID: "l1"})
	_ = log.Record(ctx, domain.Activity{ID: "2", UserID: "u1", Type: domain.ActivityLesson, ActivityID: "l1"})
	_ = log.Record(ctx, domain.Activity{ID: "3", UserID: "u1", Type: domain.ActivityLesson, ActivityID: "l2"})

	n, err := log.CountDistinct(ctx, "u1", domain.ActivityLesson)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected two distinct lessons, got %d", n)
	}
	if !mr.Exists("activity:u1:lesson") {
		t.Fatalf("expected subject set in redis")
	}
}
