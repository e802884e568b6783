package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mathfalta-service/internal/domain"
	"mathfalta-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestAnswerKeyCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		AnswerKeyLoader: memory.NewStoreKeyLoader(memory.NewQuizStore(sampleQuiz())),
	}
	cache := NewAnswerKeyCache(newClient(mr), loader, time.Minute)

	key, err := cache.GetAnswerKey(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if got := mr.HGet("quiz:quiz-1:answers", "q2"); got != "C" {
		t.Fatalf("expected cached answer C, got %q", got)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := cache.GetAnswerKey(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get cached key: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Title != key.Title || cached.Grade != "6" || cached.Answers["q1"] != "B" {
		t.Fatalf("cached key differs: %+v", cached)
	}
}

func TestAnswerKeyCacheInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		AnswerKeyLoader: memory.NewStoreKeyLoader(memory.NewQuizStore(sampleQuiz())),
	}
	cache := NewAnswerKeyCache(newClient(mr), loader, time.Minute)
	ctx := context.Background()

	_, _ = cache.GetAnswerKey(ctx, "quiz-1")
	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:quiz-1:answers") || mr.Exists("quiz:quiz-1:meta") {
		t.Fatalf("expected redis keys to be removed")
	}
	_, _ = cache.GetAnswerKey(ctx, "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

func TestAnswerKeyCacheDropsFillRacingInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := memory.NewQuizStore(sampleQuiz())
	loader := newGatedLoader(memory.NewStoreKeyLoader(store))
	cache := NewAnswerKeyCache(newClient(mr), loader, time.Minute)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = cache.GetAnswerKey(ctx, "quiz-1")
	}()
	<-loader.loaded

	edited := sampleQuiz()
	edited.Questions[0].Answer = "A"
	if err := store.Update(ctx, edited); err != nil {
		t.Fatalf("update quiz: %v", err)
	}
	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(loader.release)
	<-done

	if mr.Exists("quiz:quiz-1:answers") {
		t.Fatalf("stale fill was written to redis")
	}
	key, err := cache.GetAnswerKey(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if key.Answers["q1"] != "A" {
		t.Fatalf("expected edited answer A after invalidate, got %q", key.Answers["q1"])
	}
	if got := mr.HGet("quiz:quiz-1:answers", "q1"); got != "A" {
		t.Fatalf("expected redis to hold A, got %q", got)
	}
}

func TestAnswerKeyCacheMissingQuiz(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewAnswerKeyCache(newClient(mr), memory.NewStoreKeyLoader(memory.NewQuizStore()), time.Minute)
	if _, err := cache.GetAnswerKey(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	AnswerKeyLoader
	calls int
}

func (l *countingLoader) LoadAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	l.calls++
	return l.AnswerKeyLoader.LoadAnswerKey(ctx, quizID)
}

// gatedLoader blocks its first load after reading, until release is closed.
type gatedLoader struct {
	AnswerKeyLoader
	loaded  chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedLoader(inner AnswerKeyLoader) *gatedLoader {
	return &gatedLoader{
		AnswerKeyLoader: inner,
		loaded:          make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (l *gatedLoader) LoadAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	key, err := l.AnswerKeyLoader.LoadAnswerKey(ctx, quizID)
	first := false
	l.once.Do(func() { first = true })
	if first {
		close(l.loaded)
		<-l.release
	}
	return key, err
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Fractions",
		Grade: "6",
		Questions: []domain.Question{
			{ID: "q1", Text: "1/2 + 1/4 = ?", Options: []string{"1/4", "3/4", "1", "2/6"}, Answer: "B"},
			{ID: "q2", Text: "2/3 of 9 = ?", Options: []string{"3", "4", "6", "9"}, Answer: "C"},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
