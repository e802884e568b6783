package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mathfalta-service/internal/domain"
)

func TestAnswerKeyCacheCaches(t *testing.T) {
	loader := &countingLoader{AnswerKeyLoader: NewStoreKeyLoader(NewQuizStore(sampleQuiz()))}
	cache := NewAnswerKeyCache(loader, time.Minute)

	key, err := cache.GetAnswerKey(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if key.Answers["q1"] != "B" || key.Title != "Fractions" {
		t.Fatalf("unexpected key: %+v", key)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.GetAnswerKey(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get key 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestAnswerKeyCacheExpiresAndInvalidates(t *testing.T) {
	loader := &countingLoader{AnswerKeyLoader: NewStoreKeyLoader(NewQuizStore(sampleQuiz()))}
	cache := NewAnswerKeyCache(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }
	ctx := context.Background()

	_, _ = cache.GetAnswerKey(ctx, "quiz-1")
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetAnswerKey(ctx, "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}

	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.GetAnswerKey(ctx, "quiz-1")
	if loader.calls != 3 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls)
	}
}

func TestAnswerKeyCacheDropsFillRacingInvalidate(t *testing.T) {
	store := NewQuizStore(sampleQuiz())
	loader := newGatedLoader(NewStoreKeyLoader(store))
	cache := NewAnswerKeyCache(loader, time.Minute)
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

	key, err := cache.GetAnswerKey(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if key.Answers["q1"] != "A" {
		t.Fatalf("expected edited answer A after invalidate, got %q", key.Answers["q1"])
	}
}

func TestAnswerKeyCacheHidesMutation(t *testing.T) {
	cache := NewAnswerKeyCache(NewStoreKeyLoader(NewQuizStore(sampleQuiz())), time.Minute)
	key, _ := cache.GetAnswerKey(context.Background(), "quiz-1")
	key.Answers["q1"] = "D"

	again, _ := cache.GetAnswerKey(context.Background(), "quiz-1")
	if again.Answers["q1"] != "B" {
		t.Fatalf("cached key was mutated: %+v", again)
	}
}

func TestStoreKeyLoaderSkipsDeletedQuizzes(t *testing.T) {
	quiz := sampleQuiz()
	quiz.IsDeleted = true
	loader := NewStoreKeyLoader(NewQuizStore(quiz))

	_, err := loader.LoadAnswerKey(context.Background(), "quiz-1")
	if !errors.Is(err, domain.ErrNotFound) {
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
