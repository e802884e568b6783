package memory

import (
	"context"
	"sync"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore.
// With unique set, the (user, quiz) check and the insert happen under one lock.
type AttemptStore struct {
	unique bool

	mu       sync.RWMutex
	attempts []domain.Attempt
	byID     map[string]int
	byPair   map[pairKey]struct{}
}

type pairKey struct {
	userID string
	quizID string
}

var _ app.AttemptStore = (*AttemptStore)(nil)

func NewAttemptStore(unique bool) *AttemptStore {
	return &AttemptStore{
		unique: unique,
		byID:   make(map[string]int),
		byPair: make(map[pairKey]struct{}),
	}
}

func (s *AttemptStore) Create(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{userID: attempt.UserID, quizID: attempt.QuizID}
	if _, exists := s.byPair[key]; exists && s.unique {
		return domain.ErrDuplicateAttempt
	}
	if _, exists := s.byID[attempt.ID]; exists {
		return domain.NewValidationError("id", attempt.ID, "attempt already exists")
	}
	s.byPair[key] = struct{}{}
	s.byID[attempt.ID] = len(s.attempts)
	s.attempts = append(s.attempts, cloneAttempt(attempt))
	return nil
}

func (s *AttemptStore) FindByID(_ context.Context, id string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return domain.Attempt{}, domain.NotFound("attempt", id)
	}
	return cloneAttempt(s.attempts[i]), nil
}

func (s *AttemptStore) FindByUserAndQuiz(_ context.Context, userID, quizID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.attempts) - 1; i >= 0; i-- {
		if a := s.attempts[i]; a.UserID == userID && a.QuizID == quizID {
			return cloneAttempt(a), nil
		}
	}
	return domain.Attempt{}, domain.NotFound("attempt", "")
}

func (s *AttemptStore) FindByUser(_ context.Context, userID string) ([]domain.Attempt, error) {
	return s.filter(func(a domain.Attempt) bool { return a.UserID == userID }), nil
}

func (s *AttemptStore) FindByQuiz(_ context.Context, quizID string) ([]domain.Attempt, error) {
	return s.filter(func(a domain.Attempt) bool { return a.QuizID == quizID }), nil
}

func (s *AttemptStore) List(_ context.Context) ([]domain.Attempt, error) {
	return s.filter(func(domain.Attempt) bool { return true }), nil
}

func (s *AttemptStore) filter(keep func(domain.Attempt) bool) []domain.Attempt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Attempt, 0)
	for _, a := range s.attempts {
		if keep(a) {
			out = append(out, cloneAttempt(a))
		}
	}
	return out
}

func cloneAttempt(a domain.Attempt) domain.Attempt {
	a.Answers = append([]domain.AnsweredQuestion(nil), a.Answers...)
	if a.TimeTakenSeconds != nil {
		t := *a.TimeTakenSeconds
		a.TimeTakenSeconds = &t
	}
	return a
}
