package memory

import (
	"context"
	"sync"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore. Listings keep insertion order.
type QuizStore struct {
	mu      sync.RWMutex
	order   []string
	quizzes map[string]domain.Quiz
}

var _ app.QuizStore = (*QuizStore)(nil)

func NewQuizStore(seed ...domain.Quiz) *QuizStore {
	s := &QuizStore{quizzes: make(map[string]domain.Quiz)}
	for _, quiz := range seed {
		s.order = append(s.order, quiz.ID)
		s.quizzes[quiz.ID] = cloneQuiz(quiz)
	}
	return s
}

func (s *QuizStore) FindByID(_ context.Context, id string, opts app.FindOptions) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[id]
	if !ok || (quiz.IsDeleted && !opts.IncludeDeleted) {
		return domain.Quiz{}, domain.NotFound("quiz", id)
	}
	return cloneQuiz(quiz), nil
}

func (s *QuizStore) FindByGrade(_ context.Context, grade string) ([]domain.Quiz, error) {
	return s.filter(func(q domain.Quiz) bool { return !q.IsDeleted && q.Grade == grade }), nil
}

func (s *QuizStore) List(_ context.Context, opts app.ListOptions) ([]domain.Quiz, error) {
	return s.filter(func(q domain.Quiz) bool { return q.IsDeleted == opts.Deleted }), nil
}

func (s *QuizStore) Create(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.quizzes[quiz.ID]; exists {
		return domain.NewValidationError("id", quiz.ID, "quiz already exists")
	}
	s.order = append(s.order, quiz.ID)
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *QuizStore) Update(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.quizzes[quiz.ID]; !exists {
		return domain.NotFound("quiz", quiz.ID)
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *QuizStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.quizzes[id]; !exists {
		return domain.NotFound("quiz", id)
	}
	delete(s.quizzes, id)
	for i, qid := range s.order {
		if qid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *QuizStore) Count(_ context.Context) (int, error) {
	return len(s.filter(func(q domain.Quiz) bool { return !q.IsDeleted })), nil
}

func (s *QuizStore) filter(keep func(domain.Quiz) bool) []domain.Quiz {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(s.order))
	for _, id := range s.order {
		if quiz := s.quizzes[id]; keep(quiz) {
			out = append(out, cloneQuiz(quiz))
		}
	}
	return out
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Options = append([]string(nil), question.Options...)
		if question.Image != nil {
			img := *question.Image
			question.Image = &img
		}
		questions[i] = question
	}
	q.Questions = questions
	if q.DeletedAt != nil {
		at := *q.DeletedAt
		q.DeletedAt = &at
	}
	return q
}
