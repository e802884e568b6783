package app

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"mathfalta-service/internal/domain"

	"github.com/google/uuid"
)

// sideEffectTimeout bounds post-commit work so it cannot hold up a submission.
const sideEffectTimeout = 2 * time.Second

// QuizService contains the student-facing quiz use cases.
type QuizService struct {
	defs       *QuizDefinitions
	attempts   AttemptStore
	users      UserDirectory
	activities ActivitySink
	listeners  []AttemptListener
	logger     *log.Logger
	now        func() time.Time
	newID      func() string
}

func NewQuizService(defs *QuizDefinitions, attempts AttemptStore, users UserDirectory, activities ActivitySink) *QuizService {
	return &QuizService{
		defs:       defs,
		attempts:   attempts,
		users:      users,
		activities: activities,
		logger:     log.New(os.Stderr, "", log.LstdFlags),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// WithLogger replaces the logger used for swallowed side-effect failures.
func (s *QuizService) WithLogger(logger *log.Logger) *QuizService {
	s.logger = logger
	return s
}

// WithClock is used by tests for deterministic timestamps.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// AddListener registers a post-commit attempt listener.
func (s *QuizService) AddListener(l AttemptListener) {
	s.listeners = append(s.listeners, l)
}

// GetQuiz returns a live quiz for a student to take. Answers are never included.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string, user domain.User) (domain.QuizView, error) {
	if quizID == "" {
		return domain.QuizView{}, domain.NewValidationError("quizId", "", "is required")
	}
	view, err := s.defs.ForDisplay(ctx, quizID)
	if err != nil {
		return domain.QuizView{}, err
	}
	if view.Grade != user.Grade {
		return domain.QuizView{}, domain.ErrForbidden
	}
	return view, nil
}

// QuizzesForUser lists the live quizzes of the user's grade.
func (s *QuizService) QuizzesForUser(ctx context.Context, user domain.User) ([]domain.QuizView, error) {
	return s.defs.ByGrade(ctx, user.Grade)
}

// SubmitAttempt grades a submission and stores the resulting attempt.
// Nothing is stored when grading fails. Activity and listener failures are
// logged and never fail the submission.
func (s *QuizService) SubmitAttempt(ctx context.Context, sub domain.Submission) (domain.Attempt, error) {
	if sub.QuizID == "" {
		return domain.Attempt{}, domain.NewValidationError("quizId", "", "is required")
	}
	if sub.UserID == "" {
		return domain.Attempt{}, domain.NewValidationError("userId", "", "is required")
	}
	if sub.TimeTakenSeconds != nil && *sub.TimeTakenSeconds < 0 {
		return domain.Attempt{}, domain.NewValidationError("timeTaken", "", "must not be negative")
	}

	key, err := s.defs.ForGrading(ctx, sub.QuizID)
	if err != nil {
		return domain.Attempt{}, err
	}
	user, err := s.users.FindByID(ctx, sub.UserID)
	if err != nil {
		return domain.Attempt{}, err
	}
	if user.Grade != key.Grade {
		return domain.Attempt{}, domain.ErrForbidden
	}

	attempt, err := Grade(key, sub.Answers)
	if err != nil {
		return domain.Attempt{}, err
	}
	attempt.ID = s.newID()
	attempt.UserID = sub.UserID
	attempt.SubmittedAt = s.now().UTC()
	attempt.TimeTakenSeconds = sub.TimeTakenSeconds

	if err := s.attempts.Create(ctx, attempt); err != nil {
		return domain.Attempt{}, err
	}

	s.afterCommit(ctx, attempt, key.Grade)
	return attempt, nil
}

func (s *QuizService) afterCommit(ctx context.Context, attempt domain.Attempt, grade string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	score := attempt.Score
	activity := domain.Activity{
		ID:          s.newID(),
		UserID:      attempt.UserID,
		Type:        domain.ActivityQuiz,
		ActivityID:  attempt.QuizID,
		Description: "completed quiz: " + attempt.QuizTitle,
		Score:       &score,
		CreatedAt:   attempt.SubmittedAt,
	}
	if err := s.activities.Record(ctx, activity); err != nil {
		s.logger.Printf("record activity for attempt %s: %v", attempt.ID, err)
	}
	for _, l := range s.listeners {
		l.AttemptRecorded(ctx, attempt, grade)
	}
}

// AttemptFor returns the user's latest attempt of a quiz.
func (s *QuizService) AttemptFor(ctx context.Context, userID, quizID string) (domain.Attempt, error) {
	return s.attempts.FindByUserAndQuiz(ctx, userID, quizID)
}

// AttemptsForUser lists every attempt of a user.
func (s *QuizService) AttemptsForUser(ctx context.Context, userID string) ([]domain.Attempt, error) {
	return s.attempts.FindByUser(ctx, userID)
}

// Review builds the study view of one of the user's attempts.
// The quiz may have been deleted since; the review then carries only the title snapshot.
func (s *QuizService) Review(ctx context.Context, attemptID, userID string) (domain.Review, error) {
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return domain.Review{}, err
	}
	if attempt.UserID != userID {
		return domain.Review{}, domain.NotFound("attempt", attemptID)
	}
	return s.review(ctx, attempt)
}

// ReviewAttempt builds the study view of any attempt, for admins.
func (s *QuizService) ReviewAttempt(ctx context.Context, attemptID string) (domain.Review, error) {
	attempt, err := s.attempts.FindByID(ctx, attemptID)
	if err != nil {
		return domain.Review{}, err
	}
	return s.review(ctx, attempt)
}

func (s *QuizService) review(ctx context.Context, attempt domain.Attempt) (domain.Review, error) {
	quiz, err := s.defs.ForReview(ctx, attempt.QuizID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return BuildReview(attempt, nil), nil
	case err != nil:
		return domain.Review{}, err
	}
	return BuildReview(attempt, &quiz), nil
}
