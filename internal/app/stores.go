package app

import (
	"context"

	"mathfalta-service/internal/domain"
)

// FindOptions controls single-quiz lookups.
type FindOptions struct {
	// IncludeDeleted returns soft-deleted quizzes too (admin reads).
	IncludeDeleted bool
}

// ListOptions controls quiz listings.
type ListOptions struct {
	// Deleted lists only soft-deleted quizzes instead of only live ones.
	Deleted bool
}

// QuizStore persists quiz definitions.
type QuizStore interface {
	FindByID(ctx context.Context, id string, opts FindOptions) (domain.Quiz, error)
	// FindByGrade returns the live quizzes of a grade.
	FindByGrade(ctx context.Context, grade string) ([]domain.Quiz, error)
	List(ctx context.Context, opts ListOptions) ([]domain.Quiz, error)
	Create(ctx context.Context, quiz domain.Quiz) error
	Update(ctx context.Context, quiz domain.Quiz) error
	Delete(ctx context.Context, id string) error
	// Count returns the number of live quizzes.
	Count(ctx context.Context) (int, error)
}

// AnswerKeyRepository serves grading projections of live quizzes, usually from a cache.
type AnswerKeyRepository interface {
	GetAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error)
	Invalidate(ctx context.Context, quizID string) error
}

// AttemptStore persists graded attempts. Create returns domain.ErrDuplicateAttempt
// when the store enforces one attempt per (user, quiz) and one already exists.
type AttemptStore interface {
	Create(ctx context.Context, attempt domain.Attempt) error
	FindByID(ctx context.Context, id string) (domain.Attempt, error)
	// FindByUserAndQuiz returns the user's latest attempt of the quiz.
	FindByUserAndQuiz(ctx context.Context, userID, quizID string) (domain.Attempt, error)
	FindByUser(ctx context.Context, userID string) ([]domain.Attempt, error)
	FindByQuiz(ctx context.Context, quizID string) ([]domain.Attempt, error)
	List(ctx context.Context) ([]domain.Attempt, error)
}

// ActivitySink receives activity records. Callers treat it as fire-and-forget.
type ActivitySink interface {
	Record(ctx context.Context, activity domain.Activity) error
}

// ActivityLog reads back recorded activities.
type ActivityLog interface {
	ActivitySink
	Latest(ctx context.Context, userID string, limit int) ([]domain.Activity, error)
	CountDistinct(ctx context.Context, userID string, typ domain.ActivityType) (int, error)
}

// UserDirectory is a read-only view of students. List returns users in insertion order.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (domain.User, error)
	FindByGrade(ctx context.Context, grade string) ([]domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Count(ctx context.Context) (int, error)
}

// LessonCounter counts live lessons for dashboards.
type LessonCounter interface {
	CountLessons(ctx context.Context) (int, error)
}

// ImageStore removes uploaded question images.
type ImageStore interface {
	Destroy(ctx context.Context, publicID string) error
}

// AttemptListener is notified after an attempt has been committed.
type AttemptListener interface {
	AttemptRecorded(ctx context.Context, attempt domain.Attempt, grade string)
}
