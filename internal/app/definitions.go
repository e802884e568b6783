package app

import (
	"context"

	"mathfalta-service/internal/domain"
)

// QuizDefinitions hands out quiz content in the shape each reader is allowed to see:
// students get views without answers, grading gets answer keys, reviews get full quizzes.
type QuizDefinitions struct {
	quizzes QuizStore
	keys    AnswerKeyRepository
}

func NewQuizDefinitions(quizzes QuizStore, keys AnswerKeyRepository) *QuizDefinitions {
	return &QuizDefinitions{quizzes: quizzes, keys: keys}
}

// ForDisplay returns a live quiz without its answer key.
func (d *QuizDefinitions) ForDisplay(ctx context.Context, quizID string) (domain.QuizView, error) {
	quiz, err := d.quizzes.FindByID(ctx, quizID, FindOptions{})
	if err != nil {
		return domain.QuizView{}, err
	}
	return quiz.View(), nil
}

// ForGrading returns the answer key of a live quiz.
func (d *QuizDefinitions) ForGrading(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	return d.keys.GetAnswerKey(ctx, quizID)
}

// ForReview returns the full quiz, including soft-deleted ones.
func (d *QuizDefinitions) ForReview(ctx context.Context, quizID string) (domain.Quiz, error) {
	return d.quizzes.FindByID(ctx, quizID, FindOptions{IncludeDeleted: true})
}

// ByGrade lists the live quizzes of a grade without answers.
func (d *QuizDefinitions) ByGrade(ctx context.Context, grade string) ([]domain.QuizView, error) {
	quizzes, err := d.quizzes.FindByGrade(ctx, grade)
	if err != nil {
		return nil, err
	}
	views := make([]domain.QuizView, 0, len(quizzes))
	for _, quiz := range quizzes {
		views = append(views, quiz.View())
	}
	return views, nil
}

// Invalidate drops any cached answer key for the quiz.
func (d *QuizDefinitions) Invalidate(ctx context.Context, quizID string) error {
	return d.keys.Invalidate(ctx, quizID)
}
