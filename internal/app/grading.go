package app

import (
	"mathfalta-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Grade scores answers against a quiz's answer key.
//
// Answers referring to questions missing from the key are kept verbatim and
// marked incorrect, but still count toward the submitted total. A question may
// be answered once per submission. The returned
// attempt has no ID, user or timestamp; the caller stamps those.
func Grade(key domain.AnswerKey, answers []domain.SubmittedAnswer) (domain.Attempt, error) {
	if len(answers) == 0 {
		return domain.Attempt{}, domain.NewValidationError("questions", "", "at least one answer is required")
	}

	graded := make([]domain.AnsweredQuestion, 0, len(answers))
	seen := make(map[string]struct{}, len(answers))
	correct := 0
	for _, answer := range answers {
		if !domain.IsValidAnswer(answer.UserAnswer) {
			return domain.Attempt{}, &domain.ValidationError{
				Field:      "userAnswer",
				QuestionID: answer.QuestionID,
				Value:      answer.UserAnswer,
				Reason:     "answer must be one of A, B, C, D",
			}
		}
		if _, dup := seen[answer.QuestionID]; dup {
			return domain.Attempt{}, domain.NewValidationError("questionId", answer.QuestionID, "question answered more than once")
		}
		seen[answer.QuestionID] = struct{}{}
		expected, ok := key.Answers[answer.QuestionID]
		isCorrect := ok && expected == answer.UserAnswer
		if isCorrect {
			correct++
		}
		graded = append(graded, domain.AnsweredQuestion{
			QuestionID: answer.QuestionID,
			UserAnswer: answer.UserAnswer,
			IsCorrect:  isCorrect,
		})
	}

	return domain.Attempt{
		QuizID:    key.QuizID,
		QuizTitle: key.Title,
		Answers:   graded,
		Score:     percentage(correct, len(answers)),
	}, nil
}

// GradeQuiz grades answers against a full quiz definition.
func GradeQuiz(quiz domain.Quiz, answers []domain.SubmittedAnswer) (domain.Attempt, error) {
	return Grade(quiz.AnswerKey(), answers)
}

// percentage rounds half away from zero; total must be positive.
func percentage(correct, total int) int {
	return int(decimal.NewFromInt(int64(correct)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(0).
		IntPart())
}
