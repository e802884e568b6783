package app

import "mathfalta-service/internal/domain"

// BuildReview merges an attempt onto its quiz, one row per quiz question in quiz order.
// A nil or soft-deleted quiz yields the title snapshot and no rows.
func BuildReview(attempt domain.Attempt, quiz *domain.Quiz) domain.Review {
	review := domain.Review{
		AttemptID:        attempt.ID,
		QuizID:           attempt.QuizID,
		QuizTitle:        attempt.QuizTitle,
		UserID:           attempt.UserID,
		Score:            attempt.Score,
		SubmittedAt:      attempt.SubmittedAt,
		TimeTakenSeconds: attempt.TimeTakenSeconds,
		Questions:        []domain.ReviewRow{},
	}
	if quiz == nil || quiz.IsDeleted {
		return review
	}
	review.QuizAvailable = true

	answered := make(map[string]domain.AnsweredQuestion, len(attempt.Answers))
	for _, a := range attempt.Answers {
		if _, seen := answered[a.QuestionID]; !seen {
			answered[a.QuestionID] = a
		}
	}

	rows := make([]domain.ReviewRow, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		row := domain.ReviewRow{
			QuestionID: q.ID,
			Text:       q.Text,
			Image:      q.Image,
			Options:    append([]string(nil), q.Options...),
			Answer:     q.Answer,
		}
		if a, ok := answered[q.ID]; ok {
			userAnswer := a.UserAnswer
			row.UserAnswer = &userAnswer
			row.IsCorrect = a.IsCorrect
		}
		rows = append(rows, row)
	}
	review.Questions = rows
	return review
}
