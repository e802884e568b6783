package cli

import (
	"time"

	"mathfalta-service/internal/domain"
)

// sampleQuizzes is demo content for running without a database.
func sampleQuizzes() []domain.Quiz {
	now := time.Now().UTC()
	return []domain.Quiz{
		{
			ID:    "quiz-fractions",
			Title: "Fractions basics",
			Grade: "6",
			Questions: []domain.Question{
				{ID: "q1", Text: "1/2 + 1/4 = ?", Options: []string{"1/4", "3/4", "1", "2/6"}, Answer: domain.AnswerB},
				{ID: "q2", Text: "Which is larger?", Options: []string{"2/3", "3/5", "1/2", "4/9"}, Answer: domain.AnswerA},
				{ID: "q3", Text: "3/4 of 12 = ?", Options: []string{"6", "8", "9", "4"}, Answer: domain.AnswerC},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:    "quiz-integers",
			Title: "Integers",
			Grade: "7",
			Questions: []domain.Question{
				{ID: "q1", Text: "-3 + 5 = ?", Options: []string{"-8", "8", "-2", "2"}, Answer: domain.AnswerD},
				{ID: "q2", Text: "-4 x -2 = ?", Options: []string{"8", "-8", "6", "-6"}, Answer: domain.AnswerA},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func sampleUsers() []domain.User {
	now := time.Now().UTC()
	return []domain.User{
		{ID: "student-1", Name: "Asha", Grade: "6", CreatedAt: now},
		{ID: "student-2", Name: "Omar", Grade: "6", CreatedAt: now},
		{ID: "student-3", Name: "Lina", Grade: "7", CreatedAt: now},
	}
}
