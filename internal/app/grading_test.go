package app_test

import (
	"errors"
	"reflect"
	"testing"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
)

func twoQuestionKey() domain.AnswerKey {
	return domain.AnswerKey{
		QuizID:  "quiz-1",
		Title:   "Fractions",
		Grade:   "6",
		Answers: map[string]string{"q1": "A", "q2": "C"},
	}
}

func TestGradeHalfCorrect(t *testing.T) {
	attempt, err := app.Grade(twoQuestionKey(), []domain.SubmittedAnswer{
		{QuestionID: "q1", UserAnswer: "A"},
		{QuestionID: "q2", UserAnswer: "B"},
	})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if attempt.Score != 50 {
		t.Fatalf("expected score 50, got %d", attempt.Score)
	}
	if !attempt.Answers[0].IsCorrect || attempt.Answers[1].IsCorrect {
		t.Fatalf("unexpected correctness: %+v", attempt.Answers)
	}
	if attempt.QuizID != "quiz-1" || attempt.QuizTitle != "Fractions" {
		t.Fatalf("expected quiz snapshot, got %q %q", attempt.QuizID, attempt.QuizTitle)
	}
}

func TestGradePartialSubmissionUsesSubmittedCount(t *testing.T) {
	key := twoQuestionKey()
	key.Answers["q3"] = "D"

	attempt, err := app.Grade(key, []domain.SubmittedAnswer{{QuestionID: "q1", UserAnswer: "A"}})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if attempt.Score != 100 {
		t.Fatalf("expected score 100, got %d", attempt.Score)
	}
}

func TestGradeRoundsHalfAwayFromZero(t *testing.T) {
	key := domain.AnswerKey{QuizID: "quiz-1", Answers: map[string]string{}}
	cases := []struct {
		correct, total, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{0, 4, 0},
		{7, 7, 100},
	}
	for _, tc := range cases {
		answers := make([]domain.SubmittedAnswer, tc.total)
		for i := range answers {
			id := string(rune('a' + i))
			answers[i] = domain.SubmittedAnswer{QuestionID: id, UserAnswer: "A"}
			if i < tc.correct {
				key.Answers[id] = "A"
			} else {
				key.Answers[id] = "B"
			}
		}
		attempt, err := app.Grade(key, answers)
		if err != nil {
			t.Fatalf("grade %d/%d: %v", tc.correct, tc.total, err)
		}
		if attempt.Score != tc.want {
			t.Fatalf("%d/%d: expected %d, got %d", tc.correct, tc.total, tc.want, attempt.Score)
		}
	}
}

func TestGradeRejectsInvalidLetter(t *testing.T) {
	_, err := app.Grade(twoQuestionKey(), []domain.SubmittedAnswer{
		{QuestionID: "q1", UserAnswer: "A"},
		{QuestionID: "q2", UserAnswer: "E"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.QuestionID != "q2" || verr.Value != "E" {
		t.Fatalf("expected error naming q2 and E, got %v", err)
	}
}

func TestGradeIsCaseSensitive(t *testing.T) {
	_, err := app.Grade(twoQuestionKey(), []domain.SubmittedAnswer{{QuestionID: "q1", UserAnswer: "a"}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected lowercase letter rejected, got %v", err)
	}
}

func TestGradeRejectsEmptySubmission(t *testing.T) {
	if _, err := app.Grade(twoQuestionKey(), nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGradeUnknownQuestionCountsAgainst(t *testing.T) {
	attempt, err := app.Grade(twoQuestionKey(), []domain.SubmittedAnswer{
		{QuestionID: "q1", UserAnswer: "A"},
		{QuestionID: "ghost", UserAnswer: "A"},
	})
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	if attempt.Score != 50 {
		t.Fatalf("expected score 50, got %d", attempt.Score)
	}
	if got := attempt.Answers[1]; got.QuestionID != "ghost" || got.IsCorrect {
		t.Fatalf("expected unmatched answer kept and incorrect, got %+v", got)
	}
}

func TestGradeRejectsRepeatedQuestion(t *testing.T) {
	_, err := app.Grade(twoQuestionKey(), []domain.SubmittedAnswer{
		{QuestionID: "q1", UserAnswer: "A"},
		{QuestionID: "q1", UserAnswer: "A"},
		{QuestionID: "q1", UserAnswer: "A"},
		{QuestionID: "q2", UserAnswer: "B"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Value != "q1" || verr.Field != "questionId" {
		t.Fatalf("expected error naming q1, got %v", err)
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	answers := []domain.SubmittedAnswer{
		{QuestionID: "q1", UserAnswer: "B"},
		{QuestionID: "q2", UserAnswer: "C"},
	}
	first, err := app.Grade(twoQuestionKey(), answers)
	if err != nil {
		t.Fatalf("grade: %v", err)
	}
	second, _ := app.Grade(twoQuestionKey(), answers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("grading differs between runs: %+v vs %+v", first, second)
	}
}

func TestGradeQuizUsesQuestionAnswers(t *testing.T) {
	attempt, err := app.GradeQuiz(sampleQuiz("quiz-1", "6"), []domain.SubmittedAnswer{
		{QuestionID: "q1", UserAnswer: "B"},
		{QuestionID: "q2", UserAnswer: "C"},
	})
	if err != nil {
		t.Fatalf("grade quiz: %v", err)
	}
	if attempt.Score != 100 {
		t.Fatalf("expected 100, got %d", attempt.Score)
	}
}
