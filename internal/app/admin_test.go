package app_test

import (
	"context"
	"errors"
	"testing"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
)

func newQuizInput() app.QuizInput {
	return app.QuizInput{
		Title: "Decimals",
		Grade: "5",
		Questions: []app.QuestionInput{
			{Text: "0.5 + 0.25 = ?", Options: []string{"0.75", "0.7", "0.525", "1"}, Answer: float64(0)},
			{Text: "0.1 x 10 = ?", Options: []string{"0.01", "0.1", "1", "10"}, Answer: "2"},
			{
				Options: []string{"a", "b", "c", "d"},
				Answer:  "d",
				Image:   &domain.Image{URL: "https://img.example.com/q3.png", PublicID: "img-q3"},
			},
		},
	}
}

func TestCreateQuizNormalizesAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)

	quiz, err := f.admin.CreateQuiz(ctx, newQuizInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got := []string{quiz.Questions[0].Answer, quiz.Questions[1].Answer, quiz.Questions[2].Answer}
	if got[0] != "A" || got[1] != "C" || got[2] != "D" {
		t.Fatalf("expected A,C,D, got %v", got)
	}
	if quiz.ID == "" || quiz.Questions[0].ID == "" || quiz.Questions[0].ID == quiz.Questions[1].ID {
		t.Fatalf("expected generated ids, got %+v", quiz)
	}
	if _, err := f.defs.ForGrading(ctx, quiz.ID); err != nil {
		t.Fatalf("expected gradable quiz: %v", err)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)

	cases := map[string]func(in *app.QuizInput){
		"bad grade":      func(in *app.QuizInput) { in.Grade = "12" },
		"no title":       func(in *app.QuizInput) { in.Title = "" },
		"no questions":   func(in *app.QuizInput) { in.Questions = nil },
		"three options":  func(in *app.QuizInput) { in.Questions[0].Options = []string{"a", "b", "c"} },
		"answer E":       func(in *app.QuizInput) { in.Questions[0].Answer = 4 },
		"no text or img": func(in *app.QuizInput) { in.Questions[0].Text = "" },
		"image no opt":   func(in *app.QuizInput) { in.Questions[2].Options[1] = "" },
	}
	for name, mutate := range cases {
		in := newQuizInput()
		mutate(&in)
		if _, err := f.admin.CreateQuiz(ctx, in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestUpdateQuestionInvalidatesAndDestroysImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)
	quiz, err := f.admin.CreateQuiz(ctx, newQuizInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.defs.ForGrading(ctx, quiz.ID); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	imgQuestion := quiz.Questions[2].ID
	updated, err := f.admin.UpdateQuestion(ctx, quiz.ID, imgQuestion, app.QuestionPatch{
		Answer: "b",
		Image:  &domain.Image{URL: "https://img.example.com/q3-v2.png", PublicID: "img-q3-v2"},
	})
	if err != nil {
		t.Fatalf("update question: %v", err)
	}
	if updated.Questions[2].Answer != "B" {
		t.Fatalf("expected normalized answer B, got %q", updated.Questions[2].Answer)
	}
	if destroyed := f.images.Destroyed(); len(destroyed) != 1 || destroyed[0] != "img-q3" {
		t.Fatalf("expected old image destroyed, got %v", destroyed)
	}

	key, err := f.defs.ForGrading(ctx, quiz.ID)
	if err != nil || key.Answers[imgQuestion] != "B" {
		t.Fatalf("expected fresh answer key, got %+v %v", key, err)
	}
}

func TestQuestionAddAndDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)

	quiz, err := f.admin.AddQuestions(ctx, "quiz-1", []app.QuestionInput{
		{Text: "5 x 5 = ?", Options: []string{"10", "20", "25", "55"}, Answer: 2},
	})
	if err != nil {
		t.Fatalf("add questions: %v", err)
	}
	if len(quiz.Questions) != 3 || quiz.Questions[2].Answer != "C" {
		t.Fatalf("unexpected questions: %+v", quiz.Questions)
	}
	if _, err := f.admin.AddQuestions(ctx, "quiz-1", nil); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for empty add, got %v", err)
	}

	quiz, err = f.admin.DeleteQuestion(ctx, "quiz-1", "q1")
	if err != nil {
		t.Fatalf("delete question: %v", err)
	}
	if len(quiz.Questions) != 2 || quiz.Questions[0].ID != "q2" {
		t.Fatalf("unexpected questions after delete: %+v", quiz.Questions)
	}
	if _, err := f.admin.DeleteQuestion(ctx, "quiz-1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestQuestionEditsAreValidated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)

	_, err := f.admin.AddQuestions(ctx, "quiz-1", []app.QuestionInput{
		{Text: "9 - 4 = ?", Options: []string{"3", "4", "5"}, Answer: "C"},
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "options" {
		t.Fatalf("expected options error on add, got %v", err)
	}

	empty := ""
	_, err = f.admin.UpdateQuestion(ctx, "quiz-1", "q1", app.QuestionPatch{Text: &empty})
	if !errors.As(err, &verr) || verr.Field != "question" {
		t.Fatalf("expected question text error on update, got %v", err)
	}

	quiz, err := f.admin.Get(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if len(quiz.Questions) != 2 || quiz.Questions[0].Text == "" {
		t.Fatalf("rejected edits were stored: %+v", quiz.Questions)
	}
}

func TestDeleteLastQuestionRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)
	if _, err := f.admin.DeleteQuestion(ctx, "quiz-1", "q1"); err != nil {
		t.Fatalf("delete q1: %v", err)
	}
	if _, err := f.admin.DeleteQuestion(ctx, "quiz-1", "q2"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected last question kept, got %v", err)
	}
}

func TestSoftDeleteRestoreAndHardDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)
	quiz, err := f.admin.CreateQuiz(ctx, newQuizInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.admin.Restore(ctx, quiz.ID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected already active error, got %v", err)
	}
	if err := f.admin.SoftDelete(ctx, quiz.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	deleted, _ := f.admin.List(ctx, true)
	if len(deleted) != 1 || deleted[0].DeletedAt == nil {
		t.Fatalf("expected soft-deleted quiz listed, got %+v", deleted)
	}
	if _, err := f.defs.ForDisplay(ctx, quiz.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected hidden from students, got %v", err)
	}

	restored, err := f.admin.Restore(ctx, quiz.ID)
	if err != nil || restored.IsDeleted || restored.DeletedAt != nil {
		t.Fatalf("restore: %+v %v", restored, err)
	}

	if err := f.admin.HardDelete(ctx, quiz.ID); err != nil {
		t.Fatalf("hard delete: %v", err)
	}
	if _, err := f.admin.Get(ctx, quiz.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected quiz gone, got %v", err)
	}
	if destroyed := f.images.Destroyed(); len(destroyed) != 1 || destroyed[0] != "img-q3" {
		t.Fatalf("expected images destroyed, got %v", destroyed)
	}
}

func TestUpdateInfo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(false)

	quiz, err := f.admin.UpdateInfo(ctx, "quiz-1", app.QuizInfoInput{Title: "Fractions II"})
	if err != nil {
		t.Fatalf("update info: %v", err)
	}
	if quiz.Title != "Fractions II" || quiz.Grade != "6" {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	if _, err := f.admin.UpdateInfo(ctx, "quiz-1", app.QuizInfoInput{Grade: "4"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected invalid grade rejected, got %v", err)
	}
}
