package app

import (
	"context"
	"log"
	"os"
	"time"

	"mathfalta-service/internal/domain"

	"github.com/google/uuid"
)

// QuestionInput is an authored question. Answer may be a letter, a zero-based
// index or a digit string; it is normalized before validation.
type QuestionInput struct {
	Text    string        `json:"question"`
	Options []string      `json:"options"`
	Answer  any           `json:"answer"`
	Image   *domain.Image `json:"image,omitempty"`
}

// QuizInput is an authored quiz.
type QuizInput struct {
	Title     string          `json:"title"`
	Grade     string          `json:"grade"`
	Questions []QuestionInput `json:"questions"`
}

// QuizInfoInput edits quiz metadata. Empty fields are left unchanged.
type QuizInfoInput struct {
	Title string `json:"title"`
	Grade string `json:"grade"`
}

// QuestionPatch edits a question. Nil or empty fields are left unchanged.
type QuestionPatch struct {
	Text    *string       `json:"question,omitempty"`
	Options []string      `json:"options,omitempty"`
	Answer  any           `json:"answer,omitempty"`
	Image   *domain.Image `json:"image,omitempty"`
}

// QuizAdmin contains the quiz authoring use cases.
type QuizAdmin struct {
	quizzes QuizStore
	defs    *QuizDefinitions
	images  ImageStore
	logger  *log.Logger
	now     func() time.Time
	newID   func() string
}

func NewQuizAdmin(quizzes QuizStore, defs *QuizDefinitions, images ImageStore) *QuizAdmin {
	return &QuizAdmin{
		quizzes: quizzes,
		defs:    defs,
		images:  images,
		logger:  log.New(os.Stderr, "", log.LstdFlags),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// WithLogger replaces the logger used for swallowed image and cache failures.
func (a *QuizAdmin) WithLogger(logger *log.Logger) *QuizAdmin {
	a.logger = logger
	return a
}

// CreateQuiz validates and stores a new quiz.
func (a *QuizAdmin) CreateQuiz(ctx context.Context, in QuizInput) (domain.Quiz, error) {
	now := a.now().UTC()
	quiz := domain.Quiz{
		ID:        a.newID(),
		Title:     in.Title,
		Grade:     in.Grade,
		Questions: a.buildQuestions(in.Questions),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := a.quizzes.Create(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// Get returns any quiz, deleted or not, with its answers.
func (a *QuizAdmin) Get(ctx context.Context, id string) (domain.Quiz, error) {
	return a.quizzes.FindByID(ctx, id, FindOptions{IncludeDeleted: true})
}

// List returns live quizzes, or soft-deleted ones when deleted is set.
func (a *QuizAdmin) List(ctx context.Context, deleted bool) ([]domain.Quiz, error) {
	return a.quizzes.List(ctx, ListOptions{Deleted: deleted})
}

// UpdateInfo edits the title and grade of a live quiz.
func (a *QuizAdmin) UpdateInfo(ctx context.Context, id string, in QuizInfoInput) (domain.Quiz, error) {
	return a.mutate(ctx, id, func(quiz *domain.Quiz) error {
		if in.Title != "" {
			quiz.Title = in.Title
		}
		if in.Grade != "" {
			quiz.Grade = in.Grade
		}
		return nil
	})
}

// AddQuestions appends questions to a live quiz.
func (a *QuizAdmin) AddQuestions(ctx context.Context, id string, in []QuestionInput) (domain.Quiz, error) {
	if len(in) == 0 {
		return domain.Quiz{}, domain.NewValidationError("questions", "", "at least one question is required")
	}
	questions := a.buildQuestions(in)
	for _, q := range questions {
		if err := domain.ValidateQuestion(q); err != nil {
			return domain.Quiz{}, err
		}
	}
	return a.mutate(ctx, id, func(quiz *domain.Quiz) error {
		quiz.Questions = append(quiz.Questions, questions...)
		return nil
	})
}

// UpdateQuestion edits one question. A replaced image is destroyed after the save.
func (a *QuizAdmin) UpdateQuestion(ctx context.Context, quizID, questionID string, patch QuestionPatch) (domain.Quiz, error) {
	var replaced *domain.Image
	quiz, err := a.mutate(ctx, quizID, func(quiz *domain.Quiz) error {
		i := questionIndex(*quiz, questionID)
		if i < 0 {
			return domain.NotFound("question", questionID)
		}
		q := &quiz.Questions[i]
		if patch.Text != nil {
			q.Text = *patch.Text
		}
		if len(patch.Options) > 0 {
			q.Options = append([]string(nil), patch.Options...)
		}
		if patch.Answer != nil {
			q.Answer = domain.NormalizeAnswer(patch.Answer)
		}
		if patch.Image != nil {
			if q.Image != nil && q.Image.PublicID != patch.Image.PublicID {
				replaced = q.Image
			}
			img := *patch.Image
			q.Image = &img
		}
		return domain.ValidateQuestion(*q)
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	if replaced != nil {
		a.destroyImage(ctx, replaced)
	}
	return quiz, nil
}

// DeleteQuestion removes one question and its image. A quiz keeps at least one question.
func (a *QuizAdmin) DeleteQuestion(ctx context.Context, quizID, questionID string) (domain.Quiz, error) {
	var removed domain.Question
	quiz, err := a.mutate(ctx, quizID, func(quiz *domain.Quiz) error {
		i := questionIndex(*quiz, questionID)
		if i < 0 {
			return domain.NotFound("question", questionID)
		}
		removed = quiz.Questions[i]
		quiz.Questions = append(quiz.Questions[:i:i], quiz.Questions[i+1:]...)
		return nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	a.destroyImage(ctx, removed.Image)
	return quiz, nil
}

// SoftDelete hides a live quiz from students.
func (a *QuizAdmin) SoftDelete(ctx context.Context, id string) error {
	_, err := a.mutate(ctx, id, func(quiz *domain.Quiz) error {
		now := a.now().UTC()
		quiz.IsDeleted = true
		quiz.DeletedAt = &now
		return nil
	})
	return err
}

// Restore brings back a soft-deleted quiz.
func (a *QuizAdmin) Restore(ctx context.Context, id string) (domain.Quiz, error) {
	quiz, err := a.quizzes.FindByID(ctx, id, FindOptions{IncludeDeleted: true})
	if err != nil {
		return domain.Quiz{}, err
	}
	if !quiz.IsDeleted {
		return domain.Quiz{}, domain.NewValidationError("id", id, "quiz is already active")
	}
	quiz.IsDeleted = false
	quiz.DeletedAt = nil
	quiz.UpdatedAt = a.now().UTC()
	if err := a.quizzes.Update(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	a.invalidate(ctx, id)
	return quiz, nil
}

// HardDelete removes a quiz and all of its images. Attempts keep their title snapshot.
func (a *QuizAdmin) HardDelete(ctx context.Context, id string) error {
	quiz, err := a.quizzes.FindByID(ctx, id, FindOptions{IncludeDeleted: true})
	if err != nil {
		return err
	}
	for _, q := range quiz.Questions {
		a.destroyImage(ctx, q.Image)
	}
	if err := a.quizzes.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, id)
	return nil
}

// mutate loads a live quiz, applies fn, validates and saves the result.
func (a *QuizAdmin) mutate(ctx context.Context, id string, fn func(quiz *domain.Quiz) error) (domain.Quiz, error) {
	quiz, err := a.quizzes.FindByID(ctx, id, FindOptions{})
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.Questions = append([]domain.Question(nil), quiz.Questions...)
	if err := fn(&quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}
	quiz.UpdatedAt = a.now().UTC()
	if err := a.quizzes.Update(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	a.invalidate(ctx, id)
	return quiz, nil
}

func (a *QuizAdmin) buildQuestions(in []QuestionInput) []domain.Question {
	questions := make([]domain.Question, 0, len(in))
	for _, q := range in {
		questions = append(questions, domain.Question{
			ID:      a.newID(),
			Text:    q.Text,
			Options: append([]string(nil), q.Options...),
			Answer:  domain.NormalizeAnswer(q.Answer),
			Image:   q.Image,
		})
	}
	return questions
}

func (a *QuizAdmin) invalidate(ctx context.Context, id string) {
	if err := a.defs.Invalidate(ctx, id); err != nil {
		a.logger.Printf("invalidate answer key for quiz %s: %v", id, err)
	}
}

func (a *QuizAdmin) destroyImage(ctx context.Context, img *domain.Image) {
	if img == nil || img.PublicID == "" {
		return
	}
	if err := a.images.Destroy(ctx, img.PublicID); err != nil {
		a.logger.Printf("destroy image %s: %v", img.PublicID, err)
	}
}

func questionIndex(quiz domain.Quiz, questionID string) int {
	for i, q := range quiz.Questions {
		if q.ID == questionID {
			return i
		}
	}
	return -1
}
