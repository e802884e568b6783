package domain

import "time"

// Grades a quiz or a student can belong to.
var Grades = []string{"5", "6", "7", "8", "9"}

// IsValidGrade reports whether grade is one of the supported grade codes.
func IsValidGrade(grade string) bool {
	for _, g := range Grades {
		if g == grade {
			return true
		}
	}
	return false
}

// Image is an uploaded picture attached to a question.
type Image struct {
	URL      string `json:"url" validate:"required,url"`
	PublicID string `json:"publicId" validate:"required"`
	Format   string `json:"format,omitempty"`
}

// Question is a multiple-choice question with exactly four options.
// Answer holds the canonical letter of the correct option.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"question,omitempty" validate:"required_without=Image"`
	Options []string `json:"options" validate:"len=4"`
	Answer  string   `json:"answer" validate:"oneof=A B C D"`
	Image   *Image   `json:"image,omitempty" validate:"omitempty"`
}

// Quiz is a grade-scoped set of questions. Quizzes are soft-deleted.
type Quiz struct {
	ID        string     `json:"id"`
	Title     string     `json:"title" validate:"required"`
	Grade     string     `json:"grade" validate:"oneof=5 6 7 8 9"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
	IsDeleted bool       `json:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Question returns the question with the given id.
func (q Quiz) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// QuestionView is a question as shown to a student before grading.
type QuestionView struct {
	ID      string   `json:"id"`
	Text    string   `json:"question,omitempty"`
	Options []string `json:"options"`
	Image   *Image   `json:"image,omitempty"`
}

// QuizView is the display projection of a quiz. It has no answer key.
type QuizView struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Grade     string         `json:"grade"`
	Questions []QuestionView `json:"questions"`
}

// View strips the answer key from the quiz.
func (q Quiz) View() QuizView {
	questions := make([]QuestionView, 0, len(q.Questions))
	for _, question := range q.Questions {
		questions = append(questions, QuestionView{
			ID:      question.ID,
			Text:    question.Text,
			Options: append([]string(nil), question.Options...),
			Image:   question.Image,
		})
	}
	return QuizView{ID: q.ID, Title: q.Title, Grade: q.Grade, Questions: questions}
}

// AnswerKey is the grading projection of a quiz: question id -> canonical letter.
type AnswerKey struct {
	QuizID  string            `json:"quizId"`
	Title   string            `json:"title"`
	Grade   string            `json:"grade"`
	Answers map[string]string `json:"answers"`
}

// AnswerKey builds the grading projection of the quiz.
func (q Quiz) AnswerKey() AnswerKey {
	answers := make(map[string]string, len(q.Questions))
	for _, question := range q.Questions {
		answers[question.ID] = question.Answer
	}
	return AnswerKey{QuizID: q.ID, Title: q.Title, Grade: q.Grade, Answers: answers}
}

// SubmittedAnswer is one raw answer from a student.
type SubmittedAnswer struct {
	QuestionID string `json:"questionId"`
	UserAnswer string `json:"userAnswer"`
}

// Submission is a student's complete set of answers for a quiz.
type Submission struct {
	QuizID           string            `json:"quizId"`
	UserID           string            `json:"userId"`
	Answers          []SubmittedAnswer `json:"questions"`
	TimeTakenSeconds *int              `json:"timeTaken,omitempty"`
}

// AnsweredQuestion is a graded answer inside an attempt.
type AnsweredQuestion struct {
	QuestionID string `json:"questionId"`
	UserAnswer string `json:"userAnswer"`
	IsCorrect  bool   `json:"isCorrect"`
}

// Attempt is the persisted result of grading one submission.
// QuizTitle is a snapshot taken at grading time.
type Attempt struct {
	ID               string             `json:"id"`
	QuizID           string             `json:"quizId"`
	QuizTitle        string             `json:"title"`
	UserID           string             `json:"userId"`
	SubmittedAt      time.Time          `json:"submittedAt"`
	TimeTakenSeconds *int               `json:"timeTaken,omitempty"`
	Answers          []AnsweredQuestion `json:"questions"`
	Score            int                `json:"score"`
}

// User is a student as exposed by the user directory.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Grade     string    `json:"grade"`
	CreatedAt time.Time `json:"createdAt"`
}

// ActivityType classifies activity log entries.
type ActivityType string

const (
	ActivityQuiz   ActivityType = "quiz"
	ActivityLesson ActivityType = "lesson"
)

// Activity is a student activity log entry.
type Activity struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Type        ActivityType `json:"activityType"`
	ActivityID  string       `json:"activityId"`
	Description string       `json:"description"`
	Score       *int         `json:"score,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// ReviewRow is one quiz question merged with the student's answer.
type ReviewRow struct {
	QuestionID string   `json:"questionId"`
	Text       string   `json:"question,omitempty"`
	Image      *Image   `json:"image"`
	Options    []string `json:"options"`
	Answer     string   `json:"answer"`
	UserAnswer *string  `json:"userAnswer"`
	IsCorrect  bool     `json:"isCorrect"`
}

// Review is the post-submission study view of an attempt.
type Review struct {
	AttemptID        string      `json:"attemptId"`
	QuizID           string      `json:"quizId"`
	QuizTitle        string      `json:"title"`
	QuizAvailable    bool        `json:"quizAvailable"`
	UserID           string      `json:"userId"`
	Score            int         `json:"score"`
	SubmittedAt      time.Time   `json:"submittedAt"`
	TimeTakenSeconds *int        `json:"timeTaken,omitempty"`
	Questions        []ReviewRow `json:"questions"`
}

// QuizStats summarizes all attempts of a quiz. Pointers are nil when there are no attempts.
type QuizStats struct {
	QuizID              string   `json:"quizId"`
	Attempts            int      `json:"attempts"`
	AvgScore            *float64 `json:"avgScore"`
	HighestScore        *int     `json:"highestScore"`
	HighestScoreHolders int      `json:"highestScoreHolders"`
}

// LeaderboardEntry is a user ranked by total score.
type LeaderboardEntry struct {
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	Grade      string `json:"grade"`
	TotalScore int    `json:"totalScore"`
}

// Leaderboard is a ranked snapshot. Grade is empty for the global board.
type Leaderboard struct {
	Grade     string             `json:"grade,omitempty"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// QuizSummary is a quiz row on the admin dashboard.
type QuizSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Grade     string    `json:"grade"`
	IsDeleted bool      `json:"isDeleted"`
	UpdatedAt time.Time `json:"updatedAt"`
	Stats     QuizStats `json:"results"`
}

// DashboardCounts are the headline numbers of the admin dashboard.
type DashboardCounts struct {
	TotalUsers   int `json:"totalUsers"`
	TotalLessons int `json:"totalLessons"`
	TotalQuizzes int `json:"totalQuizzes"`
}

// DashboardSummary is the admin dashboard.
type DashboardSummary struct {
	Stats         DashboardCounts    `json:"stats"`
	RecentQuizzes []QuizSummary      `json:"recentQuizzes"`
	Leaderboard   []LeaderboardEntry `json:"leaderboard"`
}

// StudentSummary is a student's home dashboard.
type StudentSummary struct {
	UserID             string             `json:"userId"`
	Name               string             `json:"name"`
	Grade              string             `json:"grade"`
	TotalScore         int                `json:"totalScore"`
	QuizzesCompleted   int                `json:"quizzesCompleted"`
	LessonsCompleted   int                `json:"lessonsCompleted"`
	LatestActivities   []Activity         `json:"latestActivities"`
	Leaderboard        []LeaderboardEntry `json:"leaderboard"`
	RecommendedQuizzes []QuizView         `json:"recommendedQuizzes"`
}
