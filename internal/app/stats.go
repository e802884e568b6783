package app

import (
	"context"
	"sort"

	"mathfalta-service/internal/domain"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DashboardOptions sizes the lists on the admin dashboard.
type DashboardOptions struct {
	RecentQuizzes    int
	LeaderboardLimit int
}

// StatsService computes read-only statistics over attempts and quizzes.
// Every figure is computed from the stores on each call; nothing is cached.
type StatsService struct {
	quizzes    QuizStore
	attempts   AttemptStore
	users      UserDirectory
	lessons    LessonCounter
	activities ActivityLog
}

func NewStatsService(quizzes QuizStore, attempts AttemptStore, users UserDirectory, lessons LessonCounter, activities ActivityLog) *StatsService {
	return &StatsService{
		quizzes:    quizzes,
		attempts:   attempts,
		users:      users,
		lessons:    lessons,
		activities: activities,
	}
}

// TotalScoreForUser sums the scores of all the user's attempts.
func (s *StatsService) TotalScoreForUser(ctx context.Context, userID string) (int, error) {
	attempts, err := s.attempts.FindByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, a := range attempts {
		total += a.Score
	}
	return total, nil
}

// Leaderboard ranks all users by total score. Ties keep directory order.
// A limit of zero or less returns every user.
func (s *StatsService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.rank(ctx, users, limit)
}

// GradeLeaderboard ranks the users of one grade.
func (s *StatsService) GradeLeaderboard(ctx context.Context, grade string, limit int) ([]domain.LeaderboardEntry, error) {
	users, err := s.users.FindByGrade(ctx, grade)
	if err != nil {
		return nil, err
	}
	return s.rank(ctx, users, limit)
}

func (s *StatsService) rank(ctx context.Context, users []domain.User, limit int) ([]domain.LeaderboardEntry, error) {
	attempts, err := s.attempts.List(ctx)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int, len(users))
	for _, a := range attempts {
		totals[a.UserID] += a.Score
	}

	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:     u.ID,
			Name:       u.Name,
			Grade:      u.Grade,
			TotalScore: totals[u.ID],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TotalScore > entries[j].TotalScore
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// QuizStats summarizes the attempts of a quiz. The quiz itself need not exist anymore.
func (s *StatsService) QuizStats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	attempts, err := s.attempts.FindByQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizStats{}, err
	}
	return summarize(quizID, attempts), nil
}

func summarize(quizID string, attempts []domain.Attempt) domain.QuizStats {
	stats := domain.QuizStats{QuizID: quizID, Attempts: len(attempts)}
	if len(attempts) == 0 {
		return stats
	}

	sum, highest, holders := 0, attempts[0].Score, 0
	for _, a := range attempts {
		sum += a.Score
		switch {
		case a.Score > highest:
			highest, holders = a.Score, 1
		case a.Score == highest:
			holders++
		}
	}
	avg, _ := decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(attempts)))).
		Round(1).
		Float64()

	stats.AvgScore = &avg
	stats.HighestScore = &highest
	stats.HighestScoreHolders = holders
	return stats
}

// UnattemptedQuizzes lists the live quizzes of a grade the user has not attempted yet.
func (s *StatsService) UnattemptedQuizzes(ctx context.Context, userID, grade string) ([]domain.QuizView, error) {
	quizzes, err := s.quizzes.FindByGrade(ctx, grade)
	if err != nil {
		return nil, err
	}
	attempts, err := s.attempts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	attempted := make(map[string]struct{}, len(attempts))
	for _, a := range attempts {
		attempted[a.QuizID] = struct{}{}
	}

	views := make([]domain.QuizView, 0, len(quizzes))
	for _, quiz := range quizzes {
		if quiz.IsDeleted {
			continue
		}
		if _, ok := attempted[quiz.ID]; ok {
			continue
		}
		views = append(views, quiz.View())
	}
	return views, nil
}

// DashboardSummary builds the admin dashboard.
func (s *StatsService) DashboardSummary(ctx context.Context, opts DashboardOptions) (domain.DashboardSummary, error) {
	var (
		summary domain.DashboardSummary
		recent  []domain.Quiz
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.Stats.TotalUsers, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.Stats.TotalLessons, err = s.lessons.CountLessons(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.Stats.TotalQuizzes, err = s.quizzes.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.quizzes.List(gctx, ListOptions{})
		return err
	})
	g.Go(func() (err error) {
		summary.Leaderboard, err = s.Leaderboard(gctx, opts.LeaderboardLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.DashboardSummary{}, err
	}

	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UpdatedAt.After(recent[j].UpdatedAt)
	})
	if opts.RecentQuizzes > 0 && len(recent) > opts.RecentQuizzes {
		recent = recent[:opts.RecentQuizzes]
	}

	summary.RecentQuizzes = make([]domain.QuizSummary, 0, len(recent))
	for _, quiz := range recent {
		stats, err := s.QuizStats(ctx, quiz.ID)
		if err != nil {
			return domain.DashboardSummary{}, err
		}
		summary.RecentQuizzes = append(summary.RecentQuizzes, domain.QuizSummary{
			ID:        quiz.ID,
			Title:     quiz.Title,
			Grade:     quiz.Grade,
			IsDeleted: quiz.IsDeleted,
			UpdatedAt: quiz.UpdatedAt,
			Stats:     stats,
		})
	}
	return summary, nil
}

// StudentSummary builds a student's home dashboard.
func (s *StatsService) StudentSummary(ctx context.Context, userID string, leaderboardLimit, activityLimit int) (domain.StudentSummary, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return domain.StudentSummary{}, err
	}
	attempts, err := s.attempts.FindByUser(ctx, userID)
	if err != nil {
		return domain.StudentSummary{}, err
	}

	summary := domain.StudentSummary{
		UserID:           user.ID,
		Name:             user.Name,
		Grade:            user.Grade,
		QuizzesCompleted: len(attempts),
	}
	for _, a := range attempts {
		summary.TotalScore += a.Score
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.LessonsCompleted, err = s.activities.CountDistinct(gctx, userID, domain.ActivityLesson)
		return err
	})
	g.Go(func() (err error) {
		summary.LatestActivities, err = s.activities.Latest(gctx, userID, activityLimit)
		return err
	})
	g.Go(func() (err error) {
		summary.Leaderboard, err = s.GradeLeaderboard(gctx, user.Grade, leaderboardLimit)
		return err
	})
	g.Go(func() (err error) {
		summary.RecommendedQuizzes, err = s.UnattemptedQuizzes(gctx, userID, user.Grade)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.StudentSummary{}, err
	}
	return summary, nil
}
