package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/config"
	"mathfalta-service/internal/infra/memory"
	"mathfalta-service/internal/infra/postgres"
	infraredis "mathfalta-service/internal/infra/redis"
	transport "mathfalta-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// stores are the backends selected by configuration.
type stores struct {
	quizzes    app.QuizStore
	keys       app.AnswerKeyRepository
	attempts   app.AttemptStore
	users      app.UserDirectory
	activities app.ActivityLog
	lessons    app.LessonCounter
	images     app.ImageStore
	closers    []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	defs := app.NewQuizDefinitions(st.quizzes, st.keys)
	stats := app.NewStatsService(st.quizzes, st.attempts, st.users, st.lessons, st.activities)
	feed := app.NewLeaderboardFeed(stats, cfg.Leaderboard.Limit)
	quizzes := app.NewQuizService(defs, st.attempts, st.users, st.activities)
	quizzes.AddListener(feed)
	admin := app.NewQuizAdmin(st.quizzes, defs, st.images)

	handler := transport.NewRouter(transport.Services{
		Quizzes: quizzes,
		Admin:   admin,
		Stats:   stats,
		Feed:    feed,
		Users:   st.users,
	}, transport.RouterConfig{
		AdminToken:       cfg.Server.AdminToken,
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		LeaderboardLimit: cfg.Leaderboard.Limit,
		ActivityLimit:    cfg.Activity.Latest,
		RecentQuizzes:    4,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting mathfalta service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStores picks Postgres when a URL is configured and in-memory stores otherwise.
// Redis, when configured, fronts answer keys and holds the activity feed.
func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	st := &stores{images: memory.NewImageLog(log.Default())}
	unique := !cfg.Attempts.AllowMultiple

	var loader memory.AnswerKeyLoader
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		db := postgres.Open(cfg.Postgres.URL)
		st.closers = append(st.closers, func() { _ = db.Close() })

		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			st.close()
			return nil, err
		}
		st.closers = append(st.closers, pool.Close)

		st.quizzes = postgres.NewQuizStore(db)
		st.attempts = postgres.NewAttemptStore(db, unique)
		st.users = postgres.NewUserDirectory(db)
		st.activities = postgres.NewActivityLog(db)
		st.lessons = postgres.NewLessonCounter(db)
		loader = postgres.NewAnswerKeyLoader(pool)
	} else {
		log.Printf("postgres not configured, using in-memory stores with sample data")
		quizzes := memory.NewQuizStore(sampleQuizzes()...)
		st.quizzes = quizzes
		st.attempts = memory.NewAttemptStore(unique)
		st.users = memory.NewUserDirectory(sampleUsers()...)
		st.activities = memory.NewActivityLog()
		st.lessons = memory.NewLessonCounter(0)
		loader = memory.NewStoreKeyLoader(quizzes)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		st.closers = append(st.closers, func() { _ = client.Close() })
		st.keys = infraredis.NewAnswerKeyCache(client, loader, quizTTL)
		st.activities = infraredis.NewActivityLog(client, cfg.Activity.FeedLength)
	} else {
		st.keys = memory.NewAnswerKeyCache(loader, quizTTL)
	}
	return st, nil
}
