package http

import (
	"crypto/subtle"
	"log"
	"net/http"

	"mathfalta-service/internal/app"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterConfig carries the transport settings of the service.
type RouterConfig struct {
	AdminToken       string
	AllowedOrigins   []string
	LeaderboardLimit int
	ActivityLimit    int
	RecentQuizzes    int
}

// Services groups the use cases exposed over HTTP.
type Services struct {
	Quizzes *app.QuizService
	Admin   *app.QuizAdmin
	Stats   *app.StatsService
	Feed    *app.LeaderboardFeed
	Users   app.UserDirectory
}

// NewRouter builds the REST and websocket routes wrapped in CORS handling.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	api := &API{svc: svc, cfg: cfg}
	ws := NewWSHandler(svc.Feed)

	router := mux.NewRouter()
	router.Use(logRequests)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/ws/leaderboard", ws.ServeWS)

	student := router.PathPrefix("/api").Subrouter()
	student.Use(api.requireUser)
	student.HandleFunc("/quizzes", api.listQuizzes).Methods(http.MethodGet)
	student.HandleFunc("/quizzes/{id}", api.getQuiz).Methods(http.MethodGet)
	student.HandleFunc("/quizzes/{id}/attempts", api.submitAttempt).Methods(http.MethodPost)
	student.HandleFunc("/quizzes/{id}/attempt", api.attemptForQuiz).Methods(http.MethodGet)
	student.HandleFunc("/attempts", api.listAttempts).Methods(http.MethodGet)
	student.HandleFunc("/attempts/{id}/review", api.reviewAttempt).Methods(http.MethodGet)
	student.HandleFunc("/me/summary", api.studentSummary).Methods(http.MethodGet)
	student.HandleFunc("/leaderboard", api.leaderboard).Methods(http.MethodGet)

	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(api.requireAdmin)
	admin.HandleFunc("/dashboard", api.dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/quizzes", api.adminListQuizzes).Methods(http.MethodGet)
	admin.HandleFunc("/quizzes", api.createQuiz).Methods(http.MethodPost)
	admin.HandleFunc("/quizzes/{id}", api.adminGetQuiz).Methods(http.MethodGet)
	admin.HandleFunc("/quizzes/{id}", api.updateQuizInfo).Methods(http.MethodPatch)
	admin.HandleFunc("/quizzes/{id}", api.softDeleteQuiz).Methods(http.MethodDelete)
	admin.HandleFunc("/quizzes/{id}/restore", api.restoreQuiz).Methods(http.MethodPost)
	admin.HandleFunc("/quizzes/{id}/permanent", api.hardDeleteQuiz).Methods(http.MethodDelete)
	admin.HandleFunc("/quizzes/{id}/stats", api.quizStats).Methods(http.MethodGet)
	admin.HandleFunc("/quizzes/{id}/questions", api.addQuestions).Methods(http.MethodPost)
	admin.HandleFunc("/quizzes/{id}/questions/{questionId}", api.updateQuestion).Methods(http.MethodPatch)
	admin.HandleFunc("/quizzes/{id}/questions/{questionId}", api.deleteQuestion).Methods(http.MethodDelete)
	admin.HandleFunc("/attempts/{id}/review", api.adminReviewAttempt).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", userHeader, adminHeader},
		MaxAge:         300,
	}).Handler(router)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s %s", r.Method, r.RequestURI, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}

const (
	userHeader  = "X-User-ID"
	adminHeader = "X-Admin-Token"
)

// requireUser resolves the caller from the user directory. Identity is issued upstream.
func (a *API) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(userHeader)
		if userID == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing " + userHeader})
			return
		}
		user, err := a.svc.Users.FindByID(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(adminHeader)
		if a.cfg.AdminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(a.cfg.AdminToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "admin token required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
