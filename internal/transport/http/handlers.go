package http

import (
	"net/http"
	"strconv"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
	"github.com/gorilla/mux"
)

// API holds the REST handlers.
type API struct {
	svc Services
	cfg RouterConfig
}

type submitRequest struct {
	Answers          []domain.SubmittedAnswer `json:"questions"`
	TimeTakenSeconds *int                     `json:"timeTaken,omitempty"`
}

func (a *API) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.svc.Quizzes.QuizzesForUser(r.Context(), userFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.svc.Quizzes.GetQuiz(r.Context(), mux.Vars(r)["id"], userFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) submitAttempt(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	attempt, err := a.svc.Quizzes.SubmitAttempt(r.Context(), domain.Submission{
		QuizID:           mux.Vars(r)["id"],
		UserID:           userFrom(r.Context()).ID,
		Answers:          req.Answers,
		TimeTakenSeconds: req.TimeTakenSeconds,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

func (a *API) attemptForQuiz(w http.ResponseWriter, r *http.Request) {
	attempt, err := a.svc.Quizzes.AttemptFor(r.Context(), userFrom(r.Context()).ID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (a *API) listAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := a.svc.Quizzes.AttemptsForUser(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (a *API) reviewAttempt(w http.ResponseWriter, r *http.Request) {
	review, err := a.svc.Quizzes.Review(r.Context(), mux.Vars(r)["id"], userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (a *API) studentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.svc.Stats.StudentSummary(r.Context(), userFrom(r.Context()).ID, a.cfg.LeaderboardLimit, a.cfg.ActivityLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", a.cfg.LeaderboardLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := a.svc.Stats.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := a.svc.Stats.DashboardSummary(r.Context(), app.DashboardOptions{
		RecentQuizzes:    a.cfg.RecentQuizzes,
		LeaderboardLimit: a.cfg.LeaderboardLimit,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) adminListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.svc.Admin.List(r.Context(), r.URL.Query().Get("deleted") == "true")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) createQuiz(w http.ResponseWriter, r *http.Request) {
	var in app.QuizInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := a.svc.Admin.CreateQuiz(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (a *API) adminGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.svc.Admin.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) updateQuizInfo(w http.ResponseWriter, r *http.Request) {
	var in app.QuizInfoInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := a.svc.Admin.UpdateInfo(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) softDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Admin.SoftDelete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) restoreQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.svc.Admin.Restore(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) hardDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Admin.HardDelete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) quizStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.Stats.QuizStats(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) addQuestions(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Questions []app.QuestionInput `json:"questions"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := a.svc.Admin.AddQuestions(r.Context(), mux.Vars(r)["id"], in.Questions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var patch app.QuestionPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	vars := mux.Vars(r)
	quiz, err := a.svc.Admin.UpdateQuestion(r.Context(), vars["id"], vars["questionId"], patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	quiz, err := a.svc.Admin.DeleteQuestion(r.Context(), vars["id"], vars["questionId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) adminReviewAttempt(w http.ResponseWriter, r *http.Request) {
	review, err := a.svc.Quizzes.ReviewAttempt(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError(name, raw, "must be an integer")
	}
	return n, nil
}
