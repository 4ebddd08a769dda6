package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/coban-api/internal/api/shared"
	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/domain/mastery"
	"github.com/phrazzld/coban-api/internal/platform/logger"
	"github.com/phrazzld/coban-api/internal/service/score_session"
)

// ScoreHandler serves the per-user score routes.
type ScoreHandler struct {
	sessions *score_session.Manager
	logger   *slog.Logger
}

// NewScoreHandler creates a ScoreHandler.
func NewScoreHandler(sessions *score_session.Manager, logger *slog.Logger) *ScoreHandler {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("session manager cannot be nil for ScoreHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ScoreHandler")
	}
	return &ScoreHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "score_handler")),
	}
}

// Routes registers the score routes under /users/{userID}.
func (h *ScoreHandler) Routes(r chi.Router) {
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Post("/score", h.InitScore)
		r.Get("/score", h.GetScore)
		r.Delete("/score", h.ResetScore)
		r.Post("/results", h.RecordResults)
		r.Get("/progress", h.GetProgress)
		r.Post("/parents/reset", h.ResetParents)
		r.Get("/parents/{parentID}", h.GetParent)
	})
}

// session opens the path user's session, writing the error response itself
// when that fails.
func (h *ScoreHandler) session(w http.ResponseWriter, r *http.Request, level domain.Level) (*score_session.Session, bool) {
	sess, err := h.sessions.Session(r.Context(), chi.URLParam(r, "userID"), level)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load score")
		return nil, false
	}
	return sess, true
}

func (h *ScoreHandler) respondScore(w http.ResponseWriter, r *http.Request, status int, sess *score_session.Session) {
	summary, _ := sess.Summary()
	shared.RespondWithJSON(w, r, status, ScoreResponse{Score: sess.Current(), Summary: summary})
}

// InitScore handles POST /users/{userID}/score. It loads the user's record,
// creating it at the requested level on first use, and re-reads it when the
// session already exists.
func (h *ScoreHandler) InitScore(w http.ResponseWriter, r *http.Request) {
	var req InitScoreRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	sess, ok := h.session(w, r, domain.Level(req.Level))
	if !ok {
		return
	}
	if err := sess.Refresh(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to load score")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("score initialised",
		slog.String("user_id", sess.UserID()))
	h.respondScore(w, r, http.StatusOK, sess)
}

// GetScore handles GET /users/{userID}/score.
func (h *ScoreHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, "")
	if !ok {
		return
	}
	h.respondScore(w, r, http.StatusOK, sess)
}

// ResetScore handles DELETE /users/{userID}/score.
func (h *ScoreHandler) ResetScore(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, "")
	if !ok {
		return
	}
	if err := sess.Reset(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to reset score")
		return
	}
	h.respondScore(w, r, http.StatusOK, sess)
}

// RecordResults handles POST /users/{userID}/results.
func (h *ScoreHandler) RecordResults(w http.ResponseWriter, r *http.Request) {
	var req RecordResultsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	sess, ok := h.session(w, r, "")
	if !ok {
		return
	}
	if err := sess.RecordResults(r.Context(), req.toDomain()); err != nil {
		HandleAPIError(w, r, err, "Failed to record results")
		return
	}
	h.respondScore(w, r, http.StatusOK, sess)
}

// GetProgress handles GET /users/{userID}/progress. The optional parent and
// exercise query parameters add lesson and exercise progress.
func (h *ScoreHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	parentID := r.URL.Query().Get("parent")
	var exercise domain.ExerciseType
	if raw := r.URL.Query().Get("exercise"); raw != "" {
		t, err := domain.ParseExerciseType(raw)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		exercise = t
	}

	sess, ok := h.session(w, r, "")
	if !ok {
		return
	}

	resp := ProgressResponse{OverallProgress: sess.OverallProgress()}
	if parentID != "" {
		lesson := sess.LessonProgress(parentID)
		resp.LessonProgress = &lesson
	}
	if exercise != "" {
		ex := sess.ExerciseProgress(exercise, parentID)
		resp.ExerciseProgress = &ex
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetParent handles GET /users/{userID}/parents/{parentID}.
func (h *ScoreHandler) GetParent(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r, "")
	if !ok {
		return
	}
	parentID := chi.URLParam(r, "parentID")
	parent, found := sess.ParentMastery(parentID)
	if !found {
		HandleAPIError(w, r, errNotFound, "")
		return
	}

	resp := ParentResponse{
		Mastery:        parent,
		ScorePercent:   mastery.ParentScorePercent(parent),
		LessonProgress: sess.LessonProgress(parentID),
	}
	if acc, ok := sess.ParentAccuracy(parentID); ok {
		resp.Accuracy = &acc
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// ResetParents handles POST /users/{userID}/parents/reset.
func (h *ScoreHandler) ResetParents(w http.ResponseWriter, r *http.Request) {
	var req ResetParentsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	sess, ok := h.session(w, r, "")
	if !ok {
		return
	}
	removed, err := sess.ResetParents(r.Context(), req.ParentIDs...)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reset parents")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ResetParentsResponse{Removed: removed})
}
