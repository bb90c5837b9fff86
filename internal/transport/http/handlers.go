// Package http exposes the REST and websocket surface of the quiz service.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"footy-quiz-service/internal/app"
	"footy-quiz-service/internal/domain"
)

// Handler carries the use-case services behind the HTTP surface.
type Handler struct {
	auth        *app.AuthService
	quizzes     *app.QuizService
	tokens      TokenParser
	adminUserID string
	log         *zap.Logger
}

func NewHandler(auth *app.AuthService, quizzes *app.QuizService, tokens TokenParser, adminUserID string, log *zap.Logger) *Handler {
	return &Handler{
		auth:        auth,
		quizzes:     quizzes,
		tokens:      tokens,
		adminUserID: adminUserID,
		log:         log,
	}
}

type authRequest struct {
	InitData string `json:"initData"`
}

type authResponse struct {
	CustomToken string `json:"customToken"`
	TelegramID  string `json:"telegramId"`
}

// TelegramAuth exchanges a signed initData payload for a session credential.
func (h *Handler) TelegramAuth(w http.ResponseWriter, r *http.Request) {
	var body authRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.InitData == "" {
		h.writeError(w, http.StatusBadRequest, "Missing initData in payload.")
		return
	}

	credential, identity, err := h.auth.Login(r.Context(), body.InitData)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, authResponse{CustomToken: credential, TelegramID: identity.TelegramID})
}

// UploadQuiz is the admin path: persists both quiz projections.
// RequireAdmin has already checked the bearer subject.
func (h *Handler) UploadQuiz(w http.ResponseWriter, r *http.Request) {
	var quiz domain.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil || quiz.QuizID == "" || len(quiz.Questions) == 0 {
		h.writeError(w, http.StatusBadRequest, "Invalid request body or missing quizId/questions.")
		return
	}

	if err := h.quizzes.Publish(r.Context(), quiz); err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Quiz " + quiz.QuizID + " uploaded successfully.",
		"quizId":  quiz.QuizID,
	})
}

// ActiveQuizzes lists public projections of unexpired quizzes.
func (h *Handler) ActiveQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListActive(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

type submitResponse struct {
	PointsEarned int `json:"pointsEarned"`
	CorrectCount int `json:"correctCount"`
	TotalScore   int `json:"totalScore"`
}

// SubmitQuiz grades an authenticated submission, exactly once per
// (user, quiz).
func (h *Handler) SubmitQuiz(w http.ResponseWriter, r *http.Request, subject string) {
	var submission domain.Submission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil || submission.QuizID == "" || submission.Answers == nil {
		h.writeError(w, http.StatusBadRequest, "Invalid payload.")
		return
	}

	result, err := h.quizzes.Submit(r.Context(), subject, submission)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, submitResponse{
		PointsEarned: result.PointsEarned,
		CorrectCount: result.CorrectCount,
		TotalScore:   result.TotalScore,
	})
}

// GlobalLeaderboard returns the public top-50 view.
func (h *Handler) GlobalLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.quizzes.Leaderboard(r.Context())
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Warn("write response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

// writeDomainError maps domain errors onto the HTTP contract. Anything
// unrecognized collapses to a generic 500; details stay in the server log.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrMissingSignature),
		errors.Is(err, domain.ErrSignatureMismatch),
		errors.Is(err, domain.ErrMissingUser):
		h.writeError(w, http.StatusUnauthorized, "Invalid or expired Telegram initiation data.")
	case errors.Is(err, domain.ErrInvalidQuiz):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrQuizNotFound):
		h.writeError(w, http.StatusNotFound, "Quiz not found or expired.")
	case errors.Is(err, domain.ErrAlreadyCompleted):
		h.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrTransactionTimeout):
		h.writeError(w, http.StatusServiceUnavailable, "Transaction timed out. Try again.")
	default:
		h.log.Error("request failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}
