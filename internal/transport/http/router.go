package http

import (
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

// NewRouter wires the HTTP surface: REST endpoints, the leaderboard stream,
// CORS for cross-origin mini-app clients, and request logging.
func NewRouter(handler *Handler, stream *StreamHandler, log *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /auth/telegram", handler.TelegramAuth)
	mux.HandleFunc("POST /admin/quiz", handler.RequireAdmin(handler.UploadQuiz))
	mux.HandleFunc("GET /quiz/active", handler.ActiveQuizzes)
	mux.HandleFunc("POST /quiz/submit", handler.RequireAuth(handler.SubmitQuiz))
	mux.HandleFunc("GET /leaderboard/global", handler.GlobalLeaderboard)
	mux.HandleFunc("GET /leaderboard/stream", stream.ServeStream)

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	return RequestLogger(log, corsWrapper.Handler(mux))
}
