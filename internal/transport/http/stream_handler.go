package http

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"footy-quiz-service/internal/app"
	"footy-quiz-service/internal/domain"
)

// StreamHandler pushes leaderboard snapshots over a websocket whenever a
// submission lands. Clients receive the current standing immediately on
// connect.
type StreamHandler struct {
	quizzes     *app.QuizService
	broadcaster *app.LeaderboardBroadcaster
	upgrader    websocket.Upgrader
	log         *zap.Logger
}

func NewStreamHandler(quizzes *app.QuizService, broadcaster *app.LeaderboardBroadcaster, log *zap.Logger) *StreamHandler {
	return &StreamHandler{
		quizzes:     quizzes,
		broadcaster: broadcaster,
		log:         log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type leaderboardMessage struct {
	Type        string                    `json:"type"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

// ServeStream upgrades the connection and relays snapshots until the client
// disconnects.
func (h *StreamHandler) ServeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Subscribe before the initial snapshot so no update can fall between.
	updates, cancel := h.broadcaster.Subscribe()
	defer cancel()

	initial, err := h.quizzes.Leaderboard(r.Context())
	if err != nil {
		h.log.Warn("initial leaderboard snapshot failed", zap.Error(err))
		return
	}
	if err := conn.WriteJSON(leaderboardMessage{Type: "leaderboard", Leaderboard: initial}); err != nil {
		return
	}

	// drain inbound frames so close frames are processed
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case entries, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(leaderboardMessage{Type: "leaderboard", Leaderboard: entries}); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
