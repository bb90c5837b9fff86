package http

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"footy-quiz-service/internal/token"
)

// TokenParser validates a bearer token and returns its claims.
type TokenParser interface {
	Parse(tokenString string) (*token.Claims, error)
}

// RequireAuth extracts and validates the bearer token, then calls next with
// the authenticated subject.
func (h *Handler) RequireAuth(next func(w http.ResponseWriter, r *http.Request, subject string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := h.authenticate(w, r)
		if !ok {
			return
		}
		next(w, r, subject)
	}
}

// RequireAdmin additionally checks the subject against the configured
// admin user id.
func (h *Handler) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject, ok := h.authenticate(w, r)
		if !ok {
			return
		}
		if subject != h.adminUserID {
			h.log.Warn("admin endpoint called by non-admin", zap.String("subject", subject))
			h.writeError(w, http.StatusForbidden, "Forbidden: User is not the designated admin.")
			return
		}
		next(w, r)
	}
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		h.writeError(w, http.StatusUnauthorized, "Unauthorized: Missing or invalid token.")
		return "", false
	}
	claims, err := h.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		h.writeError(w, http.StatusUnauthorized, "Unauthorized: Missing or invalid token.")
		return "", false
	}
	return claims.Subject, true
}

// RequestLogger tags each request with an id and logs method, path, status
// and duration.
func RequestLogger(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		log.Info("http request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack lets the websocket upgrade pass through the logging wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying writer does not support hijacking")
	}
	return hj.Hijack()
}
