package app

import (
	"context"

	"footy-quiz-service/internal/domain"
)

// ProfileRepository stores per-user profile documents. Update runs fn inside
// an atomic read-modify-write: fn sees the current profile (a fresh one for
// first-time users), mutates it, and the store commits only if the document
// was unchanged in the meantime. An error from fn aborts without writing.
// Stores retry lost optimistic races up to a bound and then return
// domain.ErrTransactionTimeout.
type ProfileRepository interface {
	Update(ctx context.Context, userID string, fn func(p *domain.Profile) error) (domain.Profile, error)
}

// QuizRepository resolves the secure quiz copy (with answer keys),
// typically through a cache in front of the durable store.
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizStore is the durable home of both quiz projections.
type QuizStore interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	ListActive(ctx context.Context, nowMillis int64) ([]domain.PublicQuiz, error)
}

// QuizInvalidator drops a cached secure copy after an admin re-upload.
type QuizInvalidator interface {
	Invalidate(ctx context.Context, quizID string) error
}

// LeaderboardReader returns the top entries of the global scoreboard,
// highest score first, ranks populated.
type LeaderboardReader interface {
	Top(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
}
