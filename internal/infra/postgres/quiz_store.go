// Package postgres is the durable home of quiz definitions: the secure copy
// with answer keys and the public, answer-free projection.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"footy-quiz-service/internal/domain"
)

type QuizStore struct {
	pool *pgxpool.Pool
}

func NewQuizStore(pool *pgxpool.Pool) *QuizStore {
	return &QuizStore{pool: pool}
}

// SaveQuiz upserts both projections in one statement. The admin upload path
// is the only writer.
func (s *QuizStore) SaveQuiz(ctx context.Context, quiz domain.Quiz) error {
	secure, err := json.Marshal(quiz)
	if err != nil {
		return fmt.Errorf("marshal secure quiz: %w", err)
	}
	public, err := json.Marshal(quiz.Public())
	if err != nil {
		return fmt.Errorf("marshal public quiz: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO quizzes (id, secure_data, public_data, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET secure_data = EXCLUDED.secure_data,
		    public_data = EXCLUDED.public_data,
		    expires_at  = EXCLUDED.expires_at`,
		quiz.QuizID, secure, public, quiz.ExpiresAt)
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

// LoadQuiz returns the secure copy by id. Expiry is deliberately not
// checked here, submissions against an expired quiz still resolve.
func (s *QuizStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT secure_data FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return quiz, nil
}

// ListActive returns public projections of quizzes that expire after
// nowMillis.
func (s *QuizStore) ListActive(ctx context.Context, nowMillis int64) ([]domain.PublicQuiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT public_data FROM quizzes WHERE expires_at > $1 ORDER BY expires_at`, nowMillis)
	if err != nil {
		return nil, fmt.Errorf("list active quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.PublicQuiz, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan quiz row: %w", err)
		}
		var quiz domain.PublicQuiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, fmt.Errorf("unmarshal public quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, rows.Err()
}
