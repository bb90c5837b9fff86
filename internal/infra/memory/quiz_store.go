package memory

import (
	"context"
	"sort"
	"sync"

	"footy-quiz-service/internal/domain"
)

// QuizStore keeps both quiz projections in memory. It doubles as the
// QuizLoader behind a cache and as the durable store for store-less runs.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]domain.Quiz)}
}

// NewQuizStoreWith seeds the store, useful in tests and demo mode.
func NewQuizStoreWith(quizzes ...domain.Quiz) *QuizStore {
	store := NewQuizStore()
	for _, quiz := range quizzes {
		store.quizzes[quiz.QuizID] = quiz
	}
	return store
}

func (s *QuizStore) SaveQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.QuizID] = quiz
	return nil
}

func (s *QuizStore) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *QuizStore) ListActive(_ context.Context, nowMillis int64) ([]domain.PublicQuiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]domain.PublicQuiz, 0)
	for _, quiz := range s.quizzes {
		if quiz.ExpiresAt > nowMillis {
			active = append(active, quiz.Public())
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].QuizID < active[j].QuizID })
	return active, nil
}
