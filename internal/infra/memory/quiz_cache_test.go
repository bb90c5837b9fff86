package memory

import (
	"context"
	"testing"
	"time"

	"footy-quiz-service/internal/domain"
)

func TestQuizCacheCaches(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewQuizStoreWith(sampleQuiz())}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := cache.GetQuiz(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestQuizCacheInvalidateForcesReload(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewQuizStoreWith(sampleQuiz())}
	cache := NewQuizCache(loader, time.Minute)

	_, _ = cache.GetQuiz(context.Background(), "quiz-1")
	if err := cache.Invalidate(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.GetQuiz(context.Background(), "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidation, loader calls %d", loader.calls)
	}
}

func TestQuizCachePropagatesNotFound(t *testing.T) {
	cache := NewQuizCache(NewQuizStore(), time.Minute)
	if _, err := cache.GetQuiz(context.Background(), "nope"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	QuizLoader
	calls int
}

func (l *countingLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	l.calls++
	return l.QuizLoader.LoadQuiz(ctx, quizID)
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		QuizID: "quiz-1",
		Title:  "Matchday Warmup",
		Questions: []domain.Question{
			{QuestionID: "q1", Prompt: "Who wears number 10?", Options: []string{"A", "B", "C"}, CorrectAnswer: "B"},
			{QuestionID: "q2", Prompt: "Offside calls?", Options: []string{"A", "B"}, CorrectAnswer: "A"},
		},
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
	}
}
