package redis

import (
	"context"
	"testing"
	"time"

	"footy-quiz-service/internal/domain"
	"footy-quiz-service/internal/infra/memory"
)

func TestQuizCacheCachesInRedis(t *testing.T) {
	mr, client := newTestRedis(t)
	defer mr.Close()

	loader := &countingLoader{QuizLoader: memory.NewQuizStoreWith(sampleQuiz())}
	cache := NewQuizCache(client, loader, "footy-test", time.Minute)
	ctx := context.Background()

	quiz, err := cache.GetQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if len(quiz.Questions) != 2 || quiz.Questions[0].CorrectAnswer == "" {
		t.Fatalf("secure copy not intact: %+v", quiz)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call should hit the cached document.
	if _, err := cache.GetQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestQuizCacheInvalidateForcesReload(t *testing.T) {
	mr, client := newTestRedis(t)
	defer mr.Close()

	loader := &countingLoader{QuizLoader: memory.NewQuizStoreWith(sampleQuiz())}
	cache := NewQuizCache(client, loader, "footy-test", time.Minute)
	ctx := context.Background()

	_, _ = cache.GetQuiz(ctx, "quiz-1")
	if err := cache.Invalidate(ctx, "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("app:footy-test:quiz:quiz-1:secure") {
		t.Fatalf("expected cached document removed")
	}
	_, _ = cache.GetQuiz(ctx, "quiz-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidation, got %d", loader.calls)
	}
}

func TestQuizCachePropagatesNotFound(t *testing.T) {
	mr, client := newTestRedis(t)
	defer mr.Close()

	cache := NewQuizCache(client, memory.NewQuizStore(), "footy-test", time.Minute)
	if _, err := cache.GetQuiz(context.Background(), "nope"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

type countingLoader struct {
	memory.QuizLoader
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
			{QuestionID: "q2", Prompt: "How long is a half?", Options: []string{"45", "60"}, CorrectAnswer: "45"},
		},
		ExpiresAt: time.Now().Add(time.Hour).UnixMilli(),
	}
}
