package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"footy-quiz-service/internal/domain"
	"footy-quiz-service/internal/infra/memory"
)

// QuizCache keeps the secure quiz document (answer keys included) as a JSON
// string in Redis and falls back to the durable loader on a miss. Concurrent
// misses collapse into a single load.
type QuizCache struct {
	client *redis.Client
	loader memory.QuizLoader
	appID  string
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, loader memory.QuizLoader, appID string, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		loader: loader,
		appID:  appID,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	key := c.quizKey(quizID)

	if quiz, ok := c.cached(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.cached(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		raw, err := json.Marshal(quiz)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("marshal quiz: %w", err)
		}
		// best-effort fill, scoring works off the loaded copy either way
		_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached secure copy after an admin re-upload.
func (c *QuizCache) Invalidate(ctx context.Context, quizID string) error {
	return c.client.Del(ctx, c.quizKey(quizID)).Err()
}

func (c *QuizCache) cached(ctx context.Context, key string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil and flaky-cache errors are both just a miss
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) quizKey(quizID string) string {
	return "app:" + c.appID + ":quiz:" + quizID + ":secure"
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
