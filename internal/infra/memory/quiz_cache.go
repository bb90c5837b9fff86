package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"footy-quiz-service/internal/domain"
)

// QuizLoader fetches the secure quiz copy from the durable store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizCache keeps secure quiz copies with a TTL so repeated submissions do
// not hammer the durable store. Concurrent misses for the same quiz collapse
// into a single load.
type QuizCache struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
	}
}

func (c *QuizCache) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.quiz, nil
		}
		c.mu.RUnlock()

		quiz, err := c.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedQuiz{quiz: quiz, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached copy after a re-upload.
func (c *QuizCache) Invalidate(_ context.Context, quizID string) error {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.mu.Unlock()
	return nil
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
