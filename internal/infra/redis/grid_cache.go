package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"grid-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// GridFetcher loads a quiz grid from the backing repository.
type GridFetcher interface {
	Fetch(ctx context.Context, quizID string) (domain.Quiz, error)
}

// GridCache caches the fetched grid as one JSON document per quiz
// (key quiz:grid:{quizID}) and falls back to the fetcher on miss.
type GridCache struct {
	client  *redis.Client
	fetcher GridFetcher
	ttl     time.Duration
	sf      singleflight.Group
	rnd     *rand.Rand
}

func NewGridCache(client *redis.Client, fetcher GridFetcher, ttl time.Duration) *GridCache {
	return &GridCache{
		client:  client,
		fetcher: fetcher,
		ttl:     ttl,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *GridCache) Fetch(ctx context.Context, quizID string) (domain.Quiz, error) {
	key := c.key(quizID)

	if quiz, ok := c.cached(ctx, key); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the key.
		if quiz, ok := c.cached(ctx, key); ok {
			return quiz, nil
		}

		quiz, err := c.fetcher.Fetch(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		if raw, err := json.Marshal(quiz); err == nil {
			// Cache writes are best effort; the fetched grid is
			// already in hand.
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate drops the cached grid after a replace or delete.
func (c *GridCache) Invalidate(ctx context.Context, quizID string) {
	_ = c.client.Del(ctx, c.key(quizID)).Err()
}

func (c *GridCache) cached(ctx context.Context, key string) (domain.Quiz, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *GridCache) key(quizID string) string {
	return "quiz:grid:" + quizID
}

func (c *GridCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
