package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"grid-quiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// GridFetcher loads a quiz grid from the backing repository.
type GridFetcher interface {
	Fetch(ctx context.Context, quizID string) (domain.Quiz, error)
}

// GridCache caches fetched grids with TTL to keep the play view off the
// database on every action.
type GridCache struct {
	fetcher GridFetcher
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedGrid
}

type cachedGrid struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewGridCache(fetcher GridFetcher, ttl time.Duration) *GridCache {
	return &GridCache{
		fetcher: fetcher,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedGrid),
	}
}

func (c *GridCache) Fetch(ctx context.Context, quizID string) (domain.Quiz, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.quiz.Clone(), nil
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

		quiz, err := c.fetcher.Fetch(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedGrid{
			quiz:      quiz,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz).Clone(), nil
}

// Invalidate drops the cached grid after a replace or delete.
func (c *GridCache) Invalidate(_ context.Context, quizID string) {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.mu.Unlock()
}

func (c *GridCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
