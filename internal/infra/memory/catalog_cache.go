package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"eduplay-service/internal/domain"
)

// CatalogLoader fetches catalog content from a backing store.
type CatalogLoader interface {
	GameByName(ctx context.Context, name string) (domain.Game, error)
	QuizByID(ctx context.Context, id int64) (domain.Quiz, error)
	AnswerKeys(ctx context.Context, quizID int64) ([]domain.AnswerKey, error)
}

// CatalogCache caches catalog lookups with TTL to avoid repeated store
// hits on the hot submit and grading paths. Concurrent misses for the
// same key collapse into a single load.
type CatalogCache struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedValue
}

type cachedValue struct {
	value     interface{}
	expiresAt time.Time
}

func NewCatalogCache(loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedValue),
	}
}

func (c *CatalogCache) GameByName(ctx context.Context, name string) (domain.Game, error) {
	value, err := c.get(ctx, "game:"+name, func() (interface{}, error) {
		return c.loader.GameByName(ctx, name)
	})
	if err != nil {
		return domain.Game{}, err
	}
	return value.(domain.Game), nil
}

func (c *CatalogCache) QuizByID(ctx context.Context, id int64) (domain.Quiz, error) {
	value, err := c.get(ctx, fmt.Sprintf("quiz:%d", id), func() (interface{}, error) {
		return c.loader.QuizByID(ctx, id)
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return value.(domain.Quiz), nil
}

func (c *CatalogCache) AnswerKeys(ctx context.Context, quizID int64) ([]domain.AnswerKey, error) {
	value, err := c.get(ctx, fmt.Sprintf("quiz:%d:answers", quizID), func() (interface{}, error) {
		return c.loader.AnswerKeys(ctx, quizID)
	})
	if err != nil {
		return nil, err
	}
	return value.([]domain.AnswerKey), nil
}

func (c *CatalogCache) get(ctx context.Context, key string, load func() (interface{}, error)) (interface{}, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.value, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.value, nil
		}
		c.mu.RUnlock()

		value, err := load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = cachedValue{
			value:     value,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticCatalog is a loader backed by in-memory maps (useful for tests).
type StaticCatalog struct {
	Games   map[string]domain.Game
	Quizzes map[int64]domain.Quiz
	Keys    map[int64][]domain.AnswerKey
}

func (l *StaticCatalog) GameByName(_ context.Context, name string) (domain.Game, error) {
	if game, ok := l.Games[name]; ok {
		return game, nil
	}
	return domain.Game{}, domain.ErrGameNotFound
}

func (l *StaticCatalog) QuizByID(_ context.Context, id int64) (domain.Quiz, error) {
	if quiz, ok := l.Quizzes[id]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (l *StaticCatalog) AnswerKeys(_ context.Context, quizID int64) ([]domain.AnswerKey, error) {
	if keys, ok := l.Keys[quizID]; ok {
		return keys, nil
	}
	return nil, domain.ErrQuizNotFound
}
