package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"eduplay-service/internal/domain"
)

// CatalogLoader fetches catalog content from a backing store.
type CatalogLoader interface {
	GameByName(ctx context.Context, name string) (domain.Game, error)
	QuizByID(ctx context.Context, id int64) (domain.Quiz, error)
	AnswerKeys(ctx context.Context, quizID int64) ([]domain.AnswerKey, error)
}

// CatalogCache caches catalog content in Redis and falls back to a loader
// on cache miss. Game and quiz metadata are stored as JSON values; answer
// keys use a pair of hashes so grading never deserializes whole quizzes:
//
//	HSET quiz:{quizID}:answers {questionID} {optionLetter}
//	HSET quiz:{quizID}:points  {questionID} {points}
type CatalogCache struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogCache(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) GameByName(ctx context.Context, name string) (domain.Game, error) {
	key := "game:" + name

	var cached domain.Game
	if c.getJSON(ctx, key, &cached) {
		return cached, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		var cached domain.Game
		if c.getJSON(ctx, key, &cached) {
			return cached, nil
		}
		game, err := c.loader.GameByName(ctx, name)
		if err != nil {
			return domain.Game{}, err
		}
		c.setJSON(ctx, key, game)
		return game, nil
	})
	if err != nil {
		return domain.Game{}, err
	}
	return result.(domain.Game), nil
}

func (c *CatalogCache) QuizByID(ctx context.Context, id int64) (domain.Quiz, error) {
	key := quizKey(id)

	var cached domain.Quiz
	if c.getJSON(ctx, key, &cached) {
		return cached, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		var cached domain.Quiz
		if c.getJSON(ctx, key, &cached) {
			return cached, nil
		}
		quiz, err := c.loader.QuizByID(ctx, id)
		if err != nil {
			return domain.Quiz{}, err
		}
		c.setJSON(ctx, key, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *CatalogCache) AnswerKeys(ctx context.Context, quizID int64) ([]domain.AnswerKey, error) {
	answerKey := answersKey(quizID)
	pointKey := pointsKey(quizID)

	answers, err := c.client.HGetAll(ctx, answerKey).Result()
	if err == nil && len(answers) > 0 {
		pointsMap, _ := c.client.HGetAll(ctx, pointKey).Result()
		return buildKeysFromCache(answers, pointsMap), nil
	}

	result, err, _ := c.sf.Do(answerKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		answers, err := c.client.HGetAll(ctx, answerKey).Result()
		if err == nil && len(answers) > 0 {
			pointsMap, _ := c.client.HGetAll(ctx, pointKey).Result()
			return buildKeysFromCache(answers, pointsMap), nil
		}

		keys, err := c.loader.AnswerKeys(ctx, quizID)
		if err != nil {
			return nil, err
		}

		ttl := c.ttlWithJitter()
		pipe := c.client.Pipeline()
		for _, k := range keys {
			field := strconv.FormatInt(k.QuestionID, 10)
			pipe.HSet(ctx, answerKey, field, k.Correct)
			pipe.HSet(ctx, pointKey, field, k.Points)
		}
		if ttl > 0 {
			pipe.Expire(ctx, answerKey, ttl)
			pipe.Expire(ctx, pointKey, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return keys, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.AnswerKey), nil
}

// getJSON loads and decodes a cached JSON value into dst, reporting whether
// the key was present and valid.
func (c *CatalogCache) getJSON(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// setJSON stores a value as JSON best-effort; a failed cache write never
// fails the lookup that triggered it.
func (c *CatalogCache) setJSON(ctx context.Context, key string, value interface{}) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
}

func quizKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10)
}

func answersKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":answers"
}

func pointsKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":points"
}

func buildKeysFromCache(answers map[string]string, pointsMap map[string]string) []domain.AnswerKey {
	keys := make([]domain.AnswerKey, 0, len(answers))
	for field, letter := range answers {
		questionID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		points := 10
		if pStr, ok := pointsMap[field]; ok {
			if p, err := strconv.Atoi(pStr); err == nil && p > 0 {
				points = p
			}
		}
		keys = append(keys, domain.AnswerKey{
			QuestionID: questionID,
			Correct:    letter,
			Points:     points,
		})
	}
	return keys
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
