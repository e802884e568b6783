package redis

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// AnswerKeyLoader fetches the grading projection of a live quiz from a backing store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error)
}

// AnswerKeyCache caches answer keys in Redis and falls back to a loader on cache miss.
// Answers are stored as: HSET quiz:{quizID}:answers {questionID} {letter}
// Metadata is stored as: HSET quiz:{quizID}:meta title {title} grade {grade}
// Invalidate increments quiz:{quizID}:gen; a fill only writes while the
// generation it read before loading is still current.
type AnswerKeyCache struct {
	client *redis.Client
	loader AnswerKeyLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

var _ app.AnswerKeyRepository = (*AnswerKeyCache)(nil)

func NewAnswerKeyCache(client *redis.Client, loader AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	if key, ok := c.cached(ctx, quizID); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if key, ok := c.cached(ctx, quizID); ok {
			return key, nil
		}

		gen, err := c.generation(ctx, quizID)
		if err != nil {
			return nil, fmt.Errorf("read generation %s: %w", quizID, err)
		}

		key, err := c.loader.LoadAnswerKey(ctx, quizID)
		if err != nil {
			return domain.AnswerKey{}, err
		}
		if err := c.store(ctx, quizID, key, gen); err != nil {
			return nil, err
		}
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

func (c *AnswerKeyCache) Invalidate(ctx context.Context, quizID string) error {
	c.sf.Forget(quizID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.genKey(quizID))
		pipe.Del(ctx, c.answersKey(quizID), c.metaKey(quizID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate answer key %s: %w", quizID, err)
	}
	return nil
}

func (c *AnswerKeyCache) generation(ctx context.Context, quizID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(quizID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// store writes the key under WATCH on the generation counter. A stale or
// concurrently invalidated fill is skipped.
func (c *AnswerKeyCache) store(ctx context.Context, quizID string, key domain.AnswerKey, gen int64) error {
	genKey := c.genKey(quizID)
	answersKey, metaKey := c.answersKey(quizID), c.metaKey(quizID)
	ttl := c.ttlWithJitter()

	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, answersKey, metaKey)
			for questionID, letter := range key.Answers {
				pipe.HSet(ctx, answersKey, questionID, letter)
			}
			pipe.HSet(ctx, metaKey, "title", key.Title, "grade", key.Grade)
			if ttl > 0 {
				pipe.Expire(ctx, answersKey, ttl)
				pipe.Expire(ctx, metaKey, ttl)
			}
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("cache answer key %s: %w", quizID, err)
	}
	return nil
}

func (c *AnswerKeyCache) cached(ctx context.Context, quizID string) (domain.AnswerKey, bool) {
	answers, err := c.client.HGetAll(ctx, c.answersKey(quizID)).Result()
	if err != nil || len(answers) == 0 {
		return domain.AnswerKey{}, false
	}
	meta, err := c.client.HGetAll(ctx, c.metaKey(quizID)).Result()
	if err != nil || len(meta) == 0 {
		return domain.AnswerKey{}, false
	}
	return domain.AnswerKey{
		QuizID:  quizID,
		Title:   meta["title"],
		Grade:   meta["grade"],
		Answers: answers,
	}, true
}

func (c *AnswerKeyCache) answersKey(quizID string) string {
	return "quiz:" + quizID + ":answers"
}

func (c *AnswerKeyCache) metaKey(quizID string) string {
	return "quiz:" + quizID + ":meta"
}

func (c *AnswerKeyCache) genKey(quizID string) string {
	return "quiz:" + quizID + ":gen"
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
