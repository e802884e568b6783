package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"mathfalta-service/internal/app"
	"mathfalta-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// AnswerKeyLoader fetches the grading projection of a live quiz from a backing store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error)
}

// AnswerKeyCache caches answer keys with TTL to avoid repeated store hits.
// Invalidate bumps a per-quiz generation; a fill that started under an older
// generation is returned to its callers but never stored.
type AnswerKeyCache struct {
	loader AnswerKeyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	rndMu sync.Mutex
	mu    sync.RWMutex
	cache map[string]cachedKey
	gens  map[string]uint64
}

type cachedKey struct {
	key       domain.AnswerKey
	expiresAt time.Time
}

var _ app.AnswerKeyRepository = (*AnswerKeyCache)(nil)

func NewAnswerKeyCache(loader AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedKey),
		gens:   make(map[string]uint64),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	if key, ok := c.lookup(quizID); ok {
		return key, nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		if key, ok := c.lookup(quizID); ok {
			return key, nil
		}
		gen := c.generation(quizID)

		key, err := c.loader.LoadAnswerKey(ctx, quizID)
		if err != nil {
			return domain.AnswerKey{}, err
		}

		c.mu.Lock()
		if c.gens[quizID] == gen {
			c.cache[quizID] = cachedKey{
				key:       key,
				expiresAt: c.clock().Add(c.ttlWithJitter()),
			}
		}
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return copyKey(result.(domain.AnswerKey)), nil
}

func (c *AnswerKeyCache) Invalidate(_ context.Context, quizID string) error {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.gens[quizID]++
	c.mu.Unlock()
	c.sf.Forget(quizID)
	return nil
}

func (c *AnswerKeyCache) generation(quizID string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[quizID]
}

func (c *AnswerKeyCache) lookup(quizID string) (domain.AnswerKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.AnswerKey{}, false
	}
	return copyKey(entry.key), true
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func copyKey(key domain.AnswerKey) domain.AnswerKey {
	answers := make(map[string]string, len(key.Answers))
	for id, letter := range key.Answers {
		answers[id] = letter
	}
	key.Answers = answers
	return key
}

// StoreKeyLoader derives answer keys from a quiz store. Soft-deleted quizzes are not found.
type StoreKeyLoader struct {
	quizzes app.QuizStore
}

func NewStoreKeyLoader(quizzes app.QuizStore) *StoreKeyLoader {
	return &StoreKeyLoader{quizzes: quizzes}
}

func (l *StoreKeyLoader) LoadAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	quiz, err := l.quizzes.FindByID(ctx, quizID, app.FindOptions{})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return quiz.AnswerKey(), nil
}
