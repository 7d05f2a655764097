// Package cache wraps the quiz repository with a read-through cache for
// single-quiz lookups. Quizzes are immutable once created, so entries only
// ever expire.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"sync"
	"time"

	"quizportal/models"
	"quizportal/services"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RedisQuizRepository caches quizzes as JSON under quiz:{id} with a jittered TTL.
type RedisQuizRepository struct {
	services.QuizRepository
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group
	mu     sync.Mutex
	rnd    *rand.Rand
}

func NewRedisQuizRepository(client *redis.Client, next services.QuizRepository, ttl time.Duration) *RedisQuizRepository {
	return &RedisQuizRepository{
		QuizRepository: next,
		client:         client,
		ttl:            ttl,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *RedisQuizRepository) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	if quiz, ok := r.lookup(ctx, id); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Another caller may have filled the cache while we waited.
		if quiz, ok := r.lookup(ctx, id); ok {
			return quiz, nil
		}
		quiz, err := r.QuizRepository.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(quiz)
		if err != nil {
			return nil, err
		}
		if err := r.client.Set(ctx, key(id), data, r.ttlWithJitter()).Err(); err != nil {
			log.Printf("quiz cache: set %s: %v", id, err)
		}
		return quiz, nil
	})
	if err != nil {
		return nil, err
	}
	quiz := *result.(*models.Quiz)
	return &quiz, nil
}

func (r *RedisQuizRepository) lookup(ctx context.Context, id string) (*models.Quiz, bool) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("quiz cache: get %s: %v", id, err)
		}
		return nil, false
	}
	var quiz models.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		log.Printf("quiz cache: decode %s: %v", id, err)
		return nil, false
	}
	return &quiz, true
}

func (r *RedisQuizRepository) ttlWithJitter() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return withJitter(r.ttl, r.rnd)
}

func key(id string) string {
	return "quiz:" + id
}

// MemoryQuizRepository is the in-process variant used when Redis is not configured.
type MemoryQuizRepository struct {
	services.QuizRepository
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu      sync.RWMutex
	entries map[string]cachedQuiz
}

type cachedQuiz struct {
	quiz      models.Quiz
	expiresAt time.Time
}

func NewMemoryQuizRepository(next services.QuizRepository, ttl time.Duration) *MemoryQuizRepository {
	return &MemoryQuizRepository{
		QuizRepository: next,
		ttl:            ttl,
		clock:          time.Now,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
		entries:        make(map[string]cachedQuiz),
	}
}

func (r *MemoryQuizRepository) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	if quiz, ok := r.lookup(id); ok {
		return quiz, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		if quiz, ok := r.lookup(id); ok {
			return quiz, nil
		}
		quiz, err := r.QuizRepository.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.entries[id] = cachedQuiz{quiz: *quiz, expiresAt: r.clock().Add(withJitter(r.ttl, r.rnd))}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return nil, err
	}
	quiz := *result.(*models.Quiz)
	return &quiz, nil
}

func (r *MemoryQuizRepository) lookup(id string) (*models.Quiz, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	quiz := entry.quiz
	return &quiz, true
}

// withJitter adds up to 10% to ttl to spread expirations. The caller must
// serialise access to rnd.
func withJitter(ttl time.Duration, rnd *rand.Rand) time.Duration {
	if ttl <= 0 {
		return 0
	}
	jitterMax := int64(ttl) / 10
	return ttl + time.Duration(rnd.Int63n(jitterMax+1))
}
