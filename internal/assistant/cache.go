package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "librarydesk:assistant:"

// Cache stores answers by key. A miss is reported with ok=false and no error.
type Cache interface {
	Get(ctx context.Context, key string) (answer string, ok bool, err error)
	Set(ctx context.Context, key, answer string, ttl time.Duration) error
}

// CacheKey derives a stable key from the question and the catalog it was asked about.
func CacheKey(prompt, catalogContext string) string {
	sum := sha256.Sum256([]byte(prompt + "\x00" + catalogContext))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// DefaultMemoryCacheSize bounds the in-process answer cache.
const DefaultMemoryCacheSize = 1000

// memorySweepInterval is how often Set scans for expired entries.
const memorySweepInterval = time.Minute

type memoryEntry struct {
	answer    string
	storedAt  time.Time
	expiresAt time.Time
}

// MemoryCache is a process-local Cache used when Redis is not configured.
// Expired entries are swept on Set; when full, the oldest entry is evicted.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	lastSweep  time.Time
	now        func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return NewBoundedMemoryCache(DefaultMemoryCacheSize)
}

// NewBoundedMemoryCache creates a cache holding at most maxEntries answers.
// Non-positive values use DefaultMemoryCacheSize.
func NewBoundedMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryCacheSize
	}
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if e.expired(m.now()) {
		delete(m.entries, key)
		return "", false, nil
	}
	return e.answer, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key, answer string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	_, exists := m.entries[key]
	if (!exists && len(m.entries) >= m.maxEntries) || now.Sub(m.lastSweep) >= memorySweepInterval {
		m.sweep(now)
	}
	if !exists && len(m.entries) >= m.maxEntries {
		m.evictOldest()
	}

	e := memoryEntry{answer: answer, storedAt: now}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Len reports how many entries are held, expired or not.
func (m *MemoryCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryCache) sweep(now time.Time) {
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
	m.lastSweep = now
}

func (m *MemoryCache) evictOldest() {
	var oldestKey string
	var oldest time.Time
	for key, e := range m.entries {
		if oldestKey == "" || e.storedAt.Before(oldest) {
			oldestKey, oldest = key, e.storedAt
		}
	}
	delete(m.entries, oldestKey)
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// RedisCache keeps answers in Redis so they are shared between instances.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key, answer string, ttl time.Duration) error {
	return r.client.Set(ctx, key, answer, ttl).Err()
}
