// Package cache provides the fingerprint-keyed result cache layered
// over a TTL key-value store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jarvish/compliance-engine/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by a Store when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is the primitive TTL key-value contract the cache layer sits
// on. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored bytes for key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisStore backs the cache with Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the stored bytes for key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, domain.WrapError("redis_get", err, true)
	}
	return data, nil
}

// Set stores value under key with the given TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return domain.WrapError("redis_set", err, true)
	}
	return nil
}

// MemoryStore is an in-process Store for tests and single-node
// deployments without Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the stored bytes for key, honouring expiry.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		return nil, ErrMiss
	}
	return entry.value, nil
}

// Set stores value under key for the given TTL.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// encodeResult and decodeResult are the wire format of a cache entry.

func encodeResult(result *domain.ComplianceResult) ([]byte, error) {
	return json.Marshal(result)
}

func decodeResult(data []byte) (*domain.ComplianceResult, error) {
	var result domain.ComplianceResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
