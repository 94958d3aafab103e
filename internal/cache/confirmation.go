package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/stockbin/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	confirmationKeyPrefix  = "confirmation"
	defaultConfirmationTTL = 10 * time.Minute
)

// ConfirmationStore keeps pending actions until the user accepts or declines them.
// Take is one-shot: a token can be consumed at most once.
type ConfirmationStore interface {
	Put(ctx context.Context, token string, payload []byte, ttl time.Duration) error
	Take(ctx context.Context, token string) ([]byte, bool, error)
}

type redisConfirmationStore struct {
	client *redis.Client
	prefix string
}

// NewConfirmationStore returns a redis backed store when the cache is enabled,
// falling back to process memory otherwise or when redis cannot be reached.
func NewConfirmationStore(cfg config.CacheConfig) ConfirmationStore {
	if !cfg.Enabled {
		return NewMemoryConfirmationStore()
	}

	client, err := newRedisClient(cfg, confirmationKeyPrefix)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, keeping confirmations in memory")
		return NewMemoryConfirmationStore()
	}

	return &redisConfirmationStore{
		client: client,
		prefix: buildKey(cfg.KeyPrefix, confirmationKeyPrefix),
	}
}

func (c *redisConfirmationStore) Put(ctx context.Context, token string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultConfirmationTTL
	}
	if err := c.client.Set(ctx, buildKey(c.prefix, token), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisConfirmationStore) Take(ctx context.Context, token string) ([]byte, bool, error) {
	payload, err := c.client.GetDel(ctx, buildKey(c.prefix, token)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis getdel failed: %w", err)
	}
	return payload, true, nil
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

type MemoryConfirmationStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryConfirmationStore() *MemoryConfirmationStore {
	return &MemoryConfirmationStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// SetClock replaces the clock used for expiry.
func (m *MemoryConfirmationStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryConfirmationStore) Put(ctx context.Context, token string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultConfirmationTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[token] = memoryEntry{payload: payload, expiresAt: now.Add(ttl)}
	return nil
}

func (m *MemoryConfirmationStore) Take(ctx context.Context, token string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[token]
	if !ok {
		return nil, false, nil
	}
	delete(m.entries, token)
	if m.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.payload, true, nil
}
