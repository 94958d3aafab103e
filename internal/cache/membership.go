package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/stockbin/internal/config"
	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	membershipKeyPrefix  = "membership"
	defaultMembershipTTL = 12 * time.Hour
)

// MembershipCache remembers the team membership derived for an auth session,
// so refreshed tokens of the same session skip the lookup.
type MembershipCache interface {
	Get(ctx context.Context, sessionID string) (*domain.TeamMembership, bool, error)
	Set(ctx context.Context, sessionID string, m *domain.TeamMembership) error
}

type redisMembershipCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewMembershipCache(cfg config.CacheConfig) MembershipCache {
	if !cfg.Enabled {
		return NewMemoryMembershipCache()
	}

	client, err := newRedisClient(cfg, membershipKeyPrefix)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, keeping memberships in memory")
		return NewMemoryMembershipCache()
	}

	return &redisMembershipCache{
		client: client,
		prefix: buildKey(cfg.KeyPrefix, membershipKeyPrefix),
		ttl:    defaultMembershipTTL,
	}
}

func (c *redisMembershipCache) Get(ctx context.Context, sessionID string) (*domain.TeamMembership, bool, error) {
	payload, err := c.client.Get(ctx, buildKey(c.prefix, sessionID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var m domain.TeamMembership
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, false, fmt.Errorf("decode cached membership: %w", err)
	}
	return &m, true, nil
}

func (c *redisMembershipCache) Set(ctx context.Context, sessionID string, m *domain.TeamMembership) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode membership: %w", err)
	}
	if err := c.client.Set(ctx, buildKey(c.prefix, sessionID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

type MemoryMembershipCache struct {
	mu      sync.RWMutex
	entries map[string]domain.TeamMembership
}

func NewMemoryMembershipCache() *MemoryMembershipCache {
	return &MemoryMembershipCache{entries: make(map[string]domain.TeamMembership)}
}

func (m *MemoryMembershipCache) Get(ctx context.Context, sessionID string) (*domain.TeamMembership, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[sessionID]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (m *MemoryMembershipCache) Set(ctx context.Context, sessionID string, membership *domain.TeamMembership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = *membership
	return nil
}
