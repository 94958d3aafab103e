package cache

import (
	"context"
	"testing"
	"time"

	"github.com/andresuchdata/stockbin/internal/config"
	"github.com/andresuchdata/stockbin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryConfirmationStoreIsOneShot(t *testing.T) {
	store := NewMemoryConfirmationStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "tok", []byte(`{"kind":"direct_edit"}`), time.Minute))

	payload, ok, err := store.Take(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"kind":"direct_edit"}`, string(payload))

	_, ok, err = store.Take(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryConfirmationStoreExpires(t *testing.T) {
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	store := NewMemoryConfirmationStore()
	store.SetClock(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, store.Put(ctx, "default", []byte("b"), 0))

	now = now.Add(2 * time.Minute)

	_, ok, err := store.Take(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	payload, ok, err := store.Take(ctx, "default")
	require.NoError(t, err)
	assert.True(t, ok, "a zero ttl falls back to the default")
	assert.Equal(t, []byte("b"), payload)
}

func TestMemoryMembershipCache(t *testing.T) {
	c := NewMemoryMembershipCache()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "session-1", &domain.TeamMembership{TeamID: "team-1", UserID: "user-1"}))
	m, ok, err := c.Get(ctx, "session-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "team-1", m.TeamID)
}

func TestDisabledCacheFallsBackToMemory(t *testing.T) {
	assert.IsType(t, &MemoryConfirmationStore{}, NewConfirmationStore(config.CacheConfig{}))
	assert.IsType(t, &MemoryMembershipCache{}, NewMembershipCache(config.CacheConfig{}))
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "stockbin:confirmation:abc", buildKey("stockbin", confirmationKeyPrefix, "abc"))
	assert.Equal(t, "membership:abc", buildKey("", membershipKeyPrefix, "abc"))
	assert.Equal(t, "stockbin:abc", buildKey("stockbin", "", "abc"))
}

func TestBuildRedisOptions(t *testing.T) {
	opts, err := buildRedisOptions(config.CacheConfig{})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6379", opts.Addr)
	assert.Equal(t, redisDialTimeout, opts.DialTimeout)
	assert.Equal(t, redisReadTimeout, opts.ReadTimeout)

	opts, err = buildRedisOptions(config.CacheConfig{RedisHost: "cache", RedisPort: "6380", RedisPassword: "pw", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildRedisOptions(config.CacheConfig{RedisURL: "redis://:secret@redis.internal:6379/3", RedisHost: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 3, opts.DB)

	_, err = buildRedisOptions(config.CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, err)
}
