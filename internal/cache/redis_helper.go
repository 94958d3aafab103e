package cache

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/andresuchdata/stockbin/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	redisDialTimeout = 3 * time.Second
	// membership lookups sit on the request path, so reads give up quickly
	redisReadTimeout = 2 * time.Second
)

// newRedisClient connects one client per cache role; role ends up in CLIENT LIST.
func newRedisClient(cfg config.CacheConfig, role string) (*redis.Client, error) {
	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	opts.ClientName = buildKey(cfg.KeyPrefix, role)

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout+time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Str("role", role).Msg("redis cache connected")
	return client, nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	var opts *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		host, port := cfg.RedisHost, cfg.RedisPort
		if host == "" {
			host = "127.0.0.1"
		}
		if port == "" {
			port = "6379"
		}
		opts = &redis.Options{
			Addr:     net.JoinHostPort(host, port),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}

	if opts.DialTimeout == 0 {
		opts.DialTimeout = redisDialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = redisReadTimeout
	}
	return opts, nil
}

// buildKey joins prefix and the non-empty parts with ':'.
func buildKey(prefix string, parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	if prefix != "" {
		segments = append(segments, prefix)
	}
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return strings.Join(segments, ":")
}
