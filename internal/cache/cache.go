// Package cache stores API responses in Redis as JSON.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andreiashu/mapcode/internal/logger"
	"github.com/andreiashu/mapcode/internal/metrics"
)

// DefaultTTL applies when no TTL is configured.
const DefaultTTL = time.Hour

// Cache is a JSON cache over Redis. A nil *Cache is valid and caches
// nothing.
type Cache struct {
	rc     *redis.Client
	ttl    time.Duration
	prefix string
}

// New wraps a Redis client. ttl <= 0 means DefaultTTL.
func New(rc *redis.Client, ttl time.Duration) *Cache {
	if rc == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rc: rc, ttl: ttl, prefix: "mapcode:"}
}

// OpenFromEnv connects to Redis when REDIS_HOST is set; otherwise it
// returns nil. REDIS_PORT, REDIS_PASS, REDIS_DB and CACHE_TTL (seconds) are
// optional.
func OpenFromEnv() *Cache {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return nil
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			db = n
		}
	}
	ttl := DefaultTTL
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = time.Duration(n) * time.Second
		}
	}
	addr := host + ":" + port
	logger.L().Debug("redis_env", "addr", addr, "db", db, "ttl", ttl)
	return New(redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASS"), DB: db}), ttl)
}

// Ping checks the connection.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.rc.Ping(ctx).Err()
}

// Get decodes the value stored under key into v and reports whether it was
// found.
func (c *Cache) Get(ctx context.Context, key string, v any) bool {
	if c == nil {
		return false
	}
	s, err := c.rc.Get(ctx, c.prefix+key).Result()
	if err != nil || s == "" {
		metrics.CacheMissesTotal.Inc()
		return false
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		logger.L().Debug("cache_decode_error", "key", key, "err", err)
		metrics.CacheMissesTotal.Inc()
		return false
	}
	metrics.CacheHitsTotal.Inc()
	return true
}

// Set stores v under key. Failures are logged and otherwise ignored.
func (c *Cache) Set(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rc.Set(ctx, c.prefix+key, string(b), c.ttl).Err(); err != nil {
		logger.L().Debug("cache_set_error", "key", key, "err", err)
	}
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rc.Close()
}
