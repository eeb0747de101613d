// Package querycache is the read-through query cache shared by the services.
// Query results are stored in Redis as JSON under (entity, parent) keys and
// dropped through a dependency table whenever a write commits.
package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/studio-desk/monitoring"
)

const scanBatch = 200

// Cache is safe for concurrent use. A nil *Cache, or one built without a
// Redis client, is a pass-through: every Fetch loads from the backend.
type Cache struct {
	rdb    *redis.Client
	ttl    time.Duration
	deps   Dependencies
	logger *zap.Logger
}

// New creates a cache over rdb. rdb may be nil to disable caching.
func New(rdb *redis.Client, ttl time.Duration, deps Dependencies, logger *zap.Logger) *Cache {
	if deps == nil {
		deps = DefaultDependencies
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{rdb: rdb, ttl: ttl, deps: deps, logger: logger}
}

// Enabled reports whether results are actually cached.
func (c *Cache) Enabled() bool {
	return c != nil && c.rdb != nil
}

// Fetch returns the cached value for key, or calls load and caches its
// result. Redis failures never fail the query; they degrade to load.
func Fetch[T any](ctx context.Context, c *Cache, key Key, load func(context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}

	raw, err := c.rdb.Get(ctx, key.String()).Bytes()
	switch {
	case err == nil:
		var cached T
		jsonErr := json.Unmarshal(raw, &cached)
		if jsonErr == nil {
			monitoring.CacheLookups.WithLabelValues(string(key.Entity), "hit").Inc()
			return cached, nil
		}
		c.logger.Warn("Dropping undecodable cache entry", zap.String("key", key.String()), zap.Error(jsonErr))
		c.Evict(ctx, key)
	case errors.Is(err, redis.Nil):
		monitoring.CacheLookups.WithLabelValues(string(key.Entity), "miss").Inc()
	default:
		monitoring.CacheLookups.WithLabelValues(string(key.Entity), "error").Inc()
		c.logger.Warn("Query cache unavailable, loading directly", zap.String("key", key.String()), zap.Error(err))
		return load(ctx)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	c.store(ctx, key, value, c.ttl)
	return value, nil
}

// Patch rewrites a cached value in place with fn, keeping its remaining TTL.
// It is a no-op when key is not cached.
func Patch[T any](ctx context.Context, c *Cache, key Key, fn func(T) T) {
	if !c.Enabled() {
		return
	}
	raw, err := c.rdb.Get(ctx, key.String()).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Query cache patch read failed", zap.String("key", key.String()), zap.Error(err))
		}
		return
	}
	var current T
	if err := json.Unmarshal(raw, &current); err != nil {
		c.Evict(ctx, key)
		return
	}

	ttl, err := c.rdb.TTL(ctx, key.String()).Result()
	if err != nil || ttl <= 0 {
		ttl = c.ttl
	}
	c.store(ctx, key, fn(current), ttl)
}

// Invalidate removes every key the change can affect according to the
// dependency table. It returns the number of keys removed.
func (c *Cache) Invalidate(ctx context.Context, change Change) int {
	if !c.Enabled() {
		return 0
	}
	keys, patterns := c.deps.Resolve(change)

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.String())
	}
	for _, pattern := range patterns {
		matched, err := c.scan(ctx, pattern)
		if err != nil {
			c.logger.Warn("Query cache scan failed", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		names = append(names, matched...)
	}
	if len(names) == 0 {
		return 0
	}

	removed, err := c.rdb.Del(ctx, names...).Result()
	if err != nil {
		c.logger.Warn("Query cache invalidation failed",
			zap.String("entity", string(change.Entity)),
			zap.Strings("keys", names),
			zap.Error(err),
		)
		return 0
	}
	monitoring.CacheInvalidations.WithLabelValues(string(change.Entity)).Add(float64(removed))
	return int(removed)
}

// Evict removes specific keys.
func (c *Cache) Evict(ctx context.Context, keys ...Key) {
	if !c.Enabled() || len(keys) == 0 {
		return
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.String())
	}
	if err := c.rdb.Del(ctx, names...).Err(); err != nil {
		c.logger.Warn("Query cache evict failed", zap.Strings("keys", names), zap.Error(err))
	}
}

func (c *Cache) store(ctx context.Context, key Key, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Query result not cacheable", zap.String("key", key.String()), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		c.logger.Warn("Query cache write failed", zap.String("key", key.String()), zap.Error(err))
	}
}

func (c *Cache) scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		found  []string
		cursor uint64
	)
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, err
		}
		found = append(found, keys...)
		if next == 0 {
			return found, nil
		}
		cursor = next
	}
}
