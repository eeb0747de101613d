package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper guards against the same request being submitted twice within ttl.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deduper{rdb: rdb, ttl: ttl, logger: logger}
}

// AcquireOnce returns true the first time a (scope, key) pair is seen and
// false for duplicates. When Redis is unreachable it allows the request.
func (d *Deduper) AcquireOnce(ctx context.Context, scope, key string) bool {
	if d == nil || d.rdb == nil {
		return true
	}
	lock := "dedup:" + scope + ":" + key

	ok, err := d.rdb.SetNX(ctx, lock, 1, d.ttl).Result()
	if err != nil {
		d.logger.Warn("Redis dedup check failed, allowing request",
			zap.String("scope", scope),
			zap.String("key", key),
			zap.Error(err),
		)
		return true
	}

	if !ok {
		d.logger.Info("Rejected duplicate submission",
			zap.String("scope", scope),
			zap.String("dedup_key", lock),
		)
	}
	return ok
}
