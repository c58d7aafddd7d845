// internal/leaguemanager/cache.go
// Redis-backed idempotency cache and rate limiter, adapted from the
// teacher's internal/services/cache_service.go.

package leaguemanager

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache wraps a Redis client for two concerns: remembering which
// match_ids have already had a result applied (report_match_result
// idempotency, §5.3) and throttling per-agent call rates.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCache constructs a Cache over an already-connected Redis client.
func NewCache(client *redis.Client, logger *zap.Logger) *Cache {
	return &Cache{client: client, logger: logger}
}

// MarkResultApplied records that matchID's result has been ingested into
// standings, for ttl. Returns true if this call is the one that claimed it
// (i.e. it was not already marked) — the caller uses this to decide whether
// to actually mutate standings or reply with the cached acknowledgement.
func (c *Cache) MarkResultApplied(ctx context.Context, matchID string, ttl time.Duration) (claimed bool, err error) {
	key := "result-applied:" + matchID
	ok, err := c.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// AllowCall increments a sliding counter for callerID and reports whether
// the call is within limit calls per window. Used to bound how often a
// referee or player can hammer the League Manager with registration or
// status calls.
func (c *Cache) AllowCall(ctx context.Context, callerID string, limit int, window time.Duration) (bool, error) {
	key := "rate:" + callerID

	pipe := c.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	count := incr.Val()
	if count > int64(limit) {
		c.logger.Warn("rate limit exceeded", zap.String("caller_id", callerID), zap.Int64("count", count))
		return false, nil
	}
	return true, nil
}
