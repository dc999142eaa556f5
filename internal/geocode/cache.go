package geocode

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedResolver wraps a Resolver with a Redis lookaside cache. Significant-
// change fixes cluster around the same coarse cells, so the steady-state path
// rarely hits the provider.
type CachedResolver struct {
	inner  Resolver
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCached decorates inner with a Redis cache. A nil client disables caching
// and returns inner untouched.
func NewCached(inner Resolver, client *redis.Client, ttl time.Duration, logger *slog.Logger) Resolver {
	if client == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &CachedResolver{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *CachedResolver) Resolve(ctx context.Context, coord Coordinate) (string, error) {
	key := "revgeo:" + formatCoord(coord.Latitude) + ":" + formatCoord(coord.Longitude)

	if cached, err := c.client.Get(ctx, key).Result(); err == nil && cached != "" {
		return cached, nil
	}

	region, err := c.inner.Resolve(ctx, coord)
	if err != nil {
		return "", err
	}

	// Cache write failures only cost a future provider call.
	if err := c.client.Set(ctx, key, region, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "geocode cache write failed", "key", key, "error", err)
	}
	return region, nil
}
