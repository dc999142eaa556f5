package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfigStore persists MonitorConfig as two plain Redis keys so the
// state survives process restarts and can be inspected with redis-cli.
type RedisConfigStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisConfigStore {
	return &RedisConfigStore{client: client}
}

func (s *RedisConfigStore) Load(ctx context.Context) (MonitorConfig, error) {
	vals, err := s.client.MGet(ctx, KeyEnabled, KeyLastRegion).Result()
	if err != nil {
		return MonitorConfig{}, fmt.Errorf("load monitor config: %w", err)
	}

	var cfg MonitorConfig
	if v, ok := vals[0].(string); ok {
		cfg.Enabled = v == "1"
	}
	if v, ok := vals[1].(string); ok {
		cfg.LastKnownRegion = v
	}
	return cfg, nil
}

func (s *RedisConfigStore) SetEnabled(ctx context.Context, enabled bool) error {
	v := "0"
	if enabled {
		v = "1"
	}
	if err := s.client.Set(ctx, KeyEnabled, v, 0).Err(); err != nil {
		return fmt.Errorf("persist enabled: %w", err)
	}
	return nil
}

func (s *RedisConfigStore) SetLastRegion(ctx context.Context, region string) error {
	if err := s.client.Set(ctx, KeyLastRegion, region, 0).Err(); err != nil {
		return fmt.Errorf("persist last region: %w", err)
	}
	return nil
}
