package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocoder.BaseURL)
	assert.Equal(t, 6*time.Hour, cfg.Geocoder.CacheTTL)
	assert.Nil(t, cfg.Kafka.Brokers)
	assert.Equal(t, "roam.region-changes", cfg.Kafka.Topic)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ROAM_ADDR", ":9090")
	t.Setenv("ROAM_STORE", "redis")
	t.Setenv("ROAM_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ROAM_REDIS_POOL_SIZE", "25")
	t.Setenv("ROAM_GEOCODER_TIMEOUT", "10s")
	t.Setenv("ROAM_KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 25, cfg.Redis.PoolSize)
	assert.Equal(t, 10*time.Second, cfg.Geocoder.Timeout)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
}

func TestFromEnvIgnoresMalformedValues(t *testing.T) {
	t.Setenv("ROAM_REDIS_POOL_SIZE", "many")
	t.Setenv("ROAM_GEOCODER_TIMEOUT", "soon")

	cfg := FromEnv()

	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.Geocoder.Timeout)
}
