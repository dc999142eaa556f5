package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean. Everything
// comes from ROAM_* environment variables with development defaults.
type Config struct {
	Addr     string
	LogLevel string

	// StoreBackend selects the durable monitor-config store: "memory",
	// "redis", or "postgres".
	StoreBackend string
	PostgresDSN  string

	Redis RedisConfig

	Geocoder GeocoderConfig

	Kafka KafkaConfig

	// JWTSigningKey signs device and UI bearer tokens.
	JWTSigningKey string
	// PairingSecretHash is the bcrypt hash of the device pairing secret a
	// device agent exchanges for a bearer token. Empty disables enrollment.
	PairingSecretHash string
}

// RedisConfig tunes the shared Redis client used by the config store and the
// geocode cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// GeocoderConfig points at the reverse-geocoding provider.
type GeocoderConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// KafkaConfig configures the best-effort region-change event stream. Empty
// brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Addr:         envOr("ROAM_ADDR", ":8080"),
		LogLevel:     envOr("ROAM_LOG_LEVEL", "info"),
		StoreBackend: envOr("ROAM_STORE", "memory"),
		PostgresDSN:  os.Getenv("ROAM_POSTGRES_DSN"),
		Redis: RedisConfig{
			URL:          os.Getenv("ROAM_REDIS_URL"),
			PoolSize:     envInt("ROAM_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("ROAM_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("ROAM_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("ROAM_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("ROAM_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Geocoder: GeocoderConfig{
			BaseURL:  envOr("ROAM_GEOCODER_URL", "https://nominatim.openstreetmap.org"),
			Timeout:  envDuration("ROAM_GEOCODER_TIMEOUT", 5*time.Second),
			CacheTTL: envDuration("ROAM_GEOCODER_CACHE_TTL", 6*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers: envList("ROAM_KAFKA_BROKERS"),
			Topic:   envOr("ROAM_KAFKA_TOPIC", "roam.region-changes"),
		},
		JWTSigningKey:     envOr("ROAM_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		PairingSecretHash: os.Getenv("ROAM_PAIRING_SECRET_HASH"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
