package companionsdk

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// ──────────────────────────────────────────────
// Configuration
// ──────────────────────────────────────────────

// Config holds environment-driven settings for the SDK's storage and
// scheduler. All fields have working defaults; with no Redis address the
// in-memory store is used.
type Config struct {
	// RedisAddr enables the Redis-backed state store when set
	// (e.g. "localhost:6379").
	RedisAddr     string `env:"COMPANION_REDIS_ADDR"`
	RedisPassword string `env:"COMPANION_REDIS_PASSWORD"`
	RedisDB       int    `env:"COMPANION_REDIS_DB"`
	// RedisPrefix namespaces all state keys.
	RedisPrefix string `env:"COMPANION_REDIS_PREFIX" envDefault:"companion"`
	// StateTTL optionally expires idle user state (0 = keep forever).
	StateTTL time.Duration `env:"COMPANION_STATE_TTL"`

	// PollInterval is the proactive scheduler tick.
	PollInterval time.Duration `env:"COMPANION_POLL_INTERVAL" envDefault:"60s"`
	// ProactiveCooldown is the minimum gap between proactive sends per user.
	ProactiveCooldown time.Duration `env:"COMPANION_PROACTIVE_COOLDOWN" envDefault:"2h"`

	// Timezone for wall-clock period classification.
	Timezone string `env:"COMPANION_TZ" envDefault:"UTC"`
	// Debug enables verbose logging.
	Debug bool `env:"COMPANION_DEBUG"`
}

// LoadConfig reads configuration from a .env file (if present) and the
// process environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using system environment variables")
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NewStore builds the configured StateStore: Redis when RedisAddr is set,
// in-memory otherwise.
func (c *Config) NewStore() StateStore {
	if c.RedisAddr == "" {
		return NewInMemoryStateStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	return NewRedisStateStore(client, RedisStoreConfig{
		Prefix: c.RedisPrefix,
		TTL:    c.StateTTL,
	})
}
