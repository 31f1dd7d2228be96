package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session backend names accepted in SESSION_BACKEND.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendToken  = "token"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// BcryptCost and HashWorkers tune the password hashing pool.
	BcryptCost  int `env:"BCRYPT_COST,  default=10"`
	HashWorkers int `env:"HASH_WORKERS, default=8"`

	Session SessionConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	// Backend selects the session strategy: memory, redis, or token.
	Backend string        `env:"SESSION_BACKEND, default=token"`
	Secret  string        `env:"SESSION_SECRET"`
	TTL     time.Duration `env:"SESSION_TTL,     default=24h"`
	// Denylist enables revocation-before-expiry for the token backend by
	// recording revoked token IDs in Redis.
	Denylist bool `env:"SESSION_DENYLIST, default=true"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=gatekeeper"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations that would silently weaken authentication.
// A token backend without a signing secret is fatal: the service must never
// start accepting unverifiable sessions.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case BackendMemory, BackendRedis:
	case BackendToken:
		if c.Session.Secret == "" {
			return fmt.Errorf("config: SESSION_SECRET is required with SESSION_BACKEND=%s", BackendToken)
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	return nil
}

// NeedsRedis reports whether the selected session strategy requires a Redis
// connection.
func (c *Config) NeedsRedis() bool {
	return c.Session.Backend == BackendRedis ||
		(c.Session.Backend == BackendToken && c.Session.Denylist)
}
