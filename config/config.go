package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config holds every setting the server reads from the environment
type Config struct {
	Port   string `env:"PORT,default=8080"`
	AppEnv string `env:"APP_ENV,default=development"`

	// Storage
	StoreBackend   string `env:"STORE_BACKEND,default=dynamo"` // dynamo or memory
	AWSRegion      string `env:"AWS_REGION,default=us-east-1"`
	DynamoEndpoint string `env:"DYNAMO_ENDPOINT"`
	ProfilesTable  string `env:"PROFILES_TABLE,default=Profiles"`
	SwipesTable    string `env:"SWIPES_TABLE,default=Swipes"`
	MatchesTable   string `env:"MATCHES_TABLE,default=Matches"`
	MessagesTable  string `env:"MESSAGES_TABLE,default=Messages"`
	AccountsTable  string `env:"ACCOUNTS_TABLE,default=Accounts"`
	S3BucketName   string `env:"S3_BUCKET_NAME"`

	// Auth
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=72h"`

	// Product rules
	MinAge int `env:"MIN_AGE,default=18"`

	// Swipe guard
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	SwipeGuardTTL time.Duration `env:"SWIPE_GUARD_TTL,default=10s"`

	// HTTP
	RateLimitRPS   int    `env:"RATE_LIMIT_RPS,default=10"`
	RateLimitBurst int    `env:"RATE_LIMIT_BURST,default=20"`
	CORSOrigins    string `env:"CORS_ORIGINS,default=*"`
}

// Load reads an optional .env file and decodes the environment into a Config
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.StoreBackend != "dynamo" && c.StoreBackend != "memory" {
		return fmt.Errorf("STORE_BACKEND must be dynamo or memory, got %q", c.StoreBackend)
	}
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = "dev-secret-change-me"
	}
	if c.MinAge < 13 {
		return fmt.Errorf("MIN_AGE must be at least 13, got %d", c.MinAge)
	}
	return nil
}

// IsProduction reports whether the server runs with production defaults
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// AllowedOrigins splits CORS_ORIGINS on commas
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
