package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"giftlink/internal/logger"
)

// Supported values for DB_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultJWTSecret is used when JWT_SECRET is unset. It is public
// knowledge, so tokens signed with it can be forged.
const DefaultJWTSecret = "change-me"

// Config holds the runtime configuration of the API.
type Config struct {
	AppPort      string
	DBDriver     string
	MongoURL     string
	MongoDB      string
	DatabaseDSN  string
	JWTSecret    string
	QueryTimeout time.Duration

	RabbitMQURL   string
	RabbitMQQueue string

	RedisAddr       string
	RateLimitMax    int
	RateLimitWindow time.Duration

	Log logger.Config
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are not an error.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Load reads the configuration from v, falling back to defaults.
// Pass viper.New() in tests to avoid touching the global instance.
func Load(v *viper.Viper) (*Config, error) {
	v.SetDefault("APP_PORT", ":3060")
	v.SetDefault("DB_DRIVER", DriverMongo)
	v.SetDefault("MONGO_URL", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "giftdb")
	v.SetDefault("DATABASE_DSN", "giftlink.db")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("QUERY_TIMEOUT", "10s")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "gift_events")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("RATE_LIMIT_MAX", 20)
	v.SetDefault("RATE_LIMIT_WINDOW", "60s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT", "console")
	v.SetDefault("LOG_FILE", "logs/giftlink.log")
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:         v.GetString("APP_PORT"),
		DBDriver:        v.GetString("DB_DRIVER"),
		MongoURL:        v.GetString("MONGO_URL"),
		MongoDB:         v.GetString("MONGO_DB"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		QueryTimeout:    v.GetDuration("QUERY_TIMEOUT"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:   v.GetString("RABBITMQ_QUEUE"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RateLimitMax:    v.GetInt("RATE_LIMIT_MAX"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = v.GetString("LOG_LEVEL")
	logCfg.Format = v.GetString("LOG_FORMAT")
	logCfg.Output = v.GetString("LOG_OUTPUT")
	logCfg.File.Filename = v.GetString("LOG_FILE")
	cfg.Log = *logCfg

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsesDefaultJWTSecret reports whether tokens are signed with DefaultJWTSecret.
func (c *Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// Validate checks that the configuration can be used to start the server.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMongo, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q, must be one of: mongo, postgres, sqlite", c.DBDriver)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive, got %s", c.QueryTimeout)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.RedisAddr != "" && (c.RateLimitMax <= 0 || c.RateLimitWindow < time.Second) {
		return fmt.Errorf("rate limiter needs RATE_LIMIT_MAX > 0 and RATE_LIMIT_WINDOW >= 1s")
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("invalid log configuration: %w", err)
	}
	return nil
}
