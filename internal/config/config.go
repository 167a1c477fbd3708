// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Config is everything the binaries read from the environment.
type Config struct {
	Port     string
	LogLevel logrus.Level

	RedisAddr   string
	RedisDB     int
	QueueName   string
	DatabaseURL string

	TokenTTL    time.Duration // 0 means tokens never expire
	IdleTimeout time.Duration // idle sessions are evicted after this long
	Seed        int64         // fixed random seed, 0 for time-seeded

	HistorianBatchSize  int
	HistorianFlushDelay time.Duration
}

// Load reads Config from the environment. A .env file is picked up by the
// godotenv autoload import in each binary before this runs.
func Load() (Config, error) {
	cfg := Config{
		Port:                GetEnv("PORT", "8080"),
		RedisAddr:           GetEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:             GetEnvInt("REDIS_DB", 0),
		QueueName:           GetEnv("HISTORIAN_QUEUE_NAME", "suitmatch_actions"),
		DatabaseURL:         databaseURL(),
		IdleTimeout:         time.Duration(GetEnvInt("SESSION_IDLE_TIMEOUT_SEC", 1800)) * time.Second,
		HistorianBatchSize:  GetEnvInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlushDelay: time.Duration(GetEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
	}

	lvl, err := logrus.ParseLevel(GetEnv("LOG_LEVEL", "debug"))
	if err != nil {
		return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = lvl

	if ttl := os.Getenv("TOKEN_EXPIRE_TIME"); ttl != "" && ttl != "never" && ttl != "0" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return cfg, fmt.Errorf("TOKEN_EXPIRE_TIME: %w", err)
		}
		cfg.TokenTTL = d
	}

	if cfg.IdleTimeout <= 0 {
		return cfg, fmt.Errorf("SESSION_IDLE_TIMEOUT_SEC must be positive")
	}
	if cfg.HistorianBatchSize <= 0 {
		return cfg, fmt.Errorf("HISTORIAN_BATCH_SIZE must be positive")
	}
	if cfg.HistorianFlushDelay <= 0 {
		return cfg, fmt.Errorf("HISTORIAN_FLUSH_MS must be positive")
	}

	if s := os.Getenv("SUITMATCH_SEED"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("SUITMATCH_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	return cfg, nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the POSTGRES_*/PG_* parts.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	if os.Getenv("PG_HOST") == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		GetEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// GetEnv reads an environment variable or returns def.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt parses an environment variable as an integer, else returns def.
func GetEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
