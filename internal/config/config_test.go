package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "LOG_LEVEL", "DATABASE_URL", "PG_HOST", "TOKEN_EXPIRE_TIME", "SUITMATCH_SEED", "SESSION_IDLE_TIMEOUT_SEC"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Zero(t, cfg.TokenTTL)
	assert.Zero(t, cfg.Seed)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_HOST", "db")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "p")
	t.Setenv("PG_DATABASE", "suitmatch")
	t.Setenv("TOKEN_EXPIRE_TIME", "24h")
	t.Setenv("SUITMATCH_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, logrus.WarnLevel, cfg.LogLevel)
	assert.Equal(t, "postgres://u:p@db:5432/suitmatch", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("LOG_LEVEL", "")
	t.Setenv("SUITMATCH_SEED", "abc")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	for _, k := range []string{"HISTORIAN_FLUSH_MS", "HISTORIAN_BATCH_SIZE", "SESSION_IDLE_TIMEOUT_SEC"} {
		t.Run(k, func(t *testing.T) {
			for _, v := range []string{"0", "-5"} {
				t.Setenv(k, v)
				_, err := Load()
				assert.Error(t, err, "%s=%s", k, v)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SUITMATCH_TEST_INT", "12")
	assert.Equal(t, 12, GetEnvInt("SUITMATCH_TEST_INT", 3))
	t.Setenv("SUITMATCH_TEST_INT", "twelve")
	assert.Equal(t, 3, GetEnvInt("SUITMATCH_TEST_INT", 3))
}
