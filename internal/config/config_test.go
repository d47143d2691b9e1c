package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trapExit records exit codes instead of terminating the test binary.
func trapExit(t *testing.T) *[]int {
	t.Helper()
	var codes []int
	prev := exit
	exit = func(code int) { codes = append(codes, code) }
	t.Cleanup(func() { exit = prev })
	return &codes
}

func setBaseEnv(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "memory")
}

func TestLoadDefaults(t *testing.T) {
	codes := trapExit(t)
	setBaseEnv(t)

	cfg := Load()
	assert.Empty(t, *codes)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 15, cfg.AccessTTLMin)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, time.UTC, cfg.DayLocation)
	assert.Equal(t, 30*time.Minute, cfg.SweepInterval)
	assert.Equal(t, time.Hour, cfg.NotificationPurgeInterval)
	assert.Zero(t, cfg.CodeRotationInterval)
	assert.Equal(t, 10*time.Minute, cfg.OccupancyDebounce)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, "logs/notifications.log", cfg.NotificationAuditLog)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	codes := trapExit(t)
	setBaseEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "MySQL")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "parking")
	t.Setenv("DAY_TIMEZONE", "Europe/Berlin")
	t.Setenv("SWEEP_INTERVAL", "5m")
	t.Setenv("EVENTS_ENABLED", "yes")
	t.Setenv("AMQP_URL", "amqp://broker:5672/")

	cfg := Load()
	assert.Empty(t, *codes)
	assert.Equal(t, DriverMySQL, cfg.StoreDriver)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "Europe/Berlin", cfg.DayLocation.String())
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, "amqp://broker:5672/", cfg.RabbitURL)
	assert.True(t, cfg.IsProduction())

	t.Setenv("RABBITMQ_URL", "amqp://primary/")
	assert.Equal(t, "amqp://primary/", Load().RabbitURL)
}

func TestLoadMissingRequired(t *testing.T) {
	codes := trapExit(t)
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	Load()
	assert.Equal(t, []int{1}, *codes)
}

func TestLoadMySQLNeedsConnectionSettings(t *testing.T) {
	codes := trapExit(t)
	setBaseEnv(t)
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "")

	Load()
	assert.Len(t, *codes, 4)
}

func TestLoadRejectsUnknownDriverAndZone(t *testing.T) {
	codes := trapExit(t)
	setBaseEnv(t)
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DAY_TIMEZONE", "Mars/Olympus")

	cfg := Load()
	assert.Equal(t, []int{1, 1}, *codes)
	assert.Equal(t, time.UTC, cfg.DayLocation)
}

func TestEnvHelpersFallBack(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_DUR", "soon")
	t.Setenv("X_BOOL", "maybe")
	assert.Equal(t, 7, envInt("X_INT", 7))
	assert.Equal(t, time.Second, envDur("X_DUR", time.Second))
	assert.True(t, envBool("X_BOOL", true))
	assert.Equal(t, "d", envStr("X_UNSET", "d"))
}

func TestRateLimitConfig(t *testing.T) {
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Capacity)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)

	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	cfg = LoadRateLimitConfig()
	assert.Equal(t, 5, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL, "ttl is raised to five refill intervals")

	n := RateLimitConfig{Capacity: -1, RefillTokens: 0}.normalize()
	assert.Equal(t, 1, n.Capacity)
	assert.Equal(t, 1, n.RefillTokens)
	assert.Equal(t, time.Second, n.RefillInterval)
}

func TestCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", " get, head ,,")
	cfg := LoadCacheConfig()
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Methods)
	assert.Equal(t, 30*time.Second, cfg.TTL)
}

func TestRedisOptions(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_HOST", "")
	opts := RedisOptions()
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Nil(t, opts.TLSConfig)

	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_TLS", "1")
	t.Setenv("REDIS_DB", "2")
	opts = RedisOptions()
	require.NotNil(t, opts.TLSConfig)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
}
