// Package config loads application configuration from environment variables.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
)

// Store drivers.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env  string // APP_ENV (dev, test, prod)
	Port string // APP_PORT

	StoreDriver string // STORE_DRIVER: mysql (default) or memory
	DBUser      string // DB_USER
	DBPass      string // DB_PASS (empty allowed)
	DBHost      string // DB_HOST
	DBPort      string // DB_PORT
	DBName      string // DB_NAME

	JWTSecret     string // JWT_SECRET
	AccessTTLMin  int    // ACCESS_TOKEN_TTL_MIN
	DeviceKeyHash string // DEVICE_KEY_HASH: bcrypt hash; empty leaves device routes open
	BcryptCost    int    // BCRYPT_COST

	DayLocation *time.Location // DAY_TIMEZONE

	SweepInterval             time.Duration // SWEEP_INTERVAL
	NotificationPurgeInterval time.Duration // NOTIFICATION_PURGE_INTERVAL
	CodeRotationInterval      time.Duration // CODE_ROTATION_INTERVAL: 0 disables rotation
	OccupancyDebounce         time.Duration // OCCUPANCY_DEBOUNCE: 0 disables

	EventsEnabled               bool   // EVENTS_ENABLED
	RabbitURL                   string // RABBITMQ_URL or AMQP_URL
	NotificationConsumerEnabled bool   // NOTIFICATION_CONSUMER_ENABLED
	NotificationAuditLog        string // NOTIFICATION_AUDIT_LOG

	RateLimit RateLimitConfig
	Cache     CacheConfig
}

// exit is swapped in tests.
var exit = os.Exit

// Load reads configuration values from environment variables. Required
// variables are enforced by must() and a missing value logs an error and
// exits the process.
func Load() Config {
	cfg := Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		StoreDriver: strings.ToLower(envStr("STORE_DRIVER", DriverMySQL)),
		DBPass:      os.Getenv("DB_PASS"),

		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  envInt("ACCESS_TOKEN_TTL_MIN", 15),
		DeviceKeyHash: os.Getenv("DEVICE_KEY_HASH"),
		BcryptCost:    envInt("BCRYPT_COST", 12),

		DayLocation: mustLocation("DAY_TIMEZONE", "UTC"),

		SweepInterval:             envDur("SWEEP_INTERVAL", 30*time.Minute),
		NotificationPurgeInterval: envDur("NOTIFICATION_PURGE_INTERVAL", time.Hour),
		CodeRotationInterval:      envDur("CODE_ROTATION_INTERVAL", 0),
		OccupancyDebounce:         envDur("OCCUPANCY_DEBOUNCE", 10*time.Minute),

		EventsEnabled:               envBool("EVENTS_ENABLED", false),
		RabbitURL:                   rabbitURL(),
		NotificationConsumerEnabled: envBool("NOTIFICATION_CONSUMER_ENABLED", false),
		NotificationAuditLog:        envStr("NOTIFICATION_AUDIT_LOG", "logs/notifications.log"),

		RateLimit: LoadRateLimitConfig(),
		Cache:     LoadCacheConfig(),
	}
	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case DriverMemory:
	default:
		fatal("invalid STORE_DRIVER", fmt.Errorf("unknown driver %q", cfg.StoreDriver))
	}
	return cfg
}

// IsProduction reports whether the app runs with a production env name.
func (c Config) IsProduction() bool {
	switch strings.ToLower(c.Env) {
	case "prod", "production":
		return true
	}
	return false
}

func rabbitURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		fatal("missing required env var", fmt.Errorf("%s is not set", key))
	}
	return v
}

// mustLocation loads the IANA zone named by key, or def when unset.
func mustLocation(key, def string) *time.Location {
	name := envStr(key, def)
	loc, err := time.LoadLocation(name)
	if err != nil {
		fatal("invalid time zone", fmt.Errorf("%s=%q: %w", key, name, err))
		return time.UTC
	}
	return loc
}

func fatal(msg string, err error) {
	log.Error(context.Background(), msg, log.Err("error", err))
	exit(1)
}
