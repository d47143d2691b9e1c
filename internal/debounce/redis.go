// Package debounce suppresses repeated events across processes using Redis.
package debounce

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// DefaultPrefix namespaces debounce keys.
const DefaultPrefix = "debounce"

// Redis is a service.Debouncer backed by SET NX with an expiry. The first
// Allow for a key inside the window wins; the key expires on its own.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

var _ service.Debouncer = (*Redis)(nil)

// NewRedis returns a debouncer over rdb. An empty prefix uses DefaultPrefix.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	if rdb == nil {
		panic("nil redis client passed to debounce.NewRedis")
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{rdb: rdb, prefix: prefix}
}

// Allow reports whether key was not seen within window. A non-positive
// window always allows.
func (d *Redis) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	return d.rdb.SetNX(ctx, d.prefix+":"+key, time.Now().UTC().Unix(), window).Result()
}

// Release deletes key so the next Allow succeeds.
func (d *Redis) Release(ctx context.Context, key string) error {
	return d.rdb.Del(ctx, d.prefix+":"+key).Err()
}
