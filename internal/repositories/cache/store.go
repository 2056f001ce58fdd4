package cache

import (
	"context"
	"time"
)

// Store is a JSON value cache with per-key expiry. Get reports whether the
// key was present and decodes it into dest.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Clock abstracts time so expiry can be tested.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*CacheService)(nil)
)
