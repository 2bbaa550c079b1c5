package cache

import (
	"context"
	"time"
)

// DefaultTTL bounds how long an entry may outlive its last refresh. Writes
// invalidate eagerly, so the TTL is only a backstop.
const DefaultTTL = 30 * time.Minute

// Cache is an opportunistic key-value store. Get distinguishes an absent key
// (hit == false, err == nil) from a transport failure (err != nil); callers
// treat both as a miss but may want to log the latter. Delete on a missing
// key is not an error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, hit bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
