package cache

import (
	"context"
	"time"
)

// Cache is the key-value contract used by the persistence bridge and the
// catalog snapshot. Values are stored as JSON.
type Cache interface {
	// Get unmarshals the value stored at key into dest.
	// found = false means a miss and dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key. ttl = 0 means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}
