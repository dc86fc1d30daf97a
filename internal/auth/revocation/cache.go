// Package revocation holds the denylist of access tokens that were logged
// out before their natural expiry.
package revocation

import (
	"context"
	"errors"
	"time"
)

// RevokedMarker is the value stored for a revoked token.
const RevokedMarker = "revoked"

// ErrUnavailable wraps every failure to reach the backing cache.
var ErrUnavailable = errors.New("revocation: cache unavailable")

// Cache is a TTL key/value store used as a denylist.
type Cache interface {
	// Put stores value under key for ttl.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the value under key. ok is false when the key is absent
	// or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Ping reports whether the cache is reachable.
	Ping(ctx context.Context) error
}
