package idempotency

import (
	"context"
	"time"
)

// DefaultTTL is how long a key stays reserved when no TTL is configured.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "idempotency:"

// Store reserves request keys so that a retried request is detected while
// the first one is still live.
type Store interface {
	// Reserve claims key. It returns false if the key is already held.
	Reserve(ctx context.Context, key string) (bool, error)

	// Release frees key so the same request may be retried.
	Release(ctx context.Context, key string) error
}
