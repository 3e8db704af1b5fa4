// Package cache provides response caching for the layout persistence
// client.
//
// Layout fetches are idempotent and side-effect-free, so the client can
// serve repeated page mounts from a local cache instead of hitting the
// service every time. Entries carry a TTL; keys are SHA-256 hashed so page
// keys with separators stay filesystem-safe. Use [ScopedKeyer] to namespace
// keys per user.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases cache resources.
	Close() error
}

// Keyer generates cache keys for the entities the client caches.
type Keyer interface {
	// LayoutKey generates a key for a page's persisted layout record.
	LayoutKey(pageKey string) string
}

// DefaultKeyer generates unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer without any namespace prefix.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey generates a hashed key for a layout record.
func (DefaultKeyer) LayoutKey(pageKey string) string {
	return hashKey("layout", pageKey)
}

// ScopedKeyer wraps a Keyer with a prefix for per-user isolation: two users
// of the same machine must never see each other's cached customization.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// LayoutKey generates a prefixed key for a layout record.
func (k *ScopedKeyer) LayoutKey(pageKey string) string {
	return k.prefix + k.inner.LayoutKey(pageKey)
}
