// Package observability provides hooks for metrics, tracing, and logging.
//
// It enables optional instrumentation without hard dependencies on specific
// observability backends: consumers register hooks at startup and receive
// events about store operations, cache behavior, and service requests. The
// defaults are no-ops, so libraries can call hooks unconditionally.
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
package observability

import (
	"context"
	"sync"
	"time"
)

// StoreHooks receives events from layout record storage.
type StoreHooks interface {
	// OnGet records a record fetch. found is false for absent records.
	OnGet(ctx context.Context, key string, found bool, duration time.Duration, err error)

	// OnPut records a record save.
	OnPut(ctx context.Context, key string, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServiceHooks receives events from the user-layouts HTTP service.
type ServiceHooks interface {
	// OnRequest records a completed request.
	OnRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op defaults
// =============================================================================

type noopStoreHooks struct{}

func (noopStoreHooks) OnGet(context.Context, string, bool, time.Duration, error) {}
func (noopStoreHooks) OnPut(context.Context, string, time.Duration, error)       {}

type noopCacheHooks struct{}

func (noopCacheHooks) OnCacheHit(context.Context, string)      {}
func (noopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (noopCacheHooks) OnCacheSet(context.Context, string, int) {}

type noopServiceHooks struct{}

func (noopServiceHooks) OnRequest(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Registry
// =============================================================================

var (
	mu           sync.RWMutex
	storeHooks   StoreHooks   = noopStoreHooks{}
	cacheHooks   CacheHooks   = noopCacheHooks{}
	serviceHooks ServiceHooks = noopServiceHooks{}
)

// SetStoreHooks registers store hooks. Pass nil to restore the no-op default.
func SetStoreHooks(h StoreHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = noopStoreHooks{}
	}
	storeHooks = h
}

// SetCacheHooks registers cache hooks. Pass nil to restore the no-op default.
func SetCacheHooks(h CacheHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = noopCacheHooks{}
	}
	cacheHooks = h
}

// SetServiceHooks registers service hooks. Pass nil to restore the no-op default.
func SetServiceHooks(h ServiceHooks) {
	mu.Lock()
	defer mu.Unlock()
	if h == nil {
		h = noopServiceHooks{}
	}
	serviceHooks = h
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	mu.RLock()
	defer mu.RUnlock()
	return storeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return cacheHooks
}

// Service returns the registered service hooks.
func Service() ServiceHooks {
	mu.RLock()
	defer mu.RUnlock()
	return serviceHooks
}
