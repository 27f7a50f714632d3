// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about edit history, validation runs, cache lookups and
// layout storage.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, never by libraries, so the dungeon model and
// its stores stay free of any metrics framework.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetHistoryHooks(&myHistoryHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Validation().OnValidateStart(ctx, layoutName, cellCount)
//	// ... run checks ...
//	observability.Validation().OnValidateComplete(ctx, layoutName, len(diags), duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// History Hooks
// =============================================================================

// HistoryHooks receives events from command history transitions.
// History operations are synchronous and carry no context.
type HistoryHooks interface {
	// OnExecute records a newly executed command and the resulting undo depth.
	OnExecute(command string, undoDepth int)

	// OnUndo records an undone command.
	OnUndo(command string)

	// OnRedo records a redone command.
	OnRedo(command string)
}

// =============================================================================
// Validation Hooks
// =============================================================================

// ValidationHooks receives events from layout validation runs.
type ValidationHooks interface {
	OnValidateStart(ctx context.Context, layout string, cells int)
	OnValidateComplete(ctx context.Context, layout string, diagnostics int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from layout storage backends.
type StoreHooks interface {
	// OnLoad records a layout read; err is nil on success.
	OnLoad(ctx context.Context, backend, name string, duration time.Duration, err error)

	// OnSave records a layout write of size bytes.
	OnSave(ctx context.Context, backend, name string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopHistoryHooks is a no-op implementation of HistoryHooks.
type NoopHistoryHooks struct{}

func (NoopHistoryHooks) OnExecute(string, int) {}
func (NoopHistoryHooks) OnUndo(string)         {}
func (NoopHistoryHooks) OnRedo(string)         {}

// NoopValidationHooks is a no-op implementation of ValidationHooks.
type NoopValidationHooks struct{}

func (NoopValidationHooks) OnValidateStart(context.Context, string, int)                   {}
func (NoopValidationHooks) OnValidateComplete(context.Context, string, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, time.Duration, error)      {}
func (NoopStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	historyHooks    HistoryHooks    = NoopHistoryHooks{}
	validationHooks ValidationHooks = NoopValidationHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	storeHooks      StoreHooks      = NoopStoreHooks{}
	hooksMu         sync.RWMutex
)

// SetHistoryHooks registers custom history hooks.
// This should be called once at application startup before any editing.
func SetHistoryHooks(h HistoryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		historyHooks = h
	}
}

// SetValidationHooks registers custom validation hooks.
func SetValidationHooks(h ValidationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		validationHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// History returns the registered history hooks.
func History() HistoryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return historyHooks
}

// Validation returns the registered validation hooks.
func Validation() ValidationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return validationHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	historyHooks = NoopHistoryHooks{}
	validationHooks = NoopValidationHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
}
