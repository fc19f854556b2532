// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about renderer invocations, image comparisons, and
// fingerprint cache operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the engine dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetRenderHooks(&myRenderHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Render().OnRenderStart(ctx, op, stem)
//	// ... invoke the renderer ...
//	observability.Render().OnRenderComplete(ctx, op, stem, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Render Hooks
// =============================================================================

// RenderHooks receives events from renderer invocations.
type RenderHooks interface {
	// OnRenderStart records the start of a renderer operation on an entry.
	OnRenderStart(ctx context.Context, op, stem string)

	// OnRenderComplete records a finished renderer operation.
	OnRenderComplete(ctx context.Context, op, stem string, duration time.Duration, err error)
}

// =============================================================================
// Compare Hooks
// =============================================================================

// CompareHooks receives events from image comparisons.
type CompareHooks interface {
	// OnCompareStart records the start of a pixel comparison for an entry.
	OnCompareStart(ctx context.Context, stem string)

	// OnCompareComplete records the comparison result. ae is the absolute
	// error in differing pixels; it is 0 when err is non-nil.
	OnCompareComplete(ctx context.Context, stem string, ae int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from fingerprint cache lookups.
type CacheHooks interface {
	// OnCacheHit records an entry skipped because its fingerprint matched.
	OnCacheHit(ctx context.Context, stem string)

	// OnCacheMiss records an entry that had to be compared.
	OnCacheMiss(ctx context.Context, stem string)

	// OnCacheSet records a fingerprint written after acceptance.
	OnCacheSet(ctx context.Context, stem string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopRenderHooks is a no-op implementation of RenderHooks.
type NoopRenderHooks struct{}

func (NoopRenderHooks) OnRenderStart(context.Context, string, string) {}
func (NoopRenderHooks) OnRenderComplete(context.Context, string, string, time.Duration, error) {
}

// NoopCompareHooks is a no-op implementation of CompareHooks.
type NoopCompareHooks struct{}

func (NoopCompareHooks) OnCompareStart(context.Context, string) {}
func (NoopCompareHooks) OnCompareComplete(context.Context, string, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}
func (NoopCacheHooks) OnCacheSet(context.Context, string)  {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	renderHooks  RenderHooks  = NoopRenderHooks{}
	compareHooks CompareHooks = NoopCompareHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetRenderHooks registers custom render hooks.
// This should be called once at application startup before any runs.
func SetRenderHooks(h RenderHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		renderHooks = h
	}
}

// SetCompareHooks registers custom compare hooks.
// This should be called once at application startup before any runs.
func SetCompareHooks(h CompareHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		compareHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any runs.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Render returns the registered render hooks.
func Render() RenderHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return renderHooks
}

// Compare returns the registered compare hooks.
func Compare() CompareHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return compareHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	renderHooks = NoopRenderHooks{}
	compareHooks = NoopCompareHooks{}
	cacheHooks = NoopCacheHooks{}
}
