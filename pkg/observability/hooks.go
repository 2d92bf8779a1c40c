// Package observability provides hooks for metrics, tracing and logging.
//
// Libraries emit events through the registered hooks; main (or a test)
// registers implementations at startup. The defaults are no-ops, so nothing
// here pulls in a metrics backend.
//
//	stats := observability.NewTrialStats()
//	observability.SetMinimizeHooks(stats)
//	// ... run analyze ...
//	fmt.Println(stats.Snapshot().Trials)
//
// Libraries call hooks like this:
//
//	observability.Minimize().OnTrialStart(ctx, pkg, dep, feature)
//	// ... build ...
//	observability.Minimize().OnTrialComplete(ctx, pkg, dep, feature, removable, elapsed)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Minimize Hooks
// =============================================================================

// MinimizeHooks receives events from the minimization engine.
type MinimizeHooks interface {
	// OnPackageStart is called before the first trial of a package.
	OnPackageStart(ctx context.Context, pkg string, dependencies int)

	// OnTrialStart is called before feature is tested for removal.
	OnTrialStart(ctx context.Context, pkg, dep, feature string)

	// OnTrialComplete reports whether the build passed without feature.
	OnTrialComplete(ctx context.Context, pkg, dep, feature string, removable bool, duration time.Duration)

	// OnPackageComplete is called once per package, also on failure.
	OnPackageComplete(ctx context.Context, pkg string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMinimizeHooks is a no-op implementation of MinimizeHooks.
type NoopMinimizeHooks struct{}

func (NoopMinimizeHooks) OnPackageStart(context.Context, string, int)          {}
func (NoopMinimizeHooks) OnTrialStart(context.Context, string, string, string) {}
func (NoopMinimizeHooks) OnTrialComplete(context.Context, string, string, string, bool, time.Duration) {
}
func (NoopMinimizeHooks) OnPackageComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}
func (NoopCacheHooks) OnCacheSet(context.Context, string)  {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	minimizeHooks MinimizeHooks = NoopMinimizeHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetMinimizeHooks registers minimization hooks. nil is ignored.
func SetMinimizeHooks(h MinimizeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		minimizeHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Minimize returns the registered minimization hooks.
func Minimize() MinimizeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return minimizeHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	minimizeHooks = NoopMinimizeHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
