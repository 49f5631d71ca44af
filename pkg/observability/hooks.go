// Package observability carries layout, cache and HTTP events from the
// libraries to whoever listens.
//
// Libraries emit through the getters, which fan out to every registered
// listener and do nothing when none is registered:
//
//	observability.Layout().OnLayoutStart(ctx, len(boxes))
//
// Applications register listeners at startup. A listener implements any
// subset of [LayoutHooks], [CacheHooks] and [HTTPHooks]:
//
//	stats := observability.NewStats()
//	defer observability.Register(stats)()
//
// [Stats] counts events for the /v1/stats endpoint; [LogHooks] writes them
// to a logger at debug level.
package observability

import (
	"context"
	"slices"
	"sync"
	"time"
)

// LayoutHooks receives measure/place and render events.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, boxCount int)
	OnLayoutComplete(ctx context.Context, boxCount, rows int, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes, tagged with the backend
// name ("file", "redis").
type CacheHooks interface {
	OnCacheHit(ctx context.Context, backend string)
	OnCacheMiss(ctx context.Context, backend string)
	OnCacheSet(ctx context.Context, backend string, size int)
}

// HTTPHooks receives API requests. OnRequest fires before routing, so its
// route is the raw path; the other events carry the route pattern.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

var (
	mu        sync.RWMutex
	listeners []any
)

// Register adds h to every hook kind it implements and returns a function
// that removes it again. h must be comparable, typically a pointer.
func Register(h any) (unregister func()) {
	mu.Lock()
	listeners = append(slices.Clone(listeners), h)
	mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			defer mu.Unlock()
			if i := slices.Index(listeners, h); i >= 0 {
				listeners = slices.Delete(slices.Clone(listeners), i, i+1)
			}
		})
	}
}

// Reset removes every listener.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	listeners = nil
}

// collect returns the registered listeners implementing T. The slice is
// copied on write, so the snapshot is safe to range over unlocked.
func collect[T any]() []T {
	mu.RLock()
	snapshot := listeners
	mu.RUnlock()
	var out []T
	for _, l := range snapshot {
		if h, ok := l.(T); ok {
			out = append(out, h)
		}
	}
	return out
}

// Layout returns the layout listeners as one LayoutHooks.
func Layout() LayoutHooks { return layoutFan(collect[LayoutHooks]()) }

// Cache returns the cache listeners as one CacheHooks.
func Cache() CacheHooks { return cacheFan(collect[CacheHooks]()) }

// HTTP returns the HTTP listeners as one HTTPHooks.
func HTTP() HTTPHooks { return httpFan(collect[HTTPHooks]()) }

type layoutFan []LayoutHooks

func (f layoutFan) OnLayoutStart(ctx context.Context, boxCount int) {
	for _, h := range f {
		h.OnLayoutStart(ctx, boxCount)
	}
}

func (f layoutFan) OnLayoutComplete(ctx context.Context, boxCount, rows int, d time.Duration, err error) {
	for _, h := range f {
		h.OnLayoutComplete(ctx, boxCount, rows, d, err)
	}
}

func (f layoutFan) OnRenderStart(ctx context.Context, format string) {
	for _, h := range f {
		h.OnRenderStart(ctx, format)
	}
}

func (f layoutFan) OnRenderComplete(ctx context.Context, format string, size int, d time.Duration, err error) {
	for _, h := range f {
		h.OnRenderComplete(ctx, format, size, d, err)
	}
}

type cacheFan []CacheHooks

func (f cacheFan) OnCacheHit(ctx context.Context, backend string) {
	for _, h := range f {
		h.OnCacheHit(ctx, backend)
	}
}

func (f cacheFan) OnCacheMiss(ctx context.Context, backend string) {
	for _, h := range f {
		h.OnCacheMiss(ctx, backend)
	}
}

func (f cacheFan) OnCacheSet(ctx context.Context, backend string, size int) {
	for _, h := range f {
		h.OnCacheSet(ctx, backend, size)
	}
}

type httpFan []HTTPHooks

func (f httpFan) OnRequest(ctx context.Context, method, route string) {
	for _, h := range f {
		h.OnRequest(ctx, method, route)
	}
}

func (f httpFan) OnResponse(ctx context.Context, method, route string, status int, d time.Duration) {
	for _, h := range f {
		h.OnResponse(ctx, method, route, status, d)
	}
}

func (f httpFan) OnError(ctx context.Context, method, route string, err error) {
	for _, h := range f {
		h.OnError(ctx, method, route, err)
	}
}
