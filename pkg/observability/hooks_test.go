package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type cacheCounter struct {
	mu   sync.Mutex
	hits int
}

func (c *cacheCounter) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}
func (c *cacheCounter) OnCacheMiss(context.Context, string)     {}
func (c *cacheCounter) OnCacheSet(context.Context, string, int) {}

func TestEmptyRegistryIsNoop(t *testing.T) {
	Reset()
	ctx := context.Background()
	Layout().OnLayoutStart(ctx, 12)
	Layout().OnRenderComplete(ctx, "svg", 2048, time.Millisecond, nil)
	Cache().OnCacheSet(ctx, "redis", 1024)
	HTTP().OnError(ctx, "POST", "/v1/place", errors.New("boom"))
}

func TestRegisterFansOut(t *testing.T) {
	Reset()
	defer Reset()
	ctx := context.Background()

	a, b := &cacheCounter{}, &cacheCounter{}
	unregisterA := Register(a)
	Register(b)

	Cache().OnCacheHit(ctx, "file")
	if a.hits != 1 || b.hits != 1 {
		t.Fatalf("hits = %d, %d; want 1, 1", a.hits, b.hits)
	}

	unregisterA()
	unregisterA()
	Cache().OnCacheHit(ctx, "file")
	if a.hits != 1 || b.hits != 2 {
		t.Errorf("after unregister hits = %d, %d; want 1, 2", a.hits, b.hits)
	}

	// cacheCounter is not a LayoutHooks and must not be reached through one.
	if got := len(collect[LayoutHooks]()); got != 0 {
		t.Errorf("%d layout listeners, want 0", got)
	}
}

func TestStats(t *testing.T) {
	Reset()
	defer Reset()
	ctx := context.Background()
	s := NewStats()
	defer Register(s)()

	Layout().OnLayoutComplete(ctx, 5, 2, 3*time.Millisecond, nil)
	Layout().OnLayoutComplete(ctx, 7, 0, time.Millisecond, errors.New("bad"))
	Layout().OnRenderComplete(ctx, "svg", 300, time.Millisecond, nil)
	Cache().OnCacheMiss(ctx, "file")
	Cache().OnCacheSet(ctx, "file", 64)
	Cache().OnCacheHit(ctx, "file")
	Cache().OnCacheHit(ctx, "file")
	Cache().OnCacheHit(ctx, "redis")
	HTTP().OnRequest(ctx, "POST", "/v1/place")
	HTTP().OnResponse(ctx, "POST", "/v1/place", 200, time.Millisecond)
	HTTP().OnRequest(ctx, "POST", "/v1/place")
	HTTP().OnResponse(ctx, "POST", "/v1/place", 400, time.Millisecond)
	HTTP().OnError(ctx, "POST", "/v1/place", errors.New("bad"))

	got := s.Snapshot()
	checks := []struct {
		name      string
		got, want int64
	}{
		{"layouts", got.Layouts, 2},
		{"layout errors", got.LayoutErrors, 1},
		{"boxes", got.Boxes, 5},
		{"renders", got.Renders, 1},
		{"render bytes", got.RenderBytes, 300},
		{"cache hits", got.CacheHits, 3},
		{"cache misses", got.CacheMisses, 1},
		{"cache bytes", got.CacheBytes, 64},
		{"requests", got.Requests, 2},
		{"errors", got.Errors, 1},
		{"2xx", got.Responses["2xx"], 1},
		{"4xx", got.Responses["4xx"], 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
	if got.HitRate != 0.75 {
		t.Errorf("hit rate = %v, want 0.75", got.HitRate)
	}
	if got.LayoutMillis != 4 {
		t.Errorf("layout ms = %v, want 4", got.LayoutMillis)
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := NewLogHooks(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel}))
	ctx := context.Background()

	h.OnLayoutComplete(ctx, 3, 2, time.Millisecond, nil)
	h.OnRenderComplete(ctx, "png", 0, 0, errors.New("no font"))
	h.OnCacheMiss(ctx, "redis")

	out := buf.String()
	for _, want := range []string{"hooks", "layout done", "rows=2", "render failed", "no font", "cache miss", "backend=redis"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
