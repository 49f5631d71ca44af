package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"rows":2}`), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != `{"rows":2}` {
		t.Errorf("Get(k) = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Delete should miss")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Errorf("Clear() = %d, %v; want 3, nil", n, err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("Get after Clear should miss")
	}
}

func TestFileCachePruneAndStats(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	entries := []struct {
		key string
		ttl time.Duration
	}{
		{"forever", 0},
		{"short", time.Minute},
		{"long", time.Hour},
	}
	for _, e := range entries {
		if err := c.Set(ctx, e.key, []byte("0123456789"), e.ttl); err != nil {
			t.Fatalf("Set(%s) error: %v", e.key, err)
		}
	}
	junk := c.path("junk")
	if err := os.MkdirAll(filepath.Dir(junk), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(junk, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	n, size, err := c.Stats()
	if err != nil || n != 4 || size == 0 {
		t.Errorf("Stats() = %d, %d, %v; want 4 entries", n, size, err)
	}

	now = now.Add(10 * time.Minute)
	removed, err := c.Prune()
	if err != nil || removed != 2 {
		t.Errorf("Prune() = %d, %v; want 2 (expired + junk)", removed, err)
	}
	for key, want := range map[string]bool{"forever": true, "short": false, "long": true} {
		if _, hit, _ := c.Get(ctx, key); hit != want {
			t.Errorf("Get(%s) hit = %v, want %v", key, hit, want)
		}
	}
}

func TestFileCacheEntryFormat(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if err := c.Set(context.Background(), "k", []byte("raw\nbytes"), 0); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(c.path("k"))
	if err != nil {
		t.Fatal(err)
	}
	if want := entryMagic + "0\nraw\nbytes"; string(raw) != want {
		t.Errorf("entry = %q, want %q", raw, want)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	j1, err := HashJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("HashJSON error: %v", err)
	}
	if j1 != Hash([]byte("{\"a\":1}\n")) {
		t.Error("HashJSON should hash the encoder output")
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON should fail for unencodable values")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	ten, twenty := 10.0, 20.0

	lk1 := k.LayoutKey("doc", LayoutKeyOpts{Alignment: "center", Spacing: &ten})
	lk2 := k.LayoutKey("doc", LayoutKeyOpts{Alignment: "center", Spacing: &twenty})
	lk3 := k.LayoutKey("doc", LayoutKeyOpts{Alignment: "center"})
	if lk1 == lk2 || lk1 == lk3 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(lk1, "layout:"+keyVersion+":") {
		t.Errorf("LayoutKey should be prefixed: %s", lk1)
	}
	if lk1 != k.LayoutKey("doc", LayoutKeyOpts{Alignment: "center", Spacing: &ten}) {
		t.Error("LayoutKey should be deterministic")
	}

	ak1 := k.ArtifactKey("res", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("res", ArtifactKeyOpts{Format: "png"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "api:")
	key := scoped.LayoutKey("doc", LayoutKeyOpts{})
	if !strings.HasPrefix(key, "api:layout:") {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", key)
	}
	if key != "api:"+NewDefaultKeyer().LayoutKey("doc", LayoutKeyOpts{}) {
		t.Error("ScopedKeyer should only prepend its prefix")
	}

	// Nil inner falls back to DefaultKeyer
	if got := NewScopedKeyer(nil, "p:").ArtifactKey("r", ArtifactKeyOpts{}); !strings.HasPrefix(got, "p:artifact:") {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestBackoffDo(t *testing.T) {
	ctx := context.Background()
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}
	errCommand := errors.New("WRONGTYPE")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"not retryable", 5, errCommand, 1, errCommand},
		{"retry once", 1, ErrUnavailable, 2, nil},
		{"exhausted", 5, ErrUnavailable, 3, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := fast.Do(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("Do() error = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("Do() made %d calls, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffDoContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff{Attempts: 5, Delay: time.Hour}.Do(ctx, func() error {
		return ErrUnavailable
	})
	if err != context.Canceled {
		t.Errorf("Do() error = %v, want context.Canceled", err)
	}
}

func TestBackoffDefaults(t *testing.T) {
	b := Backoff{}.withDefaults()
	if b != DefaultBackoff {
		t.Errorf("zero Backoff defaults to %+v, want %+v", b, DefaultBackoff)
	}
	b = Backoff{Attempts: 1, Delay: 2 * time.Second}.withDefaults()
	if b.MaxDelay != 2*time.Second {
		t.Errorf("MaxDelay = %v, want it raised to Delay", b.MaxDelay)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	if classify(nil) != nil {
		t.Error("classify(nil) should be nil")
	}
	if errors.Is(classify(redis.Nil), ErrUnavailable) {
		t.Error("redis.Nil must not be retried")
	}
	var netErr net.Error = timeoutErr{}
	if err := classify(netErr); !errors.Is(err, ErrUnavailable) {
		t.Errorf("network error should be retryable: %v", err)
	}
	if errors.Is(classify(errors.New("WRONGTYPE")), ErrUnavailable) {
		t.Error("command errors must not be retried")
	}
}

func TestRedisCacheUnavailable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewRedisCache() error = %v, want ErrUnavailable", err)
	}
}

// TestRedisCache runs against a live server when REFLOW_REDIS_ADDR is set.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REFLOW_REDIS_ADDR")
	if addr == "" {
		t.Skip("REFLOW_REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisOptions{Addr: addr, Prefix: "reflow-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}
	if n, err := c.Clear(ctx); err != nil || n < 1 {
		t.Errorf("Clear() = %d, %v", n, err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get after Clear should miss")
	}
}
