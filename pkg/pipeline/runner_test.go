package pipeline

import (
	"bytes"
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/flow"
	"github.com/matzehuels/reflow/pkg/observability"
)

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func testDocument() *document.Document {
	d := document.New("test", flow.TopLeading)
	d.Spacing = ptr(10)
	d.Width = ptr(220)
	return d.Add("a", 100, 40).Add("b", 100, 40).Add("c", 50, 40)
}

func quietRunner(c *memCache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(&bytes.Buffer{}, log.Options{}))
}

func TestRunnerCompute(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := quietRunner(c)
	d := testDocument()

	res, hit, err := r.ComputeWithCacheInfo(ctx, d, Options{})
	if err != nil {
		t.Fatalf("ComputeWithCacheInfo() error: %v", err)
	}
	if hit {
		t.Error("first compute should miss the cache")
	}
	if res.Width != 210 || res.Height != 90 || res.Rows != 2 {
		t.Errorf("result %gx%g in %d rows, want 210x90 in 2 rows", res.Width, res.Height, res.Rows)
	}
	want := []document.Placement{
		{ID: "a", X: 0, Y: 0, Width: 100, Height: 40, Row: 0},
		{ID: "b", X: 110, Y: 0, Width: 100, Height: 40, Row: 0},
		{ID: "c", X: 0, Y: 50, Width: 50, Height: 40, Row: 1},
	}
	if !reflect.DeepEqual(res.Placements, want) {
		t.Errorf("placements = %+v, want %+v", res.Placements, want)
	}

	again, hit, err := r.ComputeWithCacheInfo(ctx, d, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second compute should hit the cache")
	}
	if !reflect.DeepEqual(again, res) {
		t.Errorf("cached result = %+v, want %+v", again, res)
	}

	t.Run("same boxes in another document", func(t *testing.T) {
		other := testDocument()
		got, hit, err := r.ComputeWithCacheInfo(ctx, other, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if !hit {
			t.Error("identical boxes should share the cache entry")
		}
		if got.DocumentID != other.ID {
			t.Errorf("DocumentID = %q, want %q", got.DocumentID, other.ID)
		}
	})

	t.Run("refresh", func(t *testing.T) {
		_, hit, err := r.ComputeWithCacheInfo(ctx, d, Options{Refresh: true})
		if err != nil {
			t.Fatal(err)
		}
		if hit {
			t.Error("refresh should bypass the cache")
		}
	})

	t.Run("override changes the key", func(t *testing.T) {
		res, hit, err := r.ComputeWithCacheInfo(ctx, d, Options{Alignment: "topTrailing"})
		if err != nil {
			t.Fatal(err)
		}
		if hit {
			t.Error("a different alignment should miss the cache")
		}
		if res.Alignment != flow.TopTrailing || res.Placements[0].X != 0 || res.Placements[2].X != 160 {
			t.Errorf("topTrailing placements = %+v", res.Placements)
		}
	})
}

func TestRunnerComputeErrors(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(newMemCache())

	tests := []struct {
		name string
		ctx  context.Context
		doc  *document.Document
		opts Options
		code errors.Code
	}{
		{"nil document", ctx, nil, Options{}, errors.ErrCodeInvalidDocument},
		{"negative size", ctx, document.New("bad", flow.Center).Add("a", -1, 10), Options{}, errors.ErrCodeInvalidInput},
		{"bad override", ctx, testDocument(), Options{Alignment: "sideways"}, errors.ErrCodeInvalidAlignment},
		{"cancelled", cancelledContext(), testDocument(), Options{}, errors.ErrCodeTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Compute(tt.ctx, tt.doc, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Compute() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRunnerRendersOnlyMissingFormats(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(newMemCache())
	d := testDocument()

	first, err := r.Execute(ctx, d, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.CacheInfo.Rendered, []string{FormatSVG}) {
		t.Errorf("first run rendered %v", first.CacheInfo.Rendered)
	}

	second, err := r.Execute(ctx, d, Options{Formats: []string{FormatSVG, FormatDOT}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(second.CacheInfo.Rendered, []string{FormatDOT}) || second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v, want only dot rendered", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("svg was not served from the cache")
	}

	refreshed, err := r.Execute(ctx, d, Options{Formats: []string{FormatSVG, FormatDOT}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(refreshed.CacheInfo.Rendered) != 2 || refreshed.CacheInfo.LayoutHit {
		t.Errorf("refresh cache info = %+v", refreshed.CacheInfo)
	}
}

func cancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := quietRunner(c)
	opts := Options{Formats: []string{FormatSVG, FormatJSON, FormatText}, Labels: true}
	d := testDocument()

	result, err := r.Execute(ctx, d, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	for _, f := range opts.Formats {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !bytes.Contains(result.Artifacts[FormatSVG], []byte(`id="box-c"`)) {
		t.Error("svg artifact does not draw box c")
	}
	if result.Stats.BoxCount != 3 || result.Stats.RowCount != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Errorf("first run cache info = %+v", result.CacheInfo)
	}
	if result.DocumentHash == "" || result.Document == nil {
		t.Error("result should carry the document and its hash")
	}

	again, err := r.Execute(ctx, d, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.LayoutHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", again.CacheInfo)
	}
	if !bytes.Equal(again.Artifacts[FormatSVG], result.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from the rendered one")
	}

	t.Run("invalid format", func(t *testing.T) {
		_, err := r.Execute(ctx, testDocument(), Options{Formats: []string{"pdf"}})
		if !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("Execute() error = %v, want INVALID_FORMAT", err)
		}
	})
}

func TestRunnerRenderRequiresResult(t *testing.T) {
	r := quietRunner(newMemCache())
	if _, err := r.Render(context.Background(), nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Render(nil) error = %v, want INVALID_INPUT", err)
	}
}

type recordingHooks struct {
	mu      sync.Mutex
	starts  []int
	rows    []int
	renders []string
}

func (h *recordingHooks) OnLayoutStart(_ context.Context, boxes int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts = append(h.starts, boxes)
}

func (h *recordingHooks) OnLayoutComplete(_ context.Context, _, rows int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rows = append(h.rows, rows)
}

func (h *recordingHooks) OnRenderStart(_ context.Context, format string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders = append(h.renders, format)
}

func (h *recordingHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

func TestRunnerHooks(t *testing.T) {
	h := &recordingHooks{}
	defer observability.Register(h)()

	r := quietRunner(newMemCache())
	if _, err := r.Execute(context.Background(), testDocument(), Options{Formats: []string{FormatJSON, FormatDOT}}); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(h.starts, []int{3}) || !reflect.DeepEqual(h.rows, []int{2}) {
		t.Errorf("layout hooks saw starts %v rows %v", h.starts, h.rows)
	}
	if !reflect.DeepEqual(h.renders, []string{FormatJSON, FormatDOT}) {
		t.Errorf("render hooks saw %v", h.renders)
	}
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if r.Cache == nil || r.Keyer == nil || r.Logger == nil {
		t.Errorf("NewRunner() left nil fields: %+v", r)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}
