package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reflow/pkg/cache"
	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/observability"
	"github.com/matzehuels/reflow/pkg/render"
)

// Runner lays out and renders documents through a cache. The CLI and the
// server share it. A Runner holds no per-run state, so one value can
// serve concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner over c. Nil arguments fall back to a
// NullCache, the DefaultKeyer and the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewDefaultKeyer()
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// Execute lays out d and renders every requested format.
func (r *Runner) Execute(ctx context.Context, d *document.Document, opts Options) (*Result, error) {
	opts = r.withLogger(opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	out := &Result{Document: opts.Apply(d)}
	out.DocumentHash, _ = DocumentHash(out.Document)

	t0 := time.Now()
	res, hit, err := r.ComputeWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	out.Layout = res
	out.Stats = Stats{BoxCount: len(res.Placements), RowCount: res.Rows, LayoutTime: time.Since(t0)}
	out.CacheInfo.LayoutHit = hit
	r.Logger.Info("layout ready",
		"boxes", out.Stats.BoxCount,
		"rows", out.Stats.RowCount,
		"size", res.Size(),
		"cached", hit,
		"elapsed", out.Stats.LayoutTime)

	t1 := time.Now()
	artifacts, rendered, err := r.renderFormats(ctx, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out.Artifacts = artifacts
	out.Stats.RenderTime = time.Since(t1)
	out.CacheInfo.Rendered = rendered
	out.CacheInfo.RenderHit = len(rendered) == 0
	r.Logger.Info("artifacts ready",
		"formats", opts.Formats,
		"rendered", rendered,
		"elapsed", out.Stats.RenderTime)
	return out, nil
}

// DocumentHash returns the content hash of the boxes of d. Names, ids and
// timestamps do not contribute, so identical box lists share cache entries.
func DocumentHash(d *document.Document) (string, error) {
	return cache.HashJSON(d.Boxes)
}

// Compute lays out d, using the cache when possible.
func (r *Runner) Compute(ctx context.Context, d *document.Document, opts Options) (*document.Result, error) {
	res, _, err := r.ComputeWithCacheInfo(ctx, d, opts)
	return res, err
}

// ComputeWithCacheInfo is Compute that also reports whether the result
// came from the cache. Option overrides are applied to a copy of d.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, d *document.Document, opts Options) (res *document.Result, hit bool, err error) {
	opts = r.withLogger(opts)
	if err := opts.CheckLayout(); err != nil {
		return nil, false, err
	}
	if d == nil {
		return nil, false, errors.New(errors.ErrCodeInvalidDocument, "document is required")
	}
	eff := opts.Apply(d)
	if err := eff.Validate(); err != nil {
		return nil, false, err
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, len(eff.Boxes))
	start := time.Now()
	defer func() {
		var rows int
		if res != nil {
			rows = res.Rows
		}
		hooks.OnLayoutComplete(ctx, len(eff.Boxes), rows, time.Since(start), err)
	}()

	docHash, err := DocumentHash(eff)
	if err != nil {
		return nil, false, fmt.Errorf("hash document: %w", err)
	}
	key := r.Keyer.LayoutKey(docHash, LayoutKeyOpts(eff))

	if cached, ok := r.lookup(ctx, key, opts, "layout"); ok {
		// A stored result that no longer decodes or matches the box count is
		// recomputed and overwritten.
		if res, err := document.ReadResult(bytes.NewReader(cached)); err == nil && len(res.Placements) == len(eff.Boxes) {
			res.DocumentID = eff.ID
			return res, true, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeTimeout, err, "layout cancelled")
	}

	res, err = document.Layout(eff)
	if err != nil {
		return nil, false, err
	}
	opts.Logger.Debug("placed boxes",
		"count", len(res.Placements),
		"rows", res.Rows,
		"alignment", eff.Alignment,
		"spacing", eff.Flow().Spacing)

	if data, err := json.Marshal(res); err == nil {
		r.store(ctx, key, data, cache.TTLLayout, opts, "layout")
	}
	return res, false, nil
}

// Render renders res in every requested format.
func (r *Runner) Render(ctx context.Context, res *document.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, opts)
	return artifacts, err
}

// RenderWithCacheInfo is Render that also reports whether every artifact
// came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res *document.Result, opts Options) (map[string][]byte, bool, error) {
	artifacts, rendered, err := r.renderFormats(ctx, res, r.withLogger(opts))
	if err != nil {
		return nil, false, err
	}
	return artifacts, len(rendered) == 0, nil
}

// renderFormats returns an artifact per format, rendering only those the
// cache misses. rendered lists the formats rendered in this call.
func (r *Runner) renderFormats(ctx context.Context, res *document.Result, opts Options) (artifacts map[string][]byte, rendered []string, err error) {
	if err := opts.CheckRender(); err != nil {
		return nil, nil, err
	}
	if res == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "result is required")
	}
	resultHash, err := cache.HashJSON(res)
	if err != nil {
		return nil, nil, fmt.Errorf("hash result: %w", err)
	}

	hooks := observability.Layout()
	renderOpts := opts.RenderOptions()
	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(resultHash, opts.ArtifactKeyOpts(format))
		if data, ok := r.lookup(ctx, key, opts, format); ok {
			artifacts[format] = data
			continue
		}

		hooks.OnRenderStart(ctx, format)
		start := time.Now()
		data, err := render.Render(ctx, res, format, renderOpts)
		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
		rendered = append(rendered, format)
		r.store(ctx, key, data, cache.TTLArtifact, opts, format)
	}
	return artifacts, rendered, nil
}

// lookup reads key unless opts asks for a refresh. Backend errors are
// logged and treated as misses.
func (r *Runner) lookup(ctx context.Context, key string, opts Options, what string) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "entry", what, "err", err)
		return nil, false
	}
	return data, ok
}

func (r *Runner) store(ctx context.Context, key string, data []byte, ttl time.Duration, opts Options, what string) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		opts.Logger.Warn("cache write failed", "entry", what, "err", err)
	}
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache == nil {
		return nil
	}
	return r.Cache.Close()
}

func (r *Runner) withLogger(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	return opts
}
