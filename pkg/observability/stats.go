package observability

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"
)

// Stats counts events in memory. It implements all three hook kinds and
// is safe for concurrent use.
type Stats struct {
	started time.Time

	layouts, layoutErrors, boxes, layoutNanos atomic.Int64
	renders, renderErrors, renderBytes        atomic.Int64
	hits, misses, sets, setBytes              atomic.Int64
	requests, requestErrors                   atomic.Int64
	statusClass                               [6]atomic.Int64 // index status/100
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{started: time.Now()}
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Uptime       string           `json:"uptime"`
	Layouts      int64            `json:"layouts"`
	LayoutErrors int64            `json:"layout_errors"`
	Boxes        int64            `json:"boxes"`
	LayoutMillis float64          `json:"layout_ms"`
	Renders      int64            `json:"renders"`
	RenderErrors int64            `json:"render_errors"`
	RenderBytes  int64            `json:"render_bytes"`
	CacheHits    int64            `json:"cache_hits"`
	CacheMisses  int64            `json:"cache_misses"`
	CacheSets    int64            `json:"cache_sets"`
	CacheBytes   int64            `json:"cache_bytes"`
	HitRate      float64          `json:"cache_hit_rate"`
	Requests     int64            `json:"requests"`
	Errors       int64            `json:"request_errors"`
	Responses    map[string]int64 `json:"responses,omitempty"`
}

// Snapshot copies the current counters. Responses are keyed by status
// class, "2xx" through "5xx".
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		Uptime:       time.Since(s.started).Round(time.Second).String(),
		Layouts:      s.layouts.Load(),
		LayoutErrors: s.layoutErrors.Load(),
		Boxes:        s.boxes.Load(),
		LayoutMillis: float64(s.layoutNanos.Load()) / float64(time.Millisecond),
		Renders:      s.renders.Load(),
		RenderErrors: s.renderErrors.Load(),
		RenderBytes:  s.renderBytes.Load(),
		CacheHits:    s.hits.Load(),
		CacheMisses:  s.misses.Load(),
		CacheSets:    s.sets.Load(),
		CacheBytes:   s.setBytes.Load(),
		Requests:     s.requests.Load(),
		Errors:       s.requestErrors.Load(),
	}
	if lookups := snap.CacheHits + snap.CacheMisses; lookups > 0 {
		snap.HitRate = float64(snap.CacheHits) / float64(lookups)
	}
	for class := 1; class < len(s.statusClass); class++ {
		if n := s.statusClass[class].Load(); n > 0 {
			if snap.Responses == nil {
				snap.Responses = make(map[string]int64)
			}
			snap.Responses[strconv.Itoa(class)+"xx"] = n
		}
	}
	return snap
}

func (s *Stats) OnLayoutStart(context.Context, int) {}

func (s *Stats) OnLayoutComplete(_ context.Context, boxCount, _ int, d time.Duration, err error) {
	s.layouts.Add(1)
	s.layoutNanos.Add(int64(d))
	if err != nil {
		s.layoutErrors.Add(1)
		return
	}
	s.boxes.Add(int64(boxCount))
}

func (s *Stats) OnRenderStart(context.Context, string) {}

func (s *Stats) OnRenderComplete(_ context.Context, _ string, size int, _ time.Duration, err error) {
	s.renders.Add(1)
	if err != nil {
		s.renderErrors.Add(1)
		return
	}
	s.renderBytes.Add(int64(size))
}

func (s *Stats) OnCacheHit(context.Context, string)  { s.hits.Add(1) }
func (s *Stats) OnCacheMiss(context.Context, string) { s.misses.Add(1) }

func (s *Stats) OnCacheSet(_ context.Context, _ string, size int) {
	s.sets.Add(1)
	s.setBytes.Add(int64(size))
}

func (s *Stats) OnRequest(context.Context, string, string) { s.requests.Add(1) }

func (s *Stats) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	if class := status / 100; class > 0 && class < len(s.statusClass) {
		s.statusClass[class].Add(1)
	}
}

func (s *Stats) OnError(context.Context, string, string, error) { s.requestErrors.Add(1) }

var (
	_ LayoutHooks = (*Stats)(nil)
	_ CacheHooks  = (*Stats)(nil)
	_ HTTPHooks   = (*Stats)(nil)
)
