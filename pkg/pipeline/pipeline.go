// Package pipeline takes a document from layout to rendered artifacts.
//
// Two stages run in order, each behind the cache:
//
//	document ──Compute──▶ document.Result ──Render──▶ artifacts by format
//
// [Runner.Execute] runs both; [Runner.Compute] and [Runner.Render] run one.
// [Options] override the document's alignment, spacing and width and pick
// the output formats:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	out, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Alignment: "centerJustify",
//	    Formats:   []string{"svg", "txt"},
//	})
//	svg := out.Artifacts["svg"]
//
// The package also checks finished layouts for consistency ([Check]) and
// sweeps random documents through them ([Sweep]).
package pipeline

import (
	"time"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/render"
)

// DefaultStyle is the style used when Options names none.
const DefaultStyle = render.DefaultStyle

// Output formats.
const (
	FormatSVG  = render.FormatSVG
	FormatPNG  = render.FormatPNG
	FormatDOT  = render.FormatDOT
	FormatJSON = render.FormatJSON
	FormatText = render.FormatText
)

// Result is everything one [Runner.Execute] produced.
type Result struct {
	Document     *document.Document // as laid out, overrides applied
	DocumentHash string
	Layout       *document.Result
	Artifacts    map[string][]byte // keyed by format
	Stats        Stats
	CacheInfo    CacheInfo
}

// Stats holds counts and timings of one run.
type Stats struct {
	BoxCount   int
	RowCount   int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo reports what a run took from the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool     // every artifact came from the cache
	Rendered  []string // formats rendered in this run
}
