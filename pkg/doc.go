// Package pkg provides the libraries behind Reflow, a wrap ("flow") layout
// engine.
//
// # Overview
//
// Reflow places fixed-size boxes left to right in rows that wrap at a
// proposed width, like words in a paragraph or tags in a tag cloud. The
// pkg directory is organized into three areas:
//
//  1. Layout - [geom], [flow] and [textbox]: the measuring and placing
//     algorithm and the boxes it operates on
//  2. Documents - [document], [render] and [pipeline]: the serialisable
//     job, its output formats and the cached orchestration between them
//  3. Infrastructure - [cache], [store], [server], [observability] and
//     [errors]: backends and the HTTP API
//
// # Architecture
//
// The typical data flow through Reflow:
//
//	JSON/TOML document
//	         ↓
//	    [document] package (parse + validate)
//	         ↓
//	    [flow] package (measure + place)
//	         ↓
//	    [render] package (SVG, PNG, DOT, JSON, text)
//
// [pipeline.Runner] ties these together and caches each stage.
//
// # Quick Start
//
// Lay out three boxes directly:
//
//	import (
//	    "github.com/matzehuels/reflow/pkg/flow"
//	    "github.com/matzehuels/reflow/pkg/geom"
//	)
//
//	boxes := []flow.Box{
//	    flow.Sized(100, 40), flow.Sized(100, 40), flow.Sized(50, 40),
//	}
//	f := flow.New(flow.TopLeading, flow.WithSpacing(10))
//	size, rects, err := f.Layout(geom.ProposeWidth(220), boxes)
//
// Or run a document through the pipeline:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	res, err := runner.Compute(ctx, doc, pipeline.Options{})
//
// # Main Packages
//
// [geom] - Points, sizes, rectangles and size proposals.
//
// [flow] - The Measurer, Placer and Row Accumulator, plus the seven
// alignment policies and fixed or negotiated spacing.
//
// [textbox] - Boxes sized from text, in font pixels or terminal cells,
// and the fixture tag sets.
//
// [document] - Documents and results with JSON and TOML codecs.
//
// [render] - Output formats and visual styles.
//
// [pipeline] - Cached layout and render orchestration, consistency checks
// and random sweeps.
//
// [cache], [store] - File, Redis, MongoDB and in-memory backends.
//
// [server] - The HTTP API.
package pkg
