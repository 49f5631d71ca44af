package flow

import (
	"math"

	"github.com/matzehuels/reflow/pkg/geom"
)

// SizeThatFits returns the bounding size of boxes packed against the
// proposal's width.
//
// An unspecified width packs against the natural width, the width of all
// boxes on a single row. The limit never drops below the widest box, so
// every box fits on some row. Zero boxes measure as the zero size; a
// proposal unbounded in both dimensions measures as unbounded.
func (f Flow) SizeThatFits(p geom.Proposal, boxes []Box) geom.Size {
	if p.IsInfinite() {
		return geom.Sz(math.Inf(1), math.Inf(1))
	}
	if len(boxes) == 0 {
		return geom.Size{}
	}

	sizes := intrinsicSizes(boxes)
	var widest float64
	for _, s := range sizes {
		widest = max(widest, s.Width)
	}

	limit, ok := p.Width()
	if !ok || math.IsNaN(limit) {
		limit = f.naturalWidth(boxes, sizes)
	}
	limit = max(limit, widest)

	var maxX, maxY float64
	for _, ln := range f.pack(boxes, sizes, limit) {
		maxX = max(maxX, ln.row.MinimumWidth())
		maxY = max(maxY, ln.y+ln.row.MaxHeight())
	}
	return geom.Sz(maxX, maxY)
}

// naturalWidth is the width of every box on one row.
func (f Flow) naturalWidth(boxes []Box, sizes []geom.Size) float64 {
	r := NewRow(f.Spacing)
	for i, b := range boxes {
		r.appendSized(b, sizes[i])
	}
	return r.MinimumWidth()
}
