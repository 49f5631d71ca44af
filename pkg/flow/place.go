package flow

import (
	"math"

	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/geom"
)

// Place returns one rectangle per box inside bounds, index-aligned with
// boxes. Rows are packed against bounds' width exactly as
// [Flow.SizeThatFits] packs them, then each row is written according to the
// alignment. Rectangles are normalised so their origin is the top-left
// corner.
//
// A box wider than bounds gets a row of its own and is placed flush to the
// leading edge, unshrunk. The error is non-nil only if row bookkeeping does
// not account for every box exactly once.
func (f Flow) Place(bounds geom.Rect, boxes []Box) ([]geom.Rect, error) {
	if len(boxes) == 0 {
		return []geom.Rect{}, nil
	}

	sizes := intrinsicSizes(boxes)
	rects := make([]geom.Rect, len(boxes))
	placed := 0
	next := 0
	for _, ln := range f.pack(boxes, sizes, placeLimit(bounds.Width())) {
		if ln.start != next {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"row starts at box %d, expected %d", ln.start, next)
		}
		placed += f.placeRow(rects[ln.start:ln.start+ln.row.Len()], ln, bounds)
		next = ln.start + ln.row.Len()
	}

	if placed != len(boxes) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"placed %d of %d boxes", placed, len(boxes))
	}
	return rects, nil
}

// placeRow writes the rectangles of one closed row into dst and returns how
// many were written.
func (f Flow) placeRow(dst []geom.Rect, ln line, bounds geom.Rect) int {
	r := ln.row
	unused := math.Max(0, bounds.Width()-r.MinimumWidth())
	if math.IsInf(unused, 1) {
		unused = 0
	}
	start, extra := f.Alignment.distribute(r, unused)
	anchor := f.Alignment.Anchor()

	cursor := geom.Pt(bounds.MinX()+start, bounds.MinY()+ln.y+r.MaxHeight()*anchor.Y)
	for i, s := range r.Sizes() {
		if i > 0 {
			cursor.X += r.Gap(i) + extra
		}
		dst[i] = geom.RectAt(cursor, s, anchor)
		cursor.X += s.Width
	}
	return len(r.Sizes())
}
