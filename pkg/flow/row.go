package flow

import (
	"github.com/matzehuels/reflow/pkg/geom"
)

// Row accumulates the boxes tentatively assigned to one output line. It
// lives for a single packing pass and does not own its boxes.
type Row struct {
	spacing Spacing
	boxes   []Box
	sizes   []geom.Size
	gaps    []float64 // gaps[i] precedes boxes[i]; gaps[0] is always 0
	width   float64
	height  float64
	tallest int
}

// NewRow returns an empty row using the given spacing rule.
func NewRow(spacing Spacing) *Row {
	return &Row{spacing: spacing}
}

// Len returns the number of boxes in the row.
func (r *Row) Len() int { return len(r.boxes) }

// Boxes returns the row's boxes in order. The slice must not be modified.
func (r *Row) Boxes() []Box { return r.boxes }

// Sizes returns the intrinsic sizes of the row's boxes in order.
func (r *Row) Sizes() []geom.Size { return r.sizes }

// MinimumWidth returns the sum of the box widths plus the interior spacing.
// An empty row has zero width.
func (r *Row) MinimumWidth() float64 { return r.width }

// MinimumWidthIfAppending returns the width the row would have with b
// appended, without changing the row.
func (r *Row) MinimumWidthIfAppending(b Box) float64 {
	return r.widthWith(b, intrinsicSize(b))
}

// MaxHeight returns the height of the tallest box, or 0 for an empty row.
func (r *Row) MaxHeight() float64 { return r.height }

// MaxHeightIfAppending returns the row height with b appended, without
// changing the row.
func (r *Row) MaxHeightIfAppending(b Box) float64 {
	return max(r.height, intrinsicSize(b).Height)
}

// Append adds b to the end of the row.
func (r *Row) Append(b Box) {
	r.appendSized(b, intrinsicSize(b))
}

// Gap returns the horizontal spacing before the i-th box. The first box has
// no leading gap.
func (r *Row) Gap(i int) float64 {
	if i <= 0 || i >= len(r.gaps) {
		return 0
	}
	return r.gaps[i]
}

// AverageSpacing returns the mean horizontal gap between neighbours. With
// fixed spacing it is the fixed value; a negotiated row with fewer than two
// boxes has no gaps and averages to 0.
func (r *Row) AverageSpacing() float64 {
	if v, ok := r.spacing.Value(); ok {
		return v
	}
	if len(r.boxes) < 2 {
		return 0
	}
	var sum float64
	for _, g := range r.gaps[1:] {
		sum += g
	}
	return sum / float64(len(r.boxes)-1)
}

// VerticalSpacingTo returns the gap inserted above r when it follows prev.
// Negotiated spacing uses the distance between the tallest box of each row.
func (r *Row) VerticalSpacingTo(prev *Row) float64 {
	if v, ok := r.spacing.Value(); ok {
		return v
	}
	if prev == nil || prev.Len() == 0 || r.Len() == 0 {
		return 0
	}
	return prev.boxes[prev.tallest].Spacing().Distance(r.boxes[r.tallest].Spacing(), Vertical)
}

func (r *Row) widthWith(b Box, s geom.Size) float64 {
	if len(r.boxes) == 0 {
		return s.Width
	}
	return r.width + r.spacing.Between(r.boxes[len(r.boxes)-1], b, Horizontal) + s.Width
}

func (r *Row) appendSized(b Box, s geom.Size) {
	var gap float64
	if n := len(r.boxes); n > 0 {
		gap = r.spacing.Between(r.boxes[n-1], b, Horizontal)
		r.width += gap
		if s.Height > r.height {
			r.tallest = n
		}
	}
	r.width += s.Width
	r.height = max(r.height, s.Height)
	r.boxes = append(r.boxes, b)
	r.sizes = append(r.sizes, s)
	r.gaps = append(r.gaps, gap)
}
