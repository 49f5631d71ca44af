package flow

import (
	"math"

	"github.com/matzehuels/reflow/pkg/geom"
)

// Epsilon is the slack allowed when testing whether a box still fits on the
// current row.
const Epsilon = 1e-11

// Flow is a flow layout configuration. The zero value is a top-leading
// layout with negotiated spacing. Flow values are immutable and safe for
// concurrent use.
type Flow struct {
	Alignment Alignment
	Spacing   Spacing
}

// Option configures a Flow built by [New].
type Option func(*Flow)

// WithSpacing sets a fixed spacing between boxes and rows.
func WithSpacing(v float64) Option {
	return func(f *Flow) { f.Spacing = Fixed(v) }
}

// WithNegotiatedSpacing lets neighbouring boxes negotiate their spacing.
func WithNegotiatedSpacing() Option {
	return func(f *Flow) { f.Spacing = Negotiated() }
}

// New returns a Flow with the given alignment and options applied.
func New(a Alignment, opts ...Option) Flow {
	f := Flow{Alignment: a}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Measure returns the bounding size of boxes packed at proposedWidth. A nil
// width packs everything onto as few rows as the natural width allows.
func Measure(boxes []Box, proposedWidth *float64, spacing Spacing, a Alignment) geom.Size {
	p := geom.Unspecified
	if proposedWidth != nil {
		p = geom.ProposeWidth(*proposedWidth)
	}
	return Flow{Alignment: a, Spacing: spacing}.SizeThatFits(p, boxes)
}

// Place returns one rectangle per box inside bounds, in input order.
func Place(boxes []Box, bounds geom.Rect, spacing Spacing, a Alignment) ([]geom.Rect, error) {
	return Flow{Alignment: a, Spacing: spacing}.Place(bounds, boxes)
}

// Layout measures boxes against p and places them in a rectangle of the
// measured size at the origin.
func (f Flow) Layout(p geom.Proposal, boxes []Box) (geom.Size, []geom.Rect, error) {
	size := f.SizeThatFits(p, boxes)
	rects, err := f.Place(geom.Rect{Size: size}, boxes)
	return size, rects, err
}

// RowSpan describes one packed row: the half-open range of input indices
// it holds and its geometry relative to the layout origin.
type RowSpan struct {
	Start, End int
	Y          float64
	Width      float64
	Height     float64
}

// Len returns the number of boxes in the span.
func (s RowSpan) Len() int { return s.End - s.Start }

// Rows returns the row partition of boxes at the given width limit, as used
// by [Flow.Place] for bounds of that width.
func (f Flow) Rows(width float64, boxes []Box) []RowSpan {
	lines := f.pack(boxes, intrinsicSizes(boxes), placeLimit(width))
	spans := make([]RowSpan, len(lines))
	for i, ln := range lines {
		spans[i] = RowSpan{
			Start:  ln.start,
			End:    ln.start + ln.row.Len(),
			Y:      ln.y,
			Width:  ln.row.MinimumWidth(),
			Height: ln.row.MaxHeight(),
		}
	}
	return spans
}

// line is a closed row together with its first input index and its top
// edge relative to the layout origin.
type line struct {
	row   *Row
	start int
	y     float64
}

// pack partitions boxes into rows no wider than limit. A row always accepts
// its first box, so a box wider than limit gets a row of its own.
func (f Flow) pack(boxes []Box, sizes []geom.Size, limit float64) []line {
	if len(boxes) == 0 {
		return nil
	}
	var lines []line
	cur := line{row: NewRow(f.Spacing)}
	for i, b := range boxes {
		if cur.row.Len() > 0 && cur.row.widthWith(b, sizes[i])-limit > Epsilon {
			lines = append(lines, cur)
			cur = line{row: NewRow(f.Spacing), start: i}
		}
		cur.row.appendSized(b, sizes[i])
	}
	lines = append(lines, cur)

	// Negotiated row gaps depend on each row's tallest box, so vertical
	// positions are only known once every row is closed.
	for i := 1; i < len(lines); i++ {
		prev := lines[i-1]
		lines[i].y = prev.y + prev.row.MaxHeight() + lines[i].row.VerticalSpacingTo(prev.row)
	}
	return lines
}

// placeLimit maps a bounds width onto a packing limit. NaN and negative
// widths leave no room, so every box gets its own row.
func placeLimit(w float64) float64 {
	if math.IsNaN(w) || w < 0 {
		return 0
	}
	return w
}
