// Package flow computes wrap ("flow") layouts.
//
// # Overview
//
// A flow layout packs an ordered sequence of boxes left to right into rows
// that wrap at a width limit, the way words wrap in a paragraph. Two pure
// computations share one packing pass:
//
//   - [Flow.SizeThatFits] returns the bounding size of the packed boxes for
//     a proposed width.
//   - [Flow.Place] returns one placement rectangle per box inside concrete
//     bounds, index-aligned with the input.
//
// Both walk the boxes with a [Row] accumulator and agree exactly on which
// boxes land in which row, so placing into the measured size reproduces the
// measured bounding box:
//
//	f := flow.New(flow.TopLeading, flow.WithSpacing(10))
//	size := f.SizeThatFits(geom.ProposeWidth(220), boxes)
//	rects, err := f.Place(geom.Rect{Size: size}, boxes)
//
// # Boxes and Spacing
//
// A [Box] exposes its intrinsic size and a spacing [Preference]. Spacing is
// either fixed ([Fixed]) and applied uniformly between neighbours and rows,
// or negotiated ([Negotiated]), in which case each adjacent pair contributes
// the larger of the two preferences along the relevant axis. Rows are
// separated by the negotiated distance between their tallest boxes.
//
// # Alignment
//
// An [Alignment] decides where a row's boxes are written within the
// available width and whether they hang from the top or rest on the bottom
// of the row. It never changes row membership.
//
// # Tolerance
//
// Overflow tests allow [Epsilon] of slack so rows whose widths sum to the
// limit within rounding noise do not wrap.
//
// # Malformed input
//
// Negative, NaN and infinite sizes or spacing values are treated as zero.
// The functions never panic on data; [Flow.Place] only returns an error
// for internal bookkeeping failures.
package flow
