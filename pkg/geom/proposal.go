package geom

import "math"

// Proposal is the space a host offers a layout. Each dimension is either
// unspecified (the layout picks its natural extent), a finite value, or
// +Inf (unbounded).
type Proposal struct {
	width, height       float64
	hasWidth, hasHeight bool
}

// Unspecified is the proposal with neither dimension set.
var Unspecified = Proposal{}

// Infinite is the proposal with both dimensions unbounded.
var Infinite = Propose(math.Inf(1), math.Inf(1))

// Propose returns a proposal with both dimensions set.
func Propose(w, h float64) Proposal {
	return Proposal{width: w, height: h, hasWidth: true, hasHeight: true}
}

// ProposeWidth returns a proposal with only the width set.
func ProposeWidth(w float64) Proposal {
	return Proposal{width: w, hasWidth: true}
}

// ProposeSize returns a proposal with both dimensions taken from s.
func ProposeSize(s Size) Proposal { return Propose(s.Width, s.Height) }

// Width returns the proposed width and whether it was set.
func (p Proposal) Width() (float64, bool) { return p.width, p.hasWidth }

// Height returns the proposed height and whether it was set.
func (p Proposal) Height() (float64, bool) { return p.height, p.hasHeight }

// WidthOr returns the proposed width, or def when the width is unspecified.
func (p Proposal) WidthOr(def float64) float64 {
	if p.hasWidth {
		return p.width
	}
	return def
}

// IsInfinite reports whether both dimensions are set to +Inf.
func (p Proposal) IsInfinite() bool {
	return p.hasWidth && p.hasHeight && math.IsInf(p.width, 1) && math.IsInf(p.height, 1)
}
