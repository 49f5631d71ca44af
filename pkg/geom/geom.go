// Package geom provides the plain value types used by the flow layout:
// points, sizes, rectangles and size proposals.
//
// All coordinates use a top-left origin with Y increasing downward. The
// types carry no behaviour beyond what layout needs: offsetting a point,
// folding sizes into a bounding size, and taking the union of rectangles.
package geom

import (
	"fmt"
	"math"
)

// Tolerance is the absolute difference below which two coordinates are
// considered equal by the NearlyEqual helpers.
const Tolerance = 1e-11

// Point is an (X, Y) coordinate.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Offset returns p moved by dx and dy.
func (p Point) Offset(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// NearlyEqual reports whether both coordinates are within Tolerance.
func (p Point) NearlyEqual(o Point) bool {
	return NearlyEqual(p.X, o.X) && NearlyEqual(p.Y, o.Y)
}

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Size is a width and height.
type Size struct {
	Width, Height float64
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float64) Size { return Size{Width: w, Height: h} }

// Union returns the component-wise maximum of s and o. Folding a sequence
// of sizes with Union yields the size of their common bounding box when
// all of them share an origin.
func (s Size) Union(o Size) Size {
	return Size{Width: math.Max(s.Width, o.Width), Height: math.Max(s.Height, o.Height)}
}

// IsInfinite reports whether both dimensions are +Inf.
func (s Size) IsInfinite() bool {
	return math.IsInf(s.Width, 1) && math.IsInf(s.Height, 1)
}

// Sanitized returns s with negative, NaN and infinite dimensions replaced
// by zero.
func (s Size) Sanitized() Size {
	return Size{Width: finiteOrZero(s.Width), Height: finiteOrZero(s.Height)}
}

// NearlyEqual reports whether both dimensions are within Tolerance.
func (s Size) NearlyEqual(o Size) bool {
	return NearlyEqual(s.Width, o.Width) && NearlyEqual(s.Height, o.Height)
}

func (s Size) String() string { return fmt.Sprintf("%gx%g", s.Width, s.Height) }

// Rect is an axis-aligned rectangle whose Origin is its top-left corner.
type Rect struct {
	Origin Point
	Size   Size
}

// R builds a Rect from its top-left corner and dimensions.
func R(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

// RectAt builds a Rect of size s whose anchor point, expressed as a unit
// fraction of s (0,0 = top-left, 0,1 = bottom-left, 0.5,0.5 = center),
// lies on p. The result is normalised so Origin is the top-left corner.
func RectAt(p Point, s Size, anchor Point) Rect {
	return Rect{
		Origin: Point{X: p.X - s.Width*anchor.X, Y: p.Y - s.Height*anchor.Y},
		Size:   s,
	}
}

// MinX returns the left edge.
func (r Rect) MinX() float64 { return r.Origin.X }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }

// MinY returns the top edge.
func (r Rect) MinY() float64 { return r.Origin.Y }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Size.Width }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Size.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.Origin.X + r.Size.Width/2, Y: r.Origin.Y + r.Size.Height/2}
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.MinX(), o.MinX())
	minY := math.Min(r.MinY(), o.MinY())
	maxX := math.Max(r.MaxX(), o.MaxX())
	maxY := math.Max(r.MaxY(), o.MaxY())
	return R(minX, minY, maxX-minX, maxY-minY)
}

// NearlyEqual reports whether origin and size are within Tolerance.
func (r Rect) NearlyEqual(o Rect) bool {
	return r.Origin.NearlyEqual(o.Origin) && r.Size.NearlyEqual(o.Size)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.Origin.X, r.Origin.Y, r.Size.Width, r.Size.Height)
}

// UnionAll folds rects with Union. An empty slice yields the zero Rect.
func UnionAll(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	u := rects[0]
	for _, r := range rects[1:] {
		u = u.Union(r)
	}
	return u
}

// NearlyEqual reports whether a and b differ by less than Tolerance.
func NearlyEqual(a, b float64) bool {
	return NearlyEqualTol(a, b, Tolerance)
}

// NearlyEqualTol reports whether a and b differ by less than tol. Equal
// infinities compare equal.
func NearlyEqualTol(a, b, tol float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) < tol
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
