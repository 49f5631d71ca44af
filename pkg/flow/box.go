package flow

import (
	"math"

	"github.com/matzehuels/reflow/pkg/geom"
)

// Axis selects the direction a spacing preference applies to.
type Axis uint8

const (
	Horizontal Axis = iota // between neighbours in a row
	Vertical               // between rows
)

func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Preference is the distance a box would like to keep from its neighbours.
type Preference struct {
	Horizontal float64 `json:"horizontal" toml:"horizontal" bson:"horizontal"`
	Vertical   float64 `json:"vertical" toml:"vertical" bson:"vertical"`
}

// DefaultPreference is the preference used by [Sized].
var DefaultPreference = Preference{Horizontal: 8, Vertical: 8}

// Along returns the preference for axis.
func (p Preference) Along(axis Axis) float64 {
	if axis == Vertical {
		return sanitize(p.Vertical)
	}
	return sanitize(p.Horizontal)
}

// Distance returns the negotiated distance between p and the preference of
// the box that follows it along axis: the larger of the two.
func (p Preference) Distance(next Preference, axis Axis) float64 {
	return math.Max(p.Along(axis), next.Along(axis))
}

// Box is an element taking part in a flow layout. Implementations are
// supplied by the host and must be safe to query repeatedly; the layout
// never mutates them.
type Box interface {
	// SizeThatFits returns the box's size for the given proposal. The layout
	// always asks with [geom.Unspecified] to obtain the intrinsic size.
	SizeThatFits(p geom.Proposal) geom.Size

	// Spacing returns the box's spacing preference.
	Spacing() Preference
}

// Item is a Box with a fixed size.
type Item struct {
	Size geom.Size
	Pref Preference
}

// Sized returns an Item of the given size with [DefaultPreference].
func Sized(w, h float64) Item {
	return Item{Size: geom.Sz(w, h), Pref: DefaultPreference}
}

// SizeThatFits returns the item's fixed size regardless of the proposal.
func (it Item) SizeThatFits(geom.Proposal) geom.Size { return it.Size }

// Spacing returns the item's preference.
func (it Item) Spacing() Preference { return it.Pref }

// Items wraps sizes as Items sharing pref.
func Items(pref Preference, sizes ...geom.Size) []Box {
	boxes := make([]Box, len(sizes))
	for i, s := range sizes {
		boxes[i] = Item{Size: s, Pref: pref}
	}
	return boxes
}

// intrinsicSize asks b for its unconstrained size and drops malformed
// dimensions.
func intrinsicSize(b Box) geom.Size {
	return b.SizeThatFits(geom.Unspecified).Sanitized()
}

func intrinsicSizes(boxes []Box) []geom.Size {
	sizes := make([]geom.Size, len(boxes))
	for i, b := range boxes {
		sizes[i] = intrinsicSize(b)
	}
	return sizes
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
