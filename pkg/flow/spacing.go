package flow

import (
	"fmt"
)

// Spacing is the rule for the gap between neighbouring boxes and rows.
// The zero value is negotiated spacing.
type Spacing struct {
	value float64
	fixed bool
}

// Fixed returns a spacing rule that uses v between every pair of boxes and
// every pair of rows.
func Fixed(v float64) Spacing {
	return Spacing{value: sanitize(v), fixed: true}
}

// Negotiated returns a spacing rule that asks each pair of neighbours for
// their preferred distance.
func Negotiated() Spacing { return Spacing{} }

// SpacingFrom returns Fixed(*v), or Negotiated when v is nil.
func SpacingFrom(v *float64) Spacing {
	if v == nil {
		return Negotiated()
	}
	return Fixed(*v)
}

// Value returns the fixed spacing and true, or 0 and false when negotiated.
func (s Spacing) Value() (float64, bool) { return s.value, s.fixed }

// IsFixed reports whether s is a fixed spacing rule.
func (s Spacing) IsFixed() bool { return s.fixed }

// Ptr returns the fixed value as a pointer, or nil when negotiated.
func (s Spacing) Ptr() *float64 {
	if !s.fixed {
		return nil
	}
	v := s.value
	return &v
}

// Between returns the gap to insert between a and the box b that follows it.
func (s Spacing) Between(a, b Box, axis Axis) float64 {
	if s.fixed {
		return s.value
	}
	return a.Spacing().Distance(b.Spacing(), axis)
}

func (s Spacing) String() string {
	if !s.fixed {
		return "negotiated"
	}
	return fmt.Sprintf("%g", s.value)
}
