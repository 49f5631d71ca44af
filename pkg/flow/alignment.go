package flow

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/geom"
)

// Alignment controls how a row's boxes are distributed across the
// available width and which edge of the row they are anchored to.
type Alignment uint8

const (
	// TopLeading packs rows flush to the leading edge, boxes hanging from
	// the top of their row.
	TopLeading Alignment = iota
	// TopTrailing packs rows flush to the trailing edge.
	TopTrailing
	// BottomLeading packs rows flush to the leading edge, boxes resting on
	// the bottom of their row.
	BottomLeading
	// BottomTrailing packs rows flush to the trailing edge, bottom-anchored.
	BottomTrailing
	// Center splits leftover width equally before the first and after the
	// last box and centers boxes vertically within the row.
	Center
	// CenterDistribute spreads leftover width beyond twice the spacing
	// evenly into every gap, including before the first and after the last
	// box. Rows with little leftover fall back to a halved leading offset.
	CenterDistribute
	// CenterJustify pins the first box to the leading edge and the last to
	// the trailing edge, spreading leftover width over the interior gaps.
	// A single-box row is placed flush to the leading edge.
	CenterJustify
)

var alignmentNames = [...]string{
	TopLeading:       "topLeading",
	TopTrailing:      "topTrailing",
	BottomLeading:    "bottomLeading",
	BottomTrailing:   "bottomTrailing",
	Center:           "center",
	CenterDistribute: "centerDistribute",
	CenterJustify:    "centerJustify",
}

// Alignments returns every alignment in declaration order.
func Alignments() []Alignment {
	all := make([]Alignment, len(alignmentNames))
	for i := range alignmentNames {
		all[i] = Alignment(i)
	}
	return all
}

// IsValid reports whether a is one of the declared alignments.
func (a Alignment) IsValid() bool { return int(a) < len(alignmentNames) }

func (a Alignment) String() string {
	if !a.IsValid() {
		return "Alignment(" + strconv.Itoa(int(a)) + ")"
	}
	return alignmentNames[a]
}

// ParseAlignment parses an alignment name. Matching ignores case, dashes and
// underscores, so "top-leading", "top_leading" and "TopLeading" are all
// accepted.
func ParseAlignment(s string) (Alignment, error) {
	key := normalizeName(s)
	for i, name := range alignmentNames {
		if normalizeName(name) == key {
			return Alignment(i), nil
		}
	}
	return TopLeading, errors.New(errors.ErrCodeInvalidAlignment, "unknown alignment %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Alignment) MarshalText() ([]byte, error) {
	if !a.IsValid() {
		return nil, errors.New(errors.ErrCodeInvalidAlignment, "invalid alignment %d", uint8(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Alignment) UnmarshalText(text []byte) error {
	v, err := ParseAlignment(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Anchor returns the unit point of each box that is written to the row's
// placement cursor: (0,0) for top-anchored rows, (0,1) for bottom-anchored
// rows and (0,0.5) for vertically centered rows.
func (a Alignment) Anchor() geom.Point {
	switch a {
	case BottomLeading, BottomTrailing:
		return geom.Pt(0, 1)
	case Center, CenterDistribute, CenterJustify:
		return geom.Pt(0, 0.5)
	default:
		return geom.Pt(0, 0)
	}
}

// distribute returns the offset of the row's first box from the leading
// edge and the extra width added to every interior gap, given the width
// left over once the row's own width is subtracted from the bounds.
func (a Alignment) distribute(r *Row, unused float64) (start, extra float64) {
	switch a {
	case TopTrailing, BottomTrailing:
		return unused, 0
	case Center:
		return unused * 0.5, 0
	case CenterDistribute:
		avg := r.AverageSpacing()
		if unused > avg*2 {
			d := (unused - avg*2) / float64(r.Len()+1)
			return d + avg, d
		}
		return math.Min(unused*0.5, avg), 0
	case CenterJustify:
		if r.Len() < 2 {
			return 0, 0
		}
		return 0, unused / float64(r.Len()-1)
	default:
		return 0, 0
	}
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}
