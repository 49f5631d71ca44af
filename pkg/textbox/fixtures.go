package textbox

import (
	"math/rand/v2"

	"github.com/matzehuels/reflow/pkg/flow"
	"github.com/matzehuels/reflow/pkg/geom"
)

// TagNames is the fixture tag set: short and long names, digits and an
// emoji.
var TagNames = []string{
	"Tag1",
	"Tag2",
	"Tag3",
	"Tag4",
	"Really Quite long tag name",
	"PN: 3409573",
	"High Rate",
	"Office",
	"Field",
	"Task: Technical Support",
	"😸",
}

// CornerCase1 is an ordering where a long tag is followed by two short
// ones that only just fit next to each other.
var CornerCase1 = []string{TagNames[4], TagNames[7], TagNames[2]}

// CornerCase2 is a full ordering that exercises several wrap points.
var CornerCase2 = []string{
	TagNames[3], TagNames[2], TagNames[0], TagNames[10],
	TagNames[7], TagNames[4], TagNames[6], TagNames[5],
	TagNames[8], TagNames[1], TagNames[9],
}

// Tag is a label with a fill colour.
type Tag struct {
	Name  string
	Color Color
}

// Tags returns names as tags with colours drawn from rng.
func Tags(rng *rand.Rand, names []string) []Tag {
	tags := make([]Tag, len(names))
	for i, n := range names {
		tags[i] = Tag{Name: n, Color: RandomColor(rng)}
	}
	return tags
}

// Shuffled returns a shuffled copy of names.
func Shuffled(rng *rand.Rand, names []string) []string {
	out := append([]string(nil), names...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Fixture returns a named tag set: "tags", "corner1" or "corner2".
func Fixture(name string) ([]string, bool) {
	switch name {
	case "tags":
		return TagNames, true
	case "corner1":
		return CornerCase1, true
	case "corner2":
		return CornerCase2, true
	default:
		return nil, false
	}
}

// FixtureNames lists the names accepted by [Fixture].
func FixtureNames() []string { return []string{"tags", "corner1", "corner2"} }

// RandomBoxes returns n boxes between 40x30 and 200x90 with the default
// preference.
func RandomBoxes(rng *rand.Rand, n int) []flow.Box {
	boxes := make([]flow.Box, n)
	for i := range boxes {
		w := 40 + rng.Float64()*160
		h := 30 + rng.Float64()*60
		boxes[i] = flow.Item{Size: geom.Sz(w, h), Pref: flow.DefaultPreference}
	}
	return boxes
}
