package textbox

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/reflow/pkg/flow"
	"github.com/matzehuels/reflow/pkg/geom"
)

// CellPreference is the spacing a terminal tag keeps from its neighbours:
// one column and no blank line.
var CellPreference = flow.Preference{Horizontal: 1, Vertical: 0}

// CellBox is a label measured in terminal cells. It renders as a bordered
// box one cell of padding wider than its text on each side.
type CellBox struct {
	Label string
	Pref  flow.Preference
}

// NewCellBox returns a CellBox with [CellPreference].
func NewCellBox(label string) CellBox {
	return CellBox{Label: label, Pref: CellPreference}
}

// SizeThatFits returns the box size in cells: border and padding around
// the label's display width, three rows tall.
func (c CellBox) SizeThatFits(geom.Proposal) geom.Size {
	return geom.Sz(float64(lipgloss.Width(c.Label)+4), 3)
}

// Spacing returns the box's preference.
func (c CellBox) Spacing() flow.Preference { return c.Pref }

// CellBoxes wraps labels as CellBoxes.
func CellBoxes(labels []string) []flow.Box {
	boxes := make([]flow.Box, len(labels))
	for i, l := range labels {
		boxes[i] = NewCellBox(l)
	}
	return boxes
}
