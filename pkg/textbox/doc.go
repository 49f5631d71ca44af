// Package textbox turns text labels into flow layout boxes.
//
// A [Measurer] sizes labels with the embedded Go Bold font through
// golang.org/x/image, padding each label into a rounded tag the way a
// tag cloud renders it: 12pt of horizontal and 7pt of vertical padding and
// never smaller than 80x40. [CellBox] does the same in terminal cells for
// the interactive preview.
//
// The package also provides the fixture tag sets used by the preview and
// the property checks, and the colour helpers that pick a readable label
// colour for a tag's fill.
package textbox
