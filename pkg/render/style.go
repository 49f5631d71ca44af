package render

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/textbox"
)

// Style names accepted by [StyleByName].
const (
	StyleSimple  = "simple"
	StyleOutline = "outline"
)

// DefaultStyle is used when no style is named.
const DefaultStyle = StyleSimple

// Style defines the visual appearance of rendered boxes.
type Style interface {
	// RenderDefs writes SVG <defs> content.
	RenderDefs(buf *bytes.Buffer)
	// RenderBox writes the SVG for a single box shape.
	RenderBox(buf *bytes.Buffer, b Box)
	// RenderLabel writes the SVG for a box's label text.
	RenderLabel(buf *bytes.Buffer, b Box)
}

// Box contains all data needed to render a single placed box.
type Box struct {
	ID         string  // Box identifier
	Label      string  // Display text
	Row        int     // Zero-based row index
	X, Y, W, H float64 // Position and dimensions
	CX, CY     float64 // Center coordinates (for text)
}

// Text returns the label, or the id when the box has no label.
func (b Box) Text() string {
	if b.Label != "" {
		return b.Label
	}
	return b.ID
}

// Simple fills boxes from Palette by row. A nil Palette uses
// [textbox.Rainbow].
type Simple struct {
	Palette []textbox.Color
}

// Fill returns the fill colour of row.
func (s Simple) Fill(row int) textbox.Color {
	p := s.Palette
	if len(p) == 0 {
		p = textbox.Rainbow
	}
	return p[((row%len(p))+len(p))%len(p)]
}

func (Simple) RenderDefs(*bytes.Buffer) {}

func (s Simple) RenderBox(buf *bytes.Buffer, b Box) {
	fmt.Fprintf(buf, `  <rect id="box-%s" class="box" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="6" ry="6" fill="%s"/>`+"\n",
		EscapeXML(b.ID), b.X, b.Y, b.W, b.H, s.Fill(b.Row).Hex())
}

func (s Simple) RenderLabel(buf *bytes.Buffer, b Box) {
	renderLabel(buf, b, s.Fill(b.Row).Foreground().Hex())
}

// Outline draws white boxes with a dark stroke.
type Outline struct{}

func (Outline) RenderDefs(*bytes.Buffer) {}

func (Outline) RenderBox(buf *bytes.Buffer, b Box) {
	fmt.Fprintf(buf, `  <rect id="box-%s" class="box" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="6" ry="6" fill="white" stroke="#333" stroke-width="1"/>`+"\n",
		EscapeXML(b.ID), b.X, b.Y, b.W, b.H)
}

func (Outline) RenderLabel(buf *bytes.Buffer, b Box) {
	renderLabel(buf, b, "#333")
}

func renderLabel(buf *bytes.Buffer, b Box, color string) {
	label := TruncateLabel(b)
	if label == "" {
		return
	}
	fmt.Fprintf(buf, `  <text class="box-text" data-box="%s" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="central" font-family="sans-serif" font-size="%.1f" fill="%s">%s</text>`+"\n",
		EscapeXML(b.ID), b.CX, b.CY, FontSize(b), color, EscapeXML(label))
}

var styles = map[string]Style{
	StyleSimple:  Simple{},
	StyleOutline: Outline{},
}

// StyleNames returns the accepted style names, sorted.
func StyleNames() []string {
	names := make([]string, 0, len(styles))
	for n := range styles {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// StyleByName returns the named style. An empty name selects
// [DefaultStyle].
func StyleByName(name string) (Style, error) {
	if name == "" {
		name = DefaultStyle
	}
	s, ok := styles[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"invalid style: %q (must be one of: %s)", name, joinNames(StyleNames()))
	}
	return s, nil
}
