package textbox

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/reflow/pkg/flow"
	"github.com/matzehuels/reflow/pkg/geom"
)

// Tag padding and minimum size, in points.
const (
	PaddingX  = 12.0
	PaddingY  = 7.0
	MinWidth  = 80.0
	MinHeight = 40.0

	// DefaultFontSize matches body text on most platforms.
	DefaultFontSize = 17.0
)

// Measurer measures label text with a fixed font face. It is safe for
// concurrent use.
type Measurer struct {
	mu       sync.Mutex
	face     font.Face
	size     float64
	pref     flow.Preference
	lineHigh float64
}

// MeasurerOption configures a Measurer.
type MeasurerOption func(*Measurer)

// WithPreference sets the spacing preference of the boxes a Measurer
// produces.
func WithPreference(p flow.Preference) MeasurerOption {
	return func(m *Measurer) { m.pref = p }
}

// NewMeasurer parses the embedded bold font at size points.
func NewMeasurer(size float64, opts ...MeasurerOption) (*Measurer, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("textbox: parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("textbox: create face: %w", err)
	}

	m := &Measurer{face: face, size: size, pref: flow.DefaultPreference}
	metrics := face.Metrics()
	m.lineHigh = fixedToFloat64(metrics.Ascent + metrics.Descent)
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// FontSize returns the face size in points.
func (m *Measurer) FontSize() float64 { return m.size }

// TextWidth returns the advance width of s.
func (m *Measurer) TextWidth(s string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fixedToFloat64(font.MeasureString(m.face, s))
}

// LineHeight returns the ascent plus descent of the face.
func (m *Measurer) LineHeight() float64 { return m.lineHigh }

// TagSize returns the padded size of a tag showing label.
func (m *Measurer) TagSize(label string) geom.Size {
	return geom.Sz(
		max(MinWidth, m.TextWidth(label)+2*PaddingX),
		max(MinHeight, m.LineHeight()+2*PaddingY),
	)
}

// Box returns a layout box sized for label.
func (m *Measurer) Box(label string) flow.Item {
	return flow.Item{Size: m.TagSize(label), Pref: m.pref}
}

// Boxes measures every label.
func (m *Measurer) Boxes(labels []string) []flow.Box {
	boxes := make([]flow.Box, len(labels))
	for i, l := range labels {
		boxes[i] = m.Box(l)
	}
	return boxes
}

// Close releases the font face.
func (m *Measurer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.face.Close()
}

func fixedToFloat64(x fixed.Int26_6) float64 {
	return float64(x) / 64.0
}
