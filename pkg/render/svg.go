package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/reflow/pkg/document"
)

const boxInteractionCSS = `
    .row { transition: opacity 0.2s ease; }
    .row.dim { opacity: 0.35; }
    .box-text { pointer-events: none; }`

const boxInteractionJS = `
    const rows = document.querySelectorAll('g.row');
    rows.forEach(g => {
      g.addEventListener('mouseenter', () => rows.forEach(o => o.classList.toggle('dim', o.dataset.row !== g.dataset.row)));
      g.addEventListener('mouseleave', () => rows.forEach(o => o.classList.remove('dim')));
    });`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style       Style
	labels      bool
	bounds      bool
	padding     float64
	interactive bool
}

func WithStyle(s Style) SVGOption     { return func(r *svgRenderer) { r.style = s } }
func WithLabels() SVGOption           { return func(r *svgRenderer) { r.labels = true } }
func WithBounds() SVGOption           { return func(r *svgRenderer) { r.bounds = true } }
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = max(0, p) } }
func WithInteraction() SVGOption      { return func(r *svgRenderer) { r.interactive = true } }

// RenderSVG draws every placement of res. The view box is the measured size
// of the result grown by the padding on each side.
func RenderSVG(res *document.Result, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	boxes := buildBoxes(res)

	w, h := res.Width+2*r.padding, res.Height+2*r.padding
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)

	r.style.RenderDefs(&buf)
	if r.interactive {
		fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", boxInteractionCSS)
	}

	fmt.Fprintf(&buf, `  <g transform="translate(%.2f %.2f)">`+"\n", r.padding, r.padding)
	if r.bounds {
		fmt.Fprintf(&buf, `  <rect class="bounds" x="0" y="0" width="%.2f" height="%.2f" fill="none" stroke="#999" stroke-dasharray="4 2"/>`+"\n",
			res.Width, res.Height)
	}
	for _, b := range boxes {
		if r.interactive {
			fmt.Fprintf(&buf, `  <g class="row" data-row="%d">`+"\n", b.Row)
		}
		r.style.RenderBox(&buf, b)
		if r.interactive {
			buf.WriteString("  </g>\n")
		}
	}
	if r.labels {
		for _, b := range boxes {
			r.style.RenderLabel(&buf, b)
		}
	}
	buf.WriteString("  </g>\n")

	if r.interactive {
		fmt.Fprintf(&buf, "  <script><![CDATA[%s\n  ]]></script>\n", boxInteractionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{style: Simple{}}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func buildBoxes(res *document.Result) []Box {
	boxes := make([]Box, len(res.Placements))
	for i, p := range res.Placements {
		c := p.Rect().Center()
		boxes[i] = Box{
			ID:    p.ID,
			Label: p.Label,
			Row:   p.Row,
			X:     p.X, Y: p.Y, W: p.Width, H: p.Height,
			CX:    c.X, CY: c.Y,
		}
	}
	return boxes
}
