package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
)

const pointsPerInch = 72.0

// DOTOptions configures DOT output.
type DOTOptions struct {
	// Labels writes box labels into the nodes.
	Labels bool
	// Style picks node colours. Simple fills nodes by row; anything else,
	// including nil, draws white nodes.
	Style Style
}

// ToDOT converts a result to an undirected Graphviz graph for the neato
// engine. Every box becomes a fixed-size node pinned at its placed center,
// with the Y axis flipped so the drawing matches the layout's top-left
// origin. The DOT string can be rendered with [RenderDOT].
func ToDOT(res *document.Result, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fixedsize=true, fillcolor=white, fontname=\"sans-serif\", margin=0];\n")
	buf.WriteString("\n")

	for i, b := range buildBoxes(res) {
		attrs := fmtDOTAttrs(b, res.Height, opts)
		fmt.Fprintf(&buf, "  n%d [%s];\n", i, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtDOTAttrs(b Box, height float64, opts DOTOptions) []string {
	label := ""
	if opts.Labels {
		label = TruncateLabel(b)
	}
	attrs := []string{
		fmt.Sprintf("id=%q", "box-"+b.ID),
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%.4f,%.4f!\"", b.CX/pointsPerInch, (height-b.CY)/pointsPerInch),
		fmt.Sprintf("width=%.4f", b.W/pointsPerInch),
		fmt.Sprintf("height=%.4f", b.H/pointsPerInch),
		fmt.Sprintf("fontsize=%.1f", FontSize(b)),
	}
	if s, ok := opts.Style.(Simple); ok {
		fill := s.Fill(b.Row)
		attrs = append(attrs,
			fmt.Sprintf("fillcolor=%q", fill.Hex()),
			fmt.Sprintf("fontcolor=%q", fill.Foreground().Hex()),
			"color=\"transparent\"")
	}
	return attrs
}

// RenderDOT lays out a DOT graph with the neato engine and renders it as
// SVG or PNG.
func RenderDOT(ctx context.Context, dot string, format string) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "graphviz cannot render %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if gvFormat == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
