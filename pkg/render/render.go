package render

import (
	"context"
	"slices"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
)

// Format names accepted by [Render].
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
	FormatText = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
	FormatText: true,
}

// Formats returns the supported format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, joinNames(Formats()))
	}
	return nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Options selects how [Render] draws a result.
type Options struct {
	Style  string
	Labels bool
	Bounds bool
	Text   TextOptions
}

// Render draws res in the named format. SVG is drawn natively; PNG goes
// through the DOT export and Graphviz.
func Render(ctx context.Context, res *document.Result, format string, opts Options) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	style, err := StyleByName(opts.Style)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatSVG:
		svgOpts := []SVGOption{WithStyle(style)}
		if opts.Labels {
			svgOpts = append(svgOpts, WithLabels())
		}
		if opts.Bounds {
			svgOpts = append(svgOpts, WithBounds())
		}
		return RenderSVG(res, svgOpts...), nil
	case FormatPNG:
		dot := ToDOT(res, DOTOptions{Labels: opts.Labels, Style: style})
		return RenderDOT(ctx, dot, FormatPNG)
	case FormatDOT:
		return []byte(ToDOT(res, DOTOptions{Labels: opts.Labels, Style: style})), nil
	case FormatJSON:
		return RenderJSON(res)
	default:
		text := opts.Text
		text.Labels = text.Labels || opts.Labels
		return []byte(RenderText(res, text)), nil
	}
}
