package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/reflow/pkg/cache"
	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/flow"
	"github.com/matzehuels/reflow/pkg/render"
)

// Options configures a pipeline run. The layout fields override the
// document's own settings; their zero values keep them. Options decode
// from the JSON bodies of the HTTP API.
type Options struct {
	Alignment  string   `json:"alignment,omitempty"`
	Spacing    *float64 `json:"spacing,omitempty"`
	Negotiated bool     `json:"negotiated,omitempty"` // drop the document's fixed spacing
	Width      *float64 `json:"width,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"` // bypass cache reads

	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Bounds  bool     `json:"bounds,omitempty"`

	Logger *log.Logger `json:"-"`

	checked bool
}

// ValidateFormat reports whether format names an output format.
func ValidateFormat(format string) error {
	return render.ValidateFormat(format)
}

// Validate runs CheckLayout and CheckRender once. Later calls return nil
// without re-checking.
func (o *Options) Validate() error {
	if o.checked {
		return nil
	}
	if err := o.CheckLayout(); err != nil {
		return err
	}
	if err := o.CheckRender(); err != nil {
		return err
	}
	o.checked = true
	return nil
}

// CheckLayout validates the layout overrides.
func (o *Options) CheckLayout() error {
	o.defaultLogger()
	switch {
	case o.Negotiated && o.Spacing != nil:
		return errors.New(errors.ErrCodeInvalidSpacing, "fixed and negotiated spacing are mutually exclusive")
	case o.Alignment != "":
		if _, err := flow.ParseAlignment(o.Alignment); err != nil {
			return err
		}
	}
	if o.Spacing != nil {
		if err := errors.ValidateDimension("spacing", *o.Spacing); err != nil {
			return errors.Recode(err, errors.ErrCodeInvalidSpacing)
		}
	}
	if o.Width != nil {
		return errors.ValidateDimension("width", *o.Width)
	}
	return nil
}

// CheckRender fills in the default format (svg) and style, then validates
// both.
func (o *Options) CheckRender() error {
	o.defaultLogger()
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	for _, f := range o.Formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	_, err := render.StyleByName(o.Style)
	return err
}

func (o *Options) defaultLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Apply returns a copy of d with the overrides applied; d is not
// modified. Unparseable alignments are ignored, so validate first.
func (o *Options) Apply(d *document.Document) *document.Document {
	out := *d
	out.Boxes = append([]document.BoxSpec(nil), d.Boxes...)
	if a, err := flow.ParseAlignment(o.Alignment); o.Alignment != "" && err == nil {
		out.Alignment = a
	}
	if o.Negotiated {
		out.Spacing = nil
	} else if o.Spacing != nil {
		out.Spacing = clone(o.Spacing)
	}
	if o.Width != nil {
		out.Width = clone(o.Width)
	}
	return &out
}

func clone(v *float64) *float64 {
	c := *v
	return &c
}

// RenderOptions returns the options [render.Render] draws with.
func (o *Options) RenderOptions() render.Options {
	return render.Options{Style: o.Style, Labels: o.Labels, Bounds: o.Bounds}
}

// LayoutKeyOpts returns the cache key inputs for laying out d, which must
// already have the overrides applied.
func LayoutKeyOpts(d *document.Document) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Alignment: d.Alignment.String(), Spacing: d.Spacing, Width: d.Width}
}

// ArtifactKeyOpts returns the cache key inputs for rendering format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Style: o.Style, Labels: o.Labels, Bounds: o.Bounds}
}
