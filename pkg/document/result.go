package document

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/flow"
	"github.com/matzehuels/reflow/pkg/geom"
)

// Result is a measured and placed document.
type Result struct {
	DocumentID string         `json:"document_id,omitempty" bson:"document_id,omitempty"`
	Alignment  flow.Alignment `json:"alignment" bson:"alignment"`
	Spacing    *float64       `json:"spacing,omitempty" bson:"spacing,omitempty"`
	Width      float64        `json:"width" bson:"width"`
	Height     float64        `json:"height" bson:"height"`
	Rows       int            `json:"rows" bson:"rows"`
	Placements []Placement    `json:"placements" bson:"placements"`
}

// Placement is the rectangle assigned to one box.
type Placement struct {
	ID     string  `json:"id" bson:"id"`
	Label  string  `json:"label,omitempty" bson:"label,omitempty"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Row    int     `json:"row" bson:"row"`
}

// Rect returns the placement as a rectangle.
func (p Placement) Rect() geom.Rect { return geom.R(p.X, p.Y, p.Width, p.Height) }

// Size returns the measured size.
func (r *Result) Size() geom.Size { return geom.Sz(r.Width, r.Height) }

// Rects returns the placements as rectangles, in box order.
func (r *Result) Rects() []geom.Rect {
	rects := make([]geom.Rect, len(r.Placements))
	for i, p := range r.Placements {
		rects[i] = p.Rect()
	}
	return rects
}

// Layout measures and places d and returns the result.
func Layout(d *Document) (*Result, error) {
	f := d.Flow()
	boxes := d.FlowBoxes()
	size, rects, err := f.Layout(d.Proposal(), boxes)
	if err != nil {
		return nil, err
	}
	return NewResult(d, size, rects, f.Rows(size.Width, boxes))
}

// NewResult assembles a result from the geometry of a layout of d. spans
// must partition the boxes the same way rects were placed.
func NewResult(d *Document, size geom.Size, rects []geom.Rect, spans []flow.RowSpan) (*Result, error) {
	if len(rects) != len(d.Boxes) {
		return nil, errors.New(errors.ErrCodeInternal,
			"got %d rectangles for %d boxes", len(rects), len(d.Boxes))
	}
	res := &Result{
		DocumentID: d.ID,
		Alignment:  d.Alignment,
		Spacing:    d.Spacing,
		Width:      size.Width,
		Height:     size.Height,
		Rows:       len(spans),
		Placements: make([]Placement, len(rects)),
	}
	for row, sp := range spans {
		for i := sp.Start; i < sp.End && i < len(rects); i++ {
			b, r := d.Boxes[i], rects[i]
			res.Placements[i] = Placement{
				ID:     b.BoxID(i),
				Label:  b.Label,
				X:      r.MinX(),
				Y:      r.MinY(),
				Width:  r.Width(),
				Height: r.Height(),
				Row:    row,
			}
		}
	}
	return res, nil
}

// WriteResult encodes r as indented JSON to w.
func WriteResult(r *Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadResult decodes a JSON result from rd.
func ReadResult(rd io.Reader) (*Result, error) {
	var r Result
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode result")
	}
	return &r, nil
}

// WriteResultFile writes r as JSON to path.
func WriteResultFile(r *Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(r, f)
}
