package document

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/flow"
	"github.com/matzehuels/reflow/pkg/geom"
)

// Document is one layout job.
type Document struct {
	ID        string         `json:"id,omitempty" toml:"id,omitempty" bson:"_id,omitempty"`
	Name      string         `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Alignment flow.Alignment `json:"alignment" toml:"alignment" bson:"alignment"`
	Spacing   *float64       `json:"spacing,omitempty" toml:"spacing,omitempty" bson:"spacing,omitempty"`
	Width     *float64       `json:"width,omitempty" toml:"width,omitempty" bson:"width,omitempty"`
	Boxes     []BoxSpec      `json:"boxes" toml:"boxes" bson:"boxes"`
	CreatedAt time.Time      `json:"created_at,omitzero" toml:"created_at,omitempty" bson:"created_at"`
}

// BoxSpec describes a single fixed-size box.
type BoxSpec struct {
	ID       string   `json:"id,omitempty" toml:"id,omitempty" bson:"id,omitempty"`
	Label    string   `json:"label,omitempty" toml:"label,omitempty" bson:"label,omitempty"`
	Width    float64  `json:"width" toml:"width" bson:"width"`
	Height   float64  `json:"height" toml:"height" bson:"height"`
	HSpacing *float64 `json:"h_spacing,omitempty" toml:"h_spacing,omitempty" bson:"h_spacing,omitempty"`
	VSpacing *float64 `json:"v_spacing,omitempty" toml:"v_spacing,omitempty" bson:"v_spacing,omitempty"`
}

// Preference returns the box's spacing preference, falling back to
// [flow.DefaultPreference] for unset axes.
func (b BoxSpec) Preference() flow.Preference {
	p := flow.DefaultPreference
	if b.HSpacing != nil {
		p.Horizontal = *b.HSpacing
	}
	if b.VSpacing != nil {
		p.Vertical = *b.VSpacing
	}
	return p
}

// Box converts b into a layout box.
func (b BoxSpec) Box() flow.Box {
	return flow.Item{Size: geom.Sz(b.Width, b.Height), Pref: b.Preference()}
}

// BoxID returns the box id, or its position when the id is empty.
func (b BoxSpec) BoxID(index int) string {
	if b.ID != "" {
		return b.ID
	}
	return strconv.Itoa(index)
}

// New returns an empty document with a fresh id and creation time.
func New(name string, a flow.Alignment) *Document {
	return &Document{
		ID:        uuid.NewString(),
		Name:      name,
		Alignment: a,
		CreatedAt: time.Now().UTC(),
	}
}

// FlowBoxes converts every BoxSpec into a layout box, in order.
func (d *Document) FlowBoxes() []flow.Box {
	boxes := make([]flow.Box, len(d.Boxes))
	for i, b := range d.Boxes {
		boxes[i] = b.Box()
	}
	return boxes
}

// Flow returns the layout configuration the document asks for.
func (d *Document) Flow() flow.Flow {
	return flow.Flow{Alignment: d.Alignment, Spacing: flow.SpacingFrom(d.Spacing)}
}

// Proposal returns the width proposal the document asks for. A nil width
// leaves the proposal unspecified.
func (d *Document) Proposal() geom.Proposal {
	if d.Width == nil {
		return geom.Unspecified
	}
	return geom.ProposeWidth(*d.Width)
}

// Add appends a box and returns the document for chaining.
func (d *Document) Add(id string, w, h float64) *Document {
	d.Boxes = append(d.Boxes, BoxSpec{ID: id, Width: w, Height: h})
	return d
}

// EnsureID assigns a fresh id and creation time to documents that lack them.
func (d *Document) EnsureID() {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
}

// Validate checks the document for values the layout would otherwise
// silently coerce: negative or non-finite sizes, unknown alignments,
// malformed or duplicate box ids.
func (d *Document) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDocument, "document is nil")
	}
	if !d.Alignment.IsValid() {
		return errors.New(errors.ErrCodeInvalidAlignment, "invalid alignment %d", uint8(d.Alignment)).At("alignment")
	}
	if d.Spacing != nil {
		if err := errors.ValidateDimension("spacing", *d.Spacing); err != nil {
			return errors.Recode(err, errors.ErrCodeInvalidSpacing)
		}
	}
	if d.Width != nil {
		if err := errors.ValidateDimension("width", *d.Width); err != nil {
			return err
		}
	}
	if err := errors.ValidateName(d.Name); err != nil {
		return err
	}
	if err := errors.ValidateBoxCount(len(d.Boxes)); err != nil {
		return err
	}

	seen := make(map[string]int, len(d.Boxes))
	for i, b := range d.Boxes {
		if err := b.validate(); err != nil {
			return at(err, fmt.Sprintf("boxes[%d]", i))
		}
		if b.ID == "" {
			continue
		}
		if j, dup := seen[b.ID]; dup {
			return errors.New(errors.ErrCodeInvalidDocument,
				"id %q already used by box %d", b.ID, j).At(fmt.Sprintf("boxes[%d].id", i))
		}
		seen[b.ID] = i
	}
	return nil
}

// at locates a coded validation error at field.
func at(err error, field string) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.At(field)
	}
	return fmt.Errorf("%s: %w", field, err)
}

func (b BoxSpec) validate() error {
	if err := errors.ValidateBoxID(b.ID); err != nil {
		return err
	}
	if err := errors.ValidateLabel(b.Label); err != nil {
		return err
	}
	checks := []struct {
		name string
		v    *float64
	}{
		{"width", &b.Width},
		{"height", &b.Height},
		{"h_spacing", b.HSpacing},
		{"v_spacing", b.VSpacing},
	}
	for _, c := range checks {
		if c.v == nil {
			continue
		}
		if err := errors.ValidateDimension(c.name, *c.v); err != nil {
			return err
		}
	}
	return nil
}
