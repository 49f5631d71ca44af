package flow

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/geom"
)

func TestParseAlignment(t *testing.T) {
	tests := []struct {
		in      string
		want    Alignment
		wantErr bool
	}{
		{"topLeading", TopLeading, false},
		{"top-trailing", TopTrailing, false},
		{"BOTTOM_LEADING", BottomLeading, false},
		{"bottom trailing", BottomTrailing, false},
		{" center ", Center, false},
		{"center-distribute", CenterDistribute, false},
		{"centerjustify", CenterJustify, false},
		{"middle", TopLeading, true},
		{"", TopLeading, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlignment(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAlignment(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidAlignment) {
					t.Errorf("error code = %s, want %s", errors.GetCode(err), errors.ErrCodeInvalidAlignment)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseAlignment(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAlignmentRoundTrip(t *testing.T) {
	for _, a := range Alignments() {
		got, err := ParseAlignment(a.String())
		if err != nil || got != a {
			t.Errorf("ParseAlignment(%q) = %v, %v", a.String(), got, err)
		}
	}
	if n := len(Alignments()); n != 7 {
		t.Errorf("len(Alignments()) = %d, want 7", n)
	}
}

func TestAlignmentJSON(t *testing.T) {
	type doc struct {
		Alignment Alignment `json:"alignment"`
	}
	data, err := json.Marshal(doc{Alignment: CenterDistribute})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `{"alignment":"centerDistribute"}` {
		t.Errorf("Marshal() = %s", data)
	}

	var d doc
	if err := json.Unmarshal([]byte(`{"alignment":"bottom-trailing"}`), &d); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if d.Alignment != BottomTrailing {
		t.Errorf("Unmarshal() = %v, want bottomTrailing", d.Alignment)
	}
	if err := json.Unmarshal([]byte(`{"alignment":"sideways"}`), &d); err == nil {
		t.Error("Unmarshal() of unknown alignment should fail")
	}
	if _, err := json.Marshal(doc{Alignment: Alignment(42)}); err == nil {
		t.Error("Marshal() of invalid alignment should fail")
	}
}

func TestAlignmentString(t *testing.T) {
	if got := Alignment(9).String(); got != "Alignment(9)" {
		t.Errorf("String() = %q", got)
	}
	if Alignment(9).IsValid() {
		t.Error("Alignment(9).IsValid() = true")
	}
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		a    Alignment
		want geom.Point
	}{
		{TopLeading, geom.Pt(0, 0)},
		{TopTrailing, geom.Pt(0, 0)},
		{BottomLeading, geom.Pt(0, 1)},
		{BottomTrailing, geom.Pt(0, 1)},
		{Center, geom.Pt(0, 0.5)},
		{CenterDistribute, geom.Pt(0, 0.5)},
		{CenterJustify, geom.Pt(0, 0.5)},
	}
	for _, tt := range tests {
		if got := tt.a.Anchor(); got != tt.want {
			t.Errorf("%v.Anchor() = %v, want %v", tt.a, got, tt.want)
		}
	}
}

func TestDistribute(t *testing.T) {
	row := func(n int) *Row {
		r := NewRow(Fixed(10))
		for range n {
			r.Append(Sized(50, 10))
		}
		return r
	}

	tests := []struct {
		name   string
		a      Alignment
		n      int
		unused float64
		start  float64
		extra  float64
	}{
		{"leading", TopLeading, 3, 40, 0, 0},
		{"trailing", BottomTrailing, 3, 40, 40, 0},
		{"center", Center, 3, 40, 20, 0},
		{"distribute wide", CenterDistribute, 3, 40, 15, 5},
		{"distribute narrow", CenterDistribute, 3, 12, 6, 0},
		{"distribute capped", CenterDistribute, 1, 20, 10, 0},
		{"justify", CenterJustify, 3, 40, 0, 20},
		{"justify single", CenterJustify, 1, 40, 0, 0},
		{"no leftover", CenterDistribute, 3, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, extra := tt.a.distribute(row(tt.n), tt.unused)
			if !geom.NearlyEqual(start, tt.start) || !geom.NearlyEqual(extra, tt.extra) {
				t.Errorf("distribute() = (%v, %v), want (%v, %v)", start, extra, tt.start, tt.extra)
			}
		})
	}
}

func TestSpacing(t *testing.T) {
	if s := Negotiated(); s.IsFixed() || s.Ptr() != nil || s.String() != "negotiated" {
		t.Errorf("Negotiated() = %+v", s)
	}
	v := 4.5
	s := SpacingFrom(&v)
	if got, ok := s.Value(); !ok || got != 4.5 {
		t.Errorf("Value() = %v, %v", got, ok)
	}
	if p := s.Ptr(); p == nil || *p != 4.5 || p == &v {
		t.Errorf("Ptr() = %v", p)
	}
	if s.String() != "4.5" {
		t.Errorf("String() = %q", s.String())
	}
	if SpacingFrom(nil).IsFixed() {
		t.Error("SpacingFrom(nil) should negotiate")
	}

	a := Item{Pref: Preference{Horizontal: 3, Vertical: 11}}
	b := Item{Pref: Preference{Horizontal: 8, Vertical: -2}}
	if got := Negotiated().Between(a, b, Horizontal); got != 8 {
		t.Errorf("Between(horizontal) = %v, want 8", got)
	}
	if got := Negotiated().Between(a, b, Vertical); got != 11 {
		t.Errorf("Between(vertical) = %v, want 11", got)
	}
	if got := Fixed(2).Between(a, b, Vertical); got != 2 {
		t.Errorf("Fixed Between() = %v, want 2", got)
	}
}
