package pipeline

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/reflow/pkg/document"
	"github.com/matzehuels/reflow/pkg/errors"
	"github.com/matzehuels/reflow/pkg/flow"
	"github.com/matzehuels/reflow/pkg/geom"
)

// checkTolerance is the relative tolerance of every comparison in Check.
const checkTolerance = 1e-9

// Check verifies that res is a consistent layout of d:
//   - there is one placement per box and each keeps its box's size
//   - the placements' bounding box starts at the origin and spans exactly
//     the measured size
//   - rows are numbered in order and each starts below the previous one
//   - boxes within a row do not overlap, and rows holding more than one box
//     stay within the measured width
//
// The returned error lists the first problem found and how many others
// there were.
func Check(d *document.Document, res *document.Result) error {
	problems := checkProblems(d, res)
	switch len(problems) {
	case 0:
		return nil
	case 1:
		return errors.New(errors.ErrCodeInternal, "inconsistent layout: %s", problems[0])
	default:
		return errors.New(errors.ErrCodeInternal, "inconsistent layout: %s (and %d more)", problems[0], len(problems)-1)
	}
}

func checkProblems(d *document.Document, res *document.Result) []string {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(res.Placements) != len(d.Boxes) {
		addf("%d placements for %d boxes", len(res.Placements), len(d.Boxes))
		return problems
	}
	if len(res.Placements) == 0 {
		if res.Size() != (geom.Size{}) || res.Rows != 0 {
			addf("empty layout measured %v in %d rows", res.Size(), res.Rows)
		}
		return problems
	}

	for i, p := range res.Placements {
		want := geom.Sz(d.Boxes[i].Width, d.Boxes[i].Height).Sanitized()
		if !approx(p.Width, want.Width) || !approx(p.Height, want.Height) {
			addf("box %d placed as %gx%g, want %v", i, p.Width, p.Height, want)
		}
	}

	u := geom.UnionAll(res.Rects())
	if !approx(u.MinX(), 0) || !approx(u.MinY(), 0) ||
		!approx(u.MaxX(), res.Width) || !approx(u.MaxY(), res.Height) {
		addf("placement bounds %v, measured %v", u, res.Size())
	}

	row, rowStart := 0, 0
	prevBottom, bottom := math.Inf(-1), math.Inf(-1)
	closeRow := func(end int) {
		if end-rowStart > 1 && res.Placements[end-1].Rect().MaxX()-res.Width > tolerance(res.Width) {
			addf("row %d overflows width %g", row, res.Width)
		}
	}
	for i, p := range res.Placements {
		switch {
		case i == 0 && p.Row != 0:
			addf("first box is in row %d", p.Row)
		case i > 0 && p.Row == row+1:
			closeRow(i)
			row, rowStart = p.Row, i
			prevBottom, bottom = bottom, math.Inf(-1)
		case i > 0 && p.Row != row:
			addf("box %d jumps from row %d to row %d", i, row, p.Row)
		}

		r := p.Rect()
		if r.MinY()+tolerance(r.MinY()) < prevBottom {
			addf("box %d starts at y=%g above the previous row's bottom %g", i, r.MinY(), prevBottom)
		}
		if i > rowStart && r.MinX()+tolerance(r.MinX()) < res.Placements[i-1].Rect().MaxX() {
			addf("box %d overlaps box %d", i, i-1)
		}
		bottom = math.Max(bottom, r.MaxY())
	}
	closeRow(len(res.Placements))
	if res.Rows != row+1 {
		addf("result reports %d rows, placements use %d", res.Rows, row+1)
	}
	return problems
}

func tolerance(v float64) float64 { return checkTolerance * math.Max(1, math.Abs(v)) }

func approx(a, b float64) bool {
	return geom.NearlyEqualTol(a, b, tolerance(math.Max(math.Abs(a), math.Abs(b))))
}

// RandomProposedWidth is the width every [RandomDocument] proposes.
const RandomProposedWidth = 393.0

// RandomDocument draws a document of up to 24 boxes with widths in
// [0, 410) and heights in [0, 1000), so some boxes are wider than the
// proposed width. Spacing is negotiated two times in five and otherwise
// fixed, either large or small, and the alignment is picked uniformly.
func RandomDocument(rng *rand.Rand) *document.Document {
	all := flow.Alignments()
	d := document.New("random", all[rng.IntN(len(all))])
	width := RandomProposedWidth
	d.Width = &width
	if rng.IntN(5) >= 2 {
		var s float64
		if rng.IntN(2) == 0 {
			s = rng.Float64() * 10000
		} else {
			s = rng.Float64() * 20
		}
		d.Spacing = &s
	}
	for i := range rng.IntN(25) {
		d.Add(fmt.Sprintf("b%d", i), rng.Float64()*410, rng.Float64()*1000)
	}
	return d
}

// SweepReport summarizes a randomized consistency sweep.
type SweepReport struct {
	Runs     int
	Failures []SweepFailure
}

// SweepFailure is a random document whose layout failed [Check].
type SweepFailure struct {
	Run      int
	Document *document.Document
	Err      error
}

// Sweep lays out runs random documents drawn from seed and checks every
// result. It stops early, returning the partial report, when ctx is done.
func Sweep(ctx context.Context, runs int, seed uint64) (*SweepReport, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	report := &SweepReport{}
	for i := range runs {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrap(errors.ErrCodeTimeout, err, "sweep stopped after %d runs", i)
		}
		d := RandomDocument(rng)
		res, err := document.Layout(d)
		if err == nil {
			err = Check(d, res)
		}
		if err != nil {
			report.Failures = append(report.Failures, SweepFailure{Run: i, Document: d, Err: err})
		}
		report.Runs++
	}
	return report, nil
}
