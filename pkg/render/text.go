package render

import (
	"math"
	"strings"

	"github.com/matzehuels/reflow/pkg/document"
)

// Default grid cell dimensions for [RenderText], in layout units.
const (
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0
)

// TextOptions configures the character grid.
type TextOptions struct {
	CellWidth  float64 // Layout units per column (default 8)
	CellHeight float64 // Layout units per line (default 16)
	Labels     bool    // Write labels inside boxes tall enough to hold them
}

func (o TextOptions) withDefaults() TextOptions {
	if !(o.CellWidth > 0) {
		o.CellWidth = DefaultCellWidth
	}
	if !(o.CellHeight > 0) {
		o.CellHeight = DefaultCellHeight
	}
	return o
}

// RenderText draws res as a character grid. Each box is framed with
// '+', '-' and '|'; boxes thinner than two cells are filled with '#'.
// Trailing spaces are trimmed from every line.
func RenderText(res *document.Result, opts TextOptions) string {
	opts = opts.withDefaults()

	type cells struct{ x0, y0, x1, y1 int }
	spans := make([]cells, len(res.Placements))
	cols := cellIndex(res.Width, opts.CellWidth)
	rows := cellIndex(res.Height, opts.CellHeight)
	for i, p := range res.Placements {
		c := cells{
			x0: cellIndex(p.X, opts.CellWidth),
			y0: cellIndex(p.Y, opts.CellHeight),
			x1: cellIndex(p.X+p.Width, opts.CellWidth) - 1,
			y1: cellIndex(p.Y+p.Height, opts.CellHeight) - 1,
		}
		c.x1, c.y1 = max(c.x0, c.x1), max(c.y0, c.y1)
		spans[i] = c
		cols, rows = max(cols, c.x1+1), max(rows, c.y1+1)
	}

	grid := make([][]rune, rows)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", cols))
	}

	for i, c := range spans {
		if c.x1-c.x0 < 1 || c.y1-c.y0 < 1 {
			fill(grid, c.x0, c.y0, c.x1, c.y1, '#')
			continue
		}
		frame(grid, c.x0, c.y0, c.x1, c.y1)
		if opts.Labels && c.y1-c.y0 >= 2 {
			p := res.Placements[i]
			text := p.Label
			if text == "" {
				text = p.ID
			}
			writeCentered(grid[(c.y0+c.y1)/2], c.x0+1, c.x1-1, text)
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func cellIndex(v, cell float64) int {
	if !(v > 0) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v / cell))
}

func fill(grid [][]rune, x0, y0, x1, y1 int, r rune) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			grid[y][x] = r
		}
	}
}

func frame(grid [][]rune, x0, y0, x1, y1 int) {
	for x := x0 + 1; x < x1; x++ {
		grid[y0][x], grid[y1][x] = '-', '-'
	}
	for y := y0 + 1; y < y1; y++ {
		grid[y][x0], grid[y][x1] = '|', '|'
	}
	grid[y0][x0], grid[y0][x1] = '+', '+'
	grid[y1][x0], grid[y1][x1] = '+', '+'
}

// writeCentered writes text centered between columns from and to,
// inclusive, keeping one blank column on each side when there is room.
func writeCentered(line []rune, from, to int, text string) {
	avail := to - from + 1
	if avail >= 3 {
		from, to, avail = from+1, to-1, avail-2
	}
	if avail <= 0 {
		return
	}
	runes := []rune(text)
	if len(runes) > avail {
		if avail > 2 {
			runes = append(runes[:avail-2:avail-2], '.', '.')
		} else {
			runes = runes[:avail]
		}
	}
	start := from + (avail-len(runes))/2
	copy(line[start:], runes)
}
