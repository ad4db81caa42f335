// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presenter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/jeranaias/stagehand/internal/geom"
	"github.com/jeranaias/stagehand/internal/laser"
)

// =============================================================================
// CELL CANVAS
// =============================================================================

// Logical pixel space: one column is one pixel wide, one row is two
// pixels tall. Ink renders with half-block characters, so vertical
// resolution is doubled relative to the character grid.

// pathFlattenSteps is the quad subdivision used when scan-filling ink.
const pathFlattenSteps = 6

// cell is one character cell of the overlay: two vertically stacked
// pixels sharing a foreground color (latest ink wins).
type cell struct {
	upper bool
	lower bool
	color string
}

// Canvas rasterizes ink and laser pixels for compositing over a rendered
// slide.
type Canvas struct {
	cols    int
	rows    int
	cells   [][]cell
	inked   int
	profile termenv.Profile
}

// NewCanvas creates an empty canvas of cols x rows character cells. Ink
// colors degrade through the terminal's detected color profile.
func NewCanvas(cols, rows int) *Canvas {
	cells := make([][]cell, rows)
	for i := range cells {
		cells[i] = make([]cell, cols)
	}
	return &Canvas{
		cols:    cols,
		rows:    rows,
		cells:   cells,
		profile: termenv.ColorProfile(),
	}
}

// Empty reports whether nothing has been drawn.
func (c *Canvas) Empty() bool {
	return c.inked == 0
}

// setPixel paints one logical pixel (x in columns, y in half-rows).
// Negative y must be rejected before the division: -1/2 truncates to
// row 0 and would paint a stray pixel in the top row.
func (c *Canvas) setPixel(x, y int, color string) {
	if x < 0 || y < 0 {
		return
	}
	row := y / 2
	if x >= c.cols || row >= c.rows {
		return
	}
	cl := &c.cells[row][x]
	if y%2 == 0 {
		cl.upper = true
	} else {
		cl.lower = true
	}
	cl.color = color
	c.inked++
}

// =============================================================================
// INK AND LASER DRAWING
// =============================================================================

// FillPath scan-fills a closed ink path. Opacity is approximated by
// dimming the ink color toward the dark slide background.
func (c *Canvas) FillPath(p geom.Path, color string, opacity float64) {
	poly := p.Flatten(pathFlattenSteps)
	if len(poly) < 3 {
		return
	}
	c.fillPolygon(poly, dimColor(color, opacity))
}

// DrawTrail draws the laser's decaying comet trail, oldest first so the
// fresh cursor end paints over the tail.
func (c *Canvas) DrawTrail(trail []laser.TrailPoint, visible bool, color string) {
	for i, p := range trail {
		r := 1.5 * p.Scale()
		if visible && i == len(trail)-1 {
			// The live cursor gets a larger glowing head.
			r = 2.5
		}
		c.fillDisc(p.X, p.Y, r, dimColor(color, p.Opacity()))
	}
}

// fillDisc paints a filled circle in logical pixel space.
func (c *Canvas) fillDisc(cx, cy, r float64, color string) {
	if r <= 0 {
		return
	}
	for y := int(cy - r); y <= int(cy+r)+1; y++ {
		for x := int(cx - r); x <= int(cx+r)+1; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			if dx*dx+dy*dy <= r*r {
				c.setPixel(x, y, color)
			}
		}
	}
}

// fillPolygon is an even-odd scanline fill over logical pixel rows.
func (c *Canvas) fillPolygon(poly []geom.Vec, color string) {
	minY, maxY := poly[0].Y, poly[0].Y
	for _, v := range poly[1:] {
		if v.Y < minY {
			minY = v.Y
		}
		if v.Y > maxY {
			maxY = v.Y
		}
	}
	y0, y1 := int(minY), int(maxY)+1
	if y0 < 0 {
		y0 = 0
	}
	if limit := 2 * c.rows; y1 > limit {
		y1 = limit
	}

	var xs []float64
	for y := y0; y < y1; y++ {
		yc := float64(y) + 0.5
		xs = xs[:0]
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			if (a.Y <= yc) == (b.Y <= yc) {
				continue
			}
			t := (yc - a.Y) / (b.Y - a.Y)
			xs = append(xs, a.X+t*(b.X-a.X))
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(xs[i] + 0.5); x < int(xs[i+1]+0.5); x++ {
				c.setPixel(x, y, color)
			}
		}
	}
}

// =============================================================================
// COMPOSITING
// =============================================================================

// Overlay composites the canvas over the rendered slide lines, splicing
// ink runs into each affected row without disturbing styling elsewhere.
func (c *Canvas) Overlay(lines []string) []string {
	if c.Empty() {
		return lines
	}
	out := make([]string, len(lines))
	copy(out, lines)

	for row := 0; row < c.rows && row < len(out); row++ {
		for col := 0; col < c.cols; {
			if !c.cells[row][col].filled() {
				col++
				continue
			}
			// Contiguous ink run.
			start := col
			var run strings.Builder
			for col < c.cols && c.cells[row][col].filled() {
				cl := c.cells[row][col]
				run.WriteString(c.profile.String(string(cl.rune())).
					Foreground(c.profile.Color(cl.color)).String())
				col++
			}
			out[row] = spliceCells(out[row], start, run.String(), col-start, c.cols)
		}
	}
	return out
}

func (cl cell) filled() bool {
	return cl.upper || cl.lower
}

func (cl cell) rune() rune {
	switch {
	case cl.upper && cl.lower:
		return '█'
	case cl.upper:
		return '▀'
	default:
		return '▄'
	}
}

// spliceCells replaces width cells of line at col with seg, preserving
// the styled text on either side.
func spliceCells(line string, col int, seg string, width, totalCols int) string {
	if w := ansi.StringWidth(line); w < totalCols {
		line += strings.Repeat(" ", totalCols-w)
	}
	left := ansi.Truncate(line, col, "")
	right := ansi.TruncateLeft(line, col+width, "")
	return left + seg + right
}

// =============================================================================
// COLOR HELPERS
// =============================================================================

// dimColor scales a #rrggbb color toward black, approximating alpha over
// the dark presentation background.
func dimColor(hex string, opacity float64) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return hex
	}
	opacity = geom.Clamp(opacity, 0, 1)
	return fmt.Sprintf("#%02x%02x%02x",
		int(float64(r)*opacity), int(float64(g)*opacity), int(float64(b)*opacity))
}

func parseHex(hex string) (r, g, b int, ok bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0, false
	}
	rv, err1 := strconv.ParseInt(hex[0:2], 16, 32)
	gv, err2 := strconv.ParseInt(hex[2:4], 16, 32)
	bv, err3 := strconv.ParseInt(hex[4:6], 16, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return int(rv), int(gv), int(bv), true
}
