// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package geom

import "math"

// =============================================================================
// OUTLINE OPTIONS
// =============================================================================

// Options controls how a stroke's samples are expanded into an outline.
type Options struct {
	// Width is the full stroke width in logical pixels at pressure 1.
	Width float64

	// Thinning is how strongly low pressure narrows the stroke.
	// 0 disables pressure response (the highlighter); 0.5 is the pen.
	Thinning float64

	// Smoothing is the low-pass factor applied to incoming samples,
	// in [0, 1). 0 keeps raw samples.
	Smoothing float64
}

// DefaultOptions returns outline options for a plain pen stroke.
func DefaultOptions() Options {
	return Options{
		Width:     6,
		Thinning:  0.5,
		Smoothing: 0.35,
	}
}

// radius returns the half-width of the stroke at the given pressure.
// With thinning disabled this is constant; with thinning t, pressure 0
// narrows the stroke to (1-t) of its full half-width.
func (o Options) radius(pressure float64) float64 {
	p := Clamp(pressure, 0, 1)
	return (o.Width / 2) * (1 - o.Thinning*(1-p))
}

// =============================================================================
// OUTLINE CONSTRUCTION
// =============================================================================

// Outline expands the ordered samples of one stroke into the vertices of
// a closed polygon whose width follows the recorded pressure.
//
// The left edge is emitted tip-to-tail, then the right edge tail-to-tip,
// so the result is a simple closed ring. Zero samples yield nil; a single
// sample yields a small circle (a dot) so taps still render.
func Outline(points []Point, opts Options) []Vec {
	pts := smooth(points, opts.Smoothing)

	switch len(pts) {
	case 0:
		return nil
	case 1:
		return dot(Vec{pts[0].X, pts[0].Y}, opts.radius(pts[0].Pressure))
	}

	left := make([]Vec, 0, len(pts))
	right := make([]Vec, 0, len(pts))

	for i, p := range pts {
		n := segmentNormal(pts, i)
		r := opts.radius(p.Pressure)
		c := Vec{p.X, p.Y}
		left = append(left, c.Add(n.Scale(r)))
		right = append(right, c.Sub(n.Scale(r)))
	}

	out := make([]Vec, 0, 2*len(pts))
	out = append(out, left...)
	for i := len(right) - 1; i >= 0; i-- {
		out = append(out, right[i])
	}
	return out
}

// smooth applies an exponential low-pass to the samples. The first sample
// is kept exact so the stroke starts where the pointer went down.
func smooth(points []Point, factor float64) []Point {
	if factor <= 0 || len(points) < 3 {
		return points
	}
	out := make([]Point, len(points))
	out[0] = points[0]
	for i := 1; i < len(points); i++ {
		prev := out[i-1]
		cur := points[i]
		t := 1 - factor
		out[i] = Point{
			X:        Lerp(prev.X, cur.X, t),
			Y:        Lerp(prev.Y, cur.Y, t),
			Pressure: Lerp(prev.Pressure, cur.Pressure, t),
		}
	}
	// Keep the exact endpoint too, so the ink reaches the lift-off point.
	out[len(out)-1] = points[len(points)-1]
	return out
}

// segmentNormal returns the unit normal at sample i, using the direction
// of the surrounding segment(s).
func segmentNormal(pts []Point, i int) Vec {
	var dir Vec
	switch {
	case i == 0:
		dir = Vec{pts[1].X - pts[0].X, pts[1].Y - pts[0].Y}
	case i == len(pts)-1:
		dir = Vec{pts[i].X - pts[i-1].X, pts[i].Y - pts[i-1].Y}
	default:
		dir = Vec{pts[i+1].X - pts[i-1].X, pts[i+1].Y - pts[i-1].Y}
	}
	n := dir.Normal()
	if n == (Vec{}) {
		// Coincident samples; fall back to a fixed normal so the
		// outline stays non-degenerate.
		n = Vec{0, 1}
	}
	return n
}

// dot returns a small circular ring around c with radius r.
func dot(c Vec, r float64) []Vec {
	if r <= 0 {
		r = 0.5
	}
	const steps = 8
	ring := make([]Vec, 0, steps)
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / steps
		ring = append(ring, Vec{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)})
	}
	return ring
}
