// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package geom

// =============================================================================
// PATH TYPES
// =============================================================================

// SegmentOp identifies one path drawing operation.
type SegmentOp int

const (
	// OpMoveTo starts a new subpath at Segment.To.
	OpMoveTo SegmentOp = iota
	// OpQuadTo draws a quadratic Bezier through Segment.Ctrl to Segment.To.
	OpQuadTo
	// OpClose closes the subpath back to its starting point.
	OpClose
)

// Segment is one operation of a Path.
type Segment struct {
	Op   SegmentOp
	Ctrl Vec
	To   Vec
}

// Path is an ordered sequence of drawing operations forming a closed,
// fillable shape.
type Path struct {
	segs []Segment
}

// Segments returns the path's operations in order.
func (p Path) Segments() []Segment {
	return p.segs
}

// Empty reports whether the path draws nothing.
func (p Path) Empty() bool {
	return len(p.segs) == 0
}

// =============================================================================
// PATH CONSTRUCTION
// =============================================================================

// Render converts the ordered samples of one stroke into a smoothed closed
// path. This is the whole ink pipeline for a single stroke: expand the
// samples into a pressure-weighted outline, then join consecutive outline
// vertices with quadratic curves through their midpoints so segments blend
// instead of forming hard corners.
//
// Safe to call every frame for the in-progress stroke. Zero samples yield
// an empty path; one sample yields a dot.
func Render(points []Point, opts Options) Path {
	return BuildPath(Outline(points, opts))
}

// BuildPath connects outline vertices into a closed path using quadratic
// midpoint interpolation: the path starts at the midpoint of the first
// edge and each vertex becomes the control point of a curve ending at the
// midpoint of the following edge.
func BuildPath(outline []Vec) Path {
	n := len(outline)
	if n == 0 {
		return Path{}
	}
	if n < 3 {
		// Too few vertices for a ring; emit a degenerate dot.
		outline = dot(outline[0], 0.5)
		n = len(outline)
	}

	segs := make([]Segment, 0, n+2)
	start := outline[0].Mid(outline[1])
	segs = append(segs, Segment{Op: OpMoveTo, To: start})
	for i := 1; i <= n; i++ {
		v := outline[i%n]
		next := outline[(i+1)%n]
		segs = append(segs, Segment{Op: OpQuadTo, Ctrl: v, To: v.Mid(next)})
	}
	segs = append(segs, Segment{Op: OpClose})
	return Path{segs: segs}
}

// =============================================================================
// FLATTENING
// =============================================================================

// Flatten approximates the path as a polygon by subdividing each
// quadratic into the given number of linear steps. Used by rasterizers
// and by hit tests that only understand polygons.
func (p Path) Flatten(steps int) []Vec {
	if steps < 1 {
		steps = 1
	}
	var out []Vec
	var cur Vec
	for _, s := range p.segs {
		switch s.Op {
		case OpMoveTo:
			cur = s.To
			out = append(out, cur)
		case OpQuadTo:
			for i := 1; i <= steps; i++ {
				t := float64(i) / float64(steps)
				out = append(out, quadPoint(cur, s.Ctrl, s.To, t))
			}
			cur = s.To
		case OpClose:
			// Polygon fill closes implicitly.
		}
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the flattened path.
// Returns zero vectors for an empty path.
func (p Path) Bounds() (min, max Vec) {
	poly := p.Flatten(4)
	if len(poly) == 0 {
		return Vec{}, Vec{}
	}
	min, max = poly[0], poly[0]
	for _, v := range poly[1:] {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
	}
	return min, max
}

// quadPoint evaluates a quadratic Bezier at t.
func quadPoint(a, ctrl, b Vec, t float64) Vec {
	u := 1 - t
	return Vec{
		X: u*u*a.X + 2*u*t*ctrl.X + t*t*b.X,
		Y: u*u*a.Y + 2*u*t*ctrl.Y + t*t*b.Y,
	}
}
