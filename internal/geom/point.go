// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package geom provides the vector-ink geometry for stagehand.
//
// It converts pressure-tagged pointer samples into smoothed, fillable
// outline paths (the freehand ink pipeline), and supplies the small
// amount of 2D math the annotation and laser overlays need.
package geom

import "math"

// =============================================================================
// POINT TYPES
// =============================================================================

// Point is one raw pointer sample in logical pixel space.
// Pressure is in [0, 1]; devices without pressure report 1.
type Point struct {
	X        float64
	Y        float64
	Pressure float64
}

// Vec is a plain 2D position without pressure.
type Vec struct {
	X float64
	Y float64
}

// Sub returns v - w.
func (v Vec) Sub(w Vec) Vec {
	return Vec{v.X - w.X, v.Y - w.Y}
}

// Add returns v + w.
func (v Vec) Add(w Vec) Vec {
	return Vec{v.X + w.X, v.Y + w.Y}
}

// Scale returns v scaled by s.
func (v Vec) Scale(s float64) Vec {
	return Vec{v.X * s, v.Y * s}
}

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normal returns the unit vector perpendicular to v (rotated +90 degrees).
// Returns the zero vector when v has no length.
func (v Vec) Normal() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{-v.Y / l, v.X / l}
}

// Mid returns the midpoint of v and w.
func (v Vec) Mid(w Vec) Vec {
	return Vec{(v.X + w.X) / 2, (v.Y + w.Y) / 2}
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Lerp linearly interpolates between a and b by t in [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
