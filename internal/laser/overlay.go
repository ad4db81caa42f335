// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package laser provides the laser-pointer overlay: a glowing cursor with
// a decaying comet trail behind it. The trail ages on an animation tick
// that is independent of pointer sampling.
package laser

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// TrailCap is the maximum number of live trail samples.
	TrailCap = 16

	// MaxAge is the age (in animation frames) at which a trail point
	// expires.
	MaxAge = 20
)

// TrailPoint is one aging sample of the pointer's recent path.
type TrailPoint struct {
	X   float64
	Y   float64
	Age int
}

// Opacity is the render opacity for this trail point, fading linearly
// from 1 at age 0 to 0 at MaxAge.
func (p TrailPoint) Opacity() float64 {
	return 1 - float64(p.Age)/MaxAge
}

// Scale is the render scale for this trail point, shrinking to half size
// over its lifetime.
func (p TrailPoint) Scale() float64 {
	return 1 - float64(p.Age)/(2*MaxAge)
}

// =============================================================================
// OVERLAY
// =============================================================================

// Overlay tracks the raw pointer while enabled and maintains the bounded
// trail buffer. Driven from the UI event loop; not safe for concurrent
// use.
type Overlay struct {
	enabled bool
	visible bool
	trail   []TrailPoint
}

// NewOverlay returns a disabled overlay with an empty trail.
func NewOverlay() *Overlay {
	return &Overlay{}
}

// Enabled reports whether the overlay is tracking the pointer.
func (o *Overlay) Enabled() bool {
	return o.enabled
}

// Visible reports whether the cursor should render. Visibility turns on
// with the first sample and off when the pointer leaves the surface.
func (o *Overlay) Visible() bool {
	return o.enabled && o.visible
}

// SetEnabled switches between the Disabled and Tracking states.
// Disabling clears the trail immediately, with no fade-out.
func (o *Overlay) SetEnabled(enabled bool) {
	o.enabled = enabled
	if !enabled {
		o.visible = false
		o.trail = nil
	}
}

// Move records a pointer sample. Appends a fresh trail point and keeps
// only the most recent TrailCap samples.
func (o *Overlay) Move(x, y float64) {
	if !o.enabled {
		return
	}
	o.visible = true
	o.trail = append(o.trail, TrailPoint{X: x, Y: y})
	if len(o.trail) > TrailCap {
		o.trail = o.trail[len(o.trail)-TrailCap:]
	}
}

// Leave hides the cursor when the pointer exits the tracking surface.
// The trail keeps decaying through Tick.
func (o *Overlay) Leave() {
	o.visible = false
}

// Tick advances the trail by deltaFrames animation frames, dropping
// points that reach MaxAge. Called from the host's animation loop (or an
// explicit test clock).
func (o *Overlay) Tick(deltaFrames int) {
	if deltaFrames <= 0 || len(o.trail) == 0 {
		return
	}
	kept := o.trail[:0]
	for _, p := range o.trail {
		p.Age += deltaFrames
		if p.Age < MaxAge {
			kept = append(kept, p)
		}
	}
	o.trail = kept
}

// Trail returns the live trail points, oldest first. The slice is owned
// by the overlay; callers must not mutate it.
func (o *Overlay) Trail() []TrailPoint {
	return o.trail
}
