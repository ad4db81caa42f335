// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package annotation provides the freehand drawing engine for
// presentation mode: pointer capture into strokes, undo history, and
// eraser hit-testing. Strokes live only for the presentation session and
// are never persisted.
package annotation

import (
	"github.com/google/uuid"

	"github.com/jeranaias/stagehand/internal/geom"
)

// =============================================================================
// TOOLS
// =============================================================================

// Tool selects how pointer input is interpreted.
type Tool int

const (
	// ToolPen draws with the user-selected color and width.
	ToolPen Tool = iota
	// ToolHighlighter draws wide translucent yellow, no pressure response.
	ToolHighlighter
	// ToolEraser deletes whole strokes near the pointer.
	ToolEraser
)

const (
	// EraseRadius is the hit-test radius for the eraser in logical pixels.
	EraseRadius = 20

	// Fixed rendering parameters. Pen and highlighter opacity and the
	// highlighter's color/width are not user-configurable.
	penOpacity         = 0.9
	penThinning        = 0.5
	highlighterColor   = "#ffd43b"
	highlighterWidth   = 24
	highlighterOpacity = 0.4
)

// Stroke is one freehand ink path. Committed strokes are immutable; the
// active (uncommitted) stroke is append-only until the pointer lifts.
type Stroke struct {
	ID      string
	Points  []geom.Point
	Color   string
	Width   float64
	Opacity float64

	// Thinning is carried with the stroke so committed ink keeps
	// rendering the way it was drawn even if the tool changes.
	Thinning float64
}

// Path renders the stroke through the ink pipeline.
func (s *Stroke) Path() geom.Path {
	return geom.Render(s.Points, geom.Options{
		Width:     s.Width,
		Thinning:  s.Thinning,
		Smoothing: 0.35,
	})
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine owns the in-memory stroke list for one presentation session.
// It is driven from the UI event loop and is not safe for concurrent use.
type Engine struct {
	strokes []Stroke
	active  *Stroke
	tool    Tool
}

// NewEngine returns an empty annotation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Begin starts a new active stroke at the given point, or performs an
// immediate erase when the eraser tool is selected.
func (e *Engine) Begin(p geom.Point, tool Tool, color string, width float64) {
	e.tool = tool
	if tool == ToolEraser {
		e.EraseAt(p)
		return
	}

	s := Stroke{
		ID:      uuid.NewString(),
		Color:   color,
		Width:   width,
		Opacity: penOpacity,
	}
	switch tool {
	case ToolHighlighter:
		s.Color = highlighterColor
		s.Width = highlighterWidth
		s.Opacity = highlighterOpacity
		s.Thinning = 0
	default:
		s.Thinning = penThinning
	}
	s.Points = append(s.Points, p)
	e.active = &s
}

// Extend appends a sample to the active stroke, or erases at the point if
// the active tool is the eraser. No-op when nothing is being drawn.
func (e *Engine) Extend(p geom.Point) {
	if e.tool == ToolEraser {
		e.EraseAt(p)
		return
	}
	if e.active == nil {
		return
	}
	e.active.Points = append(e.active.Points, p)
}

// End commits the active stroke. A tap that never moved (fewer than two
// samples) is discarded rather than committed as invisible ink. No-op for
// the eraser, which has no active stroke.
func (e *Engine) End() {
	s := e.active
	e.active = nil
	if s == nil || len(s.Points) < 2 {
		return
	}
	e.strokes = append(e.strokes, *s)
}

// Undo removes the most recently committed stroke. No-op when empty.
func (e *Engine) Undo() {
	if len(e.strokes) == 0 {
		return
	}
	e.strokes = e.strokes[:len(e.strokes)-1]
}

// Clear drops every committed stroke and any in-progress one.
func (e *Engine) Clear() {
	e.strokes = nil
	e.active = nil
}

// CanUndo reports whether at least one committed stroke exists.
func (e *Engine) CanUndo() bool {
	return len(e.strokes) > 0
}

// EraseAt removes every committed stroke with any sample within
// EraseRadius of p. Whole-stroke deletion, no partial trimming.
func (e *Engine) EraseAt(p geom.Point) {
	kept := e.strokes[:0]
	for _, s := range e.strokes {
		if !strokeNear(s, p, EraseRadius) {
			kept = append(kept, s)
		}
	}
	e.strokes = kept
}

// Strokes returns the committed strokes in draw order. The slice is owned
// by the engine; callers must not mutate it.
func (e *Engine) Strokes() []Stroke {
	return e.strokes
}

// Active returns the in-progress stroke, or nil.
func (e *Engine) Active() *Stroke {
	return e.active
}

// strokeNear reports whether any sample of s is within radius of p.
func strokeNear(s Stroke, p geom.Point, radius float64) bool {
	for _, sp := range s.Points {
		if geom.Dist(sp, p) <= radius {
			return true
		}
	}
	return false
}
