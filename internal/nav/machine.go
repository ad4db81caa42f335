// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav provides the slide navigation state machine.
//
// The machine owns the current slide index, the transient transition
// direction, and the black-screen toggle. It consumes abstract Actions
// rather than raw key or pointer events, so any input device (terminal
// keys, swipe gestures, remote controls, tests) can drive it.
package nav

// =============================================================================
// ACTIONS
// =============================================================================

// Action is one abstract navigation input.
type Action int

const (
	// ActionNone does nothing.
	ActionNone Action = iota
	// ActionNext advances one slide.
	ActionNext
	// ActionPrev goes back one slide.
	ActionPrev
	// ActionFirst jumps to the first slide.
	ActionFirst
	// ActionLast jumps to the last slide.
	ActionLast
	// ActionBlackScreen toggles the black screen.
	ActionBlackScreen
)

// SwipeThreshold is the horizontal drag distance, in logical pixels,
// required to register a swipe navigation.
const SwipeThreshold = 50

// State is a snapshot of the machine.
type State struct {
	// Index is the current slide, always within [0, Count-1].
	Index int
	// Direction is the sign of the last transition (-1, 0, +1). It only
	// drives the transition animation.
	Direction int
	// BlackScreen is the orthogonal black-screen toggle.
	BlackScreen bool
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine is the navigation state machine for one presentation surface.
// Driven from the UI event loop; not safe for concurrent use.
//
// Local transitions are reported through onChange so the caller can
// propagate them to peers. Remote-originated changes are applied with
// ApplyRemote, which updates state identically but never reports, so an
// incoming change is terminal and cannot echo back out.
type Machine struct {
	index       int
	count       int
	direction   int
	blackScreen bool

	onChange func(newIndex int)
}

// NewMachine creates a machine for a deck of count slides, starting at
// initial (clamped). onChange may be nil for a surface that never
// publishes, such as a read-only presenter view.
func NewMachine(count, initial int, onChange func(newIndex int)) *Machine {
	if count < 1 {
		count = 1
	}
	return &Machine{
		index:    clampIndex(initial, count),
		count:    count,
		onChange: onChange,
	}
}

// State returns the current snapshot.
func (m *Machine) State() State {
	return State{Index: m.index, Direction: m.direction, BlackScreen: m.blackScreen}
}

// Index returns the current slide index.
func (m *Machine) Index() int {
	return m.index
}

// Count returns the number of slides.
func (m *Machine) Count() int {
	return m.count
}

// BlackScreen reports whether the black screen is active.
func (m *Machine) BlackScreen() bool {
	return m.blackScreen
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// Apply dispatches one abstract action.
func (m *Machine) Apply(a Action) {
	switch a {
	case ActionNext:
		m.JumpTo(m.index + 1)
	case ActionPrev:
		m.JumpTo(m.index - 1)
	case ActionFirst:
		m.JumpTo(0)
	case ActionLast:
		m.JumpTo(m.count - 1)
	case ActionBlackScreen:
		m.ToggleBlackScreen()
	}
}

// JumpTo moves to the given index, clamped to [0, count-1]. A jump that
// clamps onto the current index is a silent no-op. The local display is
// updated synchronously; propagation happens through onChange and never
// blocks the transition.
func (m *Machine) JumpTo(index int) {
	target := clampIndex(index, m.count)
	if target == m.index {
		return
	}
	m.direction = sign(target - m.index)
	m.index = target
	if m.onChange != nil {
		m.onChange(target)
	}
}

// Digit handles the numeric shortcut keys: 1-9 address slides 0-8 and 0
// addresses slide 9. Out-of-range targets clamp silently.
func (m *Machine) Digit(d int) {
	if d < 0 || d > 9 {
		return
	}
	if d == 0 {
		m.JumpTo(9)
		return
	}
	m.JumpTo(d - 1)
}

// Swipe registers a completed horizontal drag of dx logical pixels.
// Drags shorter than SwipeThreshold are ignored. Dragging left (negative
// dx) advances, matching the usual touch convention.
func (m *Machine) Swipe(dx float64) {
	switch {
	case dx <= -SwipeThreshold:
		m.Apply(ActionNext)
	case dx >= SwipeThreshold:
		m.Apply(ActionPrev)
	}
}

// ToggleBlackScreen flips the black screen without touching the index.
func (m *Machine) ToggleBlackScreen() {
	m.blackScreen = !m.blackScreen
}

// Resize adjusts the slide count after a deck reload, clamping the
// current index back into range without reporting a transition.
func (m *Machine) Resize(count int) {
	if count < 1 {
		count = 1
	}
	m.count = count
	m.index = clampIndex(m.index, count)
}

// ApplyRemote applies a slide change that originated on a peer: same
// clamping and direction computation as a local jump, but the change is
// never re-published (no echo back into the session).
func (m *Machine) ApplyRemote(index int) {
	target := clampIndex(index, m.count)
	if target == m.index {
		return
	}
	m.direction = sign(target - m.index)
	m.index = target
}

func clampIndex(i, count int) int {
	if i < 0 {
		return 0
	}
	if i >= count {
		return count - 1
	}
	return i
}

func sign(d int) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	}
	return 0
}
