// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import "testing"

// =============================================================================
// CLAMPING TESTS
// =============================================================================

func TestNextClampsAtEnd(t *testing.T) {
	// 5 slides, presenter at 0: four ArrowRight presses reach the last
	// slide, a fifth is a no-op.
	m := NewMachine(5, 0, nil)
	for i := 0; i < 4; i++ {
		m.Apply(ActionNext)
	}
	if m.Index() != 4 {
		t.Fatalf("index after 4 next = %d, want 4", m.Index())
	}
	m.Apply(ActionNext)
	if m.Index() != 4 {
		t.Errorf("index after 5th next = %d, want 4 (clamped)", m.Index())
	}
}

func TestPrevClampsAtStart(t *testing.T) {
	m := NewMachine(3, 0, nil)
	m.Apply(ActionPrev)
	if m.Index() != 0 {
		t.Errorf("index = %d, want 0 (no wraparound)", m.Index())
	}
}

func TestIndexStaysInRangeUnderArbitrarySequences(t *testing.T) {
	m := NewMachine(7, 3, nil)
	seq := []Action{
		ActionNext, ActionNext, ActionLast, ActionNext, ActionPrev,
		ActionFirst, ActionPrev, ActionPrev, ActionNext, ActionLast,
	}
	for i, a := range seq {
		m.Apply(a)
		if m.Index() < 0 || m.Index() >= m.Count() {
			t.Fatalf("step %d: index %d out of [0, %d)", i, m.Index(), m.Count())
		}
	}
	m.JumpTo(-100)
	if m.Index() != 0 {
		t.Errorf("JumpTo(-100) = %d, want 0", m.Index())
	}
	m.JumpTo(1000)
	if m.Index() != 6 {
		t.Errorf("JumpTo(1000) = %d, want 6", m.Index())
	}
}

func TestInitialIndexClamped(t *testing.T) {
	m := NewMachine(4, 99, nil)
	if m.Index() != 3 {
		t.Errorf("initial index = %d, want 3", m.Index())
	}
}

// =============================================================================
// DIGIT JUMP TESTS
// =============================================================================

func TestDigitJumps(t *testing.T) {
	m := NewMachine(12, 0, nil)

	m.Digit(1)
	if m.Index() != 0 {
		t.Errorf("digit 1 -> %d, want 0", m.Index())
	}
	m.Digit(5)
	if m.Index() != 4 {
		t.Errorf("digit 5 -> %d, want 4", m.Index())
	}
	m.Digit(0)
	if m.Index() != 9 {
		t.Errorf("digit 0 -> %d, want 9", m.Index())
	}
}

func TestDigitClampsOnShortDeck(t *testing.T) {
	m := NewMachine(3, 1, nil)
	m.Digit(9) // would be slide 8, clamps to the last slide
	if m.Index() != 2 {
		t.Errorf("digit 9 on 3 slides -> %d, want 2", m.Index())
	}
}

// =============================================================================
// DIRECTION AND BLACK SCREEN TESTS
// =============================================================================

func TestDirectionIsSignOfTransition(t *testing.T) {
	m := NewMachine(10, 5, nil)
	m.JumpTo(8)
	if m.State().Direction != 1 {
		t.Errorf("forward direction = %d, want 1", m.State().Direction)
	}
	m.JumpTo(2)
	if m.State().Direction != -1 {
		t.Errorf("backward direction = %d, want -1", m.State().Direction)
	}
}

func TestBlackScreenIsOrthogonal(t *testing.T) {
	m := NewMachine(5, 2, nil)
	m.Apply(ActionBlackScreen)
	if !m.BlackScreen() {
		t.Fatal("black screen should be active")
	}
	if m.Index() != 2 {
		t.Error("black screen must not touch the index")
	}
	m.Apply(ActionBlackScreen)
	if m.BlackScreen() {
		t.Error("second toggle should exit black screen")
	}
}

// =============================================================================
// SWIPE TESTS
// =============================================================================

func TestSwipeThreshold(t *testing.T) {
	m := NewMachine(5, 2, nil)
	m.Swipe(-49)
	if m.Index() != 2 {
		t.Error("swipe below threshold should be ignored")
	}
	m.Swipe(-50)
	if m.Index() != 3 {
		t.Errorf("left swipe -> %d, want 3", m.Index())
	}
	m.Swipe(75)
	if m.Index() != 2 {
		t.Errorf("right swipe -> %d, want 2", m.Index())
	}
}

// =============================================================================
// LOCAL VS REMOTE CHANGE TESTS
// =============================================================================

func TestLocalChangeNotifies(t *testing.T) {
	var published []int
	m := NewMachine(5, 0, func(i int) { published = append(published, i) })

	m.Apply(ActionNext)
	m.Apply(ActionNext)
	m.Apply(ActionNext) // index 3
	m.Apply(ActionPrev)

	want := []int{1, 2, 3, 2}
	if len(published) != len(want) {
		t.Fatalf("published %v, want %v", published, want)
	}
	for i := range want {
		if published[i] != want[i] {
			t.Fatalf("published %v, want %v", published, want)
		}
	}

	// Clamped no-op transitions publish nothing.
	m.JumpTo(2)
	if len(published) != len(want) {
		t.Error("no-op jump should not publish")
	}
}

func TestApplyRemoteDoesNotNotify(t *testing.T) {
	calls := 0
	m := NewMachine(10, 0, func(int) { calls++ })

	m.ApplyRemote(3)

	if m.Index() != 3 {
		t.Errorf("remote change index = %d, want 3", m.Index())
	}
	if m.State().Direction != 1 {
		t.Errorf("remote change direction = %d, want 1", m.State().Direction)
	}
	if calls != 0 {
		t.Errorf("remote change triggered %d publishes, want 0 (no echo)", calls)
	}
}
