// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presenter

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/stagehand/internal/annotation"
	"github.com/jeranaias/stagehand/internal/config"
	"github.com/jeranaias/stagehand/internal/deck"
	"github.com/jeranaias/stagehand/internal/pairing"
	"github.com/jeranaias/stagehand/internal/synclient"
)

const testDeckSource = `# One

first

---

# Two

second

---

# Three

third
`

func newTestModel(t *testing.T, opts Options) *Model {
	t.Helper()
	if opts.Deck == nil {
		opts.Deck = deck.Parse(testDeckSource)
	}
	m := New(opts)
	m.resize(80, 24)
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(keyMsg(k))
	}
}

func TestKeyboardNavigation(t *testing.T) {
	m := newTestModel(t, Options{})

	press(m, "right")
	if m.Index() != 1 {
		t.Errorf("after right: index = %d, want 1", m.Index())
	}
	press(m, "left")
	if m.Index() != 0 {
		t.Errorf("after left: index = %d, want 0", m.Index())
	}
	press(m, "G")
	if m.Index() != 2 {
		t.Errorf("after G: index = %d, want 2", m.Index())
	}
	press(m, "g")
	if m.Index() != 0 {
		t.Errorf("after g: index = %d, want 0", m.Index())
	}
}

func TestDigitJump(t *testing.T) {
	m := newTestModel(t, Options{})
	press(m, "3")
	if m.Index() != 2 {
		t.Errorf("after 3: index = %d, want 2", m.Index())
	}
	// Out of range clamps to the last slide.
	press(m, "9")
	if m.Index() != 2 {
		t.Errorf("after 9: index = %d, want 2 (clamped)", m.Index())
	}
}

func TestBlackScreenToggleAndClickExit(t *testing.T) {
	m := newTestModel(t, Options{})
	press(m, "b")
	if !m.machine.BlackScreen() {
		t.Fatal("b should enter black screen")
	}

	// Any click leaves black screen without navigating.
	m.Update(tea.MouseMsg{X: 40, Y: 10, Type: tea.MouseLeft,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.machine.BlackScreen() {
		t.Error("click should exit black screen")
	}
	if m.Index() != 0 {
		t.Errorf("exit click must not navigate: index = %d", m.Index())
	}
}

func TestDrawModeToolSelection(t *testing.T) {
	m := newTestModel(t, Options{})

	// Tool keys outside draw mode are inert.
	press(m, "h")
	if m.drawing {
		t.Fatal("h alone must not enter draw mode")
	}

	press(m, "d")
	if !m.drawing || m.tool != annotation.ToolPen {
		t.Fatalf("d should enter draw mode with the pen, got drawing=%v tool=%v", m.drawing, m.tool)
	}
	press(m, "h")
	if m.tool != annotation.ToolHighlighter {
		t.Errorf("tool = %v, want highlighter", m.tool)
	}
	press(m, "e")
	if m.tool != annotation.ToolEraser {
		t.Errorf("tool = %v, want eraser", m.tool)
	}
	press(m, "d")
	if m.drawing {
		t.Error("d again should leave draw mode")
	}
}

func TestMouseDrawingCommitsStroke(t *testing.T) {
	m := newTestModel(t, Options{Config: defaultPresenterConfig()})
	press(m, "d")

	m.Update(tea.MouseMsg{X: 10, Y: 5, Type: tea.MouseLeft,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	for x := 11; x <= 20; x++ {
		m.Update(tea.MouseMsg{X: x, Y: 5, Type: tea.MouseMotion,
			Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	}
	m.Update(tea.MouseMsg{X: 20, Y: 5, Type: tea.MouseRelease,
		Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if got := len(m.ink.Strokes()); got != 1 {
		t.Fatalf("strokes = %d, want 1", got)
	}
	if m.Index() != 0 {
		t.Error("drawing drag must not be treated as a swipe")
	}
}

func TestSwipeNavigatesWhenNotDrawing(t *testing.T) {
	m := newTestModel(t, Options{})

	// Drag left far past the threshold advances.
	m.Update(tea.MouseMsg{X: 70, Y: 10, Type: tea.MouseLeft,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 40, Y: 10, Type: tea.MouseMotion,
		Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 10, Y: 10, Type: tea.MouseRelease,
		Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.Index() != 1 {
		t.Errorf("after left swipe: index = %d, want 1", m.Index())
	}

	// A short wobble is not a swipe; a middle-screen tap does nothing.
	m.Update(tea.MouseMsg{X: 40, Y: 10, Type: tea.MouseLeft,
		Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 45, Y: 10, Type: tea.MouseMotion,
		Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 45, Y: 10, Type: tea.MouseRelease,
		Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if m.Index() != 1 {
		t.Errorf("short drag must not navigate: index = %d", m.Index())
	}
}

func TestClickZonesNavigate(t *testing.T) {
	m := newTestModel(t, Options{})

	tap := func(x int) {
		m.Update(tea.MouseMsg{X: x, Y: 10, Type: tea.MouseLeft,
			Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
		m.Update(tea.MouseMsg{X: x, Y: 10, Type: tea.MouseRelease,
			Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	}

	tap(75) // right fifth of an 80-col surface
	if m.Index() != 1 {
		t.Errorf("right-zone tap: index = %d, want 1", m.Index())
	}
	tap(5) // left fifth
	if m.Index() != 0 {
		t.Errorf("left-zone tap: index = %d, want 0", m.Index())
	}
	tap(40) // middle
	if m.Index() != 0 {
		t.Errorf("middle tap must not navigate: index = %d", m.Index())
	}
}

func TestWheelNavigates(t *testing.T) {
	m := newTestModel(t, Options{})
	m.Update(tea.MouseMsg{Type: tea.MouseWheelDown})
	if m.Index() != 1 {
		t.Errorf("wheel down: index = %d, want 1", m.Index())
	}
	m.Update(tea.MouseMsg{Type: tea.MouseWheelUp})
	if m.Index() != 0 {
		t.Errorf("wheel up: index = %d, want 0", m.Index())
	}
}

func TestLaserToggle(t *testing.T) {
	m := newTestModel(t, Options{})
	press(m, "l")
	if !m.laserOn || !m.pointer.Enabled() {
		t.Fatal("l should enable the laser")
	}
	press(m, "l")
	if m.laserOn || m.pointer.Enabled() {
		t.Error("l again should disable the laser")
	}
}

func TestJoiningSurfaceAdoptsSessionState(t *testing.T) {
	store := synclient.NewMemoryStore()
	rec, err := store.CreateSession(context.Background(), "deck-1")
	if err != nil {
		t.Fatal(err)
	}
	idx := 2
	on := true
	if err := store.Publish(context.Background(), rec.ID,
		synclient.Update{SlideIndex: &idx, LaserEnabled: &on}); err != nil {
		t.Fatal(err)
	}

	// Attach the way main does: start the client, read the seeded
	// record, and hand it to the controller.
	c := synclient.NewClient(store, rec.ID)
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	initial, _ := c.Known()

	m := newTestModel(t, Options{Initial: initial, Sync: c})
	defer m.Shutdown()

	if m.Index() != 2 {
		t.Errorf("joining surface index = %d, want 2 (record's current slide)", m.Index())
	}
	if !m.laserOn || !m.pointer.Enabled() {
		t.Error("joining surface should adopt the record's laser state")
	}
}

func TestRemoteSlideDoesNotRepublish(t *testing.T) {
	m := newTestModel(t, Options{})
	m.Update(remoteSlideMsg(2))
	if m.Index() != 2 {
		t.Errorf("remote slide: index = %d, want 2", m.Index())
	}
}

func TestDeckReloadClampsIndex(t *testing.T) {
	m := newTestModel(t, Options{})
	press(m, "G")
	if m.Index() != 2 {
		t.Fatalf("setup: index = %d", m.Index())
	}

	m.Update(deckReloadedMsg{deck: deck.Parse("# Only\n\nslide\n")})
	if m.Index() != 0 {
		t.Errorf("after shrink reload: index = %d, want 0", m.Index())
	}
	if got := m.machine.Count(); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestQROverlayToggle(t *testing.T) {
	m := newTestModel(t, Options{
		Session: pairing.Session{ID: "abc123", JoinURL: "http://localhost:8765/join/abc123"},
	})
	if m.qrText == "" {
		t.Fatal("session present but no QR rendered")
	}
	press(m, "s")
	if !m.showQR {
		t.Fatal("s should show the QR overlay")
	}
	view := m.View()
	if !strings.Contains(view, "http://localhost:8765/join/abc123") {
		t.Error("QR overlay should show the join URL")
	}
	press(m, "esc")
	if m.showQR {
		t.Error("esc should dismiss the QR overlay without quitting")
	}
}

func TestHelpOverlayDismissedByAnyKey(t *testing.T) {
	m := newTestModel(t, Options{})
	press(m, "?")
	if !m.showHelp {
		t.Fatal("? should open help")
	}
	press(m, "right")
	if m.showHelp {
		t.Error("any key should dismiss help")
	}
	if m.Index() != 0 {
		t.Error("dismissing help must not navigate")
	}
}

func TestEscDismissesHelpBeforeExiting(t *testing.T) {
	m := newTestModel(t, Options{})
	press(m, "?")
	if !m.showHelp {
		t.Fatal("? should open help")
	}

	_, cmd := m.Update(keyMsg("esc"))
	if m.showHelp {
		t.Fatal("esc should dismiss help")
	}
	if cmd != nil {
		t.Error("dismissing help must not quit")
	}

	// A second esc, with no overlay open, exits.
	_, cmd = m.Update(keyMsg("esc"))
	if cmd == nil {
		t.Error("bare esc should quit presentation mode")
	}
}

func TestShutdownIdempotentAndRunsOnExit(t *testing.T) {
	exits := 0
	m := newTestModel(t, Options{OnExit: func() { exits++ }})
	m.Shutdown()
	m.Shutdown()
	if exits != 1 {
		t.Errorf("OnExit ran %d times, want 1", exits)
	}
}

type stubResolver map[string]string

func (r stubResolver) Resolve(handle string) (string, bool) {
	loc, ok := r[handle]
	return loc, ok
}

func TestLateAssetReplacesPlaceholder(t *testing.T) {
	assets := stubResolver{}
	m := newTestModel(t, Options{
		Deck:   deck.Parse("![chart](asset://abc)\n"),
		Assets: assets,
	})

	if view := m.View(); !strings.Contains(view, "loading chart") {
		t.Fatalf("pending asset should render a placeholder, got %q", view)
	}

	// The asset arrives; the next frame re-renders instead of serving
	// the cached placeholder.
	assets["abc"] = "/tmp/chart.png"
	if view := m.View(); strings.Contains(view, "loading chart") {
		t.Error("resolved asset still rendering the stale placeholder")
	}
}

func TestViewHasStatusBarAndSlide(t *testing.T) {
	m := newTestModel(t, Options{})
	view := m.View()
	lines := strings.Split(view, "\n")
	if len(lines) != 24 {
		t.Fatalf("view has %d lines, want 24", len(lines))
	}
	if !strings.Contains(view, "1/3") {
		t.Error("status bar should show slide position")
	}
	if !strings.Contains(view, "One") {
		t.Error("view should contain the first slide's heading")
	}
}

func defaultPresenterConfig() config.PresenterConfig {
	return config.PresenterConfig{InkColor: "#ff5964", InkWidth: 6, LaserColor: "#ff3b30"}
}
