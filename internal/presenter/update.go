// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presenter

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/stagehand/internal/annotation"
	"github.com/jeranaias/stagehand/internal/geom"
	"github.com/jeranaias/stagehand/internal/nav"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update dispatches events to the navigation machine, ink engine, laser
// overlay and sync pump.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case frameTickMsg:
		m.pointer.Tick(1)
		if m.showControls && time.Now().After(m.controlsDeadline) {
			m.showControls = false
		}
		return m, frameTick()

	case remoteSlideMsg:
		// A peer moved the deck: apply as a local jump, never re-publish.
		m.machine.ApplyRemote(int(msg))
		return m, m.waitSync()

	case remoteLaserMsg:
		m.setLaser(bool(msg), false)
		return m, m.waitSync()

	case deckReloadedMsg:
		m.deck = msg.deck
		m.machine.Resize(msg.deck.Count())
		m.slideCache = make(map[int]string)
		return m, m.waitSync()

	case warningMsg:
		m.warning = string(msg)
		m.pokeControls()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	return m, nil
}

// resize rebuilds the slide renderer for the new surface size.
func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.slideCache = make(map[int]string)
	r, err := newRendererFor(m.opts, m.slideWidth())
	if err == nil {
		m.renderer = r
	}
}

// pokeControls shows the control hints and restarts their hide timer.
func (m *Model) pokeControls() {
	m.showControls = true
	m.controlsDeadline = time.Now().Add(controlsTimeout)
}

// =============================================================================
// KEYBOARD
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.pokeControls()

	// Any key dismisses the transient overlays first.
	if m.showHelp && !key.Matches(msg, m.keys.Exit) {
		m.showHelp = false
		return m, nil
	}
	if m.warning != "" {
		m.warning = ""
	}

	// Digit keys 1-9 address slides 0-8, 0 addresses slide 9.
	if s := msg.String(); len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		m.machine.Digit(int(s[0] - '0'))
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Exit):
		// Overlays dismiss first; only a bare Exit quits.
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.showQR {
			m.showQR = false
			return m, nil
		}
		// Every exit path converges on Shutdown (the host calls it
		// again after the program stops; it is idempotent).
		m.Shutdown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		m.machine.Apply(nav.ActionNext)

	case key.Matches(msg, m.keys.Prev):
		m.machine.Apply(nav.ActionPrev)

	case key.Matches(msg, m.keys.First):
		m.machine.Apply(nav.ActionFirst)

	case key.Matches(msg, m.keys.Last):
		m.machine.Apply(nav.ActionLast)

	case key.Matches(msg, m.keys.BlackScreen):
		m.machine.Apply(nav.ActionBlackScreen)

	case key.Matches(msg, m.keys.Laser):
		m.setLaser(!m.laserOn, true)

	case key.Matches(msg, m.keys.Draw):
		m.drawing = !m.drawing
		if m.drawing {
			m.tool = annotation.ToolPen
		}

	case key.Matches(msg, m.keys.Highlighter):
		if m.drawing {
			m.tool = annotation.ToolHighlighter
		}

	case key.Matches(msg, m.keys.Eraser):
		if m.drawing {
			m.tool = annotation.ToolEraser
		}

	case key.Matches(msg, m.keys.Undo):
		m.ink.Undo()

	case key.Matches(msg, m.keys.ClearInk):
		if m.drawing {
			m.ink.Clear()
		}

	case key.Matches(msg, m.keys.PresenterView):
		return m, m.openPresenterView()

	case key.Matches(msg, m.keys.ShowQR):
		if m.qrText != "" {
			m.showQR = !m.showQR
		}

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
	}
	return m, nil
}

// setLaser flips the laser overlay; local toggles propagate, remote
// ones are terminal.
func (m *Model) setLaser(on, local bool) {
	m.laserOn = on
	m.pointer.SetEnabled(on)
	if local && m.sync != nil {
		m.sync.PublishLaser(on)
	}
}

// openPresenterView launches the secondary surface. Failure (no
// terminal available, spawn blocked) is a dismissible warning; the
// presentation continues unaffected.
func (m *Model) openPresenterView() tea.Cmd {
	open := m.opts.OpenPresenterView
	if open == nil {
		return nil
	}
	return func() tea.Msg {
		if err := open(); err != nil {
			return warningMsg("presenter view: " + err.Error())
		}
		return nil
	}
}

// =============================================================================
// MOUSE
// =============================================================================

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.pokeControls()

	// One character cell is one logical pixel wide and two tall.
	px := geom.Point{X: float64(msg.X), Y: float64(msg.Y * 2), Pressure: 1}

	switch msg.Type {
	case tea.MouseWheelDown:
		m.machine.Apply(nav.ActionNext)
		return m, nil
	case tea.MouseWheelUp:
		m.machine.Apply(nav.ActionPrev)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		// Clicking the black overlay exits black screen.
		if m.machine.BlackScreen() {
			m.machine.ToggleBlackScreen()
			return m, nil
		}
		m.dragging = true
		m.dragStartX = msg.X
		m.dragMoved = false
		if m.drawing {
			m.ink.Begin(px, m.tool, m.cfg.InkColor, m.cfg.InkWidth)
		}

	case tea.MouseActionMotion:
		if m.laserOn {
			m.pointer.Move(px.X, px.Y)
		}
		if m.dragging {
			m.dragMoved = true
			if m.drawing {
				m.ink.Extend(px)
			}
		}

	case tea.MouseActionRelease:
		if !m.dragging {
			return m, nil
		}
		m.dragging = false
		if m.drawing {
			m.ink.End()
			return m, nil
		}
		if dx := float64(msg.X - m.dragStartX); m.dragMoved && absf(dx) >= nav.SwipeThreshold {
			m.machine.Swipe(dx)
			return m, nil
		}
		m.clickNavigate(msg.X)
	}
	return m, nil
}

// clickNavigate maps a tap to the on-screen chevron zones: the left
// fifth of the surface goes back, the right fifth advances.
func (m *Model) clickNavigate(x int) {
	if m.width == 0 {
		return
	}
	switch {
	case x < m.width/5:
		m.machine.Apply(nav.ActionPrev)
	case x > m.width*4/5:
		m.machine.Apply(nav.ActionNext)
	}
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
