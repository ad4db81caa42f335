// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/stagehand/internal/annotation"
	"github.com/jeranaias/stagehand/internal/deck"
	"github.com/jeranaias/stagehand/internal/util"
)

// =============================================================================
// STYLES
// =============================================================================

const slideMargin = 2

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236"))

	indicatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("213")).
			Background(lipgloss.Color("236")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Background(lipgloss.Color("236")).
			Bold(true)

	notesHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("114")).
				Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// newRendererFor builds a slide renderer for the given wrap width.
func newRendererFor(opts Options, width int) (*deck.Renderer, error) {
	return deck.NewRenderer(width, opts.Assets)
}

// slideWidth is the wrap width inside the side margins.
func (m *Model) slideWidth() int {
	return m.width - 2*slideMargin
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the presentation surface.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	rows := m.height - 1

	var body []string
	overlayInk := false
	switch {
	case m.machine.BlackScreen():
		body = make([]string, rows)
	case m.showHelp:
		body = m.helpLines(rows)
	case m.showQR && m.qrText != "":
		body = m.qrLines(rows)
	case m.opts.NotesView:
		body = m.notesLines(rows)
	default:
		body = m.slideLines(rows)
		overlayInk = true
	}

	if overlayInk {
		canvas := m.buildCanvas(rows)
		if !canvas.Empty() {
			body = canvas.Overlay(body)
		}
	}
	return strings.Join(body, "\n") + "\n" + m.statusBar()
}

// slideLines renders (and caches) the current slide, fitted to rows.
func (m *Model) slideLines(rows int) []string {
	idx := m.machine.Index()
	rendered, ok := m.slideCache[idx]
	if !ok {
		rendered = m.renderSlide(idx)
		// A render holding asset placeholders is not cached, so the
		// slide re-renders each frame until the assets arrive.
		if m.renderer == nil || !m.renderer.Unresolved(m.deck.Slides[idx]) {
			m.slideCache[idx] = rendered
		}
	}

	lines := strings.Split(strings.TrimRight(rendered, "\n"), "\n")
	margin := strings.Repeat(" ", slideMargin)
	out := make([]string, 0, rows)

	// Center short slides vertically.
	if pad := (rows - len(lines)) / 2; pad > 0 {
		for i := 0; i < pad; i++ {
			out = append(out, "")
		}
	}
	for _, l := range lines {
		if len(out) >= rows {
			break
		}
		out = append(out, margin+l)
	}
	for len(out) < rows {
		out = append(out, "")
	}
	return out
}

func (m *Model) renderSlide(idx int) string {
	if m.renderer == nil {
		return "loading…"
	}
	out, err := m.renderer.Render(m.deck.Slides[idx])
	if err != nil {
		// A slide that fails to render shows its raw source rather
		// than killing the presentation.
		return m.deck.Slides[idx].Body
	}
	return out
}

// buildCanvas rasterizes committed ink, the in-progress stroke, and the
// laser trail for this frame.
func (m *Model) buildCanvas(rows int) *Canvas {
	c := NewCanvas(m.width, rows)
	for i := range m.ink.Strokes() {
		s := &m.ink.Strokes()[i]
		c.FillPath(s.Path(), s.Color, s.Opacity)
	}
	if s := m.ink.Active(); s != nil {
		c.FillPath(s.Path(), s.Color, s.Opacity)
	}
	if m.laserOn {
		c.DrawTrail(m.pointer.Trail(), m.pointer.Visible(), m.cfg.LaserColor)
	}
	return c
}

// =============================================================================
// OVERLAYS
// =============================================================================

// helpLines renders the keyboard reference.
func (m *Model) helpLines(rows int) []string {
	out := []string{"", "  " + notesHeaderStyle.Render("Keys")}
	for _, group := range m.keys.FullHelp() {
		out = append(out, "")
		for _, b := range group {
			out = append(out, fmt.Sprintf("  %-12s %s",
				b.Help().Key, dimStyle.Render(b.Help().Desc)))
		}
	}
	return fitRows(out, rows)
}

// qrLines renders the pairing code for remote controls.
func (m *Model) qrLines(rows int) []string {
	out := []string{"", "  " + notesHeaderStyle.Render("Scan to control this presentation")}
	out = append(out, "")
	for _, l := range strings.Split(strings.TrimRight(m.qrText, "\n"), "\n") {
		out = append(out, "  "+l)
	}
	out = append(out, "", "  "+dimStyle.Render(m.opts.Session.JoinURL))
	return fitRows(out, rows)
}

// notesLines renders the speaker layout: current slide, speaker notes,
// and a peek at the next slide.
func (m *Model) notesLines(rows int) []string {
	idx := m.machine.Index()
	out := m.slideLines(rows * 2 / 3)

	s := m.deck.Slides[idx]
	out = append(out, "  "+notesHeaderStyle.Render("Notes"))
	if s.Notes == "" {
		out = append(out, "  "+dimStyle.Render("(none)"))
	} else {
		for _, l := range strings.Split(s.Notes, "\n") {
			out = append(out, "  "+l)
		}
	}

	if idx+1 < m.deck.Count() {
		next := firstLine(m.deck.Slides[idx+1].Body)
		out = append(out, "", "  "+dimStyle.Render("Next: "+next))
	} else {
		out = append(out, "", "  "+dimStyle.Render("Last slide"))
	}
	return fitRows(out, rows)
}

// =============================================================================
// STATUS BAR
// =============================================================================

// statusBar renders the bottom line: position, indicators, session,
// clock, and any warning. Hints fade out after a few idle seconds.
func (m *Model) statusBar() string {
	left := statusStyle.Render(fmt.Sprintf(" %d/%d ", m.machine.Index()+1, m.deck.Count()))

	var mid string
	switch {
	case m.warning != "":
		mid = warningStyle.Render(" ⚠ " + m.warning + " ")
	case m.showControls:
		var hints []string
		for _, b := range m.keys.ShortHelp() {
			hints = append(hints, b.Help().Key+" "+b.Help().Desc)
		}
		mid = dimStyle.Background(lipgloss.Color("236")).Render(strings.Join(hints, " · "))
	}

	var right strings.Builder
	if m.drawing {
		right.WriteString(indicatorStyle.Render(" ✎ " + toolName(m.tool) + " "))
	}
	if m.laserOn {
		right.WriteString(indicatorStyle.Render(" ● laser "))
	}
	if m.opts.Session.ID != "" {
		right.WriteString(statusStyle.Render(" ⇄ " + shortID(m.opts.Session.ID) + " "))
	}
	right.WriteString(statusStyle.Render(" " + elapsed(time.Since(m.startTime)) + " "))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(mid) - lipgloss.Width(right.String())
	if gap < 1 {
		mid = ""
		gap = m.width - lipgloss.Width(left) - lipgloss.Width(right.String())
	}
	if gap < 0 {
		gap = 0
	}
	return left + mid + statusStyle.Render(strings.Repeat(" ", gap)) + right.String()
}

func toolName(t annotation.Tool) string {
	switch t {
	case annotation.ToolHighlighter:
		return "highlight"
	case annotation.ToolEraser:
		return "erase"
	default:
		return "pen"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func elapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

func firstLine(body string) string {
	for _, l := range strings.Split(body, "\n") {
		if t := strings.TrimSpace(strings.TrimLeft(l, "# ")); t != "" {
			return util.TruncateWidth(t, 60)
		}
	}
	return "(empty slide)"
}

func fitRows(lines []string, rows int) []string {
	if len(lines) > rows {
		return lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return lines
}
