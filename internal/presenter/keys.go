// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package presenter provides the full-screen presentation mode: the
// controller composing slide navigation, annotations, the laser pointer,
// session sync, and the presenter view into one surface.
package presenter

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard surface of presentation mode.
type KeyMap struct {
	Next          key.Binding
	Prev          key.Binding
	First         key.Binding
	Last          key.Binding
	BlackScreen   key.Binding
	PresenterView key.Binding
	Laser         key.Binding
	Draw          key.Binding
	Highlighter   key.Binding
	Eraser        key.Binding
	Undo          key.Binding
	ClearInk      key.Binding
	ShowQR        key.Binding
	Help          key.Binding
	Exit          key.Binding
}

// DefaultKeyMap returns the default presentation-mode bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Next: key.NewBinding(
			key.WithKeys("right", "down", " ", "enter", "pgdown", "j"),
			key.WithHelp("→/space", "next slide"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "up", "backspace", "pgup", "k"),
			key.WithHelp("←/bksp", "previous slide"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home/g", "first slide"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End/G", "last slide"),
		),
		BlackScreen: key.NewBinding(
			key.WithKeys("b", "."),
			key.WithHelp("b", "black screen"),
		),
		PresenterView: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "presenter view"),
		),
		Laser: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "laser pointer"),
		),
		Draw: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "draw"),
		),
		Highlighter: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "highlighter"),
		),
		Eraser: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "eraser"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u", "ctrl+z"),
			key.WithHelp("u", "undo stroke"),
		),
		ClearInk: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear ink"),
		),
		ShowQR: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "session QR"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Exit: key.NewBinding(
			key.WithKeys("esc", "q", "ctrl+c"),
			key.WithHelp("Esc/q", "exit"),
		),
	}
}

// ShortHelp returns the bindings shown in the auto-hiding control bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Draw, k.Laser, k.BlackScreen, k.Exit}
}

// FullHelp returns all binding groups for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Next, k.Prev, k.First, k.Last},
		// Tools
		{k.Draw, k.Highlighter, k.Eraser, k.Undo, k.ClearInk},
		// Surfaces
		{k.Laser, k.BlackScreen, k.PresenterView, k.ShowQR},
		// Mode
		{k.Help, k.Exit},
	}
}
