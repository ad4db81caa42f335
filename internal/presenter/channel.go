// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presenter

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// =============================================================================
// PRESENTER VIEW CHANNEL
// =============================================================================

// SpawnNotesView returns an OpenPresenterView hook that launches this
// binary's notes surface on the same deck, joined to the session, in a
// new terminal window. The returned hook reports failure as an error;
// the caller surfaces it as a warning and keeps presenting.
func SpawnNotesView(deckPath, joinURL string) func() error {
	return func() error {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate executable: %w", err)
		}

		term, args := terminalCommand()
		if term == "" {
			return fmt.Errorf("no terminal emulator found (set $TERMINAL)")
		}

		args = append(args, self, "notes", deckPath, "--join", joinURL)
		cmd := exec.Command(term, args...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("launch %s: %w", term, err)
		}
		// The window outlives us; reap it in the background so the child
		// never zombifies.
		go func() { _ = cmd.Wait() }()
		return nil
	}
}

// terminalCommand picks a terminal emulator and the flag that makes it
// run a command. $TERMINAL wins; otherwise probe the usual suspects.
func terminalCommand() (string, []string) {
	if t := os.Getenv("TERMINAL"); t != "" {
		return t, execFlag(t)
	}
	for _, t := range []string{
		"x-terminal-emulator", "kitty", "alacritty", "wezterm",
		"gnome-terminal", "konsole", "foot", "xterm",
	} {
		if p, err := exec.LookPath(t); err == nil {
			return p, execFlag(t)
		}
	}
	return "", nil
}

func execFlag(term string) []string {
	base := term
	if i := strings.LastIndexByte(term, '/'); i >= 0 {
		base = term[i+1:]
	}
	switch base {
	case "gnome-terminal":
		return []string{"--"}
	case "wezterm":
		return []string{"start", "--"}
	case "konsole", "xterm", "x-terminal-emulator", "foot", "kitty", "alacritty":
		return []string{"-e"}
	default:
		return []string{"-e"}
	}
}
