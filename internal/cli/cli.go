// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing for stagehand.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (set at build time by main).
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// COMMANDS
// =============================================================================

// Command identifies a top-level stagehand command.
type Command int

const (
	// CmdPresent runs presentation mode on a deck file.
	CmdPresent Command = iota
	// CmdNotes runs the presenter (speaker notes) view.
	CmdNotes
	// CmdRelay runs the session relay server.
	CmdRelay
	// CmdConfig prints the active configuration.
	CmdConfig
	// CmdVersion prints version information.
	CmdVersion
	// CmdHelp prints usage.
	CmdHelp
)

const usageText = `stagehand - present markdown decks in the terminal

Usage:
  stagehand [present] <deck.md> [flags]   Present a deck
  stagehand notes --join <url>            Speaker view joined to a session
  stagehand relay [flags]                 Run a session relay server
  stagehand config                        Show the active configuration
  stagehand version                       Show version

Present flags:
  --share             Share the session through the relay (QR pairing)
  --join <url>        Join an existing shared session
  --relay <url>       Relay base URL (overrides config)
  --start <n>         Start at slide n (1-based)
  --no-watch          Disable deck hot reload
  --config <path>     Use an explicit config file

Relay flags:
  --listen <addr>     Bind address (default :8765)
  --db <path>         Session database path

Version: %s
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("stagehand version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses os.Args and returns the command plus its parsed
// arguments. A bare deck path presents it, so `stagehand talk.md` works
// without naming a command.
func Parse() (Command, *ArgParser) {
	return parse(os.Args[1:])
}

func parse(args []string) (Command, *ArgParser) {
	if len(args) == 0 {
		return CmdHelp, NewArgParser(nil)
	}

	switch strings.ToLower(args[0]) {
	case "present":
		return CmdPresent, NewArgParser(args[1:])
	case "notes":
		return CmdNotes, NewArgParser(args[1:])
	case "relay":
		return CmdRelay, NewArgParser(args[1:])
	case "config":
		return CmdConfig, NewArgParser(args[1:])
	case "version", "--version", "-v":
		return CmdVersion, NewArgParser(args[1:])
	case "help", "--help", "-h":
		return CmdHelp, NewArgParser(args[1:])
	}

	// No command word: treat the whole line as `present ...`.
	return CmdPresent, NewArgParser(args)
}
