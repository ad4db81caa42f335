// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestParseBareDeckPathPresents(t *testing.T) {
	cmd, args := parse([]string{"talk.md"})
	if cmd != CmdPresent {
		t.Fatalf("cmd = %v, want CmdPresent", cmd)
	}
	if args.Positional(0) != "talk.md" {
		t.Errorf("deck = %q, want talk.md", args.Positional(0))
	}
}

func TestParseCommands(t *testing.T) {
	cases := []struct {
		args []string
		want Command
	}{
		{[]string{"present", "talk.md"}, CmdPresent},
		{[]string{"notes", "--join", "http://h/join/x"}, CmdNotes},
		{[]string{"relay"}, CmdRelay},
		{[]string{"config"}, CmdConfig},
		{[]string{"version"}, CmdVersion},
		{[]string{"--version"}, CmdVersion},
		{[]string{"help"}, CmdHelp},
		{[]string{}, CmdHelp},
	}
	for _, tc := range cases {
		cmd, _ := parse(tc.args)
		if cmd != tc.want {
			t.Errorf("parse(%v) = %v, want %v", tc.args, cmd, tc.want)
		}
	}
}

func TestPresentFlags(t *testing.T) {
	cmd, args := parse([]string{"talk.md", "--share", "--relay", "http://r:8765", "--start=5", "--no-watch"})
	if cmd != CmdPresent {
		t.Fatalf("cmd = %v", cmd)
	}
	if !args.BoolFlag("share") {
		t.Error("share flag not parsed")
	}
	if got := args.Flag("relay"); got != "http://r:8765" {
		t.Errorf("relay = %q", got)
	}
	if got := args.FlagIntOrDefault("start", 1); got != 5 {
		t.Errorf("start = %d, want 5", got)
	}
	if !args.BoolFlag("no-watch") {
		t.Error("no-watch flag not parsed")
	}
}

func TestFlagDefaults(t *testing.T) {
	args := NewArgParser([]string{"--listen", ":9000"})
	if got := args.FlagOrDefault("listen", ":8765"); got != ":9000" {
		t.Errorf("listen = %q", got)
	}
	if got := args.FlagOrDefault("db", "fallback.db"); got != "fallback.db" {
		t.Errorf("db default = %q", got)
	}
	if got := args.FlagIntOrDefault("start", 1); got != 1 {
		t.Errorf("start default = %d", got)
	}
	if got := args.FlagIntOrDefault("listen", 7); got != 7 {
		t.Errorf("non-numeric flag should fall back, got %d", got)
	}
}

func TestBoolFlagEqualsForm(t *testing.T) {
	args := NewArgParser([]string{"--share=false", "--watch=true"})
	if args.BoolFlag("share") {
		t.Error("share=false should parse as false")
	}
	if !args.BoolFlag("watch") {
		t.Error("watch=true should parse as true")
	}
}

func TestTrailingFlagIsBoolean(t *testing.T) {
	args := NewArgParser([]string{"talk.md", "--share"})
	if !args.BoolFlag("share") {
		t.Error("trailing --share should be boolean")
	}
	if args.PositionalCount() != 1 {
		t.Errorf("positional count = %d, want 1", args.PositionalCount())
	}
}
