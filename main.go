// stagehand - present markdown decks in the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/toml"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/stagehand/internal/cli"
	"github.com/jeranaias/stagehand/internal/config"
	"github.com/jeranaias/stagehand/internal/deck"
	"github.com/jeranaias/stagehand/internal/pairing"
	"github.com/jeranaias/stagehand/internal/presenter"
	"github.com/jeranaias/stagehand/internal/relay"
	"github.com/jeranaias/stagehand/internal/storage"
	"github.com/jeranaias/stagehand/internal/synclient"
)

// Version information (set at build time)
var (
	Version   = "0.2.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdPresent:
		if err := runPresent(args); err != nil {
			fatal(err)
		}
	case cli.CmdNotes:
		if err := runNotes(args); err != nil {
			fatal(err)
		}
	case cli.CmdRelay:
		if err := runRelay(args); err != nil {
			fatal(err)
		}
	case cli.CmdConfig:
		if err := runConfig(args); err != nil {
			fatal(err)
		}
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func loadConfig(args *cli.ArgParser) (*config.Config, error) {
	if path := args.Flag("config"); path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// =============================================================================
// PRESENT
// =============================================================================

func runPresent(args *cli.ArgParser) error {
	deckPath := args.Positional(0)
	if deckPath == "" {
		cli.PrintUsage()
		return fmt.Errorf("no deck file given")
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("presentation mode needs a terminal")
	}

	d, err := deck.Load(deckPath)
	if err != nil {
		return err
	}

	opts := presenter.Options{
		Deck:    d,
		Initial: args.FlagIntOrDefault("start", 1) - 1,
		Config:  cfg.Presenter,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case args.Flag("join") != "":
		// Attach to an existing shared session as a second surface.
		base, id, err := pairing.ParseJoinURL(args.Flag("join"))
		if err != nil {
			return err
		}
		opts.Sync = synclient.NewClient(synclient.NewRelayStore(base), id)
		opts.Session = pairing.Session{ID: id, JoinURL: args.Flag("join")}

	case args.BoolFlag("share"):
		relayURL := args.FlagOrDefault("relay", cfg.Relay.URL)
		store := synclient.NewRelayStore(relayURL)
		svc := pairing.NewService(store, relayURL)
		sess, err := svc.CreateSession(ctx, d.Title)
		if err != nil {
			return fmt.Errorf("share session: %w", err)
		}
		opts.Sync = synclient.NewClient(store, sess.ID)
		opts.Session = sess
		opts.OpenPresenterView = presenter.SpawnNotesView(d.Path, sess.JoinURL)
		fmt.Printf("Session shared: %s\n", sess.JoinURL)
	}

	if opts.Sync != nil {
		if err := opts.Sync.Start(ctx); err != nil {
			return fmt.Errorf("connect session: %w", err)
		}
		if args.Flag("join") != "" {
			// A surface joining mid-session starts on the record's
			// current slide, not slide 0.
			idx, _ := opts.Sync.Known()
			opts.Initial = idx
		}
	}

	m := presenter.New(opts)
	if cfg.Presenter.HotReload && !args.BoolFlag("no-watch") {
		m.WatchDeck(ctx)
	}

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, runErr := p.Run()
	m.Shutdown()
	return runErr
}

// =============================================================================
// NOTES (PRESENTER VIEW)
// =============================================================================

func runNotes(args *cli.ArgParser) error {
	joinURL := args.Flag("join")
	if joinURL == "" {
		return fmt.Errorf("notes requires --join <url>")
	}
	deckPath := args.Positional(0)
	if deckPath == "" {
		return fmt.Errorf("notes requires the deck file as an argument")
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	d, err := deck.Load(deckPath)
	if err != nil {
		return err
	}

	base, id, err := pairing.ParseJoinURL(joinURL)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sync := synclient.NewClient(synclient.NewRelayStore(base), id)
	if err := sync.Start(ctx); err != nil {
		return fmt.Errorf("connect session: %w", err)
	}
	initial, _ := sync.Known()

	m := presenter.New(presenter.Options{
		Deck:      d,
		Initial:   initial,
		Config:    cfg.Presenter,
		Sync:      sync,
		Session:   pairing.Session{ID: id, JoinURL: joinURL},
		NotesView: true,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, runErr := p.Run()
	m.Shutdown()
	return runErr
}

// =============================================================================
// RELAY
// =============================================================================

func runRelay(args *cli.ArgParser) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	dbPath := args.FlagOrDefault("db", cfg.Relay.DBPath)
	if dbPath == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return err
		}
		dbPath, err = config.DefaultDBPath()
		if err != nil {
			return err
		}
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := args.FlagOrDefault("listen", cfg.Relay.Listen)
	fmt.Printf("stagehand relay listening on %s\n", addr)
	return relay.NewServer(store).ListenAndServe(ctx, addr)
}

// =============================================================================
// CONFIG
// =============================================================================

func runConfig(args *cli.ArgParser) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	path, _ := config.ConfigPath()
	fmt.Printf("# %s\n", path)
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}
