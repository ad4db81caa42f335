// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package presenter

import (
	"context"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/stagehand/internal/annotation"
	"github.com/jeranaias/stagehand/internal/config"
	"github.com/jeranaias/stagehand/internal/deck"
	"github.com/jeranaias/stagehand/internal/laser"
	"github.com/jeranaias/stagehand/internal/nav"
	"github.com/jeranaias/stagehand/internal/pairing"
	"github.com/jeranaias/stagehand/internal/synclient"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// framePeriod drives the animation tick: trail aging and the
	// control-bar auto-hide run at 20 frames per second.
	framePeriod = 50 * time.Millisecond

	// controlsTimeout hides the control hints after inactivity.
	controlsTimeout = 3 * time.Second

	// syncBuffer bounds queued inbound sync events.
	syncBuffer = 16
)

// =============================================================================
// MESSAGES
// =============================================================================

// frameTickMsg is one animation frame.
type frameTickMsg time.Time

// remoteSlideMsg carries a peer-originated slide change.
type remoteSlideMsg int

// remoteLaserMsg carries a peer-originated laser toggle.
type remoteLaserMsg bool

// deckReloadedMsg carries a fresh parse after the source file changed.
type deckReloadedMsg struct{ deck *deck.Deck }

// warningMsg surfaces a dismissible, non-fatal warning.
type warningMsg string

// =============================================================================
// MODEL
// =============================================================================

// Options configures presentation mode.
type Options struct {
	Deck    *deck.Deck
	Initial int
	Config  config.PresenterConfig

	// Assets resolves asset:// image handles; may be nil.
	Assets deck.AssetResolver

	// Sync is the session sync client; nil runs presenter-only.
	Sync *synclient.Client

	// Session is the pairing info shown in the QR overlay; zero value
	// when no session was shared.
	Session pairing.Session

	// NotesView renders the speaker (presenter-view) layout instead of
	// the audience layout.
	NotesView bool

	// OpenPresenterView launches the secondary surface; may be nil.
	// A returned error is surfaced as a warning, never a failure.
	OpenPresenterView func() error

	// OnExit runs exactly once when presentation mode terminates,
	// whatever the exit path.
	OnExit func()
}

// Model is the presentation mode controller: the only component that
// knows the navigation machine, ink engine, laser overlay, deck renderer
// and sync client all at once.
type Model struct {
	deck     *deck.Deck
	renderer *deck.Renderer
	machine  *nav.Machine
	ink      *annotation.Engine
	pointer  *laser.Overlay
	sync     *synclient.Client
	keys     KeyMap
	cfg      config.PresenterConfig
	opts     Options

	width  int
	height int

	// slideCache holds rendered slides keyed by index; dropped on
	// resize and deck reload.
	slideCache map[int]string

	drawing bool
	tool    annotation.Tool
	laserOn bool

	dragging   bool
	dragStartX int
	dragMoved  bool

	showControls     bool
	controlsDeadline time.Time
	showHelp         bool
	showQR           bool
	warning          string

	startTime time.Time
	syncCh    chan tea.Msg
	quitCh    chan struct{}
	exitOnce  *sync.Once
	qrText    string
}

// New creates the presentation controller. Call Shutdown after the
// program finishes to guarantee cleanup on every exit path.
func New(opts Options) *Model {
	m := &Model{
		deck:       opts.Deck,
		ink:        annotation.NewEngine(),
		pointer:    laser.NewOverlay(),
		sync:       opts.Sync,
		keys:       DefaultKeyMap(),
		cfg:        opts.Config,
		opts:       opts,
		slideCache: make(map[int]string),
		tool:       annotation.ToolPen,
		startTime:  time.Now(),
		syncCh:     make(chan tea.Msg, syncBuffer),
		quitCh:     make(chan struct{}),
		exitOnce:   &sync.Once{},
	}

	// A zero config still presents.
	def := config.Default().Presenter
	if m.cfg.InkColor == "" {
		m.cfg.InkColor = def.InkColor
	}
	if m.cfg.LaserColor == "" {
		m.cfg.LaserColor = def.LaserColor
	}
	if m.cfg.InkWidth <= 0 {
		m.cfg.InkWidth = def.InkWidth
	}

	m.machine = nav.NewMachine(opts.Deck.Count(), opts.Initial, func(newIndex int) {
		// Local transition: the slide already changed on screen;
		// propagation is fire-and-forget.
		if m.sync != nil {
			m.sync.Publish(newIndex)
		}
	})

	if m.sync != nil {
		m.sync.SetHandlers(
			func(i int) { m.postSync(remoteSlideMsg(i)) },
			func(on bool) { m.postSync(remoteLaserMsg(on)) },
		)
		// Adopt the record's laser state when joining mid-session; the
		// seed never raises a change event.
		if _, laser := m.sync.Known(); laser {
			m.laserOn = true
			m.pointer.SetEnabled(true)
		}
	}

	if opts.Session.ID != "" {
		qr, err := pairing.QRText(opts.Session.JoinURL)
		if err != nil {
			log.Printf("presenter: qr render: %v", err)
		} else {
			m.qrText = qr
		}
	}
	return m
}

// postSync queues an inbound sync event for the update loop, dropping
// when the queue is full (a newer state message always follows).
func (m *Model) postSync(msg tea.Msg) {
	select {
	case m.syncCh <- msg:
	case <-m.quitCh:
	default:
	}
}

// WatchDeck starts hot-reloading the deck source file.
func (m *Model) WatchDeck(ctx context.Context) {
	if m.deck.Path == "" {
		return
	}
	err := deck.Watch(ctx, m.deck.Path, func(d *deck.Deck) {
		m.postSync(deckReloadedMsg{deck: d})
	})
	if err != nil {
		log.Printf("presenter: deck watch: %v", err)
	}
}

// Shutdown releases everything presentation mode holds: the sync
// subscription, and the host's exit hook. Safe to call from any exit
// path, any number of times.
func (m *Model) Shutdown() {
	m.exitOnce.Do(func() {
		close(m.quitCh)
		if m.sync != nil {
			m.sync.Close()
		}
		m.pointer.SetEnabled(false)
		m.ink.Clear()
		if m.opts.OnExit != nil {
			m.opts.OnExit()
		}
	})
}

// Index returns the current slide index.
func (m *Model) Index() int {
	return m.machine.Index()
}

// =============================================================================
// TEA LIFECYCLE
// =============================================================================

// Init starts the animation frame loop and the sync event pump.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(frameTick(), m.waitSync())
}

// frameTick schedules the next animation frame.
func frameTick() tea.Cmd {
	return tea.Tick(framePeriod, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

// waitSync delivers the next queued sync event to the update loop.
func (m *Model) waitSync() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.syncCh:
			return msg
		case <-m.quitCh:
			return nil
		}
	}
}
