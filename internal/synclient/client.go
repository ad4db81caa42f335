// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package synclient

import (
	"context"
	"log"
	"sync"

	"golang.org/x/time/rate"
)

// =============================================================================
// SYNC CLIENT
// =============================================================================

// publishRate bounds outbound writes. Rapid navigation (a held-down
// arrow key) coalesces into the latest pending value rather than queuing
// a write per keypress; the final value is always flushed.
var publishRate = rate.Limit(20)

// Client keeps one surface's slide index and laser flag reconciled with
// the shared session record.
//
// Outbound writes are fire-and-forget: Publish and PublishLaser return
// immediately and failures are logged, never surfaced. Local navigation
// must never block or error out because a sync write failed.
//
// Inbound record changes raise the SetHandlers callbacks only when the
// value differs from the locally-known one, which also suppresses the
// echo of this surface's own writes.
type Client struct {
	store     Store
	sessionID string

	mu            sync.Mutex
	onSlideChange func(newIndex int)
	onLaserChange func(enabled bool)
	knownIndex    int
	knownLaser    bool
	pending       Update

	kick    chan struct{}
	limiter *rate.Limiter
	unsub   func()
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewClient creates a sync client for an existing session.
func NewClient(store Store, sessionID string) *Client {
	return &Client{
		store:     store,
		sessionID: sessionID,
		kick:      make(chan struct{}, 1),
		limiter:   rate.NewLimiter(publishRate, 1),
	}
}

// SessionID returns the session this client is attached to.
func (c *Client) SessionID() string {
	return c.sessionID
}

// SetHandlers installs the remote-change callbacks. onSlide is invoked
// for remote-originated slide changes and must apply the change locally
// without re-publishing; onLaser likewise for laser toggles. Safe to
// call before or after Start; the subscription goroutine reads the
// handlers under the same lock.
func (c *Client) SetHandlers(onSlide func(newIndex int), onLaser func(enabled bool)) {
	c.mu.Lock()
	c.onSlideChange = onSlide
	c.onLaserChange = onLaser
	c.mu.Unlock()
}

// Known returns the record values this client last observed. After
// Start this is the record's current state, so a surface joining an
// in-progress session can adopt the authoritative slide and laser
// state instead of starting from zero.
func (c *Client) Known() (slideIndex int, laserEnabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.knownIndex, c.knownLaser
}

// Start reads the record's current value, subscribes for changes, and
// starts the outbound writer. The initial read seeds the locally-known
// values so startup does not fire a spurious change event.
func (c *Client) Start(ctx context.Context) error {
	rec, err := c.store.Get(ctx, c.sessionID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.knownIndex = rec.CurrentSlideIndex
	c.knownLaser = rec.LaserEnabled
	c.started = true
	c.mu.Unlock()

	unsub, err := c.store.Subscribe(ctx, c.sessionID, c.handleRecord)
	if err != nil {
		return err
	}
	c.unsub = unsub

	wctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.wg.Add(1)
	go c.writeLoop(wctx)
	return nil
}

// Close stops the subscription and the outbound writer. Pending writes
// are dropped; the session record outlives this surface.
func (c *Client) Close() {
	if c.unsub != nil {
		c.unsub()
		c.unsub = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.wg.Wait()
}

// =============================================================================
// OUTBOUND
// =============================================================================

// Publish records a local slide change for best-effort propagation.
// Never blocks and never fails from the caller's point of view.
func (c *Client) Publish(index int) {
	c.mu.Lock()
	c.knownIndex = index
	i := index
	c.pending.SlideIndex = &i
	c.mu.Unlock()
	c.wake()
}

// PublishLaser records a local laser toggle for best-effort propagation.
func (c *Client) PublishLaser(enabled bool) {
	c.mu.Lock()
	c.knownLaser = enabled
	e := enabled
	c.pending.LaserEnabled = &e
	c.mu.Unlock()
	c.wake()
}

func (c *Client) wake() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

// writeLoop drains coalesced pending updates at the publish rate.
func (c *Client) writeLoop(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.kick:
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return
		}

		c.mu.Lock()
		u := c.pending
		c.pending = Update{}
		c.mu.Unlock()

		if u.SlideIndex == nil && u.LaserEnabled == nil {
			continue
		}
		if err := c.store.Publish(ctx, c.sessionID, u); err != nil {
			// Transient sync failure: swallow. The presentation keeps
			// running presenter-only until the store recovers.
			log.Printf("sync: publish failed for session %s: %v", c.sessionID, err)
		}
	}
}

// =============================================================================
// INBOUND
// =============================================================================

// handleRecord reconciles an inbound record against locally-known state.
// Equal values (including echoes of this surface's own writes) are
// dropped; changed values update known state before the callback runs,
// so the handler cannot observe the event twice.
func (c *Client) handleRecord(rec Record) {
	var slideCB func(int)
	var laserCB func(bool)
	var newIndex int
	var newLaser bool

	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	if rec.CurrentSlideIndex != c.knownIndex {
		c.knownIndex = rec.CurrentSlideIndex
		newIndex = rec.CurrentSlideIndex
		slideCB = c.onSlideChange
	}
	if rec.LaserEnabled != c.knownLaser {
		c.knownLaser = rec.LaserEnabled
		newLaser = rec.LaserEnabled
		laserCB = c.onLaserChange
	}
	c.mu.Unlock()

	if slideCB != nil {
		slideCB(newIndex)
	}
	if laserCB != nil {
		laserCB(newLaser)
	}
}
