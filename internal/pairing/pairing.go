// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pairing creates presentation sessions and encodes their join
// URLs as scannable QR codes, so a phone or second laptop can attach as
// a remote control.
//
// A paired controller is just another sync client writing to the same
// session record; it has no elevated privilege over the presenter.
package pairing

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/boombuler/barcode/qr"

	"github.com/jeranaias/stagehand/internal/synclient"
)

// =============================================================================
// PAIRING SERVICE
// =============================================================================

// Session describes a created pairing session.
type Session struct {
	// ID is the opaque session identifier.
	ID string
	// JoinURL opens the remote-control surface for this session.
	JoinURL string
}

// Service creates sessions against a session store and renders join
// codes for display.
type Service struct {
	store   synclient.Store
	baseURL string
}

// NewService creates a pairing service. baseURL is the externally
// reachable relay address embedded in join URLs.
func NewService(store synclient.Store, baseURL string) *Service {
	return &Service{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CreateSession creates a fresh session for the given presentation.
// Every call creates a new session; callers wanting to keep an audience
// connected across restarts must reuse the previous id themselves.
func (s *Service) CreateSession(ctx context.Context, presentationID string) (Session, error) {
	rec, err := s.store.CreateSession(ctx, presentationID)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return Session{
		ID:      rec.ID,
		JoinURL: s.JoinURL(rec.ID),
	}, nil
}

// JoinURL returns the remote-control URL embedding the session id.
func (s *Service) JoinURL(sessionID string) string {
	return s.baseURL + "/join/" + sessionID
}

// ParseJoinURL splits a join URL back into the relay base URL and the
// session id, so a scanned or pasted URL is enough to attach.
func ParseJoinURL(raw string) (baseURL, sessionID string, err error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("parse join url %q: not an absolute URL", raw)
	}
	const marker = "/join/"
	i := strings.LastIndex(u.Path, marker)
	if i < 0 || i+len(marker) >= len(u.Path) {
		return "", "", fmt.Errorf("parse join url %q: missing /join/<session>", raw)
	}
	sessionID = u.Path[i+len(marker):]
	baseURL = u.Scheme + "://" + u.Host + strings.TrimRight(u.Path[:i], "/")
	return baseURL, sessionID, nil
}

// =============================================================================
// QR RENDERING
// =============================================================================

// QRText renders the join URL as a QR code drawn with terminal block
// characters, two modules per character cell (upper/lower half blocks)
// so the code stays roughly square on screen.
func QRText(joinURL string) (string, error) {
	code, err := qr.Encode(joinURL, qr.M, qr.Auto)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}

	bounds := code.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	dark := func(x, y int) bool {
		if y < 0 || y >= h {
			// Quiet zone above/below the code.
			return false
		}
		r, g, b, _ := code.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
		return r == 0 && g == 0 && b == 0
	}

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top, bottom := dark(x, y), dark(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
