// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package synclient reconciles slide position and laser state across the
// independent surfaces of one live presentation: the presenter, an
// optional presenter view, and any number of paired remote controls.
//
// All surfaces share a single session record. Writes are last-write-wins
// and fire-and-forget; inbound changes arrive over a subscription and are
// applied locally without being re-published.
package synclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SESSION RECORD
// =============================================================================

// Record is the shared presentation-session record. It is the only piece
// of mutable state shared between surfaces.
type Record struct {
	ID                string    `json:"id"`
	PresentationID    string    `json:"presentation_id"`
	CurrentSlideIndex int       `json:"current_slide_index"`
	LaserEnabled      bool      `json:"laser_enabled"`
	CreatedAt         time.Time `json:"created_at"`
}

// Update is a partial write to a session record. Nil fields are left
// untouched, so a navigation write cannot clobber a laser toggle racing
// with it.
type Update struct {
	SlideIndex   *int  `json:"slide_index,omitempty"`
	LaserEnabled *bool `json:"laser_enabled,omitempty"`
}

// Message is the wire envelope exchanged with the relay.
type Message struct {
	Type   string  `json:"type"`
	Record *Record `json:"record,omitempty"`
	Update *Update `json:"update,omitempty"`
}

// Wire message types.
const (
	// MessageState carries the authoritative record, relay to surface.
	MessageState = "state"
	// MessageUpdate carries a partial write, surface to relay.
	MessageUpdate = "update"
)

// ErrSessionNotFound is returned when a session id does not resolve to a
// record.
var ErrSessionNotFound = errors.New("session not found")

// Store is the narrow contract against the collaborator holding session
// records. Implementations: the relay-backed store for real sessions and
// MemoryStore for tests and same-process surfaces.
type Store interface {
	// CreateSession creates a fresh session record for a presentation.
	// Every call creates a new session; reuse is the caller's concern.
	CreateSession(ctx context.Context, presentationID string) (Record, error)

	// Get reads the current record.
	Get(ctx context.Context, sessionID string) (Record, error)

	// Publish applies a partial write. Last write wins.
	Publish(ctx context.Context, sessionID string, u Update) error

	// Subscribe registers fn for every record change until the returned
	// unsubscribe function is called. Subscribers receive the record's
	// then-current value; missed intermediate states are not replayed.
	Subscribe(ctx context.Context, sessionID string, fn func(Record)) (func(), error)
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore is an in-process Store. Surfaces running in the same
// process (and the test suite) sync through it without a relay.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memSession
}

type memSession struct {
	record Record
	nextID int
	subs   map[int]func(Record)
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*memSession)}
}

// CreateSession creates a fresh session record.
func (s *MemoryStore) CreateSession(_ context.Context, presentationID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Record{
		ID:             uuid.NewString(),
		PresentationID: presentationID,
		CreatedAt:      time.Now().UTC(),
	}
	s.sessions[rec.ID] = &memSession{
		record: rec,
		subs:   make(map[int]func(Record)),
	}
	return rec, nil
}

// Get reads the current record.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return Record{}, ErrSessionNotFound
	}
	return sess.record, nil
}

// Publish applies a partial write and fans the new record out to every
// subscriber. Readers always observe a whole record, never a torn one.
func (s *MemoryStore) Publish(_ context.Context, sessionID string, u Update) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	if u.SlideIndex != nil {
		sess.record.CurrentSlideIndex = *u.SlideIndex
	}
	if u.LaserEnabled != nil {
		sess.record.LaserEnabled = *u.LaserEnabled
	}
	rec := sess.record
	subs := make([]func(Record), 0, len(sess.subs))
	for _, fn := range sess.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(rec)
	}
	return nil
}

// Subscribe registers fn for record changes.
func (s *MemoryStore) Subscribe(_ context.Context, sessionID string, fn func(Record)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	id := sess.nextID
	sess.nextID++
	sess.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sess, ok := s.sessions[sessionID]; ok {
			delete(sess.subs, id)
		}
	}, nil
}
