// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists relay session records in SQLite, so sessions
// survive a relay restart and a reconnecting surface resumes from the
// record's current value.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/stagehand/internal/synclient"
)

// =============================================================================
// SESSION STORE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id              TEXT PRIMARY KEY,
	presentation_id TEXT NOT NULL,
	slide_index     INTEGER NOT NULL DEFAULT 0,
	laser_enabled   INTEGER NOT NULL DEFAULT 0,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
`

// SessionStore is the relay's durable record store.
type SessionStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) the session database at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*SessionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	// The relay serializes writes per session; a single connection
	// avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SessionStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SessionStore) Close() error {
	return s.db.Close()
}

// Create inserts a new session record.
func (s *SessionStore) Create(ctx context.Context, rec synclient.Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, presentation_id, slide_index, laser_enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PresentationID, rec.CurrentSlideIndex, rec.LaserEnabled,
		rec.CreatedAt, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Get reads one session record.
func (s *SessionStore) Get(ctx context.Context, id string) (synclient.Record, error) {
	var rec synclient.Record
	err := s.db.QueryRowContext(ctx,
		`SELECT id, presentation_id, slide_index, laser_enabled, created_at
		 FROM sessions WHERE id = ?`, id).
		Scan(&rec.ID, &rec.PresentationID, &rec.CurrentSlideIndex,
			&rec.LaserEnabled, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return synclient.Record{}, synclient.ErrSessionNotFound
	}
	if err != nil {
		return synclient.Record{}, fmt.Errorf("query session: %w", err)
	}
	return rec, nil
}

// Apply performs a last-write-wins partial update and returns the record
// after the write. Readers always see either the pre- or post-update
// record, never a torn one: the update is a single statement.
func (s *SessionStore) Apply(ctx context.Context, id string, u synclient.Update) (synclient.Record, error) {
	if u.SlideIndex == nil && u.LaserEnabled == nil {
		return s.Get(ctx, id)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET
			slide_index   = COALESCE(?, slide_index),
			laser_enabled = COALESCE(?, laser_enabled),
			updated_at    = ?
		 WHERE id = ?`,
		nullableInt(u.SlideIndex), nullableBool(u.LaserEnabled),
		time.Now().UTC(), id)
	if err != nil {
		return synclient.Record{}, fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return synclient.Record{}, synclient.ErrSessionNotFound
	}
	return s.Get(ctx, id)
}

// Prune deletes sessions idle for longer than maxIdle and returns how
// many were removed.
func (s *SessionStore) Prune(ctx context.Context, maxIdle time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE updated_at < ?`,
		time.Now().UTC().Add(-maxIdle))
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}
