// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package synclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// =============================================================================
// RELAY-BACKED STORE
// =============================================================================

const (
	relayHTTPTimeout = 10 * time.Second
	reconnectMin     = time.Second
	reconnectMax     = 15 * time.Second
)

// RelayStore is a Store backed by a stagehand relay server: session CRUD
// over HTTP, live updates over a WebSocket per session.
//
// On transport loss the subscription reconnects with backoff and resumes
// from the record's then-current value; intermediate states missed while
// disconnected are not replayed. Publishes during an outage fail (and
// are swallowed upstream by the sync client), keeping local navigation
// fully functional.
type RelayStore struct {
	baseURL string
	httpc   *http.Client

	mu    sync.Mutex
	conns map[string]*relayConn
}

// relayConn is the per-session WebSocket. Writes are serialized; the
// subscribe loop is the only reader.
type relayConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// NewRelayStore creates a store talking to the relay at baseURL
// (e.g. "http://localhost:8765").
func NewRelayStore(baseURL string) *RelayStore {
	return &RelayStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: relayHTTPTimeout},
		conns:   make(map[string]*relayConn),
	}
}

// CreateSession creates a fresh session record on the relay.
func (s *RelayStore) CreateSession(ctx context.Context, presentationID string) (Record, error) {
	body, _ := json.Marshal(map[string]string{"presentation_id": presentationID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/api/sessions", bytes.NewReader(body))
	if err != nil {
		return Record{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.doRecord(req)
}

// Get reads the current session record from the relay.
func (s *RelayStore) Get(ctx context.Context, sessionID string) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/api/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return Record{}, err
	}
	return s.doRecord(req)
}

func (s *RelayStore) doRecord(req *http.Request) (Record, error) {
	resp, err := s.httpc.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("relay request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Record{}, ErrSessionNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Record{}, fmt.Errorf("relay returned %s", resp.Status)
	}
	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

// Publish sends a partial write over the session's WebSocket. Fails when
// disconnected; the caller treats that as a transient sync failure.
func (s *RelayStore) Publish(ctx context.Context, sessionID string, u Update) error {
	conn, err := s.ensureConn(ctx, sessionID)
	if err != nil {
		return err
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.ws == nil {
		return fmt.Errorf("session %s: not connected", sessionID)
	}
	if err := conn.ws.WriteJSON(Message{Type: MessageUpdate, Update: &u}); err != nil {
		return fmt.Errorf("session %s: write: %w", sessionID, err)
	}
	return nil
}

// Subscribe dials the session's WebSocket and delivers every state
// message to fn until unsubscribed. Reconnects with capped backoff.
func (s *RelayStore) Subscribe(ctx context.Context, sessionID string, fn func(Record)) (func(), error) {
	conn, err := s.ensureConn(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sctx, cancel := context.WithCancel(context.Background())
	go s.readLoop(sctx, sessionID, conn, fn)

	return func() {
		cancel()
		conn.mu.Lock()
		if conn.ws != nil {
			conn.ws.Close()
			conn.ws = nil
		}
		conn.mu.Unlock()
	}, nil
}

// readLoop reads state messages, redialing on transport loss.
func (s *RelayStore) readLoop(ctx context.Context, sessionID string, conn *relayConn, fn func(Record)) {
	backoff := reconnectMin
	for {
		conn.mu.Lock()
		ws := conn.ws
		conn.mu.Unlock()

		if ws == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > reconnectMax {
				backoff = reconnectMax
			}
			if err := s.dial(ctx, sessionID, conn); err != nil {
				log.Printf("sync: redial session %s: %v", sessionID, err)
				continue
			}
			backoff = reconnectMin
			continue
		}

		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("sync: session %s connection lost: %v", sessionID, err)
			conn.mu.Lock()
			ws.Close()
			conn.ws = nil
			conn.mu.Unlock()
			continue
		}
		if msg.Type == MessageState && msg.Record != nil {
			fn(*msg.Record)
		}
	}
}

// ensureConn returns the session's connection, dialing if needed.
func (s *RelayStore) ensureConn(ctx context.Context, sessionID string) (*relayConn, error) {
	s.mu.Lock()
	conn, ok := s.conns[sessionID]
	if !ok {
		conn = &relayConn{}
		s.conns[sessionID] = conn
	}
	s.mu.Unlock()

	conn.mu.Lock()
	dialed := conn.ws != nil
	conn.mu.Unlock()
	if dialed {
		return conn, nil
	}
	if err := s.dial(ctx, sessionID, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// dial opens the session WebSocket.
func (s *RelayStore) dial(ctx context.Context, sessionID string, conn *relayConn) error {
	wsURL := httpToWS(s.baseURL) + "/ws/" + url.PathEscape(sessionID)
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return ErrSessionNotFound
		}
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	conn.mu.Lock()
	conn.ws = ws
	conn.mu.Unlock()
	return nil
}

func httpToWS(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return "ws://" + base
}
