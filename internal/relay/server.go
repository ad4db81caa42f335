// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package relay provides the session relay server.
//
// The relay holds the shared PresentationSession records and fans slide
// and laser updates out to every connected surface over WebSockets.
//
// Endpoints:
//   - POST /api/sessions      - create a session record
//   - GET  /api/sessions/{id} - read a session record
//   - GET  /ws/{id}           - WebSocket: state out, updates in
//   - GET  /join/{id}         - browser remote-control page
//   - GET  /health            - health check
//
// Conflict policy is last write wins at the record layer; the relay adds
// no ordering or merge logic beyond serializing writes per session.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/jeranaias/stagehand/internal/storage"
	"github.com/jeranaias/stagehand/internal/synclient"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultAddr is the default relay listen address.
	DefaultAddr = ":8765"

	// maxRequestBody bounds API request bodies.
	maxRequestBody = 64 * 1024

	// pruneInterval is how often idle sessions are swept.
	pruneInterval = time.Hour

	// maxSessionIdle is how long an untouched session record is kept.
	maxSessionIdle = 24 * time.Hour
)

// =============================================================================
// SERVER
// =============================================================================

// Server is the relay HTTP/WebSocket server.
type Server struct {
	store    *storage.SessionStore
	upgrader websocket.Upgrader

	mu   sync.Mutex
	hubs map[string]*hub
}

// NewServer creates a relay server over the given session store.
func NewServer(store *storage.SessionStore) *Server {
	return &Server{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Controllers join from phone browsers on the LAN; the
			// session id in the URL is the admission token.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		hubs: make(map[string]*hub),
	}
}

// Router builds the relay's route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/sessions", s.handleCreateSession).Methods(http.MethodPost)
	r.HandleFunc("/api/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/ws/{id}", s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/join/{id}", s.handleJoinPage).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

// ListenAndServe runs the relay until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  0, // WebSockets are long-lived
		WriteTimeout: 0,
	}

	go s.pruneLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("relay: listening on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// pruneLoop sweeps idle session records.
func (s *Server) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.Prune(ctx, maxSessionIdle)
			if err != nil {
				log.Printf("relay: prune: %v", err)
			} else if n > 0 {
				log.Printf("relay: pruned %d idle sessions", n)
			}
		}
	}
}

// =============================================================================
// SESSION API
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PresentationID string `json:"presentation_id"`
	}
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PresentationID == "" {
		http.Error(w, "presentation_id is required", http.StatusBadRequest)
		return
	}

	rec := synclient.Record{
		ID:             uuid.NewString(),
		PresentationID: req.PresentationID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.Create(r.Context(), rec); err != nil {
		log.Printf("relay: create session: %v", err)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	log.Printf("relay: created session %s for presentation %s", rec.ID, rec.PresentationID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, synclient.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("relay: get session: %v", err)
		http.Error(w, "failed to read session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// WEBSOCKET
// =============================================================================

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.store.Get(r.Context(), id)
	if errors.Is(err, synclient.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to read session", http.StatusInternalServerError)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("relay: upgrade: %v", err)
		return
	}

	h := s.hubFor(id)
	c := h.add(ws)

	// Seed the new surface with the authoritative state. A surface that
	// reconnects resumes from here; missed states are not replayed.
	c.send <- synclient.Message{Type: synclient.MessageState, Record: &rec}

	s.readLoop(id, h, c)
}

// readLoop applies inbound updates until the surface disconnects.
func (s *Server) readLoop(id string, h *hub, c *hubClient) {
	defer func() {
		h.remove(c)
		s.releaseHub(id)
	}()

	for {
		var msg synclient.Message
		if err := c.ws.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != synclient.MessageUpdate || msg.Update == nil {
			continue
		}

		rec, err := s.store.Apply(context.Background(), id, *msg.Update)
		if err != nil {
			log.Printf("relay: apply update for %s: %v", id, err)
			continue
		}
		h.broadcast(rec)
	}
}

// hubFor returns (creating if needed) the session's hub.
func (s *Server) hubFor(id string) *hub {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hubs[id]
	if !ok {
		h = newHub()
		s.hubs[id] = h
	}
	return h
}

// releaseHub drops a hub once its last surface disconnects.
func (s *Server) releaseHub(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.hubs[id]; ok && h.empty() {
		delete(s.hubs, id)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
