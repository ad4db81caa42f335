// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package relay

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jeranaias/stagehand/internal/synclient"
)

// =============================================================================
// SESSION HUB
// =============================================================================

// sendBuffer is the per-client outbound queue. A client that cannot
// drain this many state messages is dropped rather than allowed to stall
// the fan-out.
const sendBuffer = 16

// hub fans session state out to every connected surface of one session.
type hub struct {
	mu      sync.Mutex
	clients map[*hubClient]struct{}
}

// hubClient is one connected WebSocket surface.
type hubClient struct {
	ws   *websocket.Conn
	send chan synclient.Message
	once sync.Once
}

func newHub() *hub {
	return &hub{clients: make(map[*hubClient]struct{})}
}

// add registers a surface and starts its write pump.
func (h *hub) add(ws *websocket.Conn) *hubClient {
	c := &hubClient{
		ws:   ws,
		send: make(chan synclient.Message, sendBuffer),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	return c
}

// remove unregisters a surface and closes its connection.
func (h *hub) remove(c *hubClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

// empty reports whether no surfaces remain connected.
func (h *hub) empty() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) == 0
}

// broadcast queues the authoritative record for every connected surface,
// including the writer: its sync client recognizes the echo and drops it.
func (h *hub) broadcast(rec synclient.Record) {
	msg := synclient.Message{Type: synclient.MessageState, Record: &rec}

	h.mu.Lock()
	var slow []*hubClient
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		delete(h.clients, c)
	}
	h.mu.Unlock()

	for _, c := range slow {
		log.Printf("relay: dropping slow client")
		c.close()
	}
}

// writePump drains the send queue onto the socket.
func (c *hubClient) writePump() {
	for msg := range c.send {
		if err := c.ws.WriteJSON(msg); err != nil {
			return
		}
	}
}

// close shuts the socket and the send queue exactly once.
func (c *hubClient) close() {
	c.once.Do(func() {
		close(c.send)
		c.ws.Close()
	})
}
