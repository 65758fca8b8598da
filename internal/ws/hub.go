package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub owns the board registry: board id -> set of connected clients. All
// membership changes go through Join/Leave so they are safe to call
// concurrently with broadcasts.
type Hub struct {
	mu     sync.RWMutex
	boards map[int64]map[*Client]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{boards: make(map[int64]map[*Client]struct{})}
}

// Join adds a client to its board's group.
func (h *Hub) Join(c *Client) {
	h.mu.Lock()
	group, ok := h.boards[c.boardID]
	if !ok {
		group = make(map[*Client]struct{})
		h.boards[c.boardID] = group
	}
	group[c] = struct{}{}
	h.mu.Unlock()
}

// Leave removes a client from its board's group and closes its send channel.
// Safe to call for a client that already left.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	if group, ok := h.boards[c.boardID]; ok {
		if _, member := group[c]; member {
			delete(group, c)
			c.closeSend()
		}
		if len(group) == 0 {
			delete(h.boards, c.boardID)
		}
	}
	h.mu.Unlock()
}

// Broadcast delivers an envelope to every client joined to the board's
// group, including the originator. Delivery is at-most-once; clients whose
// send buffer is full are dropped from the group.
func (h *Hub) Broadcast(boardID int64, env OutEnvelope) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Error("failed to marshal broadcast envelope", "error", err, "type", env.Type)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.boards[boardID]))
	for c := range h.boards[boardID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.trySend(data) {
			// Backed up or already closed — disconnect it.
			h.Leave(c)
		}
	}
}

// Count returns the number of clients joined to the board's group.
func (h *Hub) Count(boardID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.boards[boardID])
}

// CloseAll removes every client from every group. Used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for boardID, group := range h.boards {
		for c := range group {
			c.closeSend()
			delete(group, c)
		}
		delete(h.boards, boardID)
	}
}
