package ws

import (
	"go.uber.org/zap"
)

// Register adds a client to the hub and reports the connection to the handler
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if _, exists := h.clients[c.ID]; exists {
		h.mu.Unlock()
		h.log.Warn("client registered twice", zap.String("conn", c.ID))
		return
	}
	h.clients[c.ID] = c
	h.mu.Unlock()

	if h.handler != nil {
		if err := h.handler.Connect(c.ID); err != nil {
			h.log.Warn("connect rejected by handler", zap.String("conn", c.ID), zap.Error(err))
		}
	}
}

// Unregister reports the disconnect to the handler, then drops the client
// from every group and closes its send queue. Safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.RLock()
	_, exists := h.clients[c.ID]
	h.mu.RUnlock()
	if !exists {
		return
	}

	// The handler may still send to the remaining members, so the client is
	// removed only after it returns.
	if h.handler != nil {
		h.handler.Disconnect(c.ID)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; !ok {
		return // Client already unregistered, skip
	}
	delete(h.clients, c.ID)
	h.groups.removeConn(c.ID)
	close(c.send)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
