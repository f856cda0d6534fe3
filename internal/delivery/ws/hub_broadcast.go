package ws

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// SendToGroup delivers msg to every subscriber of group except exclude
func (h *Hub) SendToGroup(group string, msg domain.Envelope, exclude string) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	h.groups.each(group, func(connID string) {
		if connID == exclude {
			return
		}
		if c, ok := h.clients[connID]; ok {
			h.deliver(c, data)
		}
	})
}

// SendToConnection delivers msg to a single connection
func (h *Hub) SendToConnection(connID string, msg domain.Envelope) {
	data, ok := h.encode(msg)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, exists := h.clients[connID]
	if !exists {
		h.log.Debug("send to unknown connection", zap.String("conn", connID), zap.String("event", string(msg.Event)))
		return
	}
	h.deliver(c, data)
}

// deliver queues data on a client. Caller must hold at least RLock so the
// send channel cannot be closed underneath.
func (h *Hub) deliver(c *Client, data []byte) {
	if !c.Send(data) {
		h.log.Warn("client send buffer full, dropping message", zap.String("conn", c.ID))
	}
}

func (h *Hub) encode(msg domain.Envelope) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to encode message", zap.String("event", string(msg.Event)), zap.Error(err))
		return nil, false
	}
	return data, true
}
