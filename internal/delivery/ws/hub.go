package ws

import (
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// Handler receives connection lifecycle callbacks and decoded client events
type Handler interface {
	Connect(connID string) error
	Join(connID string, req domain.JoinRequest) (string, error)
	Leave(connID string, req domain.LeaveRequest) error
	Disconnect(connID string) error
	RouteEvent(connID string, ev domain.GameEvent)
}

// Hub maintains the set of active clients and the groups they are subscribed to
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  *groupSet

	handler    Handler
	log        *zap.Logger
	eventLimit rate.Limit
	eventBurst int
}

// NewHub creates a new Hub
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		groups:     newGroupSet(),
		log:        log,
		eventLimit: rate.Inf,
		eventBurst: 1,
	}
}

// SetHandler sets the receiver of client callbacks
func (h *Hub) SetHandler(handler Handler) {
	h.handler = handler
}

// SetEventLimit caps inbound messages per connection. Zero disables the cap.
func (h *Hub) SetEventLimit(r rate.Limit, burst int) {
	if r <= 0 {
		r = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	h.eventLimit = r
	h.eventBurst = burst
}

// Subscribe adds a connection to a group. Unknown connections are ignored.
func (h *Hub) Subscribe(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[connID]; !ok {
		h.log.Debug("subscribe for unknown connection", zap.String("conn", connID), zap.String("group", group))
		return
	}
	h.groups.add(group, connID)
}

// Unsubscribe removes a connection from a group
func (h *Hub) Unsubscribe(connID, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.groups.remove(group, connID)
}

// GroupSize returns the number of subscribers of a group
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.groups.size(group)
}

// InGroup reports whether a connection is subscribed to a group
func (h *Hub) InGroup(connID, group string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.groups.has(group, connID)
}
