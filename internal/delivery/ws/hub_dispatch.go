package ws

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// Dispatch decodes one inbound frame and hands it to the handler.
// Frames that cannot be decoded are dropped.
func (h *Hub) Dispatch(connID string, in domain.Inbound) {
	if h.handler == nil {
		return
	}

	switch in.Event {
	case domain.EventJoinLobby:
		var req domain.JoinRequest
		if !h.decode(connID, in, &req) {
			return
		}
		req.LobbyID = NormalizeLobbyCode(req.LobbyID)
		if req.LobbyID != "" && !IsValidLobbyCode(req.LobbyID) {
			// Still forwarded so the client gets the not-found reply
			h.log.Debug("malformed lobby code", zap.String("conn", connID), zap.String("lobby", req.LobbyID))
		}
		req.PlayerName = domain.SanitizePlayerName(req.PlayerName)
		h.handler.Join(connID, req)

	case domain.EventLeaveLobby:
		var req domain.LeaveRequest
		if !h.decode(connID, in, &req) {
			return
		}
		req.LobbyID = NormalizeLobbyCode(req.LobbyID)
		h.handler.Leave(connID, req)

	case domain.EventGameEvent:
		var ev domain.GameEvent
		if !h.decode(connID, in, &ev) {
			return
		}
		h.handler.RouteEvent(connID, ev)

	default:
		h.log.Debug("unknown event", zap.String("conn", connID), zap.String("event", string(in.Event)))
	}
}

func (h *Hub) decode(connID string, in domain.Inbound, v interface{}) bool {
	if len(in.Data) == 0 || string(in.Data) == "null" {
		return true
	}
	if err := json.Unmarshal(in.Data, v); err != nil {
		h.log.Debug("malformed payload",
			zap.String("conn", connID),
			zap.String("event", string(in.Event)),
			zap.Error(err),
		)
		return false
	}
	return true
}
