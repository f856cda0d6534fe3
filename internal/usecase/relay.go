package usecase

import (
	"go.uber.org/zap"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// RouteEvent handles a game_event from a lobby member. start_game,
// game_ended and update_user_data change lobby state; every other type is
// relayed: host events go to all other members, member events go to the host
// only. Events that cannot be routed are logged and dropped.
func (c *Coordinator) RouteEvent(connID string, ev domain.GameEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.registry.Get(connID)
	if !ok || !s.InLobby() {
		c.log.Warn("game event from session outside any lobby",
			zap.String("conn", connID),
			zap.String("type", ev.Type),
		)
		return
	}
	lobbyID := s.LobbyID

	switch ev.Type {
	case domain.GameEventStartGame:
		if !s.IsHost {
			c.log.Warn("start_game from non-host", zap.String("conn", connID), zap.String("lobby", lobbyID))
			return
		}
		c.registry.mutateLobby(lobbyID, func(m *domain.Session) {
			m.GameStarted = true
		})
		c.transport.SendToGroup(lobbyID,
			domain.NewGameEventEnvelope(domain.GameEventGameStarted, map[string]interface{}{}), "")
		c.log.Info("game started", zap.String("lobby", lobbyID))

	case domain.GameEventGameEnded:
		// Any member may end the game; only start_game is host-only.
		c.registry.mutateLobby(lobbyID, func(m *domain.Session) {
			m.GameStarted = false
		})
		c.log.Info("game ended", zap.String("lobby", lobbyID), zap.String("conn", connID))

	case domain.GameEventUpdateUserData:
		fields, err := domain.DecodeObject(ev.Data)
		if err != nil {
			c.log.Warn("update_user_data with non-object payload", zap.String("conn", connID), zap.Error(err))
			return
		}
		if _, err := c.registry.UpdateFields(connID, fields); err != nil {
			c.log.Warn("update_user_data failed", zap.String("conn", connID), zap.Error(err))
			return
		}
		c.broadcastMembers(lobbyID)

	case "":
		c.log.Warn("game event without type", zap.String("conn", connID))

	default:
		c.relay(s, lobbyID, ev)
	}
}

// relay forwards an application event along the host star. Caller must hold c.mu.
func (c *Coordinator) relay(sender domain.Session, lobbyID string, ev domain.GameEvent) {
	payload, err := domain.DecodeObject(ev.Data)
	if err != nil {
		c.log.Warn("game event with non-object payload",
			zap.String("conn", sender.ID),
			zap.String("type", ev.Type),
			zap.Error(err),
		)
		return
	}
	payload[domain.SenderKey] = quoteID(sender.ID)

	view := c.registry.Members(lobbyID)
	if view.Empty() || view.HostID == "" {
		return
	}

	msg := domain.NewGameEventEnvelope(ev.Type, payload)
	if view.HostID == sender.ID {
		c.transport.SendToGroup(lobbyID, msg, sender.ID)
	} else {
		c.transport.SendToConnection(view.HostID, msg)
	}
	c.log.Debug("event relayed",
		zap.String("lobby", lobbyID),
		zap.String("from", sender.ID),
		zap.String("type", ev.Type),
		zap.Bool("from_host", view.HostID == sender.ID),
	)
}
