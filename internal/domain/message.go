package domain

import (
	"encoding/json"
)

// EventName identifies a frame on the socket
type EventName string

const (
	// Client -> server
	EventJoinLobby  EventName = "join_lobby"
	EventLeaveLobby EventName = "leave_lobby"
	EventGameEvent  EventName = "game_event"

	// Server -> client
	EventConnected         EventName = "connected"          // Carries the connection id
	EventJoinLobbySuccess  EventName = "join_lobby_success" // Join accepted
	EventJoinLobbyFailed   EventName = "join_lobby_failed"  // Join rejected with reason
	EventLeaveLobbySuccess EventName = "leave_lobby_success"
)

// Game event types the relay handles itself. Anything else is forwarded.
const (
	GameEventStartGame         = "start_game"
	GameEventGameEnded         = "game_ended"
	GameEventUpdateUserData    = "update_user_data"
	GameEventGameStarted       = "game_started"
	GameEventPlayerListChanged = "player_list_changed"
)

// SenderKey is the reserved payload key carrying the sender's connection id
const SenderKey = "user_id"

// Envelope is one outbound frame
type Envelope struct {
	Event EventName   `json:"event"`
	Data  interface{} `json:"data"`
}

// Inbound is one frame received from a client
type Inbound struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinRequest is the payload of join_lobby. Nil limits mean "use the default".
type JoinRequest struct {
	LobbyID    string    `json:"lobby_id,omitempty"`
	PlayerName string    `json:"player_name,omitempty"`
	GameID     CompatKey `json:"game_id"`
	LevelID    CompatKey `json:"level_id"`
	MinPlayers *int      `json:"min_players,omitempty"`
	MaxPlayers *int      `json:"max_players,omitempty"`
}

// Signature returns the (game, level) pair requested
func (r JoinRequest) Signature() Signature {
	return Signature{GameID: r.GameID, LevelID: r.LevelID}
}

// LeaveRequest is the payload of leave_lobby
type LeaveRequest struct {
	LobbyID string `json:"lobby_id"`
}

// GameEvent is both the inbound payload of game_event and the outbound relay shape
type GameEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ConnectedPayload tells a client its own connection id
type ConnectedPayload struct {
	UserID string `json:"user_id"`
}

// JoinSuccessPayload is sent to the joiner on success
type JoinSuccessPayload struct {
	LobbyID string `json:"lobby_id"`
}

// JoinFailedPayload is sent to the joiner on failure
type JoinFailedPayload struct {
	Error string `json:"error"`
}

// LeaveSuccessPayload acknowledges an explicit leave
type LeaveSuccessPayload struct {
	LobbyID string `json:"lobby_id"`
}

// PlayerListPayload is the full membership snapshot
type PlayerListPayload struct {
	Users   map[string]Session `json:"users"`
	HostID  string             `json:"host_id"`
	LobbyID string             `json:"lobby_id"`
}

// OutboundGameEvent wraps a typed payload in a game_event frame
type OutboundGameEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewGameEventEnvelope builds a game_event frame
func NewGameEventEnvelope(eventType string, data interface{}) Envelope {
	return Envelope{
		Event: EventGameEvent,
		Data:  OutboundGameEvent{Type: eventType, Data: data},
	}
}

// NewPlayerListEnvelope builds the player_list_changed frame for a lobby view
func NewPlayerListEnvelope(view LobbyView) Envelope {
	return NewGameEventEnvelope(GameEventPlayerListChanged, PlayerListPayload{
		Users:   view.MemberMap(),
		HostID:  view.HostID,
		LobbyID: view.ID,
	})
}

// DecodeObject parses a JSON object payload. Empty input and null yield an empty map.
func DecodeObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage)
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = make(map[string]json.RawMessage)
	}
	return out, nil
}
