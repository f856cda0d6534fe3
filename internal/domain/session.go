package domain

import (
	"bytes"
	"encoding/json"
)

// CompatKey is an opaque game or level identifier used for matchmaking.
// The zero value means unset. Keys are compared by decoded value: 1 and 1.0
// are the same key, while "3" and 3 are different keys.
type CompatKey struct {
	raw string
}

// NewCompatKey returns a key holding a JSON string value
func NewCompatKey(s string) CompatKey {
	b, _ := json.Marshal(s)
	return CompatKey{raw: string(b)}
}

// ParseCompatKey builds a key from raw JSON. Empty input and null yield the zero key.
func ParseCompatKey(raw json.RawMessage) (CompatKey, error) {
	var k CompatKey
	err := k.UnmarshalJSON(raw)
	return k, err
}

// IsSet reports whether the key carries a value
func (k CompatKey) IsSet() bool {
	return k.raw != ""
}

// Equal treats two unset keys as equal; anything else needs an exact match
func (k CompatKey) Equal(other CompatKey) bool {
	return k.raw == other.raw
}

func (k CompatKey) String() string {
	if !k.IsSet() {
		return "<none>"
	}
	return k.raw
}

func (k CompatKey) MarshalJSON() ([]byte, error) {
	if !k.IsSet() {
		return []byte("null"), nil
	}
	return []byte(k.raw), nil
}

func (k *CompatKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		k.raw = ""
		return nil
	}
	// Re-encoding the decoded value gives one canonical form per value:
	// numbers normalized, strings unescaped, object keys sorted.
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	canonical, err := json.Marshal(v)
	if err != nil {
		return err
	}
	k.raw = string(canonical)
	return nil
}

// Signature is the (game, level) pair a lobby is matched on
type Signature struct {
	GameID  CompatKey `json:"game_id"`
	LevelID CompatKey `json:"level_id"`
}

// Matches reports whether two signatures are compatible
func (s Signature) Matches(other Signature) bool {
	return s.GameID.Equal(other.GameID) && s.LevelID.Equal(other.LevelID)
}

// LobbyPolicy holds the player limits a session joined with.
// MinPlayers is recorded but nothing enforces it yet.
type LobbyPolicy struct {
	MinPlayers int `json:"min_players"`
	MaxPlayers int `json:"max_players"`
}

// Session is the state held for one live connection
type Session struct {
	ID          string
	DisplayName string
	LobbyID     string // empty until joined
	IsHost      bool
	GameStarted bool
	GameID      CompatKey
	LevelID     CompatKey
	Policy      LobbyPolicy
	Extra       map[string]json.RawMessage // client-defined attributes from update_user_data
}

// NewSession creates a session with every field defaulted
func NewSession(id string) Session {
	return Session{
		ID:          id,
		DisplayName: DefaultPlayerName,
		Policy:      LobbyPolicy{MinPlayers: DefaultMinPlayers, MaxPlayers: DefaultMaxPlayers},
		Extra:       make(map[string]json.RawMessage),
	}
}

// InLobby reports whether the session is a member of any lobby
func (s Session) InLobby() bool {
	return s.LobbyID != ""
}

// Signature returns the session's matchmaking signature
func (s Session) Signature() Signature {
	return Signature{GameID: s.GameID, LevelID: s.LevelID}
}

// Clone returns a copy that shares no mutable state with s
func (s Session) Clone() Session {
	c := s
	c.Extra = make(map[string]json.RawMessage, len(s.Extra))
	for k, v := range s.Extra {
		c.Extra[k] = v
	}
	return c
}

// MarshalJSON flattens the extension map next to the base fields.
// Base fields win on key collisions.
func (s Session) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Extra)+7)
	for k, v := range s.Extra {
		out[k] = v
	}

	var lobbyID interface{}
	if s.LobbyID != "" {
		lobbyID = s.LobbyID
	}

	out["sid"] = s.ID
	out["name"] = s.DisplayName
	out["lobby_id"] = lobbyID
	out["is_host"] = s.IsHost
	out["game_started"] = s.GameStarted
	out["game_id"] = s.GameID
	out["level_id"] = s.LevelID
	return json.Marshal(out)
}

// ReservedSessionKeys cannot be written through update_user_data
var ReservedSessionKeys = map[string]bool{
	"sid":          true,
	"lobby_id":     true,
	"is_host":      true,
	"game_started": true,
	"game_id":      true,
	"level_id":     true,
}

// NameKeys update the display name when merged with a string value
var NameKeys = []string{"name", "player_name"}
