package domain

// ==== Join Defaults ====

// DefaultPlayerName is used when a join request carries no player name
const DefaultPlayerName = "Player"

// DefaultMinPlayers is stored with a join request when none is given
const DefaultMinPlayers = 1

// DefaultMaxPlayers caps lobby size when a join request gives no limit
const DefaultMaxPlayers = 4

// ==== Lobby Codes ====

// LobbyCodeLength is the length of generated lobby codes
const LobbyCodeLength = 6

// Configurable code lengths must stay within what clients can type back
const (
	MinLobbyCodeLength = 4
	MaxLobbyCodeLength = 16
)

// LobbyCodeCharset holds the characters lobby codes are drawn from
const LobbyCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ==== WebSocket Constants ====

// MaxMessageSize is the maximum allowed WebSocket message size in bytes
const MaxMessageSize = 64 * 1024

// MaxPlayerNameLength bounds display names after sanitizing
const MaxPlayerNameLength = 32
