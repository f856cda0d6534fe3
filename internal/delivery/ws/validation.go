package ws

import (
	"regexp"
	"strings"
)

// lobbyCodeRegex matches codes handed out by the lobby code generator
var lobbyCodeRegex = regexp.MustCompile(`^[A-Z0-9]{4,16}$`)

// IsValidLobbyCode validates a lobby code format
func IsValidLobbyCode(code string) bool {
	return lobbyCodeRegex.MatchString(code)
}

// NormalizeLobbyCode trims and upper-cases a client supplied code
func NormalizeLobbyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
