package domain

import "errors"

// Join failures. All are local to one request and leave state untouched.
var (
	ErrLobbyNotFound      = errors.New("lobby not found")
	ErrIncompatibleLobby  = errors.New("incompatible game or level")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrLobbyFull          = errors.New("lobby is full")
)

// ErrNoLobbyCode is returned when no free lobby code could be found
var ErrNoLobbyCode = errors.New("no free lobby code")

// ErrUnknownSession is returned for connection ids the registry does not hold
var ErrUnknownSession = errors.New("unknown session")

// ErrNotInLobby is returned when a session acts on a lobby it is not a member of
var ErrNotInLobby = errors.New("session not in lobby")

// ErrSessionExists is returned when registering an id twice
var ErrSessionExists = errors.New("session already registered")

// Client-facing join failure reasons
const (
	ReasonIncompatible   = "Incompatible game or level."
	ReasonGameStarted    = "Game has already started in this lobby."
	ReasonLobbyFull      = "Lobby is full."
	ReasonLobbyNotFound  = "Lobby does not exist."
	ReasonUnknownFailure = "Unable to join lobby."
)

// JoinFailureReason maps a join error to the string sent in join_lobby_failed
func JoinFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrIncompatibleLobby):
		return ReasonIncompatible
	case errors.Is(err, ErrGameAlreadyStarted):
		return ReasonGameStarted
	case errors.Is(err, ErrLobbyFull):
		return ReasonLobbyFull
	case errors.Is(err, ErrLobbyNotFound):
		return ReasonLobbyNotFound
	default:
		return ReasonUnknownFailure
	}
}
