package http

import (
	"time"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

//go:generate templ generate -f status.templ

type statusData struct {
	Connections int
	Uptime      time.Duration
	Lobbies     []domain.LobbyView
}

// hostName returns the host's display name, or its id if it has none
func hostName(v domain.LobbyView) string {
	for _, s := range v.Members {
		if s.ID == v.HostID && s.DisplayName != "" {
			return s.DisplayName
		}
	}
	return v.HostID
}

func lobbyState(v domain.LobbyView) string {
	if v.GameStarted {
		return "in game"
	}
	return "waiting"
}
