package usecase

import (
	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// electHost restores the one-host-per-lobby invariant. When the lobby has
// members but no host, the earliest registered member is promoted. Returns
// the host id, empty when the lobby no longer exists, and whether a
// promotion happened.
func electHost(registry *Registry, lobbyID string) (string, bool) {
	view := registry.Members(lobbyID)
	if view.Empty() {
		return "", false
	}
	if view.HostID != "" {
		return view.HostID, false
	}

	next := view.Members[0].ID
	registry.mutate(next, func(s *domain.Session) {
		s.IsHost = true
	})
	return next, true
}

// resetMembership clears the lobby fields of a departing session
func resetMembership(s *domain.Session) {
	s.LobbyID = ""
	s.IsHost = false
	s.GameStarted = false
}
