package domain

// LobbyView is a read-only projection of the sessions sharing a lobby id
type LobbyView struct {
	ID          string      `json:"lobby_id"`
	Members     []Session   `json:"members"` // in host-election order
	HostID      string      `json:"host_id"`
	GameStarted bool        `json:"game_started"`
	Signature   Signature   `json:"signature"`
	Policy      LobbyPolicy `json:"policy"`
}

// Size returns the number of members
func (v LobbyView) Size() int {
	return len(v.Members)
}

// Empty reports whether the lobby has no members (and so no longer exists)
func (v LobbyView) Empty() bool {
	return len(v.Members) == 0
}

// MemberMap returns members keyed by connection id
func (v LobbyView) MemberMap() map[string]Session {
	m := make(map[string]Session, len(v.Members))
	for _, s := range v.Members {
		m[s.ID] = s
	}
	return m
}

// Has reports whether id is a member
func (v LobbyView) Has(id string) bool {
	for _, s := range v.Members {
		if s.ID == id {
			return true
		}
	}
	return false
}
