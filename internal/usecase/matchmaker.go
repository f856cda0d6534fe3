package usecase

import (
	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// Placement is the matchmaker's decision for one join
type Placement struct {
	LobbyID string
	Created bool // a fresh code was generated
}

// Matchmaker decides which lobby a joining session lands in
type Matchmaker struct {
	registry *Registry
	codes    *CodeGenerator
}

// NewMatchmaker creates a matchmaker over the given registry
func NewMatchmaker(registry *Registry, codes *CodeGenerator) *Matchmaker {
	return &Matchmaker{registry: registry, codes: codes}
}

// Place picks the target lobby. With a requested id the lobby must exist,
// match the signature, not have started and have room. Without one the first
// eligible lobby in creation order is used, or a fresh code when none fits.
// The joining session must already be out of any lobby.
func (m *Matchmaker) Place(requested string, sig domain.Signature, maxPlayers int) (Placement, error) {
	if requested != "" {
		view := m.registry.Members(requested)
		if err := CheckJoinable(view, sig, maxPlayers); err != nil {
			return Placement{}, err
		}
		return Placement{LobbyID: requested}, nil
	}

	for _, view := range m.registry.Lobbies() {
		if CheckJoinable(view, sig, maxPlayers) == nil {
			return Placement{LobbyID: view.ID}, nil
		}
	}

	code, err := m.codes.Generate(func(code string) bool {
		return !m.registry.Members(code).Empty()
	})
	if err != nil {
		return Placement{}, err
	}
	return Placement{LobbyID: code, Created: true}, nil
}

// CheckJoinable applies the join rules to an existing lobby, in the order
// existence, compatibility, started, capacity.
func CheckJoinable(view domain.LobbyView, sig domain.Signature, maxPlayers int) error {
	switch {
	case view.Empty():
		return domain.ErrLobbyNotFound
	case !view.Signature.Matches(sig):
		return domain.ErrIncompatibleLobby
	case view.GameStarted:
		return domain.ErrGameAlreadyStarted
	case view.Size() >= maxPlayers:
		return domain.ErrLobbyFull
	}
	return nil
}
