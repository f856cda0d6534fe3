package usecase

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// Transport is the connection layer the coordinator talks back through.
// Sends must not block.
type Transport interface {
	Subscribe(connID, group string)
	Unsubscribe(connID, group string)
	// SendToGroup delivers to every subscriber of group except exclude (empty for none)
	SendToGroup(group string, msg domain.Envelope, exclude string)
	SendToConnection(connID string, msg domain.Envelope)
}

// Options configures join defaults
type Options struct {
	DefaultMinPlayers int
	DefaultMaxPlayers int
	CodeLength        int
}

// DefaultOptions returns the stock join defaults
func DefaultOptions() Options {
	return Options{
		DefaultMinPlayers: domain.DefaultMinPlayers,
		DefaultMaxPlayers: domain.DefaultMaxPlayers,
		CodeLength:        domain.LobbyCodeLength,
	}
}

// Coordinator owns the session registry and runs every lobby lifecycle
// transition under one lock, so membership, host flags and the snapshots
// broadcast from them always agree.
type Coordinator struct {
	mu         sync.Mutex
	registry   *Registry
	codes      *CodeGenerator
	matchmaker *Matchmaker
	transport  Transport
	log        *zap.Logger
	opts       Options
}

// NewCoordinator creates a coordinator with its own empty registry
func NewCoordinator(transport Transport, log *zap.Logger, opts Options) *Coordinator {
	return NewCoordinatorWithCodes(transport, log, opts, NewCodeGenerator(opts.CodeLength))
}

// NewCoordinatorWithCodes is NewCoordinator with a caller-supplied code generator
func NewCoordinatorWithCodes(transport Transport, log *zap.Logger, opts Options, codes *CodeGenerator) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DefaultMaxPlayers == 0 {
		opts.DefaultMaxPlayers = domain.DefaultMaxPlayers
	}
	if opts.DefaultMinPlayers == 0 {
		opts.DefaultMinPlayers = domain.DefaultMinPlayers
	}
	registry := NewRegistry()
	return &Coordinator{
		registry:   registry,
		codes:      codes,
		matchmaker: NewMatchmaker(registry, codes),
		transport:  transport,
		log:        log,
		opts:       opts,
	}
}

// Connect registers a new connection and tells it its id
func (c *Coordinator) Connect(connID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.registry.Register(connID); err != nil {
		c.log.Warn("connect for already registered session", zap.String("conn", connID))
		return err
	}
	c.log.Info("session connected", zap.String("conn", connID))

	c.transport.SendToConnection(connID, domain.Envelope{
		Event: domain.EventConnected,
		Data:  domain.ConnectedPayload{UserID: connID},
	})
	return nil
}

// Join places the session in a lobby, leaving its current one first.
// The outcome is also sent to the connection as join_lobby_success or
// join_lobby_failed.
func (c *Coordinator) Join(connID string, req domain.JoinRequest) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.registry.Get(connID)
	if !ok {
		c.log.Warn("join from unknown session", zap.String("conn", connID))
		return "", domain.ErrUnknownSession
	}

	policy := domain.LobbyPolicy{
		MinPlayers: c.opts.DefaultMinPlayers,
		MaxPlayers: c.opts.DefaultMaxPlayers,
	}
	if req.MinPlayers != nil {
		policy.MinPlayers = *req.MinPlayers
	}
	if req.MaxPlayers != nil {
		policy.MaxPlayers = *req.MaxPlayers
	}

	if s.InLobby() {
		c.leaveLocked(connID, s.LobbyID, "rejoin")
	}

	placement, err := c.matchmaker.Place(req.LobbyID, req.Signature(), policy.MaxPlayers)
	if err != nil {
		c.log.Info("join rejected",
			zap.String("conn", connID),
			zap.String("lobby", req.LobbyID),
			zap.Error(err),
		)
		c.transport.SendToConnection(connID, domain.Envelope{
			Event: domain.EventJoinLobbyFailed,
			Data:  domain.JoinFailedPayload{Error: domain.JoinFailureReason(err)},
		})
		return "", err
	}
	lobbyID := placement.LobbyID
	if placement.Created {
		c.log.Info("lobby created", zap.String("lobby", lobbyID))
	}

	name := req.PlayerName
	if name == "" {
		name = domain.DefaultPlayerName
	}
	c.registry.mutate(connID, func(s *domain.Session) {
		s.DisplayName = name
		s.GameID = req.GameID
		s.LevelID = req.LevelID
		s.Policy = policy
		s.LobbyID = lobbyID
		s.IsHost = false
		s.GameStarted = false
	})
	c.transport.Subscribe(connID, lobbyID)

	if host, promoted := electHost(c.registry, lobbyID); promoted {
		c.log.Info("host assigned", zap.String("lobby", lobbyID), zap.String("host", host))
	}
	c.log.Info("session joined lobby", zap.String("conn", connID), zap.String("lobby", lobbyID))

	c.broadcastMembers(lobbyID)
	c.transport.SendToConnection(connID, domain.Envelope{
		Event: domain.EventJoinLobbySuccess,
		Data:  domain.JoinSuccessPayload{LobbyID: lobbyID},
	})
	return lobbyID, nil
}

// Leave removes the session from lobbyID, which must be its current lobby
func (c *Coordinator) Leave(connID string, req domain.LeaveRequest) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.registry.Get(connID)
	if !ok {
		c.log.Warn("leave from unknown session", zap.String("conn", connID), zap.String("lobby", req.LobbyID))
		return domain.ErrUnknownSession
	}
	if !s.InLobby() || s.LobbyID != req.LobbyID {
		c.log.Warn("leave for a lobby the session is not in",
			zap.String("conn", connID),
			zap.String("lobby", req.LobbyID),
			zap.String("current", s.LobbyID),
		)
		return domain.ErrNotInLobby
	}

	c.leaveLocked(connID, s.LobbyID, "leave")
	c.transport.SendToConnection(connID, domain.Envelope{
		Event: domain.EventLeaveLobbySuccess,
		Data:  domain.LeaveSuccessPayload{LobbyID: req.LobbyID},
	})
	return nil
}

// Disconnect drops the session, leaving its lobby first
func (c *Coordinator) Disconnect(connID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.registry.Get(connID)
	if !ok {
		c.log.Warn("disconnect for unknown session", zap.String("conn", connID))
		return domain.ErrUnknownSession
	}

	if s.InLobby() {
		c.registry.mutate(connID, resetMembership)
		c.transport.Unsubscribe(connID, s.LobbyID)
		c.registry.Remove(connID)
		c.log.Info("session left lobby",
			zap.String("conn", connID),
			zap.String("lobby", s.LobbyID),
			zap.String("reason", "disconnect"),
		)
		c.afterDeparture(s.LobbyID)
	} else {
		c.registry.Remove(connID)
	}

	c.log.Info("session disconnected", zap.String("conn", connID))
	return nil
}

// leaveLocked resets the session's membership and repairs the lobby it left.
// Caller must hold c.mu.
func (c *Coordinator) leaveLocked(connID, lobbyID, reason string) {
	c.registry.mutate(connID, resetMembership)
	c.transport.Unsubscribe(connID, lobbyID)
	c.log.Info("session left lobby",
		zap.String("conn", connID),
		zap.String("lobby", lobbyID),
		zap.String("reason", reason),
	)
	c.afterDeparture(lobbyID)
}

// afterDeparture re-elects a host if needed and broadcasts the new member
// list, or releases the code when the lobby emptied. Caller must hold c.mu.
func (c *Coordinator) afterDeparture(lobbyID string) {
	host, promoted := electHost(c.registry, lobbyID)
	if host == "" {
		c.codes.Release(lobbyID)
		c.log.Info("lobby removed", zap.String("lobby", lobbyID))
		return
	}
	if promoted {
		c.log.Info("host reassigned", zap.String("lobby", lobbyID), zap.String("host", host))
	}
	c.broadcastMembers(lobbyID)
}

// broadcastMembers sends the full member snapshot to the lobby.
// Nothing is sent for an empty lobby. Caller must hold c.mu.
func (c *Coordinator) broadcastMembers(lobbyID string) {
	view := c.registry.Members(lobbyID)
	if view.Empty() {
		return
	}
	c.transport.SendToGroup(lobbyID, domain.NewPlayerListEnvelope(view), "")
}

// Session returns a copy of a session
func (c *Coordinator) Session(connID string) (domain.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Get(connID)
}

// Lobby returns the current view of one lobby
func (c *Coordinator) Lobby(lobbyID string) domain.LobbyView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Members(lobbyID)
}

// Lobbies returns a consistent snapshot of every live lobby
func (c *Coordinator) Lobbies() []domain.LobbyView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registry.Lobbies()
}

// SessionCount returns the number of connected sessions
func (c *Coordinator) SessionCount() int {
	return c.registry.Len()
}

func quoteID(id string) json.RawMessage {
	b, _ := json.Marshal(id)
	return b
}
