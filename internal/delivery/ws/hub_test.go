package ws

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
	"github.com/mmuslimabdulj/goat-lobby/internal/usecase"
)

// newMockClient creates a client without an actual websocket connection suitable for testing
func newMockClient(hub *Hub) *Client {
	return &Client{
		ID:      uuid.New().String(),
		hub:     hub,
		conn:    nil,
		send:    make(chan []byte, 256),
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

// fakeHandler records every callback it receives
type fakeHandler struct {
	mu          sync.Mutex
	connectErr  error
	connected   []string
	joins       []domain.JoinRequest
	leaves      []domain.LeaveRequest
	events      []domain.GameEvent
	disconnects []string
	// inGroup captures whether the client was still subscribed when Disconnect ran
	hub     *Hub
	group   string
	inGroup bool
}

func (f *fakeHandler) Connect(connID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = append(f.connected, connID)
	return f.connectErr
}

func (f *fakeHandler) Join(connID string, req domain.JoinRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, req)
	return req.LobbyID, nil
}

func (f *fakeHandler) Leave(connID string, req domain.LeaveRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leaves = append(f.leaves, req)
	return nil
}

func (f *fakeHandler) Disconnect(connID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnects = append(f.disconnects, connID)
	if f.hub != nil {
		f.inGroup = f.hub.InGroup(connID, f.group)
	}
	return nil
}

func (f *fakeHandler) RouteEvent(connID string, ev domain.GameEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

type frame struct {
	Event domain.EventName `json:"event"`
	Data  json.RawMessage  `json:"data"`
}

// drain returns every frame queued on the client
func drain(t *testing.T, c *Client) []frame {
	t.Helper()
	var out []frame
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return out
			}
			var f frame
			if err := json.Unmarshal(msg, &f); err != nil {
				t.Fatalf("Invalid frame %s: %v", msg, err)
			}
			out = append(out, f)
		default:
			return out
		}
	}
}

func inbound(t *testing.T, event domain.EventName, data interface{}) domain.Inbound {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	return domain.Inbound{Event: event, Data: raw}
}

func TestNewHub(t *testing.T) {
	hub := NewHub(nil)
	if hub.clients == nil {
		t.Error("Clients map not initialized")
	}
	if hub.groups == nil {
		t.Error("Groups not initialized")
	}
	if hub.log == nil {
		t.Error("Expected nop logger when none is given")
	}
}

func TestHub_Register(t *testing.T) {
	hub := NewHub(nil)
	handler := &fakeHandler{}
	hub.SetHandler(handler)

	client := newMockClient(hub)
	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Errorf("Expected 1 client, got %d", hub.ClientCount())
	}
	if len(handler.connected) != 1 || handler.connected[0] != client.ID {
		t.Errorf("Expected Connect(%s), got %v", client.ID, handler.connected)
	}

	// Registering twice is ignored
	hub.Register(client)
	if len(handler.connected) != 1 {
		t.Errorf("Expected a single Connect call, got %d", len(handler.connected))
	}
}

func TestHub_RegisterLogsHandlerError(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	hub := NewHub(zap.New(core))
	hub.SetHandler(&fakeHandler{connectErr: domain.ErrSessionExists})

	client := newMockClient(hub)
	hub.Register(client)

	entries := logs.FilterMessage("connect rejected by handler").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one warning, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["conn"]; got != client.ID {
		t.Errorf("Expected conn field %s, got %v", client.ID, got)
	}
	if hub.ClientCount() != 1 {
		t.Errorf("Expected client to stay registered, got %d", hub.ClientCount())
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := NewHub(nil)
	handler := &fakeHandler{hub: hub, group: "L1"}
	hub.SetHandler(handler)

	client := newMockClient(hub)
	hub.Register(client)
	hub.Subscribe(client.ID, "L1")

	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.ClientCount())
	}
	if len(handler.disconnects) != 1 {
		t.Fatalf("Expected one Disconnect call, got %d", len(handler.disconnects))
	}
	if !handler.inGroup {
		t.Error("Expected client to still be subscribed while the handler runs")
	}
	if hub.InGroup(client.ID, "L1") {
		t.Error("Expected client removed from its groups")
	}

	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("Expected send channel to be closed")
		}
	default:
		t.Error("Expected send channel to be closed")
	}

	// Second unregister is a no-op
	hub.Unregister(client)
	if len(handler.disconnects) != 1 {
		t.Errorf("Expected a single Disconnect call, got %d", len(handler.disconnects))
	}
}

func TestHub_SubscribeUnknownConnection(t *testing.T) {
	hub := NewHub(nil)
	hub.Subscribe("ghost", "L1")

	if hub.GroupSize("L1") != 0 {
		t.Error("Expected unknown connection not to be subscribed")
	}
}

func TestHub_SendToGroup(t *testing.T) {
	hub := NewHub(nil)
	a, b, c := newMockClient(hub), newMockClient(hub), newMockClient(hub)
	for _, cl := range []*Client{a, b, c} {
		hub.Register(cl)
	}
	hub.Subscribe(a.ID, "L1")
	hub.Subscribe(b.ID, "L1")

	hub.SendToGroup("L1", domain.NewGameEventEnvelope("tick", map[string]int{"n": 1}), a.ID)

	if got := drain(t, a); len(got) != 0 {
		t.Errorf("Expected excluded sender to receive nothing, got %d frames", len(got))
	}
	got := drain(t, b)
	if len(got) != 1 || got[0].Event != domain.EventGameEvent {
		t.Fatalf("Expected one game_event for b, got %v", got)
	}
	var ev domain.GameEvent
	if err := json.Unmarshal(got[0].Data, &ev); err != nil || ev.Type != "tick" {
		t.Errorf("Expected tick event, got %s (%v)", got[0].Data, err)
	}
	if got := drain(t, c); len(got) != 0 {
		t.Error("Expected non-member to receive nothing")
	}

	hub.Unsubscribe(b.ID, "L1")
	hub.SendToGroup("L1", domain.NewGameEventEnvelope("tick", nil), "")
	if got := drain(t, b); len(got) != 0 {
		t.Error("Expected unsubscribed client to receive nothing")
	}
	if got := drain(t, a); len(got) != 1 {
		t.Errorf("Expected a to receive broadcast, got %d", len(got))
	}
}

func TestHub_SendToConnection(t *testing.T) {
	hub := NewHub(nil)
	a := newMockClient(hub)
	hub.Register(a)

	hub.SendToConnection(a.ID, domain.Envelope{
		Event: domain.EventJoinLobbySuccess,
		Data:  domain.JoinSuccessPayload{LobbyID: "ABC123"},
	})
	hub.SendToConnection("ghost", domain.Envelope{Event: domain.EventJoinLobbySuccess})

	got := drain(t, a)
	if len(got) != 1 || got[0].Event != domain.EventJoinLobbySuccess {
		t.Fatalf("Expected join_lobby_success, got %v", got)
	}
	if string(got[0].Data) != `{"lobby_id":"ABC123"}` {
		t.Errorf("Unexpected payload %s", got[0].Data)
	}
}

func TestHub_Dispatch(t *testing.T) {
	hub := NewHub(nil)
	handler := &fakeHandler{}
	hub.SetHandler(handler)

	hub.Dispatch("c1", inbound(t, domain.EventJoinLobby, map[string]interface{}{
		"lobby_id":    " abc123 ",
		"player_name": "<i>Ana</i>",
		"game_id":     "chess",
		"max_players": 2,
	}))
	hub.Dispatch("c1", inbound(t, domain.EventLeaveLobby, map[string]string{"lobby_id": "abc123"}))
	hub.Dispatch("c1", inbound(t, domain.EventGameEvent, map[string]interface{}{
		"type": "move",
		"data": map[string]int{"x": 1},
	}))

	if len(handler.joins) != 1 {
		t.Fatalf("Expected one join, got %d", len(handler.joins))
	}
	join := handler.joins[0]
	if join.LobbyID != "ABC123" {
		t.Errorf("Expected normalized lobby code, got %q", join.LobbyID)
	}
	if join.PlayerName != "Ana" {
		t.Errorf("Expected sanitized name, got %q", join.PlayerName)
	}
	if join.GameID.String() != `"chess"` || join.LevelID.IsSet() {
		t.Errorf("Unexpected signature %s/%s", join.GameID, join.LevelID)
	}
	if join.MaxPlayers == nil || *join.MaxPlayers != 2 || join.MinPlayers != nil {
		t.Error("Expected max_players 2 and no min_players")
	}

	if len(handler.leaves) != 1 || handler.leaves[0].LobbyID != "ABC123" {
		t.Errorf("Unexpected leaves %v", handler.leaves)
	}
	if len(handler.events) != 1 || handler.events[0].Type != "move" {
		t.Errorf("Unexpected events %v", handler.events)
	}
}

func TestHub_DispatchMissingPayload(t *testing.T) {
	hub := NewHub(nil)
	handler := &fakeHandler{}
	hub.SetHandler(handler)

	hub.Dispatch("c1", domain.Inbound{Event: domain.EventJoinLobby})

	if len(handler.joins) != 1 {
		t.Fatalf("Expected join with empty request, got %d", len(handler.joins))
	}
	if handler.joins[0].LobbyID != "" || handler.joins[0].GameID.IsSet() {
		t.Error("Expected zero join request")
	}
}

func TestHub_DispatchDropsMalformed(t *testing.T) {
	hub := NewHub(nil)
	handler := &fakeHandler{}
	hub.SetHandler(handler)

	hub.Dispatch("c1", domain.Inbound{Event: domain.EventJoinLobby, Data: json.RawMessage(`"nope"`)})
	hub.Dispatch("c1", domain.Inbound{Event: domain.EventGameEvent, Data: json.RawMessage(`[1,2]`)})
	hub.Dispatch("c1", domain.Inbound{Event: "chat_message", Data: json.RawMessage(`{}`)})

	if len(handler.joins)+len(handler.leaves)+len(handler.events) != 0 {
		t.Error("Expected malformed and unknown frames to be dropped")
	}
}

func TestHub_DispatchWithoutHandler(t *testing.T) {
	hub := NewHub(nil)
	// Must not panic
	hub.Dispatch("c1", domain.Inbound{Event: domain.EventJoinLobby})
}

// === COORDINATOR INTEGRATION ===

func newLobbyHub(t *testing.T) (*Hub, *usecase.Coordinator) {
	t.Helper()
	hub := NewHub(nil)
	coord := usecase.NewCoordinator(hub, nil, usecase.DefaultOptions())
	hub.SetHandler(coord)
	return hub, coord
}

func TestHub_CoordinatorJoinAndRelay(t *testing.T) {
	hub, coord := newLobbyHub(t)

	host, guest := newMockClient(hub), newMockClient(hub)
	hub.Register(host)
	hub.Register(guest)

	for _, c := range []*Client{host, guest} {
		got := drain(t, c)
		if len(got) != 1 || got[0].Event != domain.EventConnected {
			t.Fatalf("Expected connected frame, got %v", got)
		}
	}

	hub.Dispatch(host.ID, inbound(t, domain.EventJoinLobby, map[string]string{"player_name": "Host", "game_id": "g"}))
	s, ok := coord.Session(host.ID)
	if !ok || !s.IsHost || s.LobbyID == "" {
		t.Fatalf("Expected host in a lobby, got %+v", s)
	}
	lobbyID := s.LobbyID
	if !hub.InGroup(host.ID, lobbyID) {
		t.Error("Expected host subscribed to its lobby group")
	}

	hub.Dispatch(guest.ID, inbound(t, domain.EventJoinLobby, map[string]string{"game_id": "g"}))
	gs, _ := coord.Session(guest.ID)
	if gs.LobbyID != lobbyID || gs.IsHost {
		t.Fatalf("Expected guest matched into %s as member, got %+v", lobbyID, gs)
	}
	drain(t, host)
	drain(t, guest)

	// Member to host only
	hub.Dispatch(guest.ID, inbound(t, domain.EventGameEvent, map[string]interface{}{
		"type": "input",
		"data": map[string]interface{}{"key": "up", "user_id": "spoofed"},
	}))
	got := drain(t, host)
	if len(got) != 1 {
		t.Fatalf("Expected host to receive relayed input, got %d frames", len(got))
	}
	var ev struct {
		Type string                 `json:"type"`
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(got[0].Data, &ev); err != nil {
		t.Fatalf("Invalid relay payload: %v", err)
	}
	if ev.Type != "input" || ev.Data["key"] != "up" || ev.Data["user_id"] != guest.ID {
		t.Errorf("Unexpected relay %+v", ev)
	}
	if len(drain(t, guest)) != 0 {
		t.Error("Expected sender not to receive its own event")
	}

	// Host disconnect promotes the guest
	hub.Unregister(host)
	gs, _ = coord.Session(guest.ID)
	if !gs.IsHost {
		t.Error("Expected guest promoted to host")
	}
	got = drain(t, guest)
	if len(got) != 1 || got[0].Event != domain.EventGameEvent {
		t.Fatalf("Expected player list update for guest, got %v", got)
	}
	if coord.SessionCount() != 1 {
		t.Errorf("Expected 1 session, got %d", coord.SessionCount())
	}
}
