package usecase

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// recordingTransport keeps group membership and every frame delivered per connection
type recordingTransport struct {
	mu     sync.Mutex
	groups map[string]map[string]bool
	inbox  map[string][]domain.Envelope
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{
		groups: make(map[string]map[string]bool),
		inbox:  make(map[string][]domain.Envelope),
	}
}

func (t *recordingTransport) Subscribe(connID, group string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.groups[group] == nil {
		t.groups[group] = make(map[string]bool)
	}
	t.groups[group][connID] = true
}

func (t *recordingTransport) Unsubscribe(connID, group string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.groups[group], connID)
	if len(t.groups[group]) == 0 {
		delete(t.groups, group)
	}
}

func (t *recordingTransport) SendToGroup(group string, msg domain.Envelope, exclude string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range t.groups[group] {
		if id == exclude {
			continue
		}
		t.inbox[id] = append(t.inbox[id], msg)
	}
}

func (t *recordingTransport) SendToConnection(connID string, msg domain.Envelope) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inbox[connID] = append(t.inbox[connID], msg)
}

// drain returns and clears everything sent to connID
func (t *recordingTransport) drain(connID string) []domain.Envelope {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := t.inbox[connID]
	delete(t.inbox, connID)
	return msgs
}

func (t *recordingTransport) members(group string) map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]bool, len(t.groups[group]))
	for id := range t.groups[group] {
		out[id] = true
	}
	return out
}

// wire is a decoded frame as a client would see it
type wire struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type wireGameEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type wirePlayerList struct {
	Users   map[string]map[string]interface{} `json:"users"`
	HostID  string                            `json:"host_id"`
	LobbyID string                            `json:"lobby_id"`
}

func decode(t *testing.T, env domain.Envelope) wire {
	t.Helper()
	b, err := json.Marshal(env)
	require.NoError(t, err)
	var w wire
	require.NoError(t, json.Unmarshal(b, &w))
	return w
}

func decodeGameEvent(t *testing.T, env domain.Envelope) wireGameEvent {
	t.Helper()
	w := decode(t, env)
	require.Equal(t, string(domain.EventGameEvent), w.Event)
	var ge wireGameEvent
	require.NoError(t, json.Unmarshal(w.Data, &ge))
	return ge
}

func decodePlayerList(t *testing.T, env domain.Envelope) wirePlayerList {
	t.Helper()
	ge := decodeGameEvent(t, env)
	require.Equal(t, domain.GameEventPlayerListChanged, ge.Type)
	var pl wirePlayerList
	require.NoError(t, json.Unmarshal(ge.Data, &pl))
	return pl
}

// events filters frames by event name
func events(msgs []domain.Envelope, name domain.EventName) []domain.Envelope {
	var out []domain.Envelope
	for _, m := range msgs {
		if m.Event == name {
			out = append(out, m)
		}
	}
	return out
}
