package usecase

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/mmuslimabdulj/goat-lobby/internal/domain"
)

// Registry holds one session per live connection and an index of lobby
// membership kept in step with each session's lobby id.
//
// Members and lobbies are always returned in a stable order: sessions by
// registration order, lobbies by the order they came into existence. Host
// election and matchmaking rely on that order.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	lobbies  map[string]*lobbyEntry
	seq      uint64
}

type sessionEntry struct {
	seq     uint64
	session domain.Session
}

type lobbyEntry struct {
	seq     uint64
	members map[string]struct{}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*sessionEntry),
		lobbies:  make(map[string]*lobbyEntry),
	}
}

// Register creates a defaulted session for a new connection
func (r *Registry) Register(id string) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; exists {
		return domain.Session{}, domain.ErrSessionExists
	}

	r.seq++
	s := domain.NewSession(id)
	r.sessions[id] = &sessionEntry{seq: r.seq, session: s}
	return s.Clone(), nil
}

// Get returns a copy of the session
func (r *Registry) Get(id string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	return e.session.Clone(), true
}

// Remove deletes the session. It must already have left its lobby.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return false
	}
	r.detach(id, e.session.LobbyID)
	delete(r.sessions, id)
	return true
}

// Len returns the number of registered sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// UpdateFields merges client-defined attributes into a session. Name keys
// with a string value set the display name; reserved membership keys are
// skipped so lobby invariants can only change through the coordinator.
func (r *Registry) UpdateFields(id string, fields map[string]json.RawMessage) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrUnknownSession
	}

	for k, v := range fields {
		if domain.ReservedSessionKeys[k] {
			continue
		}
		if isNameKey(k) {
			if string(v) == "null" {
				continue
			}
			var name string
			if err := json.Unmarshal(v, &name); err == nil {
				// Names that sanitize to nothing keep the current name
				if clean := domain.SanitizePlayerName(name); clean != "" {
					e.session.DisplayName = clean
				}
				continue
			}
		}
		e.session.Extra[k] = v
	}
	return e.session.Clone(), nil
}

func isNameKey(k string) bool {
	for _, n := range domain.NameKeys {
		if k == n {
			return true
		}
	}
	return false
}

// Members returns the lobby view for lobbyID. An unknown id gives an empty view.
func (r *Registry) Members(lobbyID string) domain.LobbyView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.view(lobbyID)
}

// Lobbies returns a view of every live lobby in creation order
func (r *Registry) Lobbies() []domain.LobbyView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.lobbies))
	for id := range r.lobbies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.lobbies[ids[i]].seq < r.lobbies[ids[j]].seq
	})

	views := make([]domain.LobbyView, 0, len(ids))
	for _, id := range ids {
		views = append(views, r.view(id))
	}
	return views
}

// LobbyCount returns the number of live lobbies
func (r *Registry) LobbyCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lobbies)
}

// view builds a lobby projection. Caller must hold at least RLock.
func (r *Registry) view(lobbyID string) domain.LobbyView {
	v := domain.LobbyView{ID: lobbyID}
	le, ok := r.lobbies[lobbyID]
	if !ok {
		return v
	}

	entries := make([]*sessionEntry, 0, len(le.members))
	for id := range le.members {
		entries = append(entries, r.sessions[id])
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	v.Members = make([]domain.Session, 0, len(entries))
	for _, e := range entries {
		s := e.session.Clone()
		v.Members = append(v.Members, s)
		if s.IsHost && v.HostID == "" {
			v.HostID = s.ID
		}
		if s.GameStarted {
			v.GameStarted = true
		}
	}
	v.Signature = v.Members[0].Signature()
	v.Policy = v.Members[0].Policy
	return v
}

// mutate applies fn to the stored session and keeps the lobby index in step
// with any lobby id change.
func (r *Registry) mutate(id string, fn func(s *domain.Session)) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, false
	}

	before := e.session.LobbyID
	fn(&e.session)
	if after := e.session.LobbyID; after != before {
		r.detach(id, before)
		r.attach(id, after)
	}
	return e.session.Clone(), true
}

// mutateLobby applies fn to every member of lobbyID. fn must not change the lobby id.
func (r *Registry) mutateLobby(lobbyID string, fn func(s *domain.Session)) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	le, ok := r.lobbies[lobbyID]
	if !ok {
		return 0
	}
	for id := range le.members {
		fn(&r.sessions[id].session)
	}
	return len(le.members)
}

// attach and detach maintain the lobby index. Caller must hold Lock.
func (r *Registry) attach(id, lobbyID string) {
	if lobbyID == "" {
		return
	}
	le, ok := r.lobbies[lobbyID]
	if !ok {
		r.seq++
		le = &lobbyEntry{seq: r.seq, members: make(map[string]struct{})}
		r.lobbies[lobbyID] = le
	}
	le.members[id] = struct{}{}
}

func (r *Registry) detach(id, lobbyID string) {
	if lobbyID == "" {
		return
	}
	le, ok := r.lobbies[lobbyID]
	if !ok {
		return
	}
	delete(le.members, id)
	if len(le.members) == 0 {
		delete(r.lobbies, lobbyID)
	}
}
