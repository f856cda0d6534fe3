package ws

// groupSet tracks which connections are subscribed to which named group.
// Not safe for concurrent use; the hub guards it.
type groupSet struct {
	members map[string]map[string]struct{} // group -> connection ids
	byConn  map[string]map[string]struct{} // connection id -> groups
}

func newGroupSet() *groupSet {
	return &groupSet{
		members: make(map[string]map[string]struct{}),
		byConn:  make(map[string]map[string]struct{}),
	}
}

func (g *groupSet) add(group, connID string) {
	if g.members[group] == nil {
		g.members[group] = make(map[string]struct{})
	}
	g.members[group][connID] = struct{}{}

	if g.byConn[connID] == nil {
		g.byConn[connID] = make(map[string]struct{})
	}
	g.byConn[connID][group] = struct{}{}
}

func (g *groupSet) remove(group, connID string) {
	if m, ok := g.members[group]; ok {
		delete(m, connID)
		if len(m) == 0 {
			delete(g.members, group)
		}
	}
	if m, ok := g.byConn[connID]; ok {
		delete(m, group)
		if len(m) == 0 {
			delete(g.byConn, connID)
		}
	}
}

// removeConn drops a connection from every group it is in
func (g *groupSet) removeConn(connID string) {
	for group := range g.byConn[connID] {
		if m, ok := g.members[group]; ok {
			delete(m, connID)
			if len(m) == 0 {
				delete(g.members, group)
			}
		}
	}
	delete(g.byConn, connID)
}

func (g *groupSet) has(group, connID string) bool {
	_, ok := g.members[group][connID]
	return ok
}

func (g *groupSet) size(group string) int {
	return len(g.members[group])
}

// each calls fn for every member of group
func (g *groupSet) each(group string, fn func(connID string)) {
	for id := range g.members[group] {
		fn(id)
	}
}
