package services

import (
	"sort"
	"sync"
)

// Conn is a connected realtime client
type Conn interface {
	ID() string
	Emit(event string, payload interface{})
}

// Member is a connection that joined a match room
type Member struct {
	Conn   Conn
	UserID string
}

// Broadcaster relays events to the connections of a match room. Connections
// that joined no room yet sit in the lobby and receive every relay; they
// filter by matchId themselves. Delivery is fire-and-forget.
type Broadcaster struct {
	mu sync.RWMutex
	// connID -> connection, every connected client
	conns map[string]Conn
	// matchID -> connID -> member
	rooms map[string]map[string]Member
	// connID -> joined matchIDs
	joined map[string]map[string]struct{}
}

// NewBroadcaster creates an empty broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		conns:  make(map[string]Conn),
		rooms:  make(map[string]map[string]Member),
		joined: make(map[string]map[string]struct{}),
	}
}

// Connect registers conn in the lobby
func (b *Broadcaster) Connect(conn Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.conns[conn.ID()] = conn
}

// Join adds conn to the room of matchID. A later join with a non-empty
// userID updates the recorded user.
func (b *Broadcaster) Join(matchID, userID string, conn Conn) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.conns[conn.ID()] = conn

	room, ok := b.rooms[matchID]
	if !ok {
		room = make(map[string]Member)
		b.rooms[matchID] = room
	}
	if existing, ok := room[conn.ID()]; ok && userID == "" {
		userID = existing.UserID
	}
	room[conn.ID()] = Member{Conn: conn, UserID: userID}

	if b.joined[conn.ID()] == nil {
		b.joined[conn.ID()] = make(map[string]struct{})
	}
	b.joined[conn.ID()][matchID] = struct{}{}
}

// Disconnect removes a connection from the lobby and from every room it joined
func (b *Broadcaster) Disconnect(connID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for matchID := range b.joined[connID] {
		if room, ok := b.rooms[matchID]; ok {
			delete(room, connID)
			if len(room) == 0 {
				delete(b.rooms, matchID)
			}
		}
	}
	delete(b.joined, connID)
	delete(b.conns, connID)
}

// Members returns a snapshot of the room of matchID
func (b *Broadcaster) Members(matchID string) []Member {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.members(matchID)
}

func (b *Broadcaster) members(matchID string) []Member {
	members := make([]Member, 0, len(b.rooms[matchID]))
	for _, m := range b.rooms[matchID] {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].Conn.ID() < members[j].Conn.ID()
	})
	return members
}

// Rooms returns the match ids connID has joined
func (b *Broadcaster) Rooms(connID string) []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rooms := make([]string, 0, len(b.joined[connID]))
	for matchID := range b.joined[connID] {
		rooms = append(rooms, matchID)
	}
	sort.Strings(rooms)
	return rooms
}

// recipients returns the room of matchID followed by the lobby
func (b *Broadcaster) recipients(matchID string) []Conn {
	b.mu.RLock()
	defer b.mu.RUnlock()

	members := b.members(matchID)
	out := make([]Conn, 0, len(members))
	for _, m := range members {
		out = append(out, m.Conn)
	}

	var lobby []Conn
	for id, conn := range b.conns {
		if len(b.joined[id]) == 0 {
			lobby = append(lobby, conn)
		}
	}
	sort.Slice(lobby, func(i, j int) bool { return lobby[i].ID() < lobby[j].ID() })
	return append(out, lobby...)
}

// Emit sends event to the room and the lobby and returns how many were addressed
func (b *Broadcaster) Emit(matchID, event string, payload interface{}) int {
	return b.EmitExcept(matchID, "", event, payload)
}

// EmitExcept sends event to the room and the lobby, skipping exceptID
func (b *Broadcaster) EmitExcept(matchID, exceptID, event string, payload interface{}) int {
	sent := 0
	// emit outside the lock so a slow client cannot block joins
	for _, conn := range b.recipients(matchID) {
		if conn.ID() == exceptID {
			continue
		}
		conn.Emit(event, payload)
		sent++
	}
	return sent
}
