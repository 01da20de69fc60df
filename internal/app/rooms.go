package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/townlabs/townsync/internal/core"
	"github.com/townlabs/townsync/internal/domain"
)

// RoomTable owns the mapping from a room key to the set of connections
// subscribed to it. Membership changes only through explicit joins, leaves,
// disconnects and evictions; there is no join-on-send. One instance exists
// per running server.
type RoomTable struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]map[core.Connection]struct{}
}

func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[domain.RoomKey]map[core.Connection]struct{})}
}

// Join adds conn to room. Joining a room the connection already belongs to
// is a no-op.
func (t *RoomTable) Join(conn core.Connection, room domain.RoomKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	members, ok := t.rooms[room]
	if !ok {
		members = make(map[core.Connection]struct{})
		t.rooms[room] = members
	}
	if _, ok := members[conn]; ok {
		return
	}
	members[conn] = struct{}{}
	log.Debug().Str("module", "app.rooms").Str("room", room.String()).Int("members", len(members)).Msg("joined room")
}

// Leave removes conn from room. Leaving a room the connection is not in is
// a no-op. Empty rooms are dropped from the table.
func (t *RoomTable) Leave(conn core.Connection, room domain.RoomKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	members, ok := t.rooms[room]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(t.rooms, room)
	}
}

// IsMember reports whether conn currently belongs to room.
func (t *RoomTable) IsMember(conn core.Connection, room domain.RoomKey) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rooms[room][conn]
	return ok
}

// MembersOf returns the room's member set as of the instant of the call.
func (t *RoomTable) MembersOf(room domain.RoomKey) []core.Connection {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]core.Connection, 0, len(t.rooms[room]))
	for c := range t.rooms[room] {
		out = append(out, c)
	}
	return out
}

// EvictAll removes every connection from room. Used when the backing
// conversation area is destroyed; subsequent strokes for the room reach
// no one.
func (t *RoomTable) EvictAll(room domain.RoomKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if members, ok := t.rooms[room]; ok {
		delete(t.rooms, room)
		log.Debug().Str("module", "app.rooms").Str("room", room.String()).Int("evicted", len(members)).Msg("room evicted")
	}
}

// DropConn removes conn from every room it belongs to. Called on disconnect.
func (t *RoomTable) DropConn(conn core.Connection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for room, members := range t.rooms {
		delete(members, conn)
		if len(members) == 0 {
			delete(t.rooms, room)
		}
	}
}
