package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/townlabs/townsync/internal/app"
	"github.com/townlabs/townsync/internal/core"
	"github.com/townlabs/townsync/internal/domain"
)

// Translator adapts one connection to the town's event interface: each domain
// notification becomes at most one outbound wire message for this connection.
// Room membership changes only on explicit occupant-set decisions carried by
// the events, never inferred from network state; the occupant list the town
// controller computes stays the single source of truth.
type Translator struct {
	conn  core.Connection
	rooms *app.RoomTable
}

func NewTranslator(conn core.Connection, rooms *app.RoomTable) *Translator {
	return &Translator{conn: conn, rooms: rooms}
}

func (t *Translator) OnPlayerJoined(p *domain.Player) {
	t.emit(playerEvent{Type: evtNewPlayer, Player: p})
}

func (t *Translator) OnPlayerMoved(p *domain.Player) {
	t.emit(playerEvent{Type: evtPlayerMoved, Player: p})
}

func (t *Translator) OnPlayerDisconnected(p *domain.Player) {
	t.emit(playerEvent{Type: evtPlayerDisconnect, Player: p})
}

func (t *Translator) OnTownDestroyed() {
	t.emit(townClosingEvent{Type: evtTownClosing})
	t.conn.Close()
}

func (t *Translator) OnConversationAreaUpdated(area domain.ConversationArea) {
	t.emit(conversationEvent{Type: evtConversationUpdated, ConversationArea: area})
}

func (t *Translator) OnConversationAreaDestroyed(area domain.ConversationArea, room domain.RoomKey) {
	t.emit(conversationEvent{Type: evtConversationDestroy, ConversationArea: area})
	t.rooms.Leave(t.conn, room)
	// Clients key cached snapshots by the room's string form; tell them to
	// drop the entry for a room that no longer exists.
	t.emit(clearLocalEvent{Type: evtClearLocal, Room: room.String()})
}

func (t *Translator) OnChatMessage(msg domain.ChatMessage) {
	t.emit(chatEvent{Type: evtChatMessage, Message: msg})
}

// OnDrawing delivers a stroke to this connection when it is a member of the
// room. The originating connection already rendered the stroke locally and
// must not receive it again.
func (t *Translator) OnDrawing(origin core.Connection, line domain.LineData, room domain.RoomKey) {
	if t.conn == origin {
		return
	}
	if !t.rooms.IsMember(t.conn, room) {
		return
	}
	t.emit(drawingEvent{Type: evtDrawing, Line: line})
}

// OnBoardJoin joins this connection to the room when the area's occupant set
// includes it. Only the connection that opened the board is caught up with
// the snapshot; existing members already have current state.
func (t *Translator) OnBoardJoin(origin core.Connection, room domain.RoomKey, members []core.Connection, canvas string) {
	member := containsConn(members, t.conn)
	if member && !t.rooms.IsMember(t.conn, room) {
		t.rooms.Join(t.conn, room)
	}
	if member && t.conn == origin {
		t.emit(canvasEvent{Type: evtCanvasData, Data: canvas})
	}
}

// OnRoomUpdated drops this connection from the room when the area's occupant
// set no longer includes it. A stale membership would leak strokes to a
// player who walked away.
func (t *Translator) OnRoomUpdated(room domain.RoomKey, members []core.Connection) {
	if !containsConn(members, t.conn) {
		t.rooms.Leave(t.conn, room)
	}
}

func (t *Translator) emit(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Str("module", "signal").Err(err).Msg("emit marshal")
		return
	}
	// Fire-and-forget: a slow peer drops frames rather than stalling the
	// event source.
	_ = t.conn.TrySend(data)
}

func containsConn(conns []core.Connection, c core.Connection) bool {
	for _, cur := range conns {
		if cur == c {
			return true
		}
	}
	return false
}
