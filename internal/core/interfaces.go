package core

import (
	"errors"

	"github.com/townlabs/townsync/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// Connection abstracts one client's messaging transport.
// Owned by the adapter; the adapter must Close() it.
type Connection interface {
	// TrySend queues data for delivery without blocking. It returns
	// ErrBackpressure when the peer cannot keep up; the frame is dropped.
	TrySend(data []byte) error
	Close()
}

// TownListener receives domain events for one town. Each connected client
// gets its own independently constructed listener; the town controller fans
// every event out to all registered listeners.
type TownListener interface {
	// OnPlayerJoined is called when a player joins the town.
	OnPlayerJoined(p *domain.Player)

	// OnPlayerMoved is called when a player's location changes.
	OnPlayerMoved(p *domain.Player)

	// OnPlayerDisconnected is called when a player leaves the town.
	OnPlayerDisconnected(p *domain.Player)

	// OnTownDestroyed is called when the town shuts down; every listener
	// must drop its connection.
	OnTownDestroyed()

	// OnConversationAreaUpdated is called when an area is created or its
	// occupant set or topic changes.
	OnConversationAreaUpdated(area domain.ConversationArea)

	// OnConversationAreaDestroyed is called when an area empties out or the
	// town is torn down. room is the whiteboard room backing the area.
	OnConversationAreaDestroyed(area domain.ConversationArea, room domain.RoomKey)

	// OnChatMessage is called for every chat message scoped to the town.
	OnChatMessage(msg domain.ChatMessage)

	// OnDrawing is called when origin draws a stroke on room's whiteboard.
	// Listeners deliver to their own connection only, and never back to origin.
	OnDrawing(origin Connection, line domain.LineData, room domain.RoomKey)

	// OnBoardJoin is called when origin opens the whiteboard for room.
	// members holds the connections of the area's current occupants, canvas
	// the latest snapshot (may be empty). Occupants are joined to the room;
	// the snapshot goes to origin only.
	OnBoardJoin(origin Connection, room domain.RoomKey, members []Connection, canvas string)

	// OnRoomUpdated is called when the area's occupant set shrinks; listeners
	// not present in members must leave the room.
	OnRoomUpdated(room domain.RoomKey, members []Connection)
}
