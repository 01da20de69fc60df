package signal

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/townlabs/townsync/internal/app"
	"github.com/townlabs/townsync/internal/config"
	"github.com/townlabs/townsync/internal/domain"
)

// Close codes surfaced to unauthenticated clients. No payload beyond the
// close frame; the client must rejoin for fresh credentials.
const (
	closeInvalidSession = 4001
	closeNoSuchTown     = 4004
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Subscriber is the per-connection entry point: it authenticates the
// handshake, binds the session, wires a Translator into the town, pumps
// inbound events, and tears everything down synchronously on disconnect.
type Subscriber struct {
	Store    *app.TownStore
	Registry *app.SessionRegistry
	Rooms    *app.RoomTable
	Cfg      *config.Config
}

func NewSubscriber(store *app.TownStore, registry *app.SessionRegistry, rooms *app.RoomTable, cfg *config.Config) *Subscriber {
	return &Subscriber{Store: store, Registry: registry, Rooms: rooms, Cfg: cfg}
}

// Handle serves GET /api/ws?token=...&townId=... . The connection starts
// unauthenticated: no inbound event is processed before the token resolves,
// and a failed handshake closes the socket with no listener ever registered.
func (s *Subscriber) Handle(c *gin.Context) {
	token := c.Query("token")
	townID := domain.TownID(c.Query("townId"))

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Str("module", "signal").Err(err).Msg("ws upgrade")
		return
	}
	conn := newConn(ws, s.Cfg.ReadLimit, s.Cfg.SendBuffer, s.Cfg.WriteTimeout, s.Cfg.PongWait, s.Cfg.PingPeriod())
	go conn.writePump()

	town, ok := s.Store.Get(townID)
	if !ok {
		log.Info().Str("module", "signal").Str("town", string(townID)).Msg("subscription to unknown town")
		conn.closeWith(closeNoSuchTown, "no such town")
		return
	}
	sess, ok := town.SessionByToken(token)
	if !ok {
		log.Info().Str("module", "signal").Str("town", string(townID)).Msg("subscription with invalid token")
		conn.closeWith(closeInvalidSession, "invalid session token")
		return
	}

	// Authenticated: bind the session to this connection (replacing a prior
	// one on reconnect) and register the translator with the town.
	s.Registry.Bind(token, conn)
	tr := NewTranslator(conn, s.Rooms)
	town.AddListener(tr)
	log.Info().Str("module", "signal").Str("town", string(townID)).Str("player", string(sess.Player.ID)).Msg("subscribed")

	conn.readPump(func(data []byte) {
		s.dispatch(town, sess, conn, data)
	})

	// Teardown runs before the connection is considered gone so no event
	// leaks through a half-closed socket. A stale connection displaced by a
	// reconnect must not destroy the rebound session.
	town.RemoveListener(tr)
	s.Rooms.DropConn(conn)
	if s.Registry.IsBound(token, conn) {
		town.DestroySession(sess)
	}
	log.Info().Str("module", "signal").Str("town", string(townID)).Str("player", string(sess.Player.ID)).Msg("unsubscribed")
}

// dispatch routes one inbound frame. Malformed payloads are dropped without
// disturbing the pump loop; membership violations are silent no-ops.
func (s *Subscriber) dispatch(town *app.Town, sess *app.Session, conn *Conn, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Debug().Str("module", "signal").Err(err).Msg("bad envelope")
		return
	}

	switch env.Type {
	case evtPlayerMovement:
		var p movementPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Debug().Str("module", "signal").Err(err).Msg("bad movement payload")
			return
		}
		town.UpdatePlayerLocation(sess.Player, p.Location)

	case evtChatMessage:
		var p chatPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Debug().Str("module", "signal").Err(err).Msg("bad chat payload")
			return
		}
		town.OnChatMessage(p.Message)

	case evtDrawing:
		var p drawingPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Debug().Str("module", "signal").Err(err).Msg("bad drawing payload")
			return
		}
		// Strokes from sockets outside the room are unauthorized; ignore.
		if !s.Rooms.IsMember(conn, domain.NewRoomKey(town.ID(), p.Area)) {
			return
		}
		town.OnDrawing(conn, p.Line, p.Area)

	case evtJoin:
		var p joinPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Debug().Str("module", "signal").Err(err).Msg("bad join payload")
			return
		}
		town.OnBoardJoin(conn, p.Area, p.MemberPlayerIDs)

	case evtCanvasData:
		var p canvasPayload
		if err := json.Unmarshal(data, &p); err != nil {
			log.Debug().Str("module", "signal").Err(err).Msg("bad canvas payload")
			return
		}
		town.OnCanvasUpdate(p.Data, p.Area)

	default:
		log.Debug().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}
