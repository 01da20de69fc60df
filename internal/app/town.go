package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/townlabs/townsync/internal/core"
	"github.com/townlabs/townsync/internal/domain"
)

// TokenIssuer mints access tokens for the external video subsystem.
type TokenIssuer func() string

// Town is the controller for one simulated space: it owns the player list,
// the conversation areas and their occupant sets, the transient per-room
// canvas snapshots, and the registered listeners. Every event the wire layer
// sees originates here, so occupancy and room membership cannot diverge.
//
// All mutating methods notify listeners while holding the town lock, which
// serializes events the way the reference event loop did.
type Town struct {
	id             domain.TownID
	updatePassword string
	capacity       int

	registry *SessionRegistry
	rooms    *RoomTable
	issue    TokenIssuer

	mu           sync.RWMutex
	friendlyName string
	isPublic     bool
	players      []*domain.Player
	areas        []*domain.ConversationArea
	listeners    []core.TownListener
	canvases     map[domain.RoomKey]string
}

func NewTown(friendlyName string, isPublic bool, capacity int, registry *SessionRegistry, rooms *RoomTable, issue TokenIssuer) *Town {
	if issue == nil {
		issue = uuid.NewString
	}
	return &Town{
		id:             domain.TownID(uuid.NewString()),
		updatePassword: uuid.NewString(),
		capacity:       capacity,
		registry:       registry,
		rooms:          rooms,
		issue:          issue,
		friendlyName:   friendlyName,
		isPublic:       isPublic,
		canvases:       make(map[domain.RoomKey]string),
	}
}

func (t *Town) ID() domain.TownID      { return t.id }
func (t *Town) UpdatePassword() string { return t.updatePassword }

func (t *Town) FriendlyName() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.friendlyName
}

func (t *Town) IsPubliclyListed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.isPublic
}

func (t *Town) Update(friendlyName string, isPublic *bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if friendlyName != "" {
		t.friendlyName = friendlyName
	}
	if isPublic != nil {
		t.isPublic = *isPublic
	}
}

func (t *Town) Summary() domain.TownSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return domain.TownSummary{
		ID:               t.id,
		FriendlyName:     t.friendlyName,
		CurrentOccupancy: len(t.players),
		MaximumOccupancy: t.capacity,
	}
}

// Players returns value snapshots taken under the lock. Callers hold them
// outside the lock (JSON marshaling in handlers), so they must not alias the
// live player structs that UpdatePlayerLocation mutates.
func (t *Town) Players() []domain.Player {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Player, 0, len(t.players))
	for _, p := range t.players {
		out = append(out, *p)
	}
	return out
}

// ConversationAreas returns deep copies: the occupant slice is cloned so the
// snapshot survives in-place RemoveOccupant on the live area.
func (t *Town) ConversationAreas() []domain.ConversationArea {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.ConversationArea, 0, len(t.areas))
	for _, a := range t.areas {
		cp := *a
		cp.OccupantsByID = append([]domain.PlayerID(nil), a.OccupantsByID...)
		out = append(out, cp)
	}
	return out
}

// AddListener subscribes l to this town's events. One listener per
// connection; the same listener must be removed on disconnect.
func (t *Town) AddListener(l core.TownListener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, l)
}

func (t *Town) RemoveListener(l core.TownListener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, cur := range t.listeners {
		if cur == l {
			t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
			return
		}
	}
}

// AddPlayer admits a new player and issues its session. The session has no
// connection bound yet; the client binds one by opening the event socket
// with the returned token.
func (t *Town) AddPlayer(userName string) (*Session, error) {
	p, err := domain.NewPlayer(userName)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.players) >= t.capacity {
		return nil, domain.ErrTownFull
	}
	s := t.registry.Create(p, t.id)
	s.VideoToken = t.issue()
	t.players = append(t.players, p)
	for _, l := range t.listeners {
		l.OnPlayerJoined(p)
	}
	log.Info().Str("module", "app.town").Str("town", string(t.id)).Str("player", string(p.ID)).Msg("player joined")
	return s, nil
}

// SessionByToken resolves token within this town.
func (t *Town) SessionByToken(token string) (*Session, bool) {
	s, ok := t.registry.Lookup(token)
	if !ok || s.TownID != t.id {
		return nil, false
	}
	return s, true
}

// UpdatePlayerLocation moves p and reconciles conversation-area occupancy:
// entering an area adds the player to its occupant set, leaving one removes
// it, and an area whose last occupant leaves is destroyed.
func (t *Town) UpdatePlayerLocation(p *domain.Player, loc domain.UserLocation) {
	t.mu.Lock()
	defer t.mu.Unlock()
	prev := p.Location.ConversationLabel
	p.Location = loc
	next := loc.ConversationLabel
	if prev != next {
		if prev != "" {
			t.leaveAreaLocked(p, prev)
		}
		if next != "" {
			if a := t.areaByLabelLocked(next); a != nil {
				a.AddOccupant(p.ID)
				t.notifyAreaUpdatedLocked(*a)
			} else {
				p.Location.ConversationLabel = ""
			}
		}
	}
	for _, l := range t.listeners {
		l.OnPlayerMoved(p)
	}
}

// OnChatMessage relays a chat message to every listener. Messages are never
// stored.
func (t *Town) OnChatMessage(msg domain.ChatMessage) {
	if msg.SID == "" {
		msg.SID = uuid.NewString()
	}
	if msg.DateCreated.IsZero() {
		msg.DateCreated = time.Now()
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, l := range t.listeners {
		l.OnChatMessage(msg)
	}
}

// OnDrawing relays one stroke drawn by origin on the labeled area's
// whiteboard. Strokes with out-of-range coordinates are dropped; the relay
// never transforms them.
func (t *Town) OnDrawing(origin core.Connection, line domain.LineData, label string) {
	if !line.Normalized() {
		log.Warn().Str("module", "app.town").Str("town", string(t.id)).Msg("dropped denormalized stroke")
		return
	}
	room := domain.NewRoomKey(t.id, label)
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, l := range t.listeners {
		l.OnDrawing(origin, line, room)
	}
}

// OnBoardJoin handles origin opening the labeled area's whiteboard: it
// resolves the reported occupant IDs to live connections and hands every
// listener the member set plus the room's latest canvas snapshot. Only the
// opening connection is caught up, which bounds a join to O(1) bandwidth.
func (t *Town) OnBoardJoin(origin core.Connection, label string, memberIDs []domain.PlayerID) {
	room := domain.NewRoomKey(t.id, label)
	members := t.registry.ConnectionsFor(t.id, memberIDs)
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, l := range t.listeners {
		l.OnBoardJoin(origin, room, members, t.canvases[room])
	}
}

// OnCanvasUpdate replaces the labeled area's transient canvas snapshot. The
// snapshot lives only as long as the area and the process; it exists solely
// to catch up newly joining members.
func (t *Town) OnCanvasUpdate(data, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.areaByLabelLocked(label) == nil {
		return
	}
	t.canvases[domain.NewRoomKey(t.id, label)] = data
}

// AddConversationArea creates a new area. Players already reporting the
// area's label become its initial occupants.
func (t *Town) AddConversationArea(req domain.ConversationArea) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if req.Label == "" {
		return domain.ErrLabelEmpty
	}
	if req.Topic == "" {
		return domain.ErrTopicEmpty
	}
	if t.areaByLabelLocked(req.Label) != nil {
		return domain.ErrLabelTaken
	}
	area := &domain.ConversationArea{
		Label:       req.Label,
		Topic:       req.Topic,
		BoundingBox: req.BoundingBox,
	}
	for _, p := range t.players {
		if p.Location.ConversationLabel == area.Label {
			area.AddOccupant(p.ID)
		}
	}
	t.areas = append(t.areas, area)
	t.notifyAreaUpdatedLocked(*area)
	log.Info().Str("module", "app.town").Str("town", string(t.id)).Str("label", area.Label).Msg("conversation area created")
	return nil
}

// DestroySession removes the player behind s from the town. Safe to call for
// an already destroyed session.
func (t *Town) DestroySession(s *Session) {
	t.registry.Destroy(s.Token)
	t.mu.Lock()
	defer t.mu.Unlock()
	found := false
	for i, p := range t.players {
		if p.ID == s.Player.ID {
			t.players = append(t.players[:i], t.players[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return
	}
	if label := s.Player.Location.ConversationLabel; label != "" {
		t.leaveAreaLocked(s.Player, label)
	}
	for _, l := range t.listeners {
		l.OnPlayerDisconnected(s.Player)
	}
	log.Info().Str("module", "app.town").Str("town", string(t.id)).Str("player", string(s.Player.ID)).Msg("player disconnected")
}

// Destroy tears the town down: every area is destroyed, every listener is
// told to close its connection, and every session scoped to the town is
// reclaimed. Sessions whose player never opened a socket have no disconnect
// path, so the registry purge cannot be left to connection teardown.
func (t *Town) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for len(t.areas) > 0 {
		t.destroyAreaLocked(t.areas[0])
	}
	for _, l := range t.listeners {
		l.OnTownDestroyed()
	}
	t.registry.DestroyByTown(t.id)
	t.players = nil
	log.Info().Str("module", "app.town").Str("town", string(t.id)).Msg("town destroyed")
}

func (t *Town) areaByLabelLocked(label string) *domain.ConversationArea {
	for _, a := range t.areas {
		if a.Label == label {
			return a
		}
	}
	return nil
}

func (t *Town) notifyAreaUpdatedLocked(area domain.ConversationArea) {
	for _, l := range t.listeners {
		l.OnConversationAreaUpdated(area)
	}
}

// leaveAreaLocked drops p from the labeled area's occupant set. The last
// occupant leaving destroys the area; otherwise the shrunken occupant set is
// pushed so translators for departed sockets fall out of the room.
func (t *Town) leaveAreaLocked(p *domain.Player, label string) {
	a := t.areaByLabelLocked(label)
	if a == nil {
		return
	}
	a.RemoveOccupant(p.ID)
	if len(a.OccupantsByID) == 0 {
		t.destroyAreaLocked(a)
		return
	}
	t.notifyAreaUpdatedLocked(*a)
	room := domain.NewRoomKey(t.id, a.Label)
	members := t.registry.ConnectionsFor(t.id, a.OccupantsByID)
	for _, l := range t.listeners {
		l.OnRoomUpdated(room, members)
	}
}

func (t *Town) destroyAreaLocked(a *domain.ConversationArea) {
	for i, cur := range t.areas {
		if cur == a {
			t.areas = append(t.areas[:i], t.areas[i+1:]...)
			break
		}
	}
	room := domain.NewRoomKey(t.id, a.Label)
	for _, l := range t.listeners {
		l.OnConversationAreaDestroyed(*a, room)
	}
	// Listener eviction already emptied the room for connected members; this
	// sweeps connections whose listener was already unregistered.
	t.rooms.EvictAll(room)
	delete(t.canvases, room)
	log.Info().Str("module", "app.town").Str("town", string(t.id)).Str("label", a.Label).Msg("conversation area destroyed")
}
