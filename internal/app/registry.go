package app

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/townlabs/townsync/internal/core"
	"github.com/townlabs/townsync/internal/domain"
)

// Session is the authenticated binding between a player and a town, addressed
// by an opaque token. The token is immutable once issued; the bound connection
// is a non-owning back-reference mutated only through the registry.
type Session struct {
	Player     *domain.Player
	Token      string
	TownID     domain.TownID
	VideoToken string

	conn core.Connection
}

// SessionRegistry maps session tokens to live sessions. One instance exists
// per running server and is shared by every connection handler.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*Session)}
}

// Create allocates a fresh session with an unguessable token and no
// connection bound yet.
func (r *SessionRegistry) Create(p *domain.Player, townID domain.TownID) *Session {
	s := &Session{
		Player: p,
		Token:  uuid.NewString(),
		TownID: townID,
	}
	r.mu.Lock()
	r.sessions[s.Token] = s
	r.mu.Unlock()
	log.Debug().Str("module", "app.registry").Str("player", string(p.ID)).Str("town", string(townID)).Msg("session created")
	return s
}

// Lookup resolves a token to its session. An unknown token is not an error
// to recover from: the caller must treat it as unauthenticated.
func (r *SessionRegistry) Lookup(token string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	return s, ok
}

// Bind replaces the session's bound connection atomically. The prior
// connection, if live, is left untouched; its own disconnect path is
// responsible for cleanup.
func (r *SessionRegistry) Bind(token string, conn core.Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		s.conn = conn
	}
}

// IsBound reports whether conn is still the session's bound connection.
// A stale connection disconnecting after a rebind must not tear the
// session down.
func (r *SessionRegistry) IsBound(token string, conn core.Connection) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[token]
	return ok && s.conn == conn
}

// Destroy removes the token from the registry. Destroying an already
// destroyed session is a no-op.
func (r *SessionRegistry) Destroy(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; ok {
		delete(r.sessions, token)
		log.Debug().Str("module", "app.registry").Msg("session destroyed")
	}
}

// DestroyByTown removes every session scoped to townID, connected or not. A
// town being destroyed must not leave never-connected sessions behind; those
// have no disconnect path of their own.
func (r *SessionRegistry) DestroyByTown(townID domain.TownID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, s := range r.sessions {
		if s.TownID == townID {
			delete(r.sessions, token)
		}
	}
	log.Debug().Str("module", "app.registry").Str("town", string(townID)).Msg("town sessions destroyed")
}

// ConnectionsFor returns the bound connections of the given town's players,
// in no particular order. Players without a live connection are skipped.
func (r *SessionRegistry) ConnectionsFor(townID domain.TownID, playerIDs []domain.PlayerID) []core.Connection {
	want := make(map[domain.PlayerID]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		want[id] = struct{}{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Connection, 0, len(playerIDs))
	for _, s := range r.sessions {
		if s.TownID != townID || s.conn == nil {
			continue
		}
		if _, ok := want[s.Player.ID]; ok {
			out = append(out, s.conn)
		}
	}
	return out
}
