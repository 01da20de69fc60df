package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/townlabs/townsync/internal/domain"
)

// TownStore holds every live town. It is an explicit object constructed in
// main and passed by reference wherever towns are resolved; there is no
// ambient singleton.
type TownStore struct {
	registry *SessionRegistry
	rooms    *RoomTable
	capacity int
	issue    TokenIssuer

	mu    sync.RWMutex
	towns map[domain.TownID]*Town
}

func NewTownStore(registry *SessionRegistry, rooms *RoomTable, capacity int, issue TokenIssuer) *TownStore {
	return &TownStore{
		registry: registry,
		rooms:    rooms,
		capacity: capacity,
		issue:    issue,
		towns:    make(map[domain.TownID]*Town),
	}
}

func (s *TownStore) Create(friendlyName string, isPublic bool) *Town {
	t := NewTown(friendlyName, isPublic, s.capacity, s.registry, s.rooms, s.issue)
	s.mu.Lock()
	s.towns[t.ID()] = t
	s.mu.Unlock()
	log.Info().Str("module", "app.store").Str("town", string(t.ID())).Str("name", friendlyName).Msg("town created")
	return t
}

func (s *TownStore) Get(id domain.TownID) (*Town, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.towns[id]
	return t, ok
}

// List returns summaries of the publicly listed towns.
func (s *TownStore) List() []domain.TownSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.TownSummary, 0, len(s.towns))
	for _, t := range s.towns {
		if t.IsPubliclyListed() {
			out = append(out, t.Summary())
		}
	}
	return out
}

// Update renames or relists a town, gated by its update password.
func (s *TownStore) Update(id domain.TownID, password, friendlyName string, isPublic *bool) error {
	t, ok := s.Get(id)
	if !ok {
		return domain.ErrNoSuchTown
	}
	if t.UpdatePassword() != password {
		return domain.ErrBadPassword
	}
	t.Update(friendlyName, isPublic)
	return nil
}

// Delete destroys a town, gated by its update password. Connected clients
// receive townClosing and are disconnected.
func (s *TownStore) Delete(id domain.TownID, password string) error {
	t, ok := s.Get(id)
	if !ok {
		return domain.ErrNoSuchTown
	}
	if t.UpdatePassword() != password {
		return domain.ErrBadPassword
	}
	s.mu.Lock()
	delete(s.towns, id)
	s.mu.Unlock()
	t.Destroy()
	return nil
}
