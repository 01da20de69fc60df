package domain

import "errors"

var (
	ErrTopicEmpty    = errors.New("conversation topic empty")
	ErrLabelTaken    = errors.New("conversation label already in use")
	ErrNoSuchArea    = errors.New("no such conversation area")
	ErrLabelEmpty    = errors.New("conversation label empty")
	ErrTownFull      = errors.New("town is at capacity")
	ErrNoSuchTown    = errors.New("no such town")
	ErrBadPassword   = errors.New("invalid town update password")
	ErrNoSuchSession = errors.New("no such session")
)

// BoundingBox is the area's footprint on the map. Geometry is owned by the
// clients; the server only carries it through.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ConversationArea is a sub-region of a town with a topic and an occupant set.
// Occupancy is the single source of truth for whiteboard room membership.
type ConversationArea struct {
	Label         string      `json:"label"`
	Topic         string      `json:"topic"`
	OccupantsByID []PlayerID  `json:"occupantsByID"`
	BoundingBox   BoundingBox `json:"boundingBox"`
}

func (a *ConversationArea) HasOccupant(id PlayerID) bool {
	for _, o := range a.OccupantsByID {
		if o == id {
			return true
		}
	}
	return false
}

func (a *ConversationArea) AddOccupant(id PlayerID) {
	if a.HasOccupant(id) {
		return
	}
	a.OccupantsByID = append(a.OccupantsByID, id)
}

func (a *ConversationArea) RemoveOccupant(id PlayerID) {
	out := a.OccupantsByID[:0]
	for _, o := range a.OccupantsByID {
		if o != id {
			out = append(out, o)
		}
	}
	a.OccupantsByID = out
}
