// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxUserNameLen = 36

var (
	ErrUserNameEmpty   = errors.New("user name empty")
	ErrUserNameTooLong = errors.New("user name too long")
)

type PlayerID string

// UserLocation is a player's position as reported by its client.
// ConversationLabel is set while the player stands inside a conversation area.
type UserLocation struct {
	X                 float64 `json:"x"`
	Y                 float64 `json:"y"`
	Rotation          string  `json:"rotation"`
	Moving            bool    `json:"moving"`
	ConversationLabel string  `json:"conversationLabel,omitempty"`
}

type Player struct {
	ID       PlayerID     `json:"id"`
	UserName string       `json:"userName"`
	Location UserLocation `json:"location"`
}

// NewPlayer avoids raw literals in adapters and keeps construction obvious.
func NewPlayer(userName string) (*Player, error) {
	if len(userName) == 0 {
		return nil, ErrUserNameEmpty
	}
	if len(userName) > MaxUserNameLen {
		return nil, ErrUserNameTooLong
	}
	return &Player{
		ID:       PlayerID(uuid.NewString()),
		UserName: userName,
		Location: UserLocation{X: 0, Y: 0, Rotation: "front", Moving: false},
	}, nil
}
