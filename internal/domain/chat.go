package domain

import "time"

// ChatMessage is relayed to every town listener, never stored.
type ChatMessage struct {
	Author      string    `json:"author"`
	SID         string    `json:"sid"`
	Body        string    `json:"body"`
	DateCreated time.Time `json:"dateCreated"`
}
