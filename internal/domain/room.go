package domain

// RoomKey identifies the broadcast group for one conversation area within one
// town. It is compared structurally and used directly as a map key; the string
// form exists only for the wire and for logs.
type RoomKey struct {
	TownID TownID `json:"townId"`
	Label  string `json:"label"`
}

func NewRoomKey(townID TownID, label string) RoomKey {
	return RoomKey{TownID: townID, Label: label}
}

func (k RoomKey) String() string {
	return string(k.TownID) + "#" + k.Label
}

func (k RoomKey) IsZero() bool {
	return k == RoomKey{}
}
