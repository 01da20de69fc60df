package domain

type TownID string

// TownSummary is the public listing view of a town.
type TownSummary struct {
	ID               TownID `json:"townId"`
	FriendlyName     string `json:"friendlyName"`
	CurrentOccupancy int    `json:"currentOccupancy"`
	MaximumOccupancy int    `json:"maximumOccupancy"`
}
