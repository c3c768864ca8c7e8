package model

import "time"

// Coordinate is the stable identity of a bin within its zone.
type Coordinate struct {
	Corridor string `json:"corridor"`
	Shelf    string `json:"shelf"`
	Position string `json:"position"`
}

func (c Coordinate) String() string {
	return c.Corridor + "/" + c.Shelf + "/" + c.Position
}

// BinStatus is the lifecycle state of a persisted bin. Deleted bins have no
// row, so there is no deleted status.
type BinStatus string

// Bin statuses.
const (
	BinStatusActive  BinStatus = "active"
	BinStatusBlocked BinStatus = "blocked"
)

// Bin is the smallest addressable storage location.
type Bin struct {
	ID            int64      `json:"id"`
	ZoneID        int64      `json:"zoneId"`
	Coordinate    Coordinate `json:"coordinate"`
	Address       string     `json:"address"`
	CorridorLabel string     `json:"corridorLabel"`
	ShelfLabel    string     `json:"shelfLabel"`
	PositionLabel string     `json:"positionLabel"`
	Capacity      int        `json:"capacity"`
	Status        BinStatus  `json:"status"`
	BlockedReason string     `json:"blockedReason,omitempty"`
	Layout        *BinLayout `json:"layout,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	// Derived from attached items at read time.
	Occupancy int `json:"occupancy"`
	ItemCount int `json:"itemCount"`
}

// Blocked reports whether the bin was kept only because it still holds stock.
func (b *Bin) Blocked() bool {
	return b.Status == BinStatusBlocked
}

// BinLayout overrides the grid placement of a single bin.
type BinLayout struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BlockedBin describes a bin that could not be removed.
type BlockedBin struct {
	BinID      int64      `json:"binId"`
	Coordinate Coordinate `json:"coordinate"`
	Address    string     `json:"address"`
	Occupancy  int        `json:"occupancy"`
	ItemCount  int        `json:"itemCount"`
	Reason     string     `json:"reason"`
}
