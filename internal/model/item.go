package model

import "time"

// Item is a stock record that may be stored in a bin.
type Item struct {
	ID               int64      `json:"id"`
	Tenant           string     `json:"tenant"`
	SKU              string     `json:"sku"`
	Name             string     `json:"name"`
	Quantity         int        `json:"quantity"`
	BinID            *int64     `json:"binId"`
	LastKnownAddress string     `json:"lastKnownAddress,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty"`

	// Joined fields (not always populated).
	BinAddress string `json:"binAddress,omitempty"`
}

// Movement records one change of an item's bin.
type Movement struct {
	ID          int64     `json:"id"`
	ItemID      int64     `json:"itemId"`
	FromBinID   *int64    `json:"fromBinId,omitempty"`
	ToBinID     *int64    `json:"toBinId,omitempty"`
	FromAddress string    `json:"fromAddress,omitempty"`
	ToAddress   string    `json:"toAddress,omitempty"`
	Reason      string    `json:"reason"`
	MovedAt     time.Time `json:"movedAt"`
	MovedBy     *int64    `json:"movedBy,omitempty"`
}

// Movement reasons.
const (
	MovementStored   = "stored"
	MovementMoved    = "moved"
	MovementRemoved  = "removed"
	MovementDetached = "detached"
)
