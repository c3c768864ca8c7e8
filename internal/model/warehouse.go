package model

import "time"

// Warehouse groups zones.
type Warehouse struct {
	ID        int64      `json:"id"`
	Tenant    string     `json:"tenant"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
