package model

import "time"

// Zone is a subdivision of a warehouse holding a structured set of bins.
type Zone struct {
	ID          int64               `json:"id"`
	Tenant      string              `json:"tenant"`
	WarehouseID int64               `json:"warehouseId"`
	Code        string              `json:"code"`
	Name        string              `json:"name"`
	Active      bool                `json:"active"`
	Structure   StructureDefinition `json:"structure"`
	Layout      *ZoneLayout         `json:"layout,omitempty"`
	Version     int64               `json:"version"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	DeletedAt   *time.Time          `json:"deletedAt,omitempty"`
}

// StructureDefinition is the hierarchical configuration of a zone:
// corridors hold shelves, shelves hold positions, and every position
// becomes one bin.
type StructureDefinition struct {
	DefaultCapacity int        `json:"defaultCapacity,omitempty" jsonschema:"minimum=0"`
	Corridors       []Corridor `json:"corridors" jsonschema:"minItems=1"`
}

// Corridor is the top level of a zone structure.
type Corridor struct {
	Code    string  `json:"code" jsonschema:"pattern=^[A-Za-z0-9_]+$,maxLength=16"`
	Label   string  `json:"label,omitempty" jsonschema:"maxLength=64"`
	Shelves []Shelf `json:"shelves" jsonschema:"minItems=1"`
}

// Shelf belongs to a corridor.
type Shelf struct {
	Code      string     `json:"code" jsonschema:"pattern=^[A-Za-z0-9_]+$,maxLength=16"`
	Label     string     `json:"label,omitempty" jsonschema:"maxLength=64"`
	Capacity  *int       `json:"capacity,omitempty" jsonschema:"minimum=0"`
	Positions []Position `json:"positions" jsonschema:"minItems=1"`
}

// Position is a leaf of the structure.
type Position struct {
	Code     string `json:"code" jsonschema:"pattern=^[A-Za-z0-9_]+$,maxLength=16"`
	Label    string `json:"label,omitempty" jsonschema:"maxLength=64"`
	Capacity *int   `json:"capacity,omitempty" jsonschema:"minimum=0"`
}

// CapacityFor resolves the capacity of a position: the position's own value
// wins, then the shelf's, then the definition default.
func (d StructureDefinition) CapacityFor(shelf Shelf, pos Position) int {
	if pos.Capacity != nil {
		return *pos.Capacity
	}
	if shelf.Capacity != nil {
		return *shelf.Capacity
	}
	return d.DefaultCapacity
}

// PositionCount returns the number of leaf positions in the definition.
func (d StructureDefinition) PositionCount() int {
	n := 0
	for _, c := range d.Corridors {
		for _, s := range c.Shelves {
			n += len(s.Positions)
		}
	}
	return n
}

// ZoneLayout is an operator-supplied 2D placement that replaces the
// automatic grid for the listed coordinates.
type ZoneLayout struct {
	Columns int          `json:"columns,omitempty"`
	Rows    int          `json:"rows,omitempty"`
	Cells   []LayoutCell `json:"cells"`
}

// LayoutCell places one coordinate on the grid.
type LayoutCell struct {
	Corridor string `json:"corridor"`
	Shelf    string `json:"shelf"`
	Position string `json:"position"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

// Coordinate returns the coordinate this cell places.
func (c LayoutCell) Coordinate() Coordinate {
	return Coordinate{Corridor: c.Corridor, Shelf: c.Shelf, Position: c.Position}
}
