package structure

import (
	"strings"

	"github.com/erazemk/regali/internal/model"
)

// AddressSeparator joins the parts of a bin address. Codes cannot contain it.
const AddressSeparator = "-"

// Address derives the address of a coordinate in a zone. The format is
// persisted and used for lookups: ZONE-CORRIDOR-SHELF-POSITION.
func Address(zoneCode, corridor, shelf, position string) string {
	return strings.Join([]string{zoneCode, corridor, shelf, position}, AddressSeparator)
}

// Slot is the desired state of one bin derived from a normalized structure.
type Slot struct {
	Coordinate    model.Coordinate
	Address       string
	CorridorLabel string
	ShelfLabel    string
	PositionLabel string
	Capacity      int
}

// Expand lists the slots of a normalized definition in definition order.
func Expand(zoneCode string, def model.StructureDefinition) []Slot {
	slots := make([]Slot, 0, def.PositionCount())
	for _, c := range def.Corridors {
		for _, s := range c.Shelves {
			for _, p := range s.Positions {
				slots = append(slots, Slot{
					Coordinate:    model.Coordinate{Corridor: c.Code, Shelf: s.Code, Position: p.Code},
					Address:       Address(zoneCode, c.Code, s.Code, p.Code),
					CorridorLabel: c.Label,
					ShelfLabel:    s.Label,
					PositionLabel: p.Label,
					Capacity:      def.CapacityFor(s, p),
				})
			}
		}
	}
	return slots
}
