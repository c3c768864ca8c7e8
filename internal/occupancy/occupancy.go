// Package occupancy builds the 2D occupancy map of a zone from its bins.
package occupancy

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/erazemk/regali/internal/model"
)

// Where a cell's position came from.
const (
	PlacementBin      = "bin"
	PlacementZone     = "zone"
	PlacementGrid     = "grid"
	PlacementOverflow = "overflow"
)

// Cell is one bin placed on the map.
type Cell struct {
	BinID        int64            `json:"binId"`
	Coordinate   model.Coordinate `json:"coordinate"`
	Address      string           `json:"address"`
	X            int              `json:"x"`
	Y            int              `json:"y"`
	Placement    string           `json:"placement"`
	Capacity     int              `json:"capacity"`
	Occupancy    int              `json:"occupancy"`
	ItemCount    int              `json:"itemCount"`
	Ratio        float64          `json:"ratio"`
	Status       model.BinStatus  `json:"status"`
	OverCapacity bool             `json:"overCapacity"`
}

// Stats summarizes a zone's occupancy.
type Stats struct {
	TotalBins          int     `json:"totalBins"`
	OccupiedBins       int     `json:"occupiedBins"`
	EmptyBins          int     `json:"emptyBins"`
	BlockedBins        int     `json:"blockedBins"`
	OverCapacityBins   int     `json:"overCapacityBins"`
	TotalCapacity      int     `json:"totalCapacity"`
	TotalOccupancy     int     `json:"totalOccupancy"`
	UtilizationPercent float64 `json:"utilizationPercent"`
	GridWidth          int     `json:"gridWidth"`
	GridHeight         int     `json:"gridHeight"`
}

// Map is the occupancy map of one zone.
type Map struct {
	ZoneID   int64  `json:"zoneId"`
	ZoneCode string `json:"zoneCode"`
	Cells    []Cell `json:"occupancyData"`
	Stats    Stats  `json:"stats"`
}

var hundred = decimal.NewFromInt(100)

// Ratio is occupancy divided by capacity, rounded to two decimals. A bin
// without capacity has ratio 0. Capacity is soft, so the ratio may exceed 1.
func Ratio(occupancy, capacity int) decimal.Decimal {
	if capacity <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(occupancy)).
		Div(decimal.NewFromInt(int64(capacity))).
		Round(2)
}

// Build places every bin of the zone and computes the map statistics.
// A bin's own layout wins over the zone layout, which wins over the
// default grid derived from the zone structure.
func Build(zone *model.Zone, bins []model.Bin) *Map {
	m := &Map{ZoneID: zone.ID, ZoneCode: zone.Code, Cells: make([]Cell, 0, len(bins))}

	grid, gridHeight := defaultGrid(zone.Structure)
	custom := map[model.Coordinate]model.LayoutCell{}
	if zone.Layout != nil {
		for _, c := range zone.Layout.Cells {
			custom[c.Coordinate()] = c
		}
	}

	sorted := make([]model.Bin, len(bins))
	copy(sorted, bins)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	overflowX := 0
	var capacity, occupancy int64
	for _, b := range sorted {
		cell := Cell{
			BinID:      b.ID,
			Coordinate: b.Coordinate,
			Address:    b.Address,
			Capacity:   b.Capacity,
			Occupancy:  b.Occupancy,
			ItemCount:  b.ItemCount,
			Ratio:      Ratio(b.Occupancy, b.Capacity).InexactFloat64(),
			Status:     b.Status,
		}
		cell.OverCapacity = b.Capacity > 0 && b.Occupancy > b.Capacity

		if lc, ok := custom[b.Coordinate]; ok {
			cell.X, cell.Y, cell.Placement = lc.X, lc.Y, PlacementZone
		} else if p, ok := grid[b.Coordinate]; ok {
			cell.X, cell.Y, cell.Placement = p.x, p.y, PlacementGrid
		} else {
			cell.X, cell.Y, cell.Placement = overflowX, gridHeight+1, PlacementOverflow
			overflowX++
		}
		if b.Layout != nil {
			cell.X, cell.Y, cell.Placement = b.Layout.X, b.Layout.Y, PlacementBin
		}

		m.Cells = append(m.Cells, cell)
		m.Stats.add(cell)
		capacity += int64(b.Capacity)
		occupancy += int64(b.Occupancy)
	}

	if capacity > 0 {
		m.Stats.UtilizationPercent = decimal.NewFromInt(occupancy).
			Div(decimal.NewFromInt(capacity)).
			Mul(hundred).
			Round(2).
			InexactFloat64()
	}
	if zone.Layout != nil {
		m.Stats.GridWidth = max(m.Stats.GridWidth, zone.Layout.Columns)
		m.Stats.GridHeight = max(m.Stats.GridHeight, zone.Layout.Rows)
	}
	return m
}

func (s *Stats) add(c Cell) {
	s.TotalBins++
	s.TotalCapacity += c.Capacity
	s.TotalOccupancy += c.Occupancy
	if c.ItemCount > 0 {
		s.OccupiedBins++
	} else {
		s.EmptyBins++
	}
	if c.Status == model.BinStatusBlocked {
		s.BlockedBins++
	}
	if c.OverCapacity {
		s.OverCapacityBins++
	}
	s.GridWidth = max(s.GridWidth, c.X+1)
	s.GridHeight = max(s.GridHeight, c.Y+1)
}

type point struct{ x, y int }

// defaultGrid lays corridors out left to right. Each corridor block is as
// wide as its widest shelf plus one aisle column; a shelf is a row.
func defaultGrid(def model.StructureDefinition) (map[model.Coordinate]point, int) {
	grid := make(map[model.Coordinate]point, def.PositionCount())
	offset, height := 0, 0
	for _, c := range def.Corridors {
		width := 0
		for y, s := range c.Shelves {
			for x, p := range s.Positions {
				grid[model.Coordinate{Corridor: c.Code, Shelf: s.Code, Position: p.Code}] = point{offset + x, y}
			}
			width = max(width, len(s.Positions))
		}
		height = max(height, len(c.Shelves))
		offset += width + 1
	}
	return grid, height
}
