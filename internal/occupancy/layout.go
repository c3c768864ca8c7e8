package occupancy

import (
	"fmt"
	"strings"

	"github.com/erazemk/regali/internal/model"
	"github.com/erazemk/regali/internal/structure"
)

// ValidateLayout normalizes a custom zone layout against the zone's current
// structure. Cells must name existing coordinates, stay inside the declared
// bounds, and not share a coordinate or a grid point.
func ValidateLayout(def model.StructureDefinition, layout model.ZoneLayout) (model.ZoneLayout, error) {
	known := map[model.Coordinate]bool{}
	for _, slot := range structure.Expand("", def) {
		known[slot.Coordinate] = true
	}

	var violations []structure.Violation
	add := func(i int, coord, format string, args ...any) {
		violations = append(violations, structure.Violation{
			Path:       fmt.Sprintf("cells[%d]", i),
			Coordinate: coord,
			Message:    fmt.Sprintf(format, args...),
		})
	}

	if layout.Columns < 0 || layout.Rows < 0 {
		violations = append(violations, structure.Violation{Path: "layout", Message: "columns and rows must not be negative"})
	}

	out := model.ZoneLayout{Columns: layout.Columns, Rows: layout.Rows, Cells: make([]model.LayoutCell, 0, len(layout.Cells))}
	seenCoord := map[model.Coordinate]int{}
	seenPoint := map[point]int{}
	for i, c := range layout.Cells {
		c.Corridor = strings.ToUpper(strings.TrimSpace(c.Corridor))
		c.Shelf = strings.ToUpper(strings.TrimSpace(c.Shelf))
		c.Position = strings.ToUpper(strings.TrimSpace(c.Position))
		coord := c.Coordinate()
		name := coord.String()

		if !known[coord] {
			add(i, name, "coordinate is not part of the zone structure")
		}
		if c.X < 0 || c.Y < 0 {
			add(i, name, "x and y must not be negative")
		}
		if layout.Columns > 0 && c.X >= layout.Columns {
			add(i, name, "x must be less than %d columns", layout.Columns)
		}
		if layout.Rows > 0 && c.Y >= layout.Rows {
			add(i, name, "y must be less than %d rows", layout.Rows)
		}
		if j, dup := seenCoord[coord]; dup {
			add(i, name, "coordinate already placed by cells[%d]", j)
		}
		if j, dup := seenPoint[point{c.X, c.Y}]; dup {
			add(i, name, "grid point (%d,%d) already used by cells[%d]", c.X, c.Y, j)
		}
		seenCoord[coord] = i
		seenPoint[point{c.X, c.Y}] = i
		out.Cells = append(out.Cells, c)
	}

	if len(violations) > 0 {
		return model.ZoneLayout{}, &structure.ValidationError{Violations: violations}
	}
	return out, nil
}
