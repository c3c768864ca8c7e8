package occupancy

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

var xlsxHeaders = []string{
	"Address", "Corridor", "Shelf", "Position", "X", "Y",
	"Capacity", "Occupancy", "Items", "Ratio", "Status", "Over capacity",
}

// WriteXLSX exports the map as a spreadsheet with one row per bin and a
// second sheet with the zone statistics.
func WriteXLSX(m *Map, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Bins"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := setRow(f, sheet, 1, toAny(xlsxHeaders)); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(xlsxHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("setting header style: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", "A", 22); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}

	for i, c := range m.Cells {
		row := []any{
			c.Address, c.Coordinate.Corridor, c.Coordinate.Shelf, c.Coordinate.Position, c.X, c.Y,
			c.Capacity, c.Occupancy, c.ItemCount, c.Ratio, string(c.Status), c.OverCapacity,
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet("Stats"); err != nil {
		return fmt.Errorf("creating stats sheet: %w", err)
	}
	stats := [][]any{
		{"Zone", m.ZoneCode},
		{"Total bins", m.Stats.TotalBins},
		{"Occupied bins", m.Stats.OccupiedBins},
		{"Empty bins", m.Stats.EmptyBins},
		{"Blocked bins", m.Stats.BlockedBins},
		{"Over capacity bins", m.Stats.OverCapacityBins},
		{"Total capacity", m.Stats.TotalCapacity},
		{"Total occupancy", m.Stats.TotalOccupancy},
		{"Utilization %", m.Stats.UtilizationPercent},
	}
	for i, row := range stats {
		if err := setRow(f, "Stats", i+1, row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing spreadsheet: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("converting coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
