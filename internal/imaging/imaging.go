// Package imaging renders occupancy maps as PNG heat maps.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/erazemk/regali/internal/model"
	"github.com/erazemk/regali/internal/occupancy"
)

// MaxDimension is the maximum width or height of a rendered map.
const MaxDimension = 2048

// DefaultCellSize is the edge length of one bin in pixels.
const DefaultCellSize = 16

// Palette.
var (
	colorBackground   = color.RGBA{255, 255, 255, 255}
	colorEmpty        = color.RGBA{220, 220, 220, 255}
	colorBlocked      = color.RGBA{90, 60, 140, 255}
	colorOverCapacity = color.RGBA{200, 0, 0, 255}
)

// RenderOccupancy draws one pixel per grid cell and scales the result so
// every bin becomes a cellSize square. The cell size shrinks when the map
// would exceed MaxDimension.
func RenderOccupancy(m *occupancy.Map, cellSize int) ([]byte, error) {
	w, h := m.Stats.GridWidth, m.Stats.GridHeight
	if w == 0 || h == 0 {
		w, h = 1, 1
	}
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	cellSize = min(cellSize, max(1, MaxDimension/max(w, h)))

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(src, src.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)
	for _, c := range m.Cells {
		if c.X < 0 || c.Y < 0 || c.X >= w || c.Y >= h {
			continue
		}
		src.Set(c.X, c.Y, cellColor(c))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w*cellSize, h*cellSize))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// cellColor fades from green to red as the bin fills up.
func cellColor(c occupancy.Cell) color.RGBA {
	switch {
	case c.Status == model.BinStatusBlocked:
		return colorBlocked
	case c.OverCapacity:
		return colorOverCapacity
	case c.ItemCount == 0:
		return colorEmpty
	}

	ratio := c.Ratio
	if c.Capacity == 0 {
		ratio = 1
	}
	ratio = min(max(ratio, 0), 1)
	return color.RGBA{
		R: uint8(255 * ratio),
		G: uint8(200 * (1 - ratio)),
		B: 60,
		A: 255,
	}
}
