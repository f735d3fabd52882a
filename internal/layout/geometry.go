package layout

import (
	"math"

	"github.com/KevinKickass/OpenSitePlanner/internal/types"
)

// Place returns a copy of the layout with X/Y assigned to every device.
// Rows are stacked RowPitch apart; within a row the gap after a device
// depends on its category and the category of its right-hand neighbour.
func (e *Engine) Place(layout types.Layout) types.Layout {
	placed := make(types.Layout, len(layout))

	for r, row := range layout {
		out := make(types.Row, len(row))
		x := 0.0
		y := float64(r) * e.cfg.RowPitch

		for i, d := range row {
			px, py := x, y
			d.X = &px
			d.Y = &py
			out[i] = d

			if i < len(row)-1 {
				x += d.Width + e.gapBetween(d, row[i+1])
			}
		}
		placed[r] = out
	}

	return placed
}

func (e *Engine) gapBetween(current, next types.Device) float64 {
	switch {
	case current.IsTransformer() && next.IsStorage():
		return e.cfg.WalkwayWidth
	case current.IsTransformer() && next.IsTransformer():
		return e.cfg.TransformerGap
	default:
		return e.cfg.StorageGap
	}
}

// Buffer computes the buffer area with the default offset of one maximum
// device width.
func (e *Engine) Buffer(layout types.Layout) types.BufferArea {
	return e.ComputeBuffer(layout, e.cfg.MaxDeviceWidth)
}

// ComputeBuffer inflates the bounding box of all positioned devices by offset
// and clamps each side to MinBufferSide. Devices missing a coordinate are
// skipped.
//
// Width and length add minX/minY instead of subtracting them. Stored site
// layouts were rendered with this formula, so it is kept as is.
func (e *Engine) ComputeBuffer(layout types.Layout, offset float64) types.BufferArea {
	minSide := e.cfg.MinBufferSide

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false

	for _, row := range layout {
		for _, d := range row {
			if !d.Positioned() {
				continue
			}
			found = true
			minX = math.Min(minX, *d.X)
			minY = math.Min(minY, *d.Y)
			maxX = math.Max(maxX, *d.X+d.Width)
			maxY = math.Max(maxY, *d.Y+d.Length)
		}
	}

	if !found {
		return types.BufferArea{Width: minSide, Length: minSide, Area: minSide * minSide}
	}

	width := math.Max(0, maxX+minX+2*offset)
	length := math.Max(0, maxY+minY+2*offset)
	width = math.Max(width, minSide)
	length = math.Max(length, minSide)

	return types.BufferArea{
		X:      minX - offset,
		Y:      minY - offset,
		Width:  width,
		Length: length,
		Area:   width * length,
	}
}
