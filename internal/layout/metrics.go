package layout

import (
	"math"

	"github.com/KevinKickass/OpenSitePlanner/internal/types"
)

// DeviceArea is the summed footprint of the devices themselves.
func DeviceArea(devices []types.Device) float64 {
	total := 0.0
	for _, d := range devices {
		total += d.Length * d.Width
	}
	return total
}

// FootprintArea is the area of the bounding box spanning the origin and every
// positioned device.
func FootprintArea(devices []types.Device) float64 {
	var minX, minY, maxX, maxY float64
	for _, d := range devices {
		if !d.Positioned() {
			continue
		}
		minX = math.Min(minX, *d.X)
		minY = math.Min(minY, *d.Y)
		maxX = math.Max(maxX, *d.X+d.Width)
		maxY = math.Max(maxY, *d.Y+d.Length)
	}
	return (maxX - minX) * (maxY - minY)
}

func TotalCapacity(devices []types.Device) float64 {
	total := 0.0
	for _, d := range devices {
		total += d.CapacityKWh
	}
	return total
}

func HardwareCost(devices []types.Device) float64 {
	total := 0.0
	for _, d := range devices {
		total += d.Cost
	}
	return total
}

// Summary bundles the derived figures of a placed layout.
type Summary struct {
	DeviceCount   int              `json:"device_count"`
	RowCount      int              `json:"row_count"`
	DeviceArea    float64          `json:"device_area"`
	FootprintArea float64          `json:"footprint_area"`
	TotalCapacity float64          `json:"total_capacity_kwh"`
	HardwareCost  float64          `json:"hardware_cost"`
	Buffer        types.BufferArea `json:"buffer"`
}

// Summarize derives area, capacity and cost figures from a placed layout.
func (e *Engine) Summarize(placed types.Layout) Summary {
	devices := placed.Flatten()
	return Summary{
		DeviceCount:   len(devices),
		RowCount:      len(placed),
		DeviceArea:    DeviceArea(devices),
		FootprintArea: FootprintArea(devices),
		TotalCapacity: TotalCapacity(devices),
		HardwareCost:  HardwareCost(devices),
		Buffer:        e.Buffer(placed),
	}
}
