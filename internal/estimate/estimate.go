// Package estimate turns hardware cost and capacity into a full system cost
// using soft-cost multipliers.
package estimate

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/KevinKickass/OpenSitePlanner/internal/layout"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
)

var ErrUnknownMultiplier = errors.New("unknown multiplier type")

type Line struct {
	Name    string  `json:"name"`
	Display string  `json:"display"`
	Amount  float64 `json:"amount"`
}

type Estimate struct {
	HardwareCost  float64 `json:"hardware_cost"`
	TotalCapacity float64 `json:"total_capacity_kwh"`
	Lines         []Line  `json:"lines"`
	TotalCost     float64 `json:"total_cost"`
}

// LineCost applies one multiplier to the given hardware cost and capacity.
func LineCost(m types.CostMultiplier, hardwareCost, capacity float64) (float64, error) {
	switch m.MultiplierType {
	case types.MultiplierPercentOfHardware:
		return hardwareCost * m.Multiplier, nil
	case types.MultiplierCostPerKWh:
		return capacity * m.Multiplier, nil
	default:
		return 0, fmt.Errorf("%w: %q (%s)", ErrUnknownMultiplier, m.MultiplierType, m.Name)
	}
}

// Compute estimates the system cost of devices. Lines follow the multipliers'
// sort order.
func Compute(devices []types.Device, multipliers []types.CostMultiplier) (Estimate, error) {
	hardware := layout.HardwareCost(devices)
	capacity := layout.TotalCapacity(devices)

	ordered := slices.Clone(multipliers)
	slices.SortStableFunc(ordered, func(a, b types.CostMultiplier) int {
		return cmp.Compare(a.Sort, b.Sort)
	})

	est := Estimate{
		HardwareCost:  hardware,
		TotalCapacity: capacity,
		Lines:         make([]Line, 0, len(ordered)),
		TotalCost:     hardware,
	}

	for _, m := range ordered {
		amount, err := LineCost(m, hardware, capacity)
		if err != nil {
			return Estimate{}, err
		}
		est.Lines = append(est.Lines, Line{Name: m.Name, Display: m.Display, Amount: amount})
		est.TotalCost += amount
	}

	return est, nil
}
