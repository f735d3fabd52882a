// Package layout arranges site devices into rows and derives the geometry
// used for rendering and area estimates.
//
// Assignment is a single greedy pass over the transformers: every
// transformer opens a new row until the row ceiling is reached, and after
// that joins the row with the lowest summed capacity. Storage devices follow
// their transformer two at a time.
package layout

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/KevinKickass/OpenSitePlanner/internal/config"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
)

// ErrInvalidDevice is returned when a device record cannot be laid out.
var ErrInvalidDevice = errors.New("invalid device")

// storagePerTransformer is the wiring ratio of storage units per transformer.
const storagePerTransformer = 2

type Engine struct {
	cfg     config.LayoutConfig
	maxRows int
}

func NewEngine(cfg config.LayoutConfig) *Engine {
	return &Engine{
		cfg:     cfg,
		maxRows: MaxRowCount(cfg),
	}
}

// MaxRowCount is the number of rows that fit into the configured system width.
func MaxRowCount(cfg config.LayoutConfig) int {
	pitch := cfg.MaxDeviceWidth + cfg.WalkwayWidth
	if pitch <= 0 {
		return 0
	}
	return int(math.Floor(cfg.MaxSystemWidth / pitch))
}

func (e *Engine) MaxRows() int {
	return e.maxRows
}

func (e *Engine) Config() config.LayoutConfig {
	return e.cfg
}

// Assign partitions devices into rows. The input slice is neither reordered
// nor mutated; the returned layout holds copies.
//
// Storage and other devices left over after the transformer pass are placed
// one by one into the lowest-capacity row. Without any transformer there is
// no row to place into and the layout is empty.
func (e *Engine) Assign(devices []types.Device) (types.Layout, error) {
	if err := Validate(devices); err != nil {
		return nil, err
	}

	sorted := slices.Clone(devices)
	slices.SortStableFunc(sorted, func(a, b types.Device) int {
		return cmp.Compare(a.Width, b.Width)
	})

	var transformers, storage, other []types.Device
	for _, d := range sorted {
		switch {
		case d.IsTransformer():
			transformers = append(transformers, d)
		case d.IsStorage():
			storage = append(storage, d)
		default:
			other = append(other, d)
		}
	}

	layout := make(types.Layout, 0, min(len(transformers), e.maxRows))

	for _, transformer := range transformers {
		var target int

		if len(layout) < e.maxRows {
			row := types.Row{transformer}
			for i := 0; i < storagePerTransformer && len(storage) > 0; i++ {
				row = append(row, storage[0])
				storage = storage[1:]
			}
			for len(other) > 0 && len(row) < 2 {
				row = append(row, other[0])
				other = other[1:]
			}
			layout = append(layout, row)
			target = len(layout) - 1
		} else {
			target = lowestCapacityRow(layout)
			layout[target] = append(layout[target], transformer)

			// capacities shift after every insert, so the target is recomputed
			for i := 0; i < storagePerTransformer && len(storage) > 0; i++ {
				idx := lowestCapacityRow(layout)
				layout[idx] = append(layout[idx], storage[0])
				storage = storage[1:]
			}
			for len(other) > 0 && len(layout[target]) < 2 {
				idx := lowestCapacityRow(layout)
				layout[idx] = append(layout[idx], other[0])
				other = other[1:]
			}
		}

		sortByNameDesc(layout[target])
	}

	if len(layout) == 0 {
		return layout, nil
	}

	touched := make(map[int]struct{})
	for _, d := range slices.Concat(storage, other) {
		idx := lowestCapacityRow(layout)
		layout[idx] = append(layout[idx], d)
		touched[idx] = struct{}{}
	}
	for idx := range touched {
		sortByNameDesc(layout[idx])
	}

	return layout, nil
}

// Validate checks every device for the fields the engine depends on.
func Validate(devices []types.Device) error {
	for i, d := range devices {
		if err := validateDevice(d); err != nil {
			return fmt.Errorf("%w: device %d (%q): %v", ErrInvalidDevice, i, d.Name, err)
		}
	}
	return nil
}

func validateDevice(d types.Device) error {
	if strings.TrimSpace(string(d.Category)) == "" {
		return errors.New("missing category")
	}
	if !isFinite(d.Width) || d.Width <= 0 {
		return fmt.Errorf("width must be a positive number, got %v", d.Width)
	}
	if !isFinite(d.Length) || d.Length <= 0 {
		return fmt.Errorf("length must be a positive number, got %v", d.Length)
	}
	if !isFinite(d.Cost) || d.Cost < 0 {
		return fmt.Errorf("cost must be a non-negative number, got %v", d.Cost)
	}
	if !isFinite(d.CapacityKWh) {
		return fmt.Errorf("capacity_kwh must be a finite number, got %v", d.CapacityKWh)
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// RowCapacity sums capacity_kwh over a row, left to right.
func RowCapacity(row types.Row) float64 {
	total := 0.0
	for _, d := range row {
		total += d.CapacityKWh
	}
	return total
}

// lowestCapacityRow returns the index of the row with the smallest summed
// capacity. Ties go to the lowest index.
func lowestCapacityRow(layout types.Layout) int {
	best := 0
	bestCapacity := math.Inf(1)
	for i, row := range layout {
		if c := RowCapacity(row); c < bestCapacity {
			best = i
			bestCapacity = c
		}
	}
	return best
}

func sortByNameDesc(row types.Row) {
	slices.SortStableFunc(row, func(a, b types.Device) int {
		return strings.Compare(b.Name, a.Name)
	})
}
