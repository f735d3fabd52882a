package layout

import (
	"math"
	"testing"

	"github.com/KevinKickass/OpenSitePlanner/internal/config"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(config.DefaultLayout())
}

func transformer(id string) types.Device {
	return types.Device{
		Name: "Transformer", Manufacturer: "Tesla", Category: types.CategoryTransformer,
		Length: 10, Width: 10, Cost: 10000, CapacityKWh: -500, InstanceID: id,
	}
}

func megapack(id string) types.Device {
	return types.Device{
		Name: "Megapack", Manufacturer: "Tesla", Category: types.CategoryStorage,
		Length: 10, Width: 30, Cost: 50000, CapacityKWh: 2000, InstanceID: id,
	}
}

func powerpack(id string) types.Device {
	return types.Device{
		Name: "PowerPack", Manufacturer: "Tesla", Category: types.CategoryStorage,
		Length: 10, Width: 10, Cost: 10000, CapacityKWh: 2000, InstanceID: id,
	}
}

func fleet(transformers, storage int) []types.Device {
	devices := make([]types.Device, 0, transformers+storage)
	for i := 0; i < storage; i++ {
		devices = append(devices, megapack(string(rune('a'+i))))
	}
	for i := 0; i < transformers; i++ {
		devices = append(devices, transformer(string(rune('A'+i))))
	}
	return devices
}

func names(row types.Row) []string {
	out := make([]string, len(row))
	for i, d := range row {
		out[i] = d.Name
	}
	return out
}

func TestMaxRowCount(t *testing.T) {
	assert.Equal(t, 5, MaxRowCount(config.DefaultLayout()))

	cfg := config.DefaultLayout()
	cfg.MaxSystemWidth = 59
	assert.Equal(t, 2, MaxRowCount(cfg))
}

func TestAssign_EmptyInput(t *testing.T) {
	layout, err := newTestEngine().Assign(nil)
	require.NoError(t, err)
	assert.Empty(t, layout)
}

func TestAssign_NoTransformers(t *testing.T) {
	layout, err := newTestEngine().Assign(fleet(0, 3))
	require.NoError(t, err)
	assert.Empty(t, layout)
}

func TestAssign_SingleRowSortedByNameDescending(t *testing.T) {
	devices := []types.Device{megapack("s1"), transformer("t1"), powerpack("s2")}

	layout, err := newTestEngine().Assign(devices)
	require.NoError(t, err)

	require.Len(t, layout, 1)
	assert.Equal(t, []string{"Transformer", "PowerPack", "Megapack"}, names(layout[0]))
}

func TestAssign_RowPerTransformerBelowCeiling(t *testing.T) {
	layout, err := newTestEngine().Assign(fleet(3, 6))
	require.NoError(t, err)

	require.Len(t, layout, 3)
	for _, row := range layout {
		assert.Len(t, row, 3)
		assert.Equal(t, "Transformer", row[0].Name)
	}
}

func TestAssign_CeilingBalancesCapacity(t *testing.T) {
	layout, err := newTestEngine().Assign(fleet(7, 14))
	require.NoError(t, err)

	require.Len(t, layout, 5)
	assert.Equal(t, 21, layout.DeviceCount())

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range layout {
		c := RowCapacity(row)
		lo = math.Min(lo, c)
		hi = math.Max(hi, c)
	}
	assert.LessOrEqual(t, hi-lo, megapack("").CapacityKWh)

	capacities := make([]float64, len(layout))
	for i, row := range layout {
		capacities[i] = RowCapacity(row)
	}
	assert.Equal(t, []float64{5000, 5500, 5000, 5500, 3500}, capacities)
}

func TestAssign_SurplusStorageIsNeverDropped(t *testing.T) {
	t.Run("single transformer", func(t *testing.T) {
		layout, err := newTestEngine().Assign(fleet(1, 5))
		require.NoError(t, err)
		require.Len(t, layout, 1)
		assert.Len(t, layout[0], 6)
	})

	t.Run("spread over lowest capacity rows", func(t *testing.T) {
		layout, err := newTestEngine().Assign(fleet(2, 7))
		require.NoError(t, err)
		require.Len(t, layout, 2)
		assert.Len(t, layout[0], 5)
		assert.Len(t, layout[1], 4)
		assert.Equal(t, 9, layout.DeviceCount())
	})
}

func TestAssign_OtherCategoryFillsShortRow(t *testing.T) {
	inverter := types.Device{Name: "Inverter", Category: "inverter", Length: 5, Width: 5, Cost: 100, CapacityKWh: 0}

	layout, err := newTestEngine().Assign([]types.Device{inverter, transformer("t1")})
	require.NoError(t, err)

	require.Len(t, layout, 1)
	assert.Equal(t, []string{"Transformer", "Inverter"}, names(layout[0]))
}

func TestAssign_CategoryIsCaseInsensitive(t *testing.T) {
	tr := transformer("t1")
	tr.Category = "Transformer"
	layout, err := newTestEngine().Assign([]types.Device{tr, megapack("s1")})
	require.NoError(t, err)
	require.Len(t, layout, 1)
	assert.Len(t, layout[0], 2)
}

func TestAssign_Deterministic(t *testing.T) {
	engine := newTestEngine()
	devices := append(fleet(6, 13), powerpack("p1"), powerpack("p2"))

	first, err := engine.Assign(append([]types.Device(nil), devices...))
	require.NoError(t, err)
	second, err := engine.Assign(append([]types.Device(nil), devices...))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssign_DoesNotMutateInput(t *testing.T) {
	devices := []types.Device{megapack("s1"), transformer("t1"), powerpack("s2")}
	before := append([]types.Device(nil), devices...)

	layout, err := newTestEngine().Assign(devices)
	require.NoError(t, err)

	assert.Equal(t, before, devices)

	layout[0][0].Name = "changed"
	assert.Equal(t, before, devices)
}

func TestAssign_RejectsMalformedDevices(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *types.Device)
	}{
		{"missing category", func(d *types.Device) { d.Category = "" }},
		{"zero width", func(d *types.Device) { d.Width = 0 }},
		{"negative length", func(d *types.Device) { d.Length = -1 }},
		{"nan length", func(d *types.Device) { d.Length = math.NaN() }},
		{"negative cost", func(d *types.Device) { d.Cost = -5 }},
		{"infinite capacity", func(d *types.Device) { d.CapacityKWh = math.Inf(1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := megapack("bad")
			tt.mutate(&bad)

			layout, err := newTestEngine().Assign([]types.Device{transformer("t1"), bad})
			assert.ErrorIs(t, err, ErrInvalidDevice)
			assert.Nil(t, layout)
		})
	}
}
