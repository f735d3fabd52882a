package design

import (
	"context"
	"sync"
	"testing"

	"github.com/KevinKickass/OpenSitePlanner/internal/api/websocket"
	"github.com/KevinKickass/OpenSitePlanner/internal/config"
	"github.com/KevinKickass/OpenSitePlanner/internal/devices"
	"github.com/KevinKickass/OpenSitePlanner/internal/layout"
	"github.com/KevinKickass/OpenSitePlanner/internal/storage"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []websocket.Message
}

func (p *recordingPublisher) Broadcast(msg websocket.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
}

func (p *recordingPublisher) last() websocket.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.messages[len(p.messages)-1]
}

func newTestService(t *testing.T) (*Service, *storage.MemoryStore, *recordingPublisher) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	store := storage.NewMemoryStore()
	catalog, err := devices.NewCatalog(nil, store, logger)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	svc := NewService(store, catalog, layout.NewEngine(config.DefaultLayout()), pub, config.DefaultCosts(), logger)

	_, err = store.CreateSite(context.Background(), types.Site{ID: "site-1", Name: "Mojave", Path: "mojave", Stage: types.StageDesign})
	require.NoError(t, err)

	return svc, store, pub
}

func TestAddDevice_AddsTransformerAndPersistsLayout(t *testing.T) {
	svc, store, pub := newTestService(t)
	ctx := context.Background()

	design, device, err := svc.AddDevice(ctx, "site-1", "Megapack")
	require.NoError(t, err)
	assert.Equal(t, "Megapack", device.Name)
	assert.NotEmpty(t, device.InstanceID)

	require.Len(t, design.Layout, 1)
	row := design.Layout[0]
	require.Len(t, row, 2)
	assert.Equal(t, "Transformer", row[0].Name)
	assert.Equal(t, "Megapack", row[1].Name)
	assert.Equal(t, 20.0, *row[1].X)

	assert.Equal(t, 1500.0, design.Summary.TotalCapacity)
	assert.Equal(t, 60000.0, design.Summary.HardwareCost)
	assert.InDelta(t, 82950.0, design.Estimate.TotalCost, 1e-6)
	assert.Equal(t, 5, design.MaxRows)

	site, err := store.GetSite(ctx, "site-1")
	require.NoError(t, err)
	require.Len(t, site.Layout, 1)
	assert.True(t, site.Layout[0][0].Positioned())

	msg := pub.last()
	assert.Equal(t, websocket.MessageTypeLayoutUpdated, msg.Type)
	assert.Equal(t, "site-1", msg.SiteID)
	data := msg.Data.(websocket.LayoutUpdatedData)
	assert.Equal(t, TriggerAddDevice, data.Trigger)
	assert.Equal(t, device.InstanceID, data.InstanceID)
}

func TestAddDevice_TransformerPerTwoStorage(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var design *Design
	var err error
	for i := 0; i < 3; i++ {
		design, _, err = svc.AddDevice(ctx, "site-1", "PowerPack")
		require.NoError(t, err)
	}

	// 3 storage need 2 transformers
	assert.Equal(t, 5, design.Summary.DeviceCount)
	assert.Len(t, design.Layout, 2)
}

func TestRemoveDevice_DropsSurplusTransformer(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		_, d, err := svc.AddDevice(ctx, "site-1", "Megapack2")
		require.NoError(t, err)
		ids = append(ids, d.InstanceID)
	}

	design, err := svc.RemoveDevice(ctx, "site-1", ids[0])
	require.NoError(t, err)

	assert.Equal(t, 3, design.Summary.DeviceCount)
	require.Len(t, design.Layout, 1)
	for _, d := range design.Layout.Flatten() {
		assert.NotEqual(t, ids[0], d.InstanceID)
	}

	design, err = svc.RemoveDevice(ctx, "site-1", ids[1])
	require.NoError(t, err)
	design, err = svc.RemoveDevice(ctx, "site-1", ids[2])
	require.NoError(t, err)
	assert.Empty(t, design.Layout)
	assert.Equal(t, 900.0, design.Summary.Buffer.Area)
}

func TestService_Errors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.AddDevice(ctx, "missing", "Megapack")
	assert.ErrorIs(t, err, storage.ErrSiteNotFound)

	_, _, err = svc.AddDevice(ctx, "site-1", "Flux Capacitor")
	assert.ErrorIs(t, err, devices.ErrUnknownDevice)

	_, err = svc.RemoveDevice(ctx, "site-1", "nope")
	assert.ErrorIs(t, err, ErrDeviceNotFound)

	_, err = svc.GetDesign(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrSiteNotFound)
}

func TestGetDesign_UsesStoredCosts(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	store.SeedCosts([]types.CostMultiplier{{Name: "installation", Display: "Installation", MultiplierType: types.MultiplierPercentOfHardware, Multiplier: 0.5}})

	_, _, err := svc.AddDevice(ctx, "site-1", "PowerPack")
	require.NoError(t, err)

	design, err := svc.GetDesign(ctx, "site-1")
	require.NoError(t, err)
	assert.Equal(t, "site-1", design.SiteID)
	require.Len(t, design.Estimate.Lines, 1)
	assert.InDelta(t, 30000.0, design.Estimate.TotalCost, 1e-6)
}

func TestPreview(t *testing.T) {
	svc, _, _ := newTestService(t)

	design, err := svc.Preview(context.Background(), []types.Device{
		{Name: "PowerPack", Category: types.CategoryStorage, Width: 10, Length: 10, Cost: 10000, CapacityKWh: 2000},
	})
	require.NoError(t, err)
	assert.Empty(t, design.Layout)
	assert.Equal(t, types.BufferArea{Width: 30, Length: 30, Area: 900}, design.Summary.Buffer)

	_, err = svc.Preview(context.Background(), []types.Device{{Name: "broken"}})
	assert.ErrorIs(t, err, layout.ErrInvalidDevice)
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.AddDevice(ctx, "site-1", "PowerPack")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	site, err := store.GetSite(ctx, "site-1")
	require.NoError(t, err)
	// 8 storage + 4 transformers
	assert.Equal(t, 12, site.Layout.DeviceCount())
}
