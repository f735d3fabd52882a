// Package design keeps a site's device list and layout in step: every add or
// remove rebalances transformers, recomputes the layout from scratch and
// persists it on the site.
package design

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/KevinKickass/OpenSitePlanner/internal/api/websocket"
	"github.com/KevinKickass/OpenSitePlanner/internal/devices"
	"github.com/KevinKickass/OpenSitePlanner/internal/estimate"
	"github.com/KevinKickass/OpenSitePlanner/internal/layout"
	"github.com/KevinKickass/OpenSitePlanner/internal/observability/metrics"
	"github.com/KevinKickass/OpenSitePlanner/internal/storage"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"go.uber.org/zap"
)

var ErrDeviceNotFound = errors.New("device instance not found")

const (
	TriggerAddDevice    = "add_device"
	TriggerRemoveDevice = "remove_device"
	TriggerPreview      = "preview"
)

// Publisher receives layout change notifications.
type Publisher interface {
	Broadcast(msg websocket.Message)
}

// Design is a site's placed layout with everything derived from it.
type Design struct {
	SiteID   string            `json:"site_id,omitempty"`
	Layout   types.Layout      `json:"layout"`
	Summary  layout.Summary    `json:"summary"`
	Estimate estimate.Estimate `json:"estimate"`
	MaxRows  int               `json:"max_rows"`
}

type Service struct {
	store        storage.Store
	catalog      *devices.Catalog
	engine       *layout.Engine
	publisher    Publisher
	defaultCosts []types.CostMultiplier
	logger       *zap.Logger

	locks sync.Map // site id -> *sync.Mutex
}

func NewService(
	store storage.Store,
	catalog *devices.Catalog,
	engine *layout.Engine,
	publisher Publisher,
	defaultCosts []types.CostMultiplier,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:        store,
		catalog:      catalog,
		engine:       engine,
		publisher:    publisher,
		defaultCosts: defaultCosts,
		logger:       logger,
	}
}

func (s *Service) Engine() *layout.Engine {
	return s.engine
}

func (s *Service) siteLock(siteID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(siteID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// Costs returns the stored cost multipliers, or the configured defaults when
// the store has none.
func (s *Service) Costs(ctx context.Context) ([]types.CostMultiplier, error) {
	costs, err := s.store.ListCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list costs: %w", err)
	}
	if len(costs) == 0 {
		return s.defaultCosts, nil
	}
	return costs, nil
}

// AddDevice clones the named catalog device onto the site.
func (s *Service) AddDevice(ctx context.Context, siteID, name string) (*Design, types.Device, error) {
	lock := s.siteLock(siteID)
	lock.Lock()
	defer lock.Unlock()

	site, err := s.store.GetSite(ctx, siteID)
	if err != nil {
		return nil, types.Device{}, err
	}

	device, err := s.catalog.NewInstance(name)
	if err != nil {
		return nil, types.Device{}, err
	}

	siteDevices := append(site.Layout.Flatten(), device)

	design, err := s.relayout(ctx, site.ID, siteDevices, TriggerAddDevice, device.InstanceID)
	if err != nil {
		return nil, types.Device{}, err
	}

	s.logger.Info("Device added to site",
		zap.String("site_id", site.ID),
		zap.String("device", device.Name),
		zap.String("instance_id", device.InstanceID),
		zap.Int("devices", design.Summary.DeviceCount))

	return design, device, nil
}

// RemoveDevice drops the device instance from the site.
func (s *Service) RemoveDevice(ctx context.Context, siteID, instanceID string) (*Design, error) {
	lock := s.siteLock(siteID)
	lock.Lock()
	defer lock.Unlock()

	site, err := s.store.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	current := site.Layout.Flatten()
	remaining := make([]types.Device, 0, len(current))
	found := false
	for _, d := range current {
		if instanceID != "" && d.InstanceID == instanceID {
			found = true
			continue
		}
		remaining = append(remaining, d)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, instanceID)
	}

	design, err := s.relayout(ctx, site.ID, remaining, TriggerRemoveDevice, instanceID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Device removed from site",
		zap.String("site_id", site.ID),
		zap.String("instance_id", instanceID),
		zap.Int("devices", design.Summary.DeviceCount))

	return design, nil
}

// GetDesign derives the design of the site's stored layout. Positions are
// recomputed, the row grouping is taken as stored.
func (s *Service) GetDesign(ctx context.Context, siteID string) (*Design, error) {
	site, err := s.store.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}

	design, err := s.derive(ctx, site.Layout)
	if err != nil {
		return nil, err
	}
	design.SiteID = site.ID
	return design, nil
}

// Preview lays out an arbitrary device list without touching any site.
func (s *Service) Preview(ctx context.Context, deviceList []types.Device) (*Design, error) {
	rows, err := s.engine.Assign(deviceList)
	metrics.ObserveLayout(TriggerPreview, len(deviceList), len(rows), err)
	if err != nil {
		return nil, err
	}
	return s.derive(ctx, rows)
}

func (s *Service) relayout(ctx context.Context, siteID string, siteDevices []types.Device, trigger, instanceID string) (*Design, error) {
	if transformer, ok := s.catalog.Transformer(); ok {
		siteDevices = BalanceTransformers(siteDevices, transformer)
	} else {
		s.logger.Warn("Catalog has no transformer, skipping transformer balancing",
			zap.String("site_id", siteID))
	}

	rows, err := s.engine.Assign(siteDevices)
	metrics.ObserveLayout(trigger, len(siteDevices), len(rows), err)
	if err != nil {
		return nil, fmt.Errorf("failed to compute layout: %w", err)
	}

	placed := s.engine.Place(rows)

	if _, err := s.store.UpdateSite(ctx, siteID, types.SitePatch{Layout: &placed}); err != nil {
		return nil, fmt.Errorf("failed to persist layout: %w", err)
	}

	design, err := s.derive(ctx, placed)
	if err != nil {
		return nil, err
	}
	design.SiteID = siteID

	if s.publisher != nil {
		s.publisher.Broadcast(websocket.NewLayoutUpdatedMessage(siteID, websocket.LayoutUpdatedData{
			Trigger:     trigger,
			InstanceID:  instanceID,
			DeviceCount: design.Summary.DeviceCount,
			RowCount:    design.Summary.RowCount,
			Layout:      placed,
		}))
	}

	return design, nil
}

func (s *Service) derive(ctx context.Context, rows types.Layout) (*Design, error) {
	placed := s.engine.Place(rows)

	costs, err := s.Costs(ctx)
	if err != nil {
		return nil, err
	}

	est, err := estimate.Compute(placed.Flatten(), costs)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate cost: %w", err)
	}

	if placed == nil {
		placed = types.Layout{}
	}

	return &Design{
		Layout:   placed,
		Summary:  s.engine.Summarize(placed),
		Estimate: est,
		MaxRows:  s.engine.MaxRows(),
	}, nil
}
