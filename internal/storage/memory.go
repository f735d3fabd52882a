package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/KevinKickass/OpenSitePlanner/internal/types"
)

// MemoryStore keeps everything in process. It backs local runs without a
// database and the handler tests.
type MemoryStore struct {
	mu      sync.RWMutex
	sites   map[string]types.Site
	order   []string
	devices []types.Device
	costs   []types.CostMultiplier
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sites: make(map[string]types.Site),
		now:   time.Now,
	}
}

// WithClock replaces the time source used for created/updated dates.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

// SeedDevices sets the contents of the device table.
func (m *MemoryStore) SeedDevices(devices []types.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices = slices.Clone(devices)
}

// SeedCosts sets the contents of the costs table.
func (m *MemoryStore) SeedCosts(costs []types.CostMultiplier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.costs = slices.Clone(costs)
}

func (m *MemoryStore) ListSites(ctx context.Context) ([]types.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sites := make([]types.Site, 0, len(m.order))
	for _, id := range m.order {
		site, err := cloneSite(m.sites[id])
		if err != nil {
			return nil, err
		}
		sites = append(sites, *site)
	}
	return sites, nil
}

func (m *MemoryStore) GetSite(ctx context.Context, id string) (*types.Site, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	site, ok := m.sites[id]
	if !ok {
		return nil, ErrSiteNotFound
	}
	return cloneSite(site)
}

func (m *MemoryStore) CreateSite(ctx context.Context, site types.Site) (*types.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sites[site.ID]; exists {
		return nil, fmt.Errorf("failed to insert site: duplicate id %s", site.ID)
	}

	now := m.now().Unix()
	site.CreatedDate = now
	site.UpdatedDate = now

	stored, err := cloneSite(site)
	if err != nil {
		return nil, err
	}
	m.sites[site.ID] = *stored
	m.order = append(m.order, site.ID)

	return cloneSite(site)
}

func (m *MemoryStore) UpdateSite(ctx context.Context, id string, patch types.SitePatch) (*types.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	site, ok := m.sites[id]
	if !ok {
		return nil, ErrSiteNotFound
	}

	patch.Apply(&site)
	site.UpdatedDate = m.now().Unix()

	stored, err := cloneSite(site)
	if err != nil {
		return nil, err
	}
	m.sites[id] = *stored

	return cloneSite(site)
}

func (m *MemoryStore) ListDevices(ctx context.Context) ([]types.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.devices), nil
}

func (m *MemoryStore) ListCosts(ctx context.Context) ([]types.CostMultiplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.costs), nil
}

func (m *MemoryStore) Close() {}

// cloneSite deep-copies a site the same way a database round trip would.
func cloneSite(site types.Site) (*types.Site, error) {
	data, err := json.Marshal(site)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal site: %w", err)
	}
	var out types.Site
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal site: %w", err)
	}
	return &out, nil
}
