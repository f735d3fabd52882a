package devices

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/KevinKickass/OpenSitePlanner/internal/layout"
	"github.com/KevinKickass/OpenSitePlanner/internal/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrUnknownDevice = errors.New("unknown catalog device")

// Source supplies catalog devices from the persistent store.
type Source interface {
	ListDevices(ctx context.Context) ([]types.Device, error)
}

// Catalog holds the device templates a site can be built from.
type Catalog struct {
	loader  *CatalogLoader
	source  Source
	devices []types.Device
	mu      sync.RWMutex
	logger  *zap.Logger
}

func NewCatalog(searchPaths []string, source Source, logger *zap.Logger) (*Catalog, error) {
	loader, err := NewCatalogLoader(searchPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog loader: %w", err)
	}

	devices, err := loader.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return &Catalog{
		loader:  loader,
		source:  source,
		devices: devices,
		logger:  logger,
	}, nil
}

// Refresh replaces the file catalog with the store's devices table when that
// table has entries.
func (c *Catalog) Refresh(ctx context.Context) error {
	if c.source == nil {
		return nil
	}

	stored, err := c.source.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored devices: %w", err)
	}

	if len(stored) == 0 {
		c.logger.Info("Device table empty, using file catalog",
			zap.Int("devices", len(c.List())))
		return nil
	}

	if err := layout.Validate(stored); err != nil {
		return fmt.Errorf("stored catalog rejected: %w", err)
	}

	c.mu.Lock()
	c.devices = stored
	c.mu.Unlock()

	c.logger.Info("Catalog loaded from database", zap.Int("devices", len(stored)))
	return nil
}

// Reload re-reads the catalog files from disk and then applies the store
// override again.
func (c *Catalog) Reload(ctx context.Context) error {
	c.loader.ClearCache()

	devices, err := c.loader.LoadAll()
	if err != nil {
		return fmt.Errorf("failed to reload catalog: %w", err)
	}

	c.mu.Lock()
	c.devices = devices
	c.mu.Unlock()

	return c.Refresh(ctx)
}

func (c *Catalog) Validator() *Validator {
	return c.loader.Validator()
}

// List returns a copy of all templates.
func (c *Catalog) List() []types.Device {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.devices)
}

// Find returns the template with the given name.
func (c *Catalog) Find(name string) (types.Device, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.devices {
		if d.Name == name {
			return d, true
		}
	}
	return types.Device{}, false
}

// Transformer returns the first transformer template.
func (c *Catalog) Transformer() (types.Device, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, d := range c.devices {
		if d.IsTransformer() {
			return d, true
		}
	}
	return types.Device{}, false
}

// NewInstance clones the named template with a fresh instance id.
func (c *Catalog) NewInstance(name string) (types.Device, error) {
	template, ok := c.Find(name)
	if !ok {
		return types.Device{}, fmt.Errorf("%w: %s", ErrUnknownDevice, name)
	}
	return Instantiate(template), nil
}

// Instantiate copies a template and assigns it a new instance id.
func Instantiate(template types.Device) types.Device {
	d := template
	d.X, d.Y = nil, nil
	d.InstanceID = uuid.NewString()
	return d
}
