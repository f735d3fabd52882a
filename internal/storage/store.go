package storage

import (
	"context"
	"errors"

	"github.com/KevinKickass/OpenSitePlanner/internal/types"
)

var ErrSiteNotFound = errors.New("site not found")

// Store persists sites, the device catalog and cost multipliers.
type Store interface {
	ListSites(ctx context.Context) ([]types.Site, error)
	GetSite(ctx context.Context, id string) (*types.Site, error)
	CreateSite(ctx context.Context, site types.Site) (*types.Site, error)
	UpdateSite(ctx context.Context, id string, patch types.SitePatch) (*types.Site, error)

	ListDevices(ctx context.Context) ([]types.Device, error)
	ListCosts(ctx context.Context) ([]types.CostMultiplier, error)

	Close()
}

var (
	_ Store = (*PostgresClient)(nil)
	_ Store = (*MemoryStore)(nil)
)
