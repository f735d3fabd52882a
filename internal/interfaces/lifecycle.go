package interfaces

import (
	"context"
	"errors"

	"github.com/KevinKickass/OpenSitePlanner/internal/config"
	"github.com/KevinKickass/OpenSitePlanner/internal/design"
	"github.com/KevinKickass/OpenSitePlanner/internal/devices"
	"github.com/KevinKickass/OpenSitePlanner/internal/storage"
)

// ErrNotRunning is returned by operations that need a running system.
var ErrNotRunning = errors.New("system not in running state")

// SystemStatus represents the current system state
type SystemStatus struct {
	State            string `json:"state"`
	Database         string `json:"database"`
	CatalogSize      int    `json:"catalog_size"`
	ConnectedClients int    `json:"connected_clients"`
	Error            string `json:"error,omitempty"`
}

type LifecycleManager interface {
	Config() *config.Config
	Store() storage.Store
	Catalog() *devices.Catalog
	Design() *design.Service
	GetCurrentStatus() SystemStatus
	ReloadCatalog(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
