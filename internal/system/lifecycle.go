package system

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KevinKickass/OpenSitePlanner/internal/api/rest"
	"github.com/KevinKickass/OpenSitePlanner/internal/api/websocket"
	"github.com/KevinKickass/OpenSitePlanner/internal/config"
	"github.com/KevinKickass/OpenSitePlanner/internal/design"
	"github.com/KevinKickass/OpenSitePlanner/internal/devices"
	"github.com/KevinKickass/OpenSitePlanner/internal/interfaces"
	"github.com/KevinKickass/OpenSitePlanner/internal/layout"
	"github.com/KevinKickass/OpenSitePlanner/internal/storage"
	"go.uber.org/zap"
)

type LifecycleManager struct {
	config  *config.Config
	store   storage.Store
	catalog *devices.Catalog
	design  *design.Service
	hub     *websocket.Hub
	logger  *zap.Logger

	restServer *rest.Server
	hubCancel  context.CancelFunc

	stateMu      sync.RWMutex
	currentState SystemState
	lastError    string

	shutdownOnce sync.Once
}

// OpenStore connects the store selected by cfg.Driver.
func OpenStore(cfg config.DatabaseConfig, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Driver {
	case "memory":
		logger.Warn("Using in-memory store, sites are lost on restart")
		return storage.NewMemoryStore(), nil
	case "", "postgres":
		return storage.NewPostgresClient(cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func NewLifecycleManager(
	store storage.Store,
	cfg *config.Config,
	logger *zap.Logger,
) (*LifecycleManager, error) {
	catalog, err := devices.NewCatalog(cfg.Catalog.SearchPaths, store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create device catalog: %w", err)
	}

	hub := websocket.NewHub(logger)
	engine := layout.NewEngine(cfg.Layout)
	designService := design.NewService(store, catalog, engine, hub, cfg.Costs, logger)

	return &LifecycleManager{
		config:       cfg,
		store:        store,
		catalog:      catalog,
		design:       designService,
		hub:          hub,
		logger:       logger,
		currentState: StateInitializing,
	}, nil
}

// Start starts the entire system
func (lm *LifecycleManager) Start() error {
	lm.logger.Info("Starting OpenSitePlanner")

	// Stored catalog overrides the file catalog
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := lm.catalog.Refresh(ctx); err != nil {
		lm.logger.Warn("Failed to load catalog from database", zap.Error(err))
		// Continue anyway, the file catalog is usable
	}
	cancel()

	hubCtx, hubCancel := context.WithCancel(context.Background())
	lm.hubCancel = hubCancel
	go lm.hub.Run(hubCtx)

	lm.restServer = rest.NewServer(lm.config, lm, lm.logger, lm.hub)
	if err := lm.restServer.Start(); err != nil {
		lm.setError(fmt.Errorf("failed to start REST API: %w", err))
		return err
	}

	if err := lm.setState(StateRunning); err != nil {
		return err
	}

	lm.logger.Info("System started successfully",
		zap.Int("http_port", lm.config.Server.HTTPPort),
		zap.String("database", lm.config.Database.Driver),
		zap.Int("max_rows", lm.design.Engine().MaxRows()),
		zap.Int("catalog_devices", len(lm.catalog.List())))

	return nil
}

// Shutdown gracefully shuts down the system
func (lm *LifecycleManager) Shutdown(ctx context.Context) error {
	var shutdownErr error

	lm.shutdownOnce.Do(func() {
		lm.logger.Info("Shutting down system")

		_ = lm.setState(StateStopping)

		shutdownErr = lm.gracefulShutdown(ctx)

		_ = lm.setState(StateStopped)
	})

	return shutdownErr
}

func (lm *LifecycleManager) gracefulShutdown(ctx context.Context) error {
	var errs []error

	if lm.restServer != nil {
		timeout := lm.config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := lm.restServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("rest api shutdown failed: %w", err))
		}
	}

	if lm.hubCancel != nil {
		lm.hubCancel()
		select {
		case <-lm.hub.Done():
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("websocket hub did not stop: %w", ctx.Err()))
		}
	}

	lm.store.Close()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	lm.logger.Info("Graceful shutdown completed")
	return nil
}

// ReloadCatalog re-reads the catalog files and the stored device table.
func (lm *LifecycleManager) ReloadCatalog(ctx context.Context) error {
	lm.stateMu.Lock()
	if lm.currentState != StateRunning {
		lm.stateMu.Unlock()
		return fmt.Errorf("cannot reload catalog: %w", interfaces.ErrNotRunning)
	}
	lm.currentState = StateReloading
	lm.stateMu.Unlock()

	lm.broadcastStatus()

	err := lm.catalog.Reload(ctx)
	if err != nil {
		lm.logger.Error("Catalog reload failed", zap.Error(err))
	} else {
		lm.logger.Info("Catalog reloaded", zap.Int("devices", len(lm.catalog.List())))
	}

	_ = lm.setState(StateRunning)
	return err
}

func (lm *LifecycleManager) setState(state SystemState) error {
	lm.stateMu.Lock()
	if err := ValidateTransition(lm.currentState, state); err != nil {
		lm.stateMu.Unlock()
		lm.logger.Warn("Rejected state change", zap.Error(err))
		return err
	}
	lm.currentState = state
	if state != StateError {
		lm.lastError = ""
	}
	lm.stateMu.Unlock()

	lm.broadcastStatus()
	return nil
}

func (lm *LifecycleManager) setError(err error) {
	lm.logger.Error("System error", zap.Error(err))

	lm.stateMu.Lock()
	lm.currentState = StateError
	lm.lastError = err.Error()
	lm.stateMu.Unlock()

	lm.broadcastStatus()
}

func (lm *LifecycleManager) State() SystemState {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()
	return lm.currentState
}

func (lm *LifecycleManager) broadcastStatus() {
	lm.stateMu.RLock()
	status := SystemStatus{
		State:     lm.currentState,
		Timestamp: time.Now().Unix(),
		Error:     lm.lastError,
	}
	lm.stateMu.RUnlock()

	lm.hub.Broadcast(websocket.NewSystemStatusMessage(status))
}

// GetCurrentStatus returns current system status (Interface implementation)
func (lm *LifecycleManager) GetCurrentStatus() interfaces.SystemStatus {
	lm.stateMu.RLock()
	defer lm.stateMu.RUnlock()

	return interfaces.SystemStatus{
		State:            lm.currentState.String(),
		Database:         lm.config.Database.Driver,
		CatalogSize:      len(lm.catalog.List()),
		ConnectedClients: lm.hub.GetClientCount(),
		Error:            lm.lastError,
	}
}

// Config returns the configuration
func (lm *LifecycleManager) Config() *config.Config {
	return lm.config
}

// Store returns the site store
func (lm *LifecycleManager) Store() storage.Store {
	return lm.store
}

// Catalog returns the device catalog
func (lm *LifecycleManager) Catalog() *devices.Catalog {
	return lm.catalog
}

// Design returns the site design service
func (lm *LifecycleManager) Design() *design.Service {
	return lm.design
}
