package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KevinKickass/OpenSitePlanner/internal/config"
	"github.com/KevinKickass/OpenSitePlanner/internal/observability/metrics"
	"github.com/KevinKickass/OpenSitePlanner/internal/system"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", envOr("OSP_CONFIG", "configs/config.yaml"), "path to the YAML config file")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", *configPath))
	}

	logger.Info("Config loaded successfully", zap.String("path", *configPath))

	metrics.Init()

	store, err := system.OpenStore(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.Error(err), zap.String("driver", cfg.Database.Driver))
	}

	logger.Info("Store opened successfully", zap.String("driver", cfg.Database.Driver))

	lifecycle, err := system.NewLifecycleManager(store, cfg, logger)
	if err != nil {
		store.Close()
		logger.Fatal("Failed to create lifecycle manager", zap.Error(err))
	}

	if err := lifecycle.Start(); err != nil {
		store.Close()
		logger.Fatal("Failed to start system", zap.Error(err))
	}

	logger.Info("OpenSitePlanner started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := lifecycle.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("OpenSitePlanner stopped successfully")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
