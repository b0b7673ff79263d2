// Package app wires the two long-running components — the ingestion
// scheduler and the device API — to a shared lifecycle with graceful
// shutdown.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/seaglow/seaglow/internal/controllers/deviceapi"
	"github.com/seaglow/seaglow/internal/database"
	"github.com/seaglow/seaglow/internal/extract"
	"github.com/seaglow/seaglow/internal/ingest"
	"github.com/seaglow/seaglow/internal/log"
	"github.com/seaglow/seaglow/internal/weatherclient"
	"github.com/seaglow/seaglow/pkg/config"
	"github.com/seaglow/seaglow/pkg/locations"
)

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	registry, dropped := locations.NewRegistry(a.cfg.APIKeys)
	for _, source := range dropped {
		log.Warnf("dropping provider source %s: no API key configured", source)
	}

	dbClient := database.NewClient(a.cfg.Database.ConnectionString, a.logger)
	if err := dbClient.Connect(); err != nil {
		return fmt.Errorf("could not connect to the conditions store: %w", err)
	}
	store := database.NewStore(dbClient.DB)

	transformer := extract.NewTransformer(a.logger)
	client := weatherclient.New(transformer, weatherclient.Options{
		StrictWindUnits: a.cfg.Ingest.StrictWindUnits,
		PaceInterval:    time.Duration(a.cfg.Ingest.PaceSeconds) * time.Second,
	}, a.logger)

	engine := ingest.NewEngine(store, client, registry, a.logger)
	scheduler := ingest.NewScheduler(ctx, &wg, engine,
		time.Duration(a.cfg.Ingest.IntervalMinutes)*time.Minute, a.logger)
	scheduler.Start()

	apiController, err := deviceapi.NewController(ctx, &wg, a.cfg.HTTP, a.cfg.Ingest, store, registry, a.logger)
	if err != nil {
		return fmt.Errorf("could not create device API controller: %w", err)
	}
	if err := apiController.StartController(); err != nil {
		return fmt.Errorf("could not start device API controller: %w", err)
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
