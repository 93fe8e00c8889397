package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/mholden/osmaps/internal/controllers/mapserver"
	"github.com/mholden/osmaps/internal/log"
	"github.com/mholden/osmaps/internal/postcode"
	"github.com/mholden/osmaps/pkg/config"
)

// App represents the main application
type App struct {
	configProvider config.Provider
	logger         *zap.SugaredLogger
}

// New creates a new application instance
func New(configProvider config.Provider, logger *zap.SugaredLogger) *App {
	return &App{
		configProvider: configProvider,
		logger:         logger,
	}
}

// Run starts the map server and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return err
	}

	// The postcode store is optional; without one the server still
	// renders terrain but the postcode endpoints report 503.
	var store postcode.Store
	if cfg.Postcodes.Backend != "" {
		store, err = postcode.OpenStore(cfg.Postcodes)
		if err != nil {
			return err
		}
		defer store.Close()
	} else {
		log.Info("no postcode backend configured, postcode endpoints disabled")
	}

	server, err := mapserver.NewController(ctx, &wg, cfg, store, a.logger)
	if err != nil {
		return err
	}
	if err := server.StartController(); err != nil {
		return err
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
