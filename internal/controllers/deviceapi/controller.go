// Package deviceapi serves the device-facing pull API: each lamp polls
// GET /api/arduino/{hardware_id}/data and receives the latest conditions
// for its owner's location joined with the owner's display settings.
package deviceapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/seaglow/seaglow/internal/database"
	"github.com/seaglow/seaglow/internal/log"
	"github.com/seaglow/seaglow/pkg/config"
	"github.com/seaglow/seaglow/pkg/locations"
)

// Controller represents the device API server controller
type Controller struct {
	ctx      context.Context
	wg       *sync.WaitGroup
	httpCfg  config.HTTPData
	Server   http.Server
	logger   *zap.SugaredLogger
	handlers *Handlers
}

// NewController creates a new device API controller
func NewController(ctx context.Context, wg *sync.WaitGroup, httpCfg config.HTTPData, ingestCfg config.IngestData, store *database.Store, registry *locations.Registry, logger *zap.SugaredLogger) (*Controller, error) {
	if httpCfg.Port == 0 {
		logger.Info("http.port not provided; defaulting to 8090")
		httpCfg.Port = 8090
	}
	if httpCfg.ListenAddr == "" {
		logger.Info("http.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		httpCfg.ListenAddr = "0.0.0.0"
	}

	ctrl := &Controller{
		ctx:     ctx,
		wg:      wg,
		httpCfg: httpCfg,
		logger:  logger,
	}

	ctrl.handlers = NewHandlers(store, registry, ingestCfg, logger)

	router := ctrl.setupRouter()
	ctrl.Server.Addr = fmt.Sprintf("%v:%v", httpCfg.ListenAddr, httpCfg.Port)
	ctrl.Server.Handler = router
	// Device polls are tiny; anything slower than this is a stuck
	// connection, not a real lamp.
	ctrl.Server.ReadTimeout = 5 * time.Second
	ctrl.Server.WriteTimeout = 5 * time.Second

	return ctrl, nil
}

// StartController starts the device API server
func (c *Controller) StartController() error {
	log.Info("Starting device API controller...")
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		log.Infof("device API listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
			log.Errorf("device API server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("Shutting down the device API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.Server.Shutdown(shutdownCtx); err != nil {
			log.Errorf("device API shutdown error: %v", err)
		}
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/api/arduino/{hardware_id:[0-9]+}/data", c.handlers.GetDeviceData).Methods(http.MethodGet)
	router.HandleFunc("/api/locations", c.handlers.GetLocations).Methods(http.MethodGet)
	router.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)

	router.Use(c.requestLoggingMiddleware)

	// A panicking handler degrades to a 500 instead of taking the
	// process down with it.
	return handlers.RecoveryHandler()(handlers.CompressHandler(router))
}

// requestLoggingMiddleware logs each request with its duration
func (c *Controller) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		c.logger.Debugw("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}
