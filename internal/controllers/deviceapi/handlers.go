package deviceapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/seaglow/seaglow/internal/database"
	"github.com/seaglow/seaglow/pkg/config"
	"github.com/seaglow/seaglow/pkg/locations"
	"github.com/seaglow/seaglow/pkg/responseformat"
)

// deviceStore is the slice of the store the handlers read from.
type deviceStore interface {
	LoadDeviceContext(ctx context.Context, hardwareID int64) (*database.DeviceContext, error)
	TouchDevice(ctx context.Context, deviceID uint) error
	HealthCheck(ctx context.Context) error
}

// locationInfo resolves timezone and coordinates for payload derivation.
type locationInfo interface {
	Timezone(location string) (string, bool)
	Coordinates(location string) (locations.Coordinates, bool)
	Sources(location string) ([]locations.Source, bool)
	Names() []string
}

// Handlers carries the dependencies of the device API endpoints.
type Handlers struct {
	store     deviceStore
	registry  locationInfo
	cfg       config.IngestData
	logger    *zap.SugaredLogger
	formatter *responseformat.Formatter
	startedAt time.Time

	// nowFn is an injection point for tests.
	nowFn func() time.Time
}

// NewHandlers creates the handler set for a controller.
func NewHandlers(store deviceStore, registry locationInfo, cfg config.IngestData, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{
		store:     store,
		registry:  registry,
		cfg:       cfg,
		logger:    logger,
		formatter: responseformat.NewFormatter(),
		startedAt: time.Now(),
		nowFn:     time.Now,
	}
}

// GetDeviceData serves GET /api/arduino/{hardware_id}/data. The hardware
// ID is the only credential a lamp carries; an unknown ID is a 404 and a
// store failure is a 500. Every 200 body carries the full payload schema.
func (h *Handlers) GetDeviceData(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	hardwareID, err := strconv.ParseInt(vars["hardware_id"], 10, 64)
	if err != nil {
		h.formatter.WriteError(w, r, http.StatusNotFound, "device not found")
		return
	}

	dc, err := h.store.LoadDeviceContext(r.Context(), hardwareID)
	if errors.Is(err, database.ErrDeviceNotFound) {
		h.formatter.WriteError(w, r, http.StatusNotFound, "device not found")
		return
	}
	if err != nil {
		h.logger.Errorf("error loading device context for %d: %v", hardwareID, err)
		h.formatter.WriteError(w, r, http.StatusInternalServerError, "store unavailable")
		return
	}

	payload := h.buildPayload(dc, h.nowFn())

	// Poll bookkeeping must never delay or fail the response.
	go h.touchDevice(dc.Device.ID, hardwareID)

	if err := h.formatter.WriteResponse(w, r, payload); err != nil {
		h.logger.Errorf("error writing device payload for %d: %v", hardwareID, err)
	}
}

func (h *Handlers) touchDevice(deviceID uint, hardwareID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.store.TouchDevice(ctx, deviceID); err != nil {
		h.logger.Debugf("error recording poll time for device %d: %v", hardwareID, err)
	}
}

// locationSummary is one row of the /api/locations listing.
type locationSummary struct {
	Location    string `json:"location"`
	Timezone    string `json:"timezone"`
	SourceCount int    `json:"source_count"`
}

// GetLocations lists the supported locations, an ops convenience for
// checking what the registry ships.
func (h *Handlers) GetLocations(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	summaries := make([]locationSummary, 0, len(names))
	for _, name := range names {
		tz, _ := h.registry.Timezone(name)
		sources, _ := h.registry.Sources(name)
		summaries = append(summaries, locationSummary{
			Location:    name,
			Timezone:    tz,
			SourceCount: len(sources),
		})
	}

	if err := h.formatter.WriteResponse(w, r, summaries); err != nil {
		h.logger.Errorf("error writing locations listing: %v", err)
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// GetHealth reports store reachability.
func (h *Handlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.store.HealthCheck(ctx); err != nil {
		h.logger.Errorf("health check failed: %v", err)
		h.formatter.WriteError(w, r, http.StatusServiceUnavailable, "store unreachable")
		return
	}

	resp := healthResponse{
		Status: "ok",
		Uptime: time.Since(h.startedAt).Round(time.Second).String(),
	}
	if err := h.formatter.WriteResponse(w, r, resp); err != nil {
		h.logger.Errorf("error writing health response: %v", err)
	}
}
