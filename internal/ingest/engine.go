// Package ingest implements the periodic ingestion engine: one cycle
// fetches conditions for every active location from its providers in
// priority order, merges the responses, and writes one conditions row
// per location.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seaglow/seaglow/internal/database"
	"github.com/seaglow/seaglow/internal/extract"
	"github.com/seaglow/seaglow/pkg/locations"
)

// conditionsStore is the slice of the store the engine needs.
type conditionsStore interface {
	HealthCheck(ctx context.Context) error
	DistinctActiveLocations(ctx context.Context) ([]string, error)
	UpsertConditions(ctx context.Context, location string, update database.ConditionsUpdate, preserveMissing bool) error
	RecordCycle(ctx context.Context, record database.CycleRecord) error
}

// sourceFetcher issues one provider request. The production implementation
// is *weatherclient.Client.
type sourceFetcher interface {
	Fetch(ctx context.Context, source locations.Source) (*extract.Observation, error)
}

// sourceRegistry resolves a location to its provider sources.
type sourceRegistry interface {
	Sources(location string) ([]locations.Source, bool)
}

// Engine runs ingestion cycles. It holds no per-cycle state; RunCycle is
// safe to call repeatedly from a single scheduler goroutine.
type Engine struct {
	store    conditionsStore
	fetcher  sourceFetcher
	registry sourceRegistry
	logger   *zap.SugaredLogger

	nowFn func() time.Time
}

// NewEngine wires an engine to its store, provider client, and location
// registry.
func NewEngine(store conditionsStore, fetcher sourceFetcher, registry sourceRegistry, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		store:    store,
		fetcher:  fetcher,
		registry: registry,
		logger:   logger,
		nowFn:    time.Now,
	}
}

// Summary describes one completed (or aborted) ingestion cycle.
type Summary struct {
	CycleID            string
	StartedAt          time.Time
	Duration           time.Duration
	LocationsProcessed int
	LocationsWritten   int
	ExternalCalls      int
	Errors             []string
}

// RunCycle executes one ingestion pass over all active locations. Nothing
// escapes it: provider failures, store failures, and unknown locations
// are logged, counted in the summary, and isolated from each other.
func (e *Engine) RunCycle(ctx context.Context) Summary {
	summary := Summary{
		CycleID:   uuid.NewString(),
		StartedAt: e.nowFn().UTC(),
	}

	if err := e.store.HealthCheck(ctx); err != nil {
		e.logger.Errorf("cycle %s: conditions store unreachable, aborting: %v", summary.CycleID, err)
		summary.Errors = append(summary.Errors, fmt.Sprintf("store unreachable: %v", err))
		summary.Duration = e.nowFn().UTC().Sub(summary.StartedAt)
		return summary
	}

	active, err := e.store.DistinctActiveLocations(ctx)
	if err != nil {
		e.logger.Errorf("cycle %s: error loading active locations, aborting: %v", summary.CycleID, err)
		summary.Errors = append(summary.Errors, fmt.Sprintf("loading active locations: %v", err))
		summary.Duration = e.nowFn().UTC().Sub(summary.StartedAt)
		return summary
	}
	if len(active) == 0 {
		e.logger.Info("no active locations, nothing to ingest")
		summary.Duration = e.nowFn().UTC().Sub(summary.StartedAt)
		e.recordCycle(ctx, &summary)
		return summary
	}

	e.logger.Infof("cycle %s: ingesting conditions for %d location(s)", summary.CycleID, len(active))

	for _, location := range active {
		if ctx.Err() != nil {
			summary.Errors = append(summary.Errors, "cycle cancelled")
			break
		}
		e.ingestLocation(ctx, location, &summary)
	}

	summary.Duration = e.nowFn().UTC().Sub(summary.StartedAt)
	e.logger.Infow("ingestion cycle complete",
		"cycle_id", summary.CycleID,
		"locations_processed", summary.LocationsProcessed,
		"locations_written", summary.LocationsWritten,
		"external_calls", summary.ExternalCalls,
		"errors", len(summary.Errors),
		"duration", summary.Duration,
	)
	e.recordCycle(ctx, &summary)

	return summary
}

// ingestLocation fetches every source for one location in priority order,
// merges field-by-field with first-writer-wins, and performs the single
// store write.
func (e *Engine) ingestLocation(ctx context.Context, location string, summary *Summary) {
	summary.LocationsProcessed++

	sources, ok := e.registry.Sources(location)
	if !ok {
		e.logger.Warnf("location %q is active but not in the registry, skipping", location)
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: unsupported location", location))
		return
	}

	// Sources arrive sorted by priority, so write-if-absent makes the
	// highest-priority non-null value win every field.
	merged := make(map[extract.Field]float64)
	for _, source := range sources {
		summary.ExternalCalls++
		obs, err := e.fetcher.Fetch(ctx, source)
		if err != nil {
			e.logger.Errorf("error fetching %s for %q: %v", source.Name, location, err)
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s/%s: %v", location, source.Name, err))
			continue
		}
		if obs.Empty() {
			e.logger.Debugf("%s contributed no fields for %q", source.Name, location)
			continue
		}
		for field, value := range obs.Fields {
			if _, seen := merged[field]; !seen {
				merged[field] = value
			}
		}
	}

	update, persisted := updateFromFields(merged)
	if persisted == 0 {
		e.logger.Warnf("no provider produced conditions for %q, skipping write", location)
		return
	}

	if err := e.store.UpsertConditions(ctx, location, update, false); err != nil {
		e.logger.Errorf("error writing conditions for %q: %v", location, err)
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", location, err))
		return
	}

	summary.LocationsWritten++
	e.logger.Debugf("wrote conditions for %q: %d field(s) from %d source(s)", location, persisted, len(sources))
}

// updateFromFields maps the merged accumulator onto the store's columns.
// Fields the schema does not carry (temperature, wave direction) are
// dropped here; the count of persisted fields decides whether a write
// happens at all.
func updateFromFields(merged map[extract.Field]float64) (database.ConditionsUpdate, int) {
	var update database.ConditionsUpdate
	persisted := 0

	if v, ok := merged[extract.FieldWaveHeightM]; ok {
		update.WaveHeightM = &v
		persisted++
	}
	if v, ok := merged[extract.FieldWavePeriodS]; ok {
		update.WavePeriodS = &v
		persisted++
	}
	if v, ok := merged[extract.FieldWindSpeedMPS]; ok {
		update.WindSpeedMPS = &v
		persisted++
	}
	if v, ok := merged[extract.FieldWindDirectionDeg]; ok {
		update.WindDirectionDeg = &v
		persisted++
	}

	return update, persisted
}

// recordCycle persists the audit row. Best-effort: the summary has
// already been logged, so a failure here costs nothing but the row.
func (e *Engine) recordCycle(ctx context.Context, summary *Summary) {
	record := database.CycleRecord{
		CycleID:            summary.CycleID,
		StartedAt:          summary.StartedAt,
		FinishedAt:         summary.StartedAt.Add(summary.Duration),
		LocationsProcessed: summary.LocationsProcessed,
		LocationsWritten:   summary.LocationsWritten,
		ExternalCalls:      summary.ExternalCalls,
		Errors:             summary.Errors,
	}
	if err := e.store.RecordCycle(ctx, record); err != nil {
		e.logger.Warnf("error recording cycle %s: %v", summary.CycleID, err)
	}
}
