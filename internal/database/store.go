package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrDeviceNotFound is returned when a hardware ID has no device row.
var ErrDeviceNotFound = errors.New("device not found")

// Store exposes the operations the backend performs against the shared
// relational store. The backend writes conditions, devices.last_poll_time,
// and ingest_cycles; the users table belongs to the web UI and is
// strictly read-only here.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open GORM connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// HealthCheck verifies the store is reachable.
func (s *Store) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DistinctActiveLocations returns every location currently selected by at
// least one user, sorted.
func (s *Store) DistinctActiveLocations(ctx context.Context) ([]string, error) {
	var active []string
	err := s.db.WithContext(ctx).Model(&User{}).
		Where("location <> ''").
		Distinct().
		Order("location").
		Pluck("location", &active).Error
	if err != nil {
		return nil, fmt.Errorf("querying active locations: %w", err)
	}
	return active, nil
}

// DeviceContext is everything a device poll needs: the owning user, the
// device row, and the latest conditions for the user's location (nil when
// no cycle has written that location yet).
type DeviceContext struct {
	User       User
	Device     Device
	Conditions *Conditions
}

// LoadDeviceContext joins user, device, and conditions for one hardware
// ID. Unknown hardware IDs return ErrDeviceNotFound; a missing conditions
// row is not an error.
func (s *Store) LoadDeviceContext(ctx context.Context, hardwareID int64) (*DeviceContext, error) {
	var device Device
	err := s.db.WithContext(ctx).Where("hardware_id = ?", hardwareID).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying device %d: %w", hardwareID, err)
	}

	var user User
	err = s.db.WithContext(ctx).First(&user, device.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("device %d references missing user %d", hardwareID, device.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %d: %w", device.UserID, err)
	}

	dc := &DeviceContext{User: user, Device: device}

	if user.Location != "" {
		var conditions Conditions
		err = s.db.WithContext(ctx).Where("location = ?", user.Location).First(&conditions).Error
		switch {
		case err == nil:
			dc.Conditions = &conditions
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("querying conditions for %q: %w", user.Location, err)
		}
	}

	return dc, nil
}

// ConditionsUpdate carries the merged fields for one location write. Nil
// pointers become NULL columns unless preserveMissing is set on the
// upsert.
type ConditionsUpdate struct {
	WaveHeightM      *float64
	WavePeriodS      *float64
	WindSpeedMPS     *float64
	WindDirectionDeg *float64
}

// UpsertConditions writes the latest conditions for a location inside its
// own transaction and stamps last_updated. With preserveMissing, fields
// absent from the update keep their previous value; otherwise the row is
// replaced wholesale.
func (s *Store) UpsertConditions(ctx context.Context, location string, update ConditionsUpdate, preserveMissing bool) error {
	if location == "" {
		return errors.New("location is required")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing Conditions
		err := tx.Where("location = ?", location).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			row := Conditions{
				Location:         location,
				WaveHeightM:      update.WaveHeightM,
				WavePeriodS:      update.WavePeriodS,
				WindSpeedMPS:     update.WindSpeedMPS,
				WindDirectionDeg: update.WindDirectionDeg,
				LastUpdated:      time.Now().UTC(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("creating conditions for %q: %w", location, err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("loading conditions for %q: %w", location, err)
		}

		if preserveMissing {
			if update.WaveHeightM != nil {
				existing.WaveHeightM = update.WaveHeightM
			}
			if update.WavePeriodS != nil {
				existing.WavePeriodS = update.WavePeriodS
			}
			if update.WindSpeedMPS != nil {
				existing.WindSpeedMPS = update.WindSpeedMPS
			}
			if update.WindDirectionDeg != nil {
				existing.WindDirectionDeg = update.WindDirectionDeg
			}
		} else {
			existing.WaveHeightM = update.WaveHeightM
			existing.WavePeriodS = update.WavePeriodS
			existing.WindSpeedMPS = update.WindSpeedMPS
			existing.WindDirectionDeg = update.WindDirectionDeg
		}
		existing.LastUpdated = time.Now().UTC()

		if err := tx.Save(&existing).Error; err != nil {
			return fmt.Errorf("updating conditions for %q: %w", location, err)
		}
		return nil
	})
}

// TouchDevice records a poll time. Callers treat failures as best-effort.
func (s *Store) TouchDevice(ctx context.Context, deviceID uint) error {
	return s.db.WithContext(ctx).Model(&Device{}).
		Where("device_id = ?", deviceID).
		Update("last_poll_time", time.Now().UTC()).Error
}

// CycleRecord summarizes one ingestion pass for the audit table.
type CycleRecord struct {
	CycleID            string
	StartedAt          time.Time
	FinishedAt         time.Time
	LocationsProcessed int
	LocationsWritten   int
	ExternalCalls      int
	Errors             []string
}

// RecordCycle persists a cycle summary. Best-effort; the engine logs and
// continues when this fails.
func (s *Store) RecordCycle(ctx context.Context, record CycleRecord) error {
	row := IngestCycle{
		CycleID:            record.CycleID,
		StartedAt:          record.StartedAt,
		FinishedAt:         record.FinishedAt,
		LocationsProcessed: record.LocationsProcessed,
		LocationsWritten:   record.LocationsWritten,
		ExternalCalls:      record.ExternalCalls,
	}

	cycleErrors := record.Errors
	if cycleErrors == nil {
		cycleErrors = []string{}
	}
	if err := row.Errors.Set(cycleErrors); err != nil {
		return fmt.Errorf("encoding cycle errors: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("recording cycle %s: %w", record.CycleID, err)
	}
	return nil
}
