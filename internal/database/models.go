package database

import (
	"time"

	"github.com/jackc/pgtype"
)

// User mirrors the users table. Registration, settings, and deletion are
// owned by the web UI; the backend only reads these rows.
type User struct {
	ID                    uint     `gorm:"primaryKey;column:user_id"`
	Username              string   `gorm:"column:username"`
	Email                 string   `gorm:"column:email;uniqueIndex"`
	PasswordHash          string   `gorm:"column:password_hash"`
	Location              string   `gorm:"column:location"`
	Theme                 string   `gorm:"column:theme;default:day"`
	PreferredOutput       string   `gorm:"column:preferred_output;default:meters"`
	WaveThresholdM        float64  `gorm:"column:wave_threshold_m"`
	WaveThresholdMaxM     *float64 `gorm:"column:wave_threshold_max_m"`
	WindThresholdKnots    float64  `gorm:"column:wind_threshold_knots"`
	WindThresholdMaxKnots *float64 `gorm:"column:wind_threshold_max_knots"`
	BrightnessLevel       float64  `gorm:"column:brightness_level;default:1.0"`
	OffTimesEnabled       bool     `gorm:"column:off_times_enabled;default:false"`
	OffTimeStart          *string  `gorm:"column:off_time_start"`
	OffTimeEnd            *string  `gorm:"column:off_time_end"`
	IsAdmin               bool     `gorm:"column:is_admin;default:false"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Device represents a lamp. The hardware ID is printed on the device at
// manufacturing and is the only identifier a poll carries.
type Device struct {
	ID           uint       `gorm:"primaryKey;column:device_id"`
	UserID       uint       `gorm:"column:user_id;uniqueIndex"`
	HardwareID   int64      `gorm:"column:hardware_id;uniqueIndex"`
	LastPollTime *time.Time `gorm:"column:last_poll_time"`
}

// TableName specifies the table name for Device
func (Device) TableName() string {
	return "devices"
}

// Conditions holds the latest merged conditions for one location. One row
// per location, overwritten every successful cycle; there is no history.
type Conditions struct {
	Location         string    `gorm:"primaryKey;column:location"`
	WaveHeightM      *float64  `gorm:"column:wave_height_m"`
	WavePeriodS      *float64  `gorm:"column:wave_period_s"`
	WindSpeedMPS     *float64  `gorm:"column:wind_speed_mps"`
	WindDirectionDeg *float64  `gorm:"column:wind_direction_deg"`
	LastUpdated      time.Time `gorm:"column:last_updated"`
}

// TableName specifies the table name for Conditions
func (Conditions) TableName() string {
	return "conditions"
}

// IngestCycle is one audit row per ingestion pass.
type IngestCycle struct {
	CycleID            string       `gorm:"primaryKey;column:cycle_id"`
	StartedAt          time.Time    `gorm:"column:started_at"`
	FinishedAt         time.Time    `gorm:"column:finished_at"`
	LocationsProcessed int          `gorm:"column:locations_processed"`
	LocationsWritten   int          `gorm:"column:locations_written"`
	ExternalCalls      int          `gorm:"column:external_calls"`
	Errors             pgtype.JSONB `gorm:"column:errors;type:jsonb;default:'[]';not null"`
}

// TableName specifies the table name for IngestCycle
func (IngestCycle) TableName() string {
	return "ingest_cycles"
}
