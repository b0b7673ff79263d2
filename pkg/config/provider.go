// Package config provides configuration loading for the seaglow backend.
package config

import "fmt"

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetDatabaseConfig() (*DatabaseData, error)
	GetHTTPConfig() (*HTTPData, error)
	GetIngestConfig() (*IngestData, error)
	GetProviderKeys() (map[string]string, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Database DatabaseData      `json:"database"`
	HTTP     HTTPData          `json:"http,omitempty"`
	Ingest   IngestData        `json:"ingest,omitempty"`
	APIKeys  map[string]string `json:"api_keys,omitempty"`
}

// DatabaseData holds the connection settings for the shared conditions store
type DatabaseData struct {
	ConnectionString string `json:"connection_string"`
}

// HTTPData holds the device API listener settings
type HTTPData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	Port       int    `json:"port"`
}

// IngestData holds the ingestion engine and device-boundary tunables
type IngestData struct {
	IntervalMinutes     int  `json:"interval_minutes"`
	PaceSeconds         int  `json:"pace_seconds"`
	StrictWindUnits     bool `json:"strict_wind_units"`
	QuietHoursStart     int  `json:"quiet_hours_start"`
	QuietHoursEnd       int  `json:"quiet_hours_end"`
	SunsetWindowMinutes int  `json:"sunset_window_minutes"`
}

// Defaults returns a fully-populated production default configuration.
// File providers overlay onto this, so absent keys keep these values.
func Defaults() *ConfigData {
	return &ConfigData{
		HTTP: HTTPData{
			Port: 8090,
		},
		Ingest: IngestData{
			IntervalMinutes:     15,
			PaceSeconds:         30,
			StrictWindUnits:     true,
			QuietHoursStart:     22,
			QuietHoursEnd:       6,
			SunsetWindowMinutes: 15,
		},
		APIKeys: map[string]string{},
	}
}

// Validate checks the configuration for values the daemon cannot start with.
func (c *ConfigData) Validate() error {
	if c.Database.ConnectionString == "" {
		return fmt.Errorf("database connection string is required (set database.connection_string or SEAGLOW_DATABASE_URL)")
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port %d out of range", c.HTTP.Port)
	}
	if c.Ingest.IntervalMinutes < 1 {
		return fmt.Errorf("ingest interval must be at least 1 minute, got %d", c.Ingest.IntervalMinutes)
	}
	if c.Ingest.PaceSeconds < 0 {
		return fmt.Errorf("pace seconds cannot be negative, got %d", c.Ingest.PaceSeconds)
	}
	if c.Ingest.QuietHoursStart < 0 || c.Ingest.QuietHoursStart > 23 {
		return fmt.Errorf("quiet hours start %d out of range 0-23", c.Ingest.QuietHoursStart)
	}
	if c.Ingest.QuietHoursEnd < 0 || c.Ingest.QuietHoursEnd > 23 {
		return fmt.Errorf("quiet hours end %d out of range 0-23", c.Ingest.QuietHoursEnd)
	}
	if c.Ingest.SunsetWindowMinutes < 0 {
		return fmt.Errorf("sunset window cannot be negative, got %d", c.Ingest.SunsetWindowMinutes)
	}
	return nil
}
