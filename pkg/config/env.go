package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables recognized by ApplyEnvOverrides. Environment wins
// over any file-provided value so deployments can run with no config file
// at all.
const (
	EnvDatabaseURL     = "SEAGLOW_DATABASE_URL"
	EnvListenAddr      = "SEAGLOW_LISTEN_ADDR"
	EnvHTTPPort        = "SEAGLOW_HTTP_PORT"
	EnvIntervalMinutes = "SEAGLOW_INTERVAL_MINUTES"
	EnvPaceSeconds     = "SEAGLOW_PACE_SECONDS"
	EnvStrictWindUnits = "SEAGLOW_STRICT_WIND_UNITS"
	EnvOWMAPIKey       = "SEAGLOW_OWM_API_KEY"
)

// ApplyEnvOverrides overlays SEAGLOW_* environment variables onto cfg.
func ApplyEnvOverrides(cfg *ConfigData) error {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.Database.ConnectionString = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		cfg.HTTP.ListenAddr = v
	}
	if v := os.Getenv(EnvHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvHTTPPort, v, err)
		}
		cfg.HTTP.Port = port
	}
	if v := os.Getenv(EnvIntervalMinutes); v != "" {
		interval, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvIntervalMinutes, v, err)
		}
		cfg.Ingest.IntervalMinutes = interval
	}
	if v := os.Getenv(EnvPaceSeconds); v != "" {
		pace, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPaceSeconds, v, err)
		}
		cfg.Ingest.PaceSeconds = pace
	}
	if v := os.Getenv(EnvStrictWindUnits); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvStrictWindUnits, v, err)
		}
		cfg.Ingest.StrictWindUnits = strict
	}
	if v := os.Getenv(EnvOWMAPIKey); v != "" {
		if cfg.APIKeys == nil {
			cfg.APIKeys = map[string]string{}
		}
		cfg.APIKeys["openweathermap"] = v
	}
	return nil
}
