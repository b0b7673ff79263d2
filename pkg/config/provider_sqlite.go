package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration.
// Schema: a single-row "config" table plus a "provider_api_keys" table,
// maintained by the operator tooling.
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database,
// overlaying non-NULL columns onto the production defaults.
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	query := `
		SELECT database_url, http_listen_addr, http_port,
		       interval_minutes, pace_seconds, strict_wind_units,
		       quiet_hours_start, quiet_hours_end, sunset_window_minutes
		FROM config
		WHERE id = 1
	`

	var databaseURL, listenAddr sql.NullString
	var port, interval, pace, quietStart, quietEnd, sunsetWindow sql.NullInt64
	var strictWind sql.NullBool

	err := s.db.QueryRow(query).Scan(
		&databaseURL, &listenAddr, &port,
		&interval, &pace, &strictWind,
		&quietStart, &quietEnd, &sunsetWindow,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load config row: %w", err)
	}

	config := Defaults()

	if databaseURL.Valid {
		config.Database.ConnectionString = databaseURL.String
	}
	if listenAddr.Valid {
		config.HTTP.ListenAddr = listenAddr.String
	}
	if port.Valid {
		config.HTTP.Port = int(port.Int64)
	}
	if interval.Valid {
		config.Ingest.IntervalMinutes = int(interval.Int64)
	}
	if pace.Valid {
		config.Ingest.PaceSeconds = int(pace.Int64)
	}
	if strictWind.Valid {
		config.Ingest.StrictWindUnits = strictWind.Bool
	}
	if quietStart.Valid {
		config.Ingest.QuietHoursStart = int(quietStart.Int64)
	}
	if quietEnd.Valid {
		config.Ingest.QuietHoursEnd = int(quietEnd.Int64)
	}
	if sunsetWindow.Valid {
		config.Ingest.SunsetWindowMinutes = int(sunsetWindow.Int64)
	}

	keys, err := s.loadProviderKeys()
	if err != nil {
		return nil, err
	}
	config.APIKeys = keys

	return config, nil
}

func (s *SQLiteProvider) loadProviderKeys() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT provider, api_key FROM provider_api_keys`)
	if err != nil {
		return nil, fmt.Errorf("failed to query provider API keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]string)
	for rows.Next() {
		var provider string
		var apiKey sql.NullString
		if err := rows.Scan(&provider, &apiKey); err != nil {
			return nil, fmt.Errorf("failed to scan API key row: %w", err)
		}
		if apiKey.Valid && apiKey.String != "" {
			keys[provider] = apiKey.String
		}
	}
	return keys, rows.Err()
}

// GetDatabaseConfig returns the store connection configuration
func (s *SQLiteProvider) GetDatabaseConfig() (*DatabaseData, error) {
	config, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Database, nil
}

// GetHTTPConfig returns the device API listener configuration
func (s *SQLiteProvider) GetHTTPConfig() (*HTTPData, error) {
	config, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.HTTP, nil
}

// GetIngestConfig returns the ingestion configuration
func (s *SQLiteProvider) GetIngestConfig() (*IngestData, error) {
	config, err := s.LoadConfig()
	if err != nil {
		return nil, err
	}
	return &config.Ingest, nil
}

// GetProviderKeys returns per-provider API keys
func (s *SQLiteProvider) GetProviderKeys() (map[string]string, error) {
	return s.loadProviderKeys()
}

// IsReadOnly returns false; the SQLite backend is writable by operator tooling
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
