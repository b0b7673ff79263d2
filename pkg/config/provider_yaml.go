package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file,
// overlaying explicitly-set keys onto the production defaults.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags. Pointer fields
	// distinguish "absent" from an explicit zero value.
	var yamlConfig struct {
		Database struct {
			ConnectionString string `yaml:"connection-string"`
		} `yaml:"database"`
		HTTP struct {
			ListenAddr *string `yaml:"listen-addr,omitempty"`
			Port       *int    `yaml:"port,omitempty"`
		} `yaml:"http,omitempty"`
		Ingest struct {
			IntervalMinutes     *int  `yaml:"interval-minutes,omitempty"`
			PaceSeconds         *int  `yaml:"pace-seconds,omitempty"`
			StrictWindUnits     *bool `yaml:"strict-wind-units,omitempty"`
			QuietHoursStart     *int  `yaml:"quiet-hours-start,omitempty"`
			QuietHoursEnd       *int  `yaml:"quiet-hours-end,omitempty"`
			SunsetWindowMinutes *int  `yaml:"sunset-window-minutes,omitempty"`
		} `yaml:"ingest,omitempty"`
		APIKeys map[string]string `yaml:"api-keys,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := Defaults()
	config.Database.ConnectionString = yamlConfig.Database.ConnectionString

	if yamlConfig.HTTP.ListenAddr != nil {
		config.HTTP.ListenAddr = *yamlConfig.HTTP.ListenAddr
	}
	if yamlConfig.HTTP.Port != nil {
		config.HTTP.Port = *yamlConfig.HTTP.Port
	}

	if yamlConfig.Ingest.IntervalMinutes != nil {
		config.Ingest.IntervalMinutes = *yamlConfig.Ingest.IntervalMinutes
	}
	if yamlConfig.Ingest.PaceSeconds != nil {
		config.Ingest.PaceSeconds = *yamlConfig.Ingest.PaceSeconds
	}
	if yamlConfig.Ingest.StrictWindUnits != nil {
		config.Ingest.StrictWindUnits = *yamlConfig.Ingest.StrictWindUnits
	}
	if yamlConfig.Ingest.QuietHoursStart != nil {
		config.Ingest.QuietHoursStart = *yamlConfig.Ingest.QuietHoursStart
	}
	if yamlConfig.Ingest.QuietHoursEnd != nil {
		config.Ingest.QuietHoursEnd = *yamlConfig.Ingest.QuietHoursEnd
	}
	if yamlConfig.Ingest.SunsetWindowMinutes != nil {
		config.Ingest.SunsetWindowMinutes = *yamlConfig.Ingest.SunsetWindowMinutes
	}

	for provider, key := range yamlConfig.APIKeys {
		config.APIKeys[provider] = key
	}

	y.config = config
	return config, nil
}

// GetDatabaseConfig returns the store connection configuration
func (y *YAMLProvider) GetDatabaseConfig() (*DatabaseData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Database, nil
}

// GetHTTPConfig returns the device API listener configuration
func (y *YAMLProvider) GetHTTPConfig() (*HTTPData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.HTTP, nil
}

// GetIngestConfig returns the ingestion configuration
func (y *YAMLProvider) GetIngestConfig() (*IngestData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Ingest, nil
}

// GetProviderKeys returns per-provider API keys
func (y *YAMLProvider) GetProviderKeys() (map[string]string, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.APIKeys, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
