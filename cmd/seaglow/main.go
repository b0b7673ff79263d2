// Command seaglow runs the backend data plane: the periodic conditions
// ingestion engine and the device-facing pull API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seaglow/seaglow/internal/app"
	"github.com/seaglow/seaglow/internal/constants"
	"github.com/seaglow/seaglow/internal/log"
	"github.com/seaglow/seaglow/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "config.yaml", "Path to configuration source:\n\t\t\t  YAML: config.yaml\n\t\t\t  SQLite: config.db\n\t\t\tOptional; SEAGLOW_* environment variables override file values")
	cfgBackend := flag.String("config-backend", "yaml", "Configuration backend type: 'yaml' for YAML files, 'sqlite' for SQLite databases")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("seaglow %s\n", constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Load configuration
	cfgData, err := loadConfig(*cfgFile, *cfgBackend)
	if err != nil {
		log.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Create and run the application
	application := app.New(cfgData, log.GetSugaredLogger())
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		os.Exit(1)
	}
}

func loadConfig(cfgFile, cfgBackend string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(cfgFile)

	cfgData := config.Defaults()

	// A missing config file is fine as long as the environment supplies
	// the essentials.
	if _, err := os.Stat(filename); err == nil {
		var provider config.ConfigProvider

		switch cfgBackend {
		case "yaml":
			provider = config.NewYAMLProvider(filename)
		case "sqlite":
			provider, err = config.NewSQLiteProvider(filename)
			if err != nil {
				return nil, fmt.Errorf("error creating SQLite provider: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported configuration backend: %s. Use 'yaml' or 'sqlite'", cfgBackend)
		}
		defer provider.Close()

		cfgData, err = provider.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", filename, err)
		}
	} else {
		log.Infof("config file %s not found, using defaults and environment", filename)
	}

	if err := config.ApplyEnvOverrides(cfgData); err != nil {
		return nil, fmt.Errorf("error applying environment overrides: %w", err)
	}
	if err := cfgData.Validate(); err != nil {
		return nil, err
	}

	return cfgData, nil
}
