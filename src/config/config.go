package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"sp500-dashboard/src/models"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. DASHBOARD_PORT.
const EnvPrefix = "DASHBOARD"

const (
	DefaultReferenceURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
	DefaultProviderURL  = "https://query1.finance.yahoo.com"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// -----------------------------------------------------------------------------

// Default returns the configuration used when no file or environment is present.
func Default() *Config {
	return &Config{MConfig: &models.MConfig{
		Name:     "sp500-dashboard",
		Host:     "0.0.0.0",
		Port:     8501,
		LogLevel: "INFO",
		Network: models.MNetworkConfig{
			RequestTimeout: 30,
		},
		Reference: models.MReferenceConfig{
			URL:            DefaultReferenceURL,
			SymbolColumn:   "Symbol",
			SectorColumn:   "GICS Sector",
			SecurityColumn: "Security",
		},
		Provider: models.MProviderConfig{
			BaseURL:         DefaultProviderURL,
			MaxSymbolLength: 12,
			IncludePrePost:  true,
			AutoAdjust:      true,
		},
		Storage: models.MStorageConfig{
			DBType:        "none",
			RetentionDays: 30,
		},
	}}
}

// -----------------------------------------------------------------------------

// NewConfig layers defaults, the YAML file (optional) and DASHBOARD_* variables.
func NewConfig(configPath string) (*Config, error) {
	config := Default()

	// 1. Read the YAML file content, if any
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		default:
			if err := yaml.Unmarshal(data, config.MConfig); err != nil {
				return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
			}
		}
	}

	// 2. Environment overrides
	if err := envconfig.Process(EnvPrefix, config.MConfig); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// 3. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("application name cannot be empty")
	}

	if c.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid server port number: %d", c.Port)
	}

	if c.Network.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be greater than 0")
	}

	if c.Reference.URL == "" {
		return fmt.Errorf("reference url cannot be empty")
	}
	if c.Reference.SymbolColumn == "" || c.Reference.SectorColumn == "" {
		return fmt.Errorf("reference symbol and sector columns must be set")
	}

	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider base url cannot be empty")
	}
	if c.Provider.MaxSymbolLength <= 0 {
		return fmt.Errorf("max symbol length must be greater than 0")
	}

	if c.Storage.RetentionDays < 0 {
		return fmt.Errorf("retention days cannot be negative")
	}

	switch strings.ToLower(c.Storage.DBType) {
	case "", "none":
	case "sqlite":
		if c.Storage.DBPath == "" {
			return fmt.Errorf("database path cannot be empty for sqlite")
		}
	case "postgres":
		if c.Storage.DBConnectionString == "" {
			return fmt.Errorf("database connection string cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Storage.DBType)
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
