package models

import "fmt"

// MConfig Structure
type MConfig struct {
	Name           string           `yaml:"name" split_words:"true"`
	Host           string           `yaml:"host" split_words:"true"`
	Port           int              `yaml:"port" split_words:"true"`
	LogLevel       string           `yaml:"log_level" split_words:"true"`
	AllowedOrigins []string         `yaml:"allowed_origins" split_words:"true"`
	Network        MNetworkConfig   `yaml:"network" split_words:"true"`
	Reference      MReferenceConfig `yaml:"reference" split_words:"true"`
	Provider       MProviderConfig  `yaml:"provider" split_words:"true"`
	Storage        MStorageConfig   `yaml:"storage" split_words:"true"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled" split_words:"true"`
	Proxies        []string `yaml:"proxies" split_words:"true"`
	RequestTimeout int      `yaml:"timeout" split_words:"true"`
	UserAgent      string   `yaml:"user_agent" split_words:"true"`
}

type MReferenceConfig struct {
	URL            string `yaml:"url" split_words:"true"`
	SymbolColumn   string `yaml:"symbol_column" split_words:"true"`
	SectorColumn   string `yaml:"sector_column" split_words:"true"`
	SecurityColumn string `yaml:"security_column" split_words:"true"`
}

type MProviderConfig struct {
	BaseURL         string `yaml:"base_url" split_words:"true"`
	MaxSymbolLength int    `yaml:"max_symbol_length" split_words:"true"`
	IncludePrePost  bool   `yaml:"include_pre_post" split_words:"true"`
	AutoAdjust      bool   `yaml:"auto_adjust" split_words:"true"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type" split_words:"true"`
	DBPath             string `yaml:"db_path" split_words:"true"`
	DBConnectionString string `yaml:"db_connection_string" split_words:"true"`
	RetentionDays      int    `yaml:"retention_days" split_words:"true"`
}

// Addr is the listen address of the HTTP server.
func (c *MConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
