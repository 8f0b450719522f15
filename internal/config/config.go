// Package config loads and validates the itrq configuration from
// .itrq/config.json, falling back to defaults when no file exists.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ConfigDirName is the per-project directory holding config, cache and logs.
const ConfigDirName = ".itrq"

// DefaultSearchLimit caps search result listings when no limit is configured.
const DefaultSearchLimit = 20

// Config represents the complete itrq configuration
type Config struct {
	Version      int    `json:"version" mapstructure:"version"`
	SourceFile   string `json:"sourceFile" mapstructure:"sourceFile"`
	FallbackFile string `json:"fallbackFile" mapstructure:"fallbackFile"`
	CacheDir     string `json:"cacheDir" mapstructure:"cacheDir"`

	Search  SearchConfig  `json:"search" mapstructure:"search"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// SearchConfig contains search behavior configuration
type SearchConfig struct {
	Limit int `json:"limit" mapstructure:"limit"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		SourceFile:   "pcos.xlsx",
		FallbackFile: filepath.Join("testdata", "test_200_rows.xlsx"),
		CacheDir:     filepath.Join(ConfigDirName, "cache"),
		Search: SearchConfig{
			Limit: DefaultSearchLimit,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.itrq/config.json
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	// Set defaults
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("sourceFile", def.SourceFile)
	v.SetDefault("fallbackFile", def.FallbackFile)
	v.SetDefault("cacheDir", def.CacheDir)
	v.SetDefault("search.limit", def.Search.Limit)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.level", def.Logging.Level)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ConfigDirName))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Unmarshal into config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to <root>/.itrq/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SourceFile == "" {
		return fmt.Errorf("sourceFile must not be empty")
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cacheDir must not be empty")
	}
	if c.Search.Limit <= 0 {
		return fmt.Errorf("search.limit must be positive, got %d", c.Search.Limit)
	}
	switch c.Logging.Format {
	case "json", "human":
	default:
		return fmt.Errorf("logging.format must be json or human, got %q", c.Logging.Format)
	}
	return nil
}
