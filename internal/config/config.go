// Package config provides configuration loading and management for
// fundus-vessels. It handles loading configuration from YAML files, applies
// environment overrides and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/fundus-vessels/internal/dataset"
	"github.com/ironsheep/fundus-vessels/internal/display"
	"github.com/ironsheep/fundus-vessels/internal/logging"
	"github.com/ironsheep/fundus-vessels/internal/vessels"
)

// EnvRoot overrides the dataset root directory when set.
const EnvRoot = "FUNDUS_VESSELS_ROOT"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Dataset describes where case images live
	Dataset dataset.Paths `yaml:"dataset"`

	// Pipeline holds the constants of the recognition stages
	Pipeline vessels.Params `yaml:"pipeline"`

	// Processing parameters
	Processing struct {
		// Workers is how many cases are recognized at once in batch runs
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Display controls the terminal preview
	Display display.Options `yaml:"display"`

	// Logging selects level and format of diagnostics on stderr
	Logging logging.Options `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{
		Dataset:  dataset.DefaultPaths(),
		Pipeline: vessels.DefaultParams(),
		Display:  display.DefaultOptions(),
		Logging:  logging.DefaultOptions(),
	}
	cfg.Processing.Workers = runtime.NumCPU()
	return cfg
}

// LoadConfig loads configuration from a YAML file.
// An empty path or a file that doesn't exist yields the default configuration.
// Keys missing from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides the dataset root and the log level from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvRoot); v != "" {
		c.Dataset.Root = v
	}
	if v := os.Getenv(logging.EnvLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	p := c.Dataset
	if p.PicturesDir == "" || p.MasksDir == "" || p.ExpertDir == "" {
		return fmt.Errorf("dataset: directories must not be empty")
	}
	if p.PictureExt == "" || p.DetailsExt == "" {
		return fmt.Errorf("dataset: extensions must not be empty")
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if c.Processing.Workers < 0 {
		return fmt.Errorf("processing: workers must not be negative, got %d", c.Processing.Workers)
	}
	if c.Display.Width < 0 {
		return fmt.Errorf("display: width must not be negative, got %d", c.Display.Width)
	}
	if _, err := display.ParsePalette(string(c.Display.Palette)); err != nil {
		return fmt.Errorf("display: %w", err)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
