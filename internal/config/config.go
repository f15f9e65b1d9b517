package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the configuration file searched for by LoadConfig
const FileName = "striter.json"

// ErrNotFound is returned by LoadConfig when no striter.json exists
var ErrNotFound = errors.New("config file not found")

// Config represents the striter.json configuration file
type Config struct {
	LogLevel string     `json:"logLevel"`
	Host     HostConfig `json:"host"`
}

// HostConfig holds the limits applied to WASM guests using the host APIs
type HostConfig struct {
	ServiceName     string   `json:"serviceName"`
	APIs            []string `json:"apis"`
	MaxIterators    int      `json:"maxIterators"`
	IteratorTimeout Duration `json:"iteratorTimeout"`
	MaxRequestSize  int      `json:"maxRequestSize"`
	MaxResponseSize int      `json:"maxResponseSize"`
	MaxSourceUnits  int      `json:"maxSourceUnits"`
}

// Duration is a time.Duration written as a string ("30s", "5m") in JSON
type Duration time.Duration

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the configuration used when no striter.json exists
func Default() *Config {
	config := &Config{}
	config.setDefaults()
	return config
}

func (c *Config) setDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Host.ServiceName == "" {
		c.Host.ServiceName = "striter"
	}
	if len(c.Host.APIs) == 0 {
		c.Host.APIs = []string{"okra.strings"}
	}
	if c.Host.IteratorTimeout == 0 {
		c.Host.IteratorTimeout = Duration(5 * time.Minute)
	}
}

// LoadConfig loads striter.json from the current directory or a parent
// directory, returning the directory it was found in
func LoadConfig() (*Config, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return loadConfigFromDir(dir)
}

// LoadConfigFromPath loads the configuration from a specific path
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.Host.MaxIterators < 0 || config.Host.MaxSourceUnits < 0 {
		return nil, fmt.Errorf("invalid config file: limits must not be negative")
	}

	config.setDefaults()
	return &config, nil
}

// loadConfigFromDir searches for striter.json in the given directory and its parents
func loadConfigFromDir(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			config, err := LoadConfigFromPath(configPath)
			if err != nil {
				return nil, "", err
			}
			return config, dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return nil, "", fmt.Errorf("%w: no %s in %s or any parent directory", ErrNotFound, FileName, startDir)
}
