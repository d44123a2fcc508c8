// Package config loads the optional YAML configuration file. File
// values act as defaults; flags explicitly set on the command line win.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the file's top-level document.
type Config struct {
	Pulsein PulseinConfig `yaml:"pulsein"`
}

// PulseinConfig mirrors the command-line flags.
type PulseinConfig struct {
	Chip        string `yaml:"chip"`
	Offset      *int   `yaml:"offset"`
	ActiveLow   bool   `yaml:"active_low"`
	Capacity    int    `yaml:"capacity"`
	TimeoutUs   int64  `yaml:"timeout_us"`
	TriggerUs   int64  `yaml:"trigger_us"`
	Pulses      int    `yaml:"pulses"`
	CoarseClock bool   `yaml:"coarse_clock"`
	Broker      string `yaml:"broker"`
	TopicBase   string `yaml:"topic_base"`
	HTTPAddr    string `yaml:"http_addr"`
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
