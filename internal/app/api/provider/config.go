package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional providers.yaml file. When present it replaces the
// single-provider environment setup with a named set of providers.
type Config struct {
	// DefaultProvider names the entry used when a request doesn't pick one.
	// Empty means the first enabled provider in registration order.
	DefaultProvider string `yaml:"default_provider"`

	// Providers maps a registry name to its construction recipe.
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig is one entry in the providers file.
type ProviderConfig struct {
	// Type selects the creator, e.g. "whisper_cpp" or "openai".
	Type string `yaml:"type"`

	// Enabled entries are built at startup, disabled ones are skipped.
	Enabled bool `yaml:"enabled"`

	// Settings is handed to the creator as-is. String values support
	// ${VAR} expansion from the environment.
	Settings map[string]interface{} `yaml:"settings,omitempty"`
}

// ConfigPath resolves where the providers file should live. The
// PROVIDERS_CONFIG_PATH variable wins, otherwise providers.yaml in the
// working directory.
func ConfigPath() string {
	if path := os.Getenv("PROVIDERS_CONFIG_PATH"); path != "" {
		return path
	}
	return "providers.yaml"
}

// LoadConfig reads and validates a providers file. Environment references
// like ${OPENAI_API_KEY} are expanded before parsing so secrets stay out
// of the file itself.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read providers config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse providers config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid providers config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the file for mistakes that would otherwise surface as
// confusing startup failures.
func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("no providers defined")
	}

	enabled := 0
	for name, pc := range c.Providers {
		if pc.Type == "" {
			return fmt.Errorf("provider %s has no type", name)
		}
		if pc.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("no providers enabled")
	}

	if c.DefaultProvider != "" {
		pc, exists := c.Providers[c.DefaultProvider]
		if !exists {
			return fmt.Errorf("default_provider %s is not defined", c.DefaultProvider)
		}
		if !pc.Enabled {
			return fmt.Errorf("default_provider %s is disabled", c.DefaultProvider)
		}
	}
	return nil
}
