package provider

import (
	"fmt"
	"os"
	"sort"

	"audioscribe/internal/config"
)

// BuildRegistry assembles the startup registry. A providers.yaml file, when
// present, defines the full set; otherwise a single provider is built from
// the TRANSCRIBER environment variable and its per-type settings.
func BuildRegistry() (*Registry, error) {
	path := ConfigPath()
	if _, err := os.Stat(path); err == nil {
		cfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		return buildFromConfig(cfg)
	}
	return buildFromEnv()
}

func buildFromConfig(cfg *Config) (*Registry, error) {
	registry := NewRegistry()

	// Map iteration order is random; register in name order so the
	// implicit default is stable across restarts.
	names := make([]string, 0, len(cfg.Providers))
	for name := range cfg.Providers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pc := cfg.Providers[name]
		if !pc.Enabled {
			continue
		}
		t, err := Create(pc.Type, pc.Settings)
		if err != nil {
			return nil, fmt.Errorf("build provider %s: %w", name, err)
		}
		if err := registry.Register(name, t); err != nil {
			return nil, err
		}
	}

	if cfg.DefaultProvider != "" {
		if err := registry.SetDefault(cfg.DefaultProvider); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func buildFromEnv() (*Registry, error) {
	providerType := config.GetTranscriberType()

	settings, err := envSettings(providerType)
	if err != nil {
		return nil, err
	}

	t, err := Create(providerType, settings)
	if err != nil {
		return nil, fmt.Errorf("build provider %s: %w", providerType, err)
	}

	registry := NewRegistry()
	if err := registry.Register(providerType, t); err != nil {
		return nil, err
	}
	return registry, nil
}

// envSettings collects the environment variables each provider type reads
// when no providers file is in play.
func envSettings(providerType string) (map[string]interface{}, error) {
	switch providerType {
	case "whisper_cpp":
		return map[string]interface{}{
			"binary": os.Getenv("WHISPER_CPP_BINARY"),
			"model":  os.Getenv("WHISPER_CPP_MODEL"),
		}, nil
	case "openai":
		keys, err := config.GetAPIKeys()
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"api_key":  keys.OpenAI,
			"base_url": os.Getenv("OPENAI_BASE_URL"),
		}, nil
	case "whisper_server":
		net := config.GetNetworkConfig()
		return map[string]interface{}{
			"base_url": net.WhisperServerURL,
		}, nil
	default:
		// Unknown types still reach Create, which reports the
		// registered alternatives.
		return nil, nil
	}
}
