package openai

import (
	"time"

	"audioscribe/internal/app/api/provider"
)

func init() {
	provider.RegisterCreator("openai", createProvider)
}

func createProvider(settings map[string]interface{}) (provider.Transcriber, error) {
	cfg := Config{
		APIKey:   provider.StringSetting(settings, "api_key"),
		BaseURL:  provider.StringSetting(settings, "base_url"),
		Model:    provider.StringSetting(settings, "model"),
		Language: provider.StringSetting(settings, "language"),
		Prompt:   provider.StringSetting(settings, "prompt"),
	}

	if v, ok := settings["temperature"].(float64); ok {
		cfg.Temperature = float32(v)
	}
	switch v := settings["timeout_seconds"].(type) {
	case int:
		cfg.Timeout = time.Duration(v) * time.Second
	case float64:
		cfg.Timeout = time.Duration(v) * time.Second
	}

	return NewRemoteTranscriber(cfg)
}
