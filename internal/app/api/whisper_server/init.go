package whisper_server

import (
	"time"

	"audioscribe/internal/app/api/provider"
)

func init() {
	provider.RegisterCreator("whisper_server", createProvider)
}

func createProvider(settings map[string]interface{}) (provider.Transcriber, error) {
	cfg := Config{
		BaseURL:       provider.StringSetting(settings, "base_url"),
		InferencePath: provider.StringSetting(settings, "inference_path"),
		Language:      provider.StringSetting(settings, "language"),
	}

	if v, ok := settings["temperature"].(float64); ok {
		cfg.Temperature = v
	}
	if v, ok := settings["translate"].(bool); ok {
		cfg.Translate = v
	}
	switch v := settings["timeout_seconds"].(type) {
	case int:
		cfg.Timeout = time.Duration(v) * time.Second
	case float64:
		cfg.Timeout = time.Duration(v) * time.Second
	}

	if headers, ok := settings["custom_headers"].(map[string]interface{}); ok {
		cfg.CustomHeaders = make(map[string]string, len(headers))
		for k, v := range headers {
			if s, ok := v.(string); ok {
				cfg.CustomHeaders[k] = s
			}
		}
	}

	return NewServerTranscriber(cfg)
}
