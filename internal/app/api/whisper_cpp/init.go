package whisper_cpp

import (
	"fmt"
	"time"

	"audioscribe/internal/app/api/provider"
)

func init() {
	provider.RegisterCreator("whisper_cpp", createProvider)
}

func createProvider(settings map[string]interface{}) (provider.Transcriber, error) {
	binaryPath := provider.StringSetting(settings, "binary")
	if binaryPath == "" {
		return nil, fmt.Errorf("whisper_cpp provider requires a 'binary' setting (WHISPER_CPP_BINARY)")
	}

	modelPath := provider.StringSetting(settings, "model")
	if modelPath == "" {
		return nil, fmt.Errorf("whisper_cpp provider requires a 'model' setting (WHISPER_CPP_MODEL)")
	}

	cfg := Config{
		BinaryPath: binaryPath,
		ModelPath:  modelPath,
		Language:   provider.StringSetting(settings, "language"),
		Prompt:     provider.StringSetting(settings, "prompt"),
	}

	// yaml numbers arrive as int, env-built settings may use float64.
	switch v := settings["timeout_seconds"].(type) {
	case int:
		cfg.Timeout = time.Duration(v) * time.Second
	case float64:
		cfg.Timeout = time.Duration(v) * time.Second
	}

	return NewLocalTranscriber(cfg), nil
}
