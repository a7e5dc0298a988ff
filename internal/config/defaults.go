package config

import "time"

// Default configuration constants.
const (
	// Timeouts per provider type
	DefaultWhisperCppTimeout    = 300 * time.Second
	DefaultOpenAITimeout        = 60 * time.Second
	DefaultWhisperServerTimeout = 120 * time.Second

	// Network defaults; the upload service historically binds all interfaces
	// on port 5000.
	DefaultHTTPHost = "0.0.0.0"
	DefaultHTTPPort = "5000"
)
