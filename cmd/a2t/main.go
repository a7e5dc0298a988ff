package main

import (
	"fmt"
	"os"

	"audioscribe/cmd/a2t/cmd"
	"audioscribe/internal/config"

	// Import providers to register them
	_ "audioscribe/internal/app/api/openai"
	_ "audioscribe/internal/app/api/whisper_cpp"
	_ "audioscribe/internal/app/api/whisper_server"
)

// @title AudioScribe API
// @version 1.0
// @description Speech-to-text HTTP service with pluggable transcription providers, history, caching and export.
// @BasePath /api/v1
func main() {
	// Missing API keys only matter for the providers that need them, so a
	// bad configuration warns instead of aborting.
	if _, err := config.InitializeConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration warning: %v\n", err)
	}

	cmd.Execute()
}
