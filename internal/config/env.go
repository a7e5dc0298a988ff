package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeys holds external API credentials loaded from the environment.
type APIKeys struct {
	OpenAI string
}

// LoadEnv loads environment variables from a .env file if one exists.
// Missing files are fine: variables may be set system-wide instead.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			fmt.Printf("✅ Loaded environment variables from %s\n", envPath)
			break
		}
	}

	return nil
}

// GetAPIKeys retrieves and validates API keys from environment variables.
// Keys are optional here; operations that need one fail fast at use site.
func GetAPIKeys() (*APIKeys, error) {
	apiKeys := &APIKeys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
	}

	if apiKeys.OpenAI != "" {
		if err := ValidateAPIKey(apiKeys.OpenAI, "OpenAI"); err != nil {
			return nil, err
		}
	}

	return apiKeys, nil
}

// RequireOpenAIKey validates that the OpenAI key is present, for operations
// that cannot proceed without it.
func RequireOpenAIKey(apiKeys *APIKeys) error {
	if apiKeys.OpenAI == "" {
		return fmt.Errorf("the openai transcriber requires OPENAI_API_KEY in environment or .env file")
	}
	return nil
}

// GetTranscriberType returns the configured transcription provider type.
func GetTranscriberType() string {
	return getEnvOrDefault("TRANSCRIBER", "whisper_cpp")
}

// GetEnvironment returns the deployment environment name.
func GetEnvironment() string {
	return getEnvOrDefault("ENVIRONMENT", "development")
}

// GetCacheTTLHours returns the transcript cache TTL in hours.
func GetCacheTTLHours() int {
	raw := getEnvOrDefault("CACHE_TTL_HOURS", "24")
	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 {
		return 24
	}
	return hours
}

// InitializeConfig loads the environment and validates credential shapes.
// This is the main entry point for configuration loading.
func InitializeConfig() (*APIKeys, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	apiKeys, err := GetAPIKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to get API keys: %w", err)
	}

	return apiKeys, nil
}
