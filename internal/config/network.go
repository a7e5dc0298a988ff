package config

import (
	"fmt"
	"os"
	"strconv"
)

// NetworkConfig holds listener and backend endpoint configuration.
type NetworkConfig struct {
	HTTPHost string
	HTTPPort string

	PostgresPort string

	WhisperServerURL string
	DatabaseURL      string
	RedisAddr        string
	RedisPassword    string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// GetNetworkConfig returns network configuration from environment or defaults.
func GetNetworkConfig() *NetworkConfig {
	useSSL, _ := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", "false"))

	return &NetworkConfig{
		HTTPHost:         getEnvOrDefault("HTTP_HOST", DefaultHTTPHost),
		HTTPPort:         getEnvOrDefault("HTTP_PORT", DefaultHTTPPort),
		PostgresPort:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		WhisperServerURL: getEnvOrDefault("WHISPER_SERVER_URL", ""),
		DatabaseURL:      getEnvOrDefault("DATABASE_URL", ""),
		RedisAddr:        getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword:    getEnvOrDefault("REDIS_PASSWORD", ""),
		MinioEndpoint:    getEnvOrDefault("MINIO_ENDPOINT", ""),
		MinioAccessKey:   getEnvOrDefault("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:   getEnvOrDefault("MINIO_SECRET_KEY", ""),
		MinioBucket:      getEnvOrDefault("MINIO_BUCKET", "audioscribe"),
		MinioUseSSL:      useSSL,
	}
}

// GetListenAddr constructs the HTTP listen address.
func (nc *NetworkConfig) GetListenAddr() string {
	return fmt.Sprintf("%s:%s", nc.HTTPHost, nc.HTTPPort)
}

// GetPostgresConnectionString constructs the PostgreSQL connection string.
// DATABASE_URL wins; otherwise it is assembled from discrete DB_* variables.
func (nc *NetworkConfig) GetPostgresConnectionString() string {
	if nc.DatabaseURL != "" {
		return nc.DatabaseURL
	}

	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", nc.PostgresPort)
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "")
	dbname := getEnvOrDefault("DB_NAME", "postgres")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// UsePostgres reports whether history should go to PostgreSQL instead of the
// local sqlite file.
func (nc *NetworkConfig) UsePostgres() bool {
	return nc.DatabaseURL != ""
}

// CacheEnabled reports whether the Redis transcript cache is configured.
func (nc *NetworkConfig) CacheEnabled() bool {
	return nc.RedisAddr != ""
}

// ArchiveEnabled reports whether the MinIO upload archive is configured.
func (nc *NetworkConfig) ArchiveEnabled() bool {
	return nc.MinioEndpoint != ""
}

// getEnvOrDefault returns environment variable value or default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
