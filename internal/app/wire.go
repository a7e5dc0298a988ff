//go:build wireinject
// +build wireinject

package app

import (
	"log"
	"path/filepath"

	"github.com/google/wire"
	"go.uber.org/zap"

	"audioscribe/internal/app/api/provider"
	"audioscribe/internal/app/converter"
	"audioscribe/internal/app/repository"
	"audioscribe/internal/app/repository/pg"
	"audioscribe/internal/app/repository/sqlite"
	"audioscribe/internal/app/util/files"
	"audioscribe/internal/config"
)

// provideRegistry assembles the provider registry from providers.yaml or,
// when the file is absent, from the TRANSCRIBER environment setup.
func provideRegistry() *provider.Registry {
	registry, err := provider.BuildRegistry()
	if err != nil {
		log.Fatalf("Failed to build provider registry: %v", err)
	}
	return registry
}

// provideDefaultTranscriber returns the registry's default provider handle.
// It is resolved once at startup and shared for the process lifetime.
func provideDefaultTranscriber(registry *provider.Registry) provider.Transcriber {
	t, err := registry.Default()
	if err != nil {
		log.Fatalf("No usable transcription provider: %v", err)
	}
	return t
}

// provideTranscriptionDAO opens the history store: PostgreSQL when
// DATABASE_URL is set, otherwise the local sqlite file under data/.
func provideTranscriptionDAO() repository.TranscriptionDAO {
	net := config.GetNetworkConfig()
	if net.UsePostgres() {
		db, err := pg.Open(net.GetPostgresConnectionString())
		if err != nil {
			log.Fatalf("Failed to open postgres history store: %v", err)
		}
		return db
	}

	projectRoot, err := files.GetProjectRoot()
	if err != nil {
		log.Fatalf("Failed to get project root: %v", err)
	}
	db, err := sqlite.NewSQLiteDB(filepath.Join(projectRoot, "data", "transcriptions.db"))
	if err != nil {
		log.Fatalf("Failed to open sqlite history store: %v", err)
	}
	return db
}

// InitializeRegistry builds the provider registry for the API server.
func InitializeRegistry() *provider.Registry {
	wire.Build(provideRegistry)
	return nil
}

// InitializeHistory opens the history store for commands that only read or
// write records.
func InitializeHistory() repository.TranscriptionDAO {
	wire.Build(provideTranscriptionDAO)
	return nil
}

// InitializeConverter wires the batch converter with the default provider
// and the history store.
func InitializeConverter(logger *zap.Logger) *converter.Converter {
	wire.Build(converter.NewConverter, provideDefaultTranscriber, provideRegistry, provideTranscriptionDAO)
	return &converter.Converter{}
}
