package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"audioscribe/internal/api/server"
	v1routes "audioscribe/internal/api/v1/routes"
	"audioscribe/internal/api/v1/services"
	"audioscribe/internal/app"
	"audioscribe/internal/app/cache"
	"audioscribe/internal/config"
	"audioscribe/internal/logging"
	"audioscribe/internal/metrics"
)

var (
	host string
	port string
)

func init() {
	Cmd.Flags().StringVar(&host, "host", "", "listen host (defaults to HTTP_HOST, then 0.0.0.0)")
	Cmd.Flags().StringVar(&port, "port", "", "listen port (defaults to HTTP_PORT, then 5000)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcription API server",
	Long: `Run the transcription API server.

- POST /transcribe is the original endpoint and keeps its exact contract
- /api/v1 adds per-request scratch files, history, caching and export
- Redis caching and MinIO archiving switch on when their endpoints are configured`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		environment := config.GetEnvironment()

		logger, err := logging.New(logging.Options{
			Verbose: verbose,
			JSON:    environment == "production",
		})
		if err != nil {
			return err
		}
		defer logger.Sync()

		net := config.GetNetworkConfig()
		if host == "" {
			host = net.HTTPHost
		}
		if port == "" {
			port = net.HTTPPort
		}
		if err := config.ValidatePort(port, "http"); err != nil {
			return err
		}

		registry := app.InitializeRegistry()
		transcriber, err := registry.Default()
		if err != nil {
			return fmt.Errorf("no usable transcription provider: %w", err)
		}

		dao := app.InitializeHistory()
		defer dao.Close()

		var transcriptCache *cache.TranscriptCache
		if net.CacheEnabled() {
			transcriptCache, err = cache.New(net.RedisAddr, net.RedisPassword, logger)
			if err != nil {
				return fmt.Errorf("transcript cache: %w", err)
			}
			defer transcriptCache.Close()
		}

		var archive services.ArchiveStorage
		if net.ArchiveEnabled() {
			minioArchive, err := services.NewMinioArchive(cmd.Context(), services.ArchiveConfig{
				Endpoint:  net.MinioEndpoint,
				AccessKey: net.MinioAccessKey,
				SecretKey: net.MinioSecretKey,
				Bucket:    net.MinioBucket,
				UseSSL:    net.MinioUseSSL,
			}, logger)
			if err != nil {
				return fmt.Errorf("audio archive: %w", err)
			}
			archive = minioArchive
		}

		m := metrics.New()

		container := &v1routes.ServiceContainer{
			TranscriptionService: services.NewTranscriptionService(registry, dao, transcriptCache, archive, m, logger),
			ProviderService:      services.NewProviderService(registry, dao),
			ExportService:        services.NewExportService(dao),
		}

		cfg := server.DefaultConfig()
		cfg.Host = host
		cfg.Port = port
		cfg.Environment = environment

		srv := server.NewServer(cfg, transcriber, container, m, logger)
		if err := srv.Start(); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
