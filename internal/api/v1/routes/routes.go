package routes

import (
	"github.com/gin-gonic/gin"

	"audioscribe/internal/api/v1/handlers"
	"audioscribe/internal/api/v1/services"
)

// ServiceContainer holds the services the v1 handlers need. ExportService
// is optional; the others are mandatory.
type ServiceContainer struct {
	TranscriptionService services.TranscriptionService
	ProviderService      services.ProviderService
	ExportService        services.ExportService
}

// RegisterRoutes registers all v1 API routes on the given group.
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	transcriptionHandler := handlers.NewTranscriptionHandler(container.TranscriptionService)
	transcriptions := router.Group("/transcriptions")
	{
		transcriptions.POST("/upload", transcriptionHandler.Upload)
		transcriptions.GET("", transcriptionHandler.List)
		transcriptions.GET("/:id", transcriptionHandler.Get)
		transcriptions.DELETE("/:id", transcriptionHandler.Delete)
	}

	providerHandler := handlers.NewProviderHandler(container.ProviderService)
	providers := router.Group("/providers")
	{
		providers.GET("", providerHandler.List)
		providers.GET("/:id", providerHandler.Get)
		providers.GET("/:id/status", providerHandler.Status)
		providers.POST("/:id/test", providerHandler.Test)
	}

	if container.ExportService != nil {
		exportHandler := handlers.NewExportHandler(container.ExportService)
		router.GET("/export/xlsx", exportHandler.ExportXLSX)
	}
}
