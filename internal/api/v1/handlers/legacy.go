package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"audioscribe/internal/api/middleware"
	"audioscribe/internal/app/api/provider"
)

// legacyScratchPath is the fixed, working-dir-relative file every legacy
// upload is written to, overwriting whatever the previous request left
// there. The path is part of the endpoint's long-standing contract: it is
// never cleaned up, and concurrent requests can clobber each other's
// upload. Clients that need isolation should use /api/v1/transcriptions/upload.
const legacyScratchPath = "temp_audio.webm"

// LegacyHandler serves the original flat /transcribe endpoint. Its
// request and response shapes are frozen; it transcribes with the
// process-wide default provider and records nothing in history.
type LegacyHandler struct {
	transcriber provider.Transcriber
	logger      *zap.Logger
}

// NewLegacyHandler creates the legacy endpoint handler. The transcriber
// handle is built once at startup and shared across requests.
func NewLegacyHandler(transcriber provider.Transcriber, logger *zap.Logger) *LegacyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LegacyHandler{transcriber: transcriber, logger: logger}
}

// Transcribe handles POST /transcribe.
//
// @Summary Transcribe an uploaded audio file
// @Description Accepts a multipart upload under the `audio` field, blocks until transcription finishes and returns the text. This is the original endpoint of the service; new clients should prefer /api/v1/transcriptions/upload.
// @Tags legacy
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio file to transcribe"
// @Success 200 {object} map[string]string "{\"transcription\": \"...\"}"
// @Failure 400 {object} map[string]string "{\"error\": \"No audio file provided\"}"
// @Failure 500 {object} errors.APIError "Transcription or storage failure"
// @Router /transcribe [post]
func (h *LegacyHandler) Transcribe(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file provided"})
		return
	}

	if err := c.SaveUploadedFile(file, legacyScratchPath); err != nil {
		h.logger.Error("legacy upload write failed", zap.Error(err))
		middleware.HandleError(c, err)
		return
	}

	result, err := h.transcriber.Transcribe(c.Request.Context(), &provider.Request{
		InputFilePath: legacyScratchPath,
	})
	if err != nil {
		h.logger.Error("legacy transcription failed",
			zap.String("file", file.Filename),
			zap.Error(err))
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcription": result.Text})
}
