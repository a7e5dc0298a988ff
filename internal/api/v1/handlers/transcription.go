package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"audioscribe/internal/api/errors"
	"audioscribe/internal/api/middleware"
	"audioscribe/internal/api/v1/dto"
	"audioscribe/internal/api/v1/services"
)

// TranscriptionHandler handles the v1 transcription endpoints.
type TranscriptionHandler struct {
	service services.TranscriptionService
}

// NewTranscriptionHandler creates a new transcription handler.
func NewTranscriptionHandler(service services.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{service: service}
}

// Upload handles POST /api/v1/transcriptions/upload.
//
// @Summary Upload and transcribe an audio file
// @Description Transcribes the uploaded file synchronously. Each upload gets its own scratch file, results are cached by content hash, and the outcome is recorded in history.
// @Tags transcriptions
// @Accept multipart/form-data
// @Produce json
// @Param audio formData file true "Audio file to transcribe"
// @Param user formData string false "User the transcription is recorded under"
// @Param provider formData string false "Provider id, defaults to the configured provider"
// @Param language formData string false "ISO 639-1 language hint"
// @Param prompt formData string false "Decoder vocabulary hint"
// @Success 200 {object} dto.TranscriptionResponse "Completed transcription"
// @Failure 400 {object} errors.APIError "Missing audio file or unknown provider"
// @Failure 422 {object} errors.APIError "Validation error"
// @Failure 500 {object} errors.APIError "Transcription failure"
// @Router /transcriptions/upload [post]
func (h *TranscriptionHandler) Upload(c *gin.Context) {
	var req dto.UploadTranscriptionRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError("No audio file provided"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	defer file.Close()

	response, err := h.service.UploadTranscription(c.Request.Context(), file, fileHeader, &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// List handles GET /api/v1/transcriptions.
//
// @Summary List transcription history
// @Description Returns one page of history, newest first, optionally narrowed to one user. Failed runs are included.
// @Tags transcriptions
// @Produce json
// @Param page query int false "Page number" default(1) minimum(1)
// @Param page_size query int false "Rows per page" default(20) minimum(1) maximum(100)
// @Param user query string false "Only this user's transcriptions"
// @Success 200 {object} dto.PaginatedTranscriptionsResponse "One page of history"
// @Failure 400 {object} errors.APIError "Invalid query parameters"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /transcriptions [get]
func (h *TranscriptionHandler) List(c *gin.Context) {
	var query dto.ListTranscriptionsQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.ListTranscriptions(c.Request.Context(), query)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/transcriptions/:id.
//
// @Summary Get one transcription
// @Tags transcriptions
// @Produce json
// @Param id path int true "Transcription ID"
// @Success 200 {object} dto.TranscriptionResponse "Transcription details"
// @Failure 400 {object} errors.APIError "Invalid ID"
// @Failure 404 {object} errors.APIError "Transcription not found"
// @Router /transcriptions/{id} [get]
func (h *TranscriptionHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.GetTranscription(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Delete handles DELETE /api/v1/transcriptions/:id.
//
// @Summary Delete one transcription
// @Description Soft-deletes the record; it disappears from listings and lookups.
// @Tags transcriptions
// @Produce json
// @Param id path int true "Transcription ID"
// @Success 204 "Deleted"
// @Failure 400 {object} errors.APIError "Invalid ID"
// @Failure 404 {object} errors.APIError "Transcription not found"
// @Router /transcriptions/{id} [delete]
func (h *TranscriptionHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	if err := h.service.DeleteTranscription(c.Request.Context(), id); err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, errors.NewBadRequestError("Invalid transcription ID")
	}
	return id, nil
}
