package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"audioscribe/internal/api/middleware"
	"audioscribe/internal/api/v1/services"
)

// ExportHandler handles history export downloads.
type ExportHandler struct {
	service services.ExportService
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service services.ExportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// ExportXLSX handles GET /api/v1/export/xlsx.
//
// @Summary Download history as a spreadsheet
// @Description Streams the transcription history as an XLSX attachment, optionally limited to one user.
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param user query string false "Only this user's transcriptions"
// @Success 200 {file} binary "XLSX workbook"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /export/xlsx [get]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user := c.Query("user")

	filename := fmt.Sprintf("transcriptions-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.service.ExportTranscriptions(c.Request.Context(), user, c.Writer); err != nil {
		// The workbook is assembled in memory, so a failure here means
		// nothing was streamed yet and the attachment headers can go.
		c.Header("Content-Disposition", "")
		c.Header("Content-Type", "")
		middleware.HandleError(c, err)
		return
	}
}
