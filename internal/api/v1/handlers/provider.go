package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"audioscribe/internal/api/middleware"
	"audioscribe/internal/api/v1/services"
)

// ProviderHandler handles the v1 provider endpoints.
type ProviderHandler struct {
	service services.ProviderService
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(service services.ProviderService) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// List handles GET /api/v1/providers.
//
// @Summary List transcription providers
// @Description Returns every registered provider with its current health state.
// @Tags providers
// @Produce json
// @Success 200 {array} dto.ProviderResponse "Registered providers"
// @Failure 500 {object} errors.APIError "Internal server error"
// @Router /providers [get]
func (h *ProviderHandler) List(c *gin.Context) {
	providers, err := h.service.ListProviders(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, providers)
}

// Get handles GET /api/v1/providers/:id.
//
// @Summary Get one provider
// @Tags providers
// @Produce json
// @Param id path string true "Provider ID"
// @Success 200 {object} dto.ProviderResponse "Provider details"
// @Failure 404 {object} errors.APIError "Provider not found"
// @Router /providers/{id} [get]
func (h *ProviderHandler) Get(c *gin.Context) {
	response, err := h.service.GetProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Status handles GET /api/v1/providers/:id/status.
//
// @Summary Get provider health status
// @Description Probes the provider and reports health plus response time.
// @Tags providers
// @Produce json
// @Param id path string true "Provider ID"
// @Success 200 {object} dto.ProviderStatusResponse "Probe result"
// @Failure 404 {object} errors.APIError "Provider not found"
// @Router /providers/{id}/status [get]
func (h *ProviderHandler) Status(c *gin.Context) {
	response, err := h.service.GetProviderStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Test handles POST /api/v1/providers/:id/test.
//
// @Summary Test provider connectivity
// @Description Runs the provider's health check on demand. Read-only: no transcription happens and nothing changes server-side.
// @Tags providers
// @Produce json
// @Param id path string true "Provider ID"
// @Success 200 {object} dto.TestProviderResponse "Test result"
// @Failure 404 {object} errors.APIError "Provider not found"
// @Router /providers/{id}/test [post]
func (h *ProviderHandler) Test(c *gin.Context) {
	response, err := h.service.TestProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
