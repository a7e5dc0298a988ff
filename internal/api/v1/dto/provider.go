package dto

import (
	"time"

	"github.com/samber/lo"

	"audioscribe/internal/app/api/provider"
)

// ProviderResponse represents a transcription provider in API responses.
type ProviderResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Type             string     `json:"type"`
	Available        bool       `json:"available"`
	HealthStatus     string     `json:"health_status"`
	SupportedFormats []string   `json:"supported_formats"`
	RequiresAPIKey   bool       `json:"requires_api_key"`
	RequiresBinary   bool       `json:"requires_binary"`
	RequiresInternet bool       `json:"requires_internet"`
	IsDefault        bool       `json:"is_default"`
	DefaultModel     string     `json:"default_model,omitempty"`
	AvailableModels  []string   `json:"available_models,omitempty"`
	LastUsed         *time.Time `json:"last_used,omitempty"`
}

// Provider health states as reported by the status endpoints.
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

// ProviderStatusResponse is the result of probing one provider.
type ProviderStatusResponse struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Error          string    `json:"error,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

// TestProviderResponse is the result of an on-demand connectivity test.
// The test only runs the provider's health check, it never transcribes.
type TestProviderResponse struct {
	ID             string    `json:"id"`
	Healthy        bool      `json:"healthy"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Error          string    `json:"error,omitempty"`
	TestedAt       time.Time `json:"tested_at"`
}

// ToProviderResponse converts provider info plus its health state.
func ToProviderResponse(info provider.Info, healthErr error, isDefault bool) ProviderResponse {
	healthStatus := HealthStatusHealthy
	if healthErr != nil {
		healthStatus = HealthStatusUnhealthy
	}

	return ProviderResponse{
		ID:   info.Name,
		Name: info.DisplayName,
		Type: string(info.Type),
		SupportedFormats: lo.Map(info.SupportedFormats, func(f provider.AudioFormat, _ int) string {
			return string(f)
		}),
		Available:        healthErr == nil,
		HealthStatus:     healthStatus,
		RequiresAPIKey:   info.RequiresAPIKey,
		RequiresBinary:   info.RequiresBinary,
		RequiresInternet: info.RequiresInternet,
		IsDefault:        isDefault,
		DefaultModel:     info.DefaultModel,
		AvailableModels:  info.AvailableModels,
	}
}
