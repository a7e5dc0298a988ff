package services

import (
	"context"
	"time"

	"github.com/samber/lo"

	"audioscribe/internal/api/errors"
	"audioscribe/internal/api/v1/dto"
	"audioscribe/internal/app/api/provider"
	"audioscribe/internal/app/repository"
)

// healthCheckTimeout bounds every on-demand provider probe.
const healthCheckTimeout = 10 * time.Second

// ProviderServiceImpl implements ProviderService against the registry.
// The DAO is only used to report when a provider last produced a record;
// it may be nil.
type ProviderServiceImpl struct {
	registry *provider.Registry
	dao      repository.TranscriptionDAO
}

// NewProviderService creates a registry-backed provider service.
func NewProviderService(registry *provider.Registry, dao repository.TranscriptionDAO) ProviderService {
	return &ProviderServiceImpl{registry: registry, dao: dao}
}

// ListProviders returns every registered provider with its health state.
func (s *ProviderServiceImpl) ListProviders(ctx context.Context) ([]dto.ProviderResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	health := s.registry.HealthCheckAll(ctx)
	defaultName := s.registry.DefaultName()

	return lo.Map(s.registry.Infos(), func(info provider.Info, _ int) dto.ProviderResponse {
		return dto.ToProviderResponse(info, health[info.Name], info.Name == defaultName)
	}), nil
}

// GetProvider returns one provider with health state and last use.
func (s *ProviderServiceImpl) GetProvider(ctx context.Context, id string) (*dto.ProviderResponse, error) {
	transcriber, err := s.registry.Get(id)
	if err != nil {
		return nil, errors.NewNotFoundError("provider")
	}

	probeCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	healthErr := transcriber.HealthCheck(probeCtx)

	resp := dto.ToProviderResponse(transcriber.Info(), healthErr, id == s.registry.DefaultName())

	if s.dao != nil {
		// Best-effort: last use comes from history and is purely informational.
		if rows, err := s.dao.GetByProvider(id, 1); err == nil && len(rows) > 0 {
			resp.LastUsed = &rows[0].CreatedAt
		}
	}

	return &resp, nil
}

// GetProviderStatus probes one provider and reports the result.
func (s *ProviderServiceImpl) GetProviderStatus(ctx context.Context, id string) (*dto.ProviderStatusResponse, error) {
	transcriber, err := s.registry.Get(id)
	if err != nil {
		return nil, errors.NewNotFoundError("provider")
	}

	elapsed, healthErr := s.probe(ctx, transcriber)

	status := dto.HealthStatusHealthy
	errMessage := ""
	if healthErr != nil {
		status = dto.HealthStatusUnhealthy
		errMessage = healthErr.Error()
	}

	return &dto.ProviderStatusResponse{
		ID:             id,
		Status:         status,
		ResponseTimeMs: elapsed.Milliseconds(),
		Error:          errMessage,
		CheckedAt:      time.Now(),
	}, nil
}

// TestProvider runs an on-demand connectivity test. It only exercises the
// provider's health check, never a transcription.
func (s *ProviderServiceImpl) TestProvider(ctx context.Context, id string) (*dto.TestProviderResponse, error) {
	transcriber, err := s.registry.Get(id)
	if err != nil {
		return nil, errors.NewNotFoundError("provider")
	}

	elapsed, healthErr := s.probe(ctx, transcriber)

	errMessage := ""
	if healthErr != nil {
		errMessage = healthErr.Error()
	}

	return &dto.TestProviderResponse{
		ID:             id,
		Healthy:        healthErr == nil,
		ResponseTimeMs: elapsed.Milliseconds(),
		Error:          errMessage,
		TestedAt:       time.Now(),
	}, nil
}

func (s *ProviderServiceImpl) probe(ctx context.Context, transcriber provider.Transcriber) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	start := time.Now()
	err := transcriber.HealthCheck(ctx)
	return time.Since(start), err
}
