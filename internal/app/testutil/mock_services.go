package testutil

import (
	"context"
	"io"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/mock"

	"audioscribe/internal/api/v1/dto"
)

// MockServices bundles testify mocks for the v1 service interfaces, for
// handler tests that stub out the whole service layer.
type MockServices struct {
	TranscriptionService *MockTranscriptionService
	ProviderService      *MockProviderService
	ExportService        *MockExportService
}

func NewMockServices(t *testing.T) *MockServices {
	return &MockServices{
		TranscriptionService: NewMockTranscriptionService(t),
		ProviderService:      NewMockProviderService(t),
		ExportService:        NewMockExportService(t),
	}
}

// MockTranscriptionService is a testify mock of services.TranscriptionService.
type MockTranscriptionService struct {
	mock.Mock
}

func NewMockTranscriptionService(t *testing.T) *MockTranscriptionService {
	m := &MockTranscriptionService{}
	m.Test(t)
	return m
}

func (m *MockTranscriptionService) UploadTranscription(ctx context.Context, file multipart.File, header *multipart.FileHeader, req *dto.UploadTranscriptionRequest) (*dto.TranscriptionResponse, error) {
	args := m.Called(ctx, file, header, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TranscriptionResponse), args.Error(1)
}

func (m *MockTranscriptionService) GetTranscription(ctx context.Context, id int64) (*dto.TranscriptionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TranscriptionResponse), args.Error(1)
}

func (m *MockTranscriptionService) ListTranscriptions(ctx context.Context, query dto.ListTranscriptionsQuery) (*dto.PaginatedTranscriptionsResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedTranscriptionsResponse), args.Error(1)
}

func (m *MockTranscriptionService) DeleteTranscription(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockProviderService is a testify mock of services.ProviderService.
type MockProviderService struct {
	mock.Mock
}

func NewMockProviderService(t *testing.T) *MockProviderService {
	m := &MockProviderService{}
	m.Test(t)
	return m
}

func (m *MockProviderService) ListProviders(ctx context.Context) ([]dto.ProviderResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.ProviderResponse), args.Error(1)
}

func (m *MockProviderService) GetProvider(ctx context.Context, id string) (*dto.ProviderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProviderResponse), args.Error(1)
}

func (m *MockProviderService) GetProviderStatus(ctx context.Context, id string) (*dto.ProviderStatusResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProviderStatusResponse), args.Error(1)
}

func (m *MockProviderService) TestProvider(ctx context.Context, id string) (*dto.TestProviderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TestProviderResponse), args.Error(1)
}

// MockExportService is a testify mock of services.ExportService. Stub the
// workbook bytes with a Run callback that writes to the io.Writer argument.
type MockExportService struct {
	mock.Mock
}

func NewMockExportService(t *testing.T) *MockExportService {
	m := &MockExportService{}
	m.Test(t)
	return m
}

func (m *MockExportService) ExportTranscriptions(ctx context.Context, user string, w io.Writer) error {
	args := m.Called(ctx, user, w)
	return args.Error(0)
}
