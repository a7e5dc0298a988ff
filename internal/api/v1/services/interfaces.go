package services

import (
	"context"
	"io"
	"mime/multipart"

	"audioscribe/internal/api/v1/dto"
)

// TranscriptionService runs the synchronous upload pipeline and serves
// history reads.
type TranscriptionService interface {
	UploadTranscription(ctx context.Context, file multipart.File, header *multipart.FileHeader, req *dto.UploadTranscriptionRequest) (*dto.TranscriptionResponse, error)
	GetTranscription(ctx context.Context, id int64) (*dto.TranscriptionResponse, error)
	ListTranscriptions(ctx context.Context, query dto.ListTranscriptionsQuery) (*dto.PaginatedTranscriptionsResponse, error)
	DeleteTranscription(ctx context.Context, id int64) error
}

// ProviderService exposes the provider registry over the API.
type ProviderService interface {
	ListProviders(ctx context.Context) ([]dto.ProviderResponse, error)
	GetProvider(ctx context.Context, id string) (*dto.ProviderResponse, error)
	GetProviderStatus(ctx context.Context, id string) (*dto.ProviderStatusResponse, error)
	TestProvider(ctx context.Context, id string) (*dto.TestProviderResponse, error)
}

// ExportService streams transcription history as a spreadsheet.
type ExportService interface {
	ExportTranscriptions(ctx context.Context, user string, w io.Writer) error
}

// ArchiveStorage keeps a copy of uploaded audio in object storage. The
// upload pipeline treats it as best-effort: a nil ArchiveStorage or a
// failed archive never fails the transcription.
type ArchiveStorage interface {
	Archive(ctx context.Context, localPath, user, contentHash, originalName string) (string, error)
}
