package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"audioscribe/internal/api/errors"
	"audioscribe/internal/api/v1/dto"
	"audioscribe/internal/app/api/provider"
	"audioscribe/internal/app/cache"
	"audioscribe/internal/app/model"
	"audioscribe/internal/app/repository"
	"audioscribe/internal/app/utils"
	"audioscribe/internal/metrics"
)

// TranscriptionServiceImpl implements TranscriptionService on top of the
// provider registry and the history store. Cache and archive are optional;
// a nil value disables the feature.
type TranscriptionServiceImpl struct {
	registry *provider.Registry
	dao      repository.TranscriptionDAO
	cache    *cache.TranscriptCache
	archive  ArchiveStorage
	metrics  *metrics.Metrics
	logger   *zap.Logger
	tempDir  string
}

// NewTranscriptionService wires the upload pipeline together.
func NewTranscriptionService(
	registry *provider.Registry,
	dao repository.TranscriptionDAO,
	transcriptCache *cache.TranscriptCache,
	archive ArchiveStorage,
	m *metrics.Metrics,
	logger *zap.Logger,
) TranscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptionServiceImpl{
		registry: registry,
		dao:      dao,
		cache:    transcriptCache,
		archive:  archive,
		metrics:  m,
		logger:   logger,
		tempDir:  os.TempDir(),
	}
}

// UploadTranscription writes the upload to its own scratch file, consults
// the transcript cache, transcribes on a miss, and records the outcome in
// history. It blocks until the transcription is done.
func (s *TranscriptionServiceImpl) UploadTranscription(ctx context.Context, file multipart.File, header *multipart.FileHeader, req *dto.UploadTranscriptionRequest) (*dto.TranscriptionResponse, error) {
	start := time.Now()

	tempPath, err := s.saveUpload(file, header)
	if err != nil {
		s.logger.Error("upload scratch write failed", zap.Error(err))
		return nil, errors.WrapError(err, errors.KindInternal, "Failed to store upload")
	}
	defer os.Remove(tempPath)

	fileHash, err := utils.CalculateFileHash(tempPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.KindInternal, "Failed to read upload")
	}
	fileSize, err := utils.GetFileSize(tempPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.KindInternal, "Failed to read upload")
	}

	transcriber, providerName, err := s.selectProvider(req.Provider)
	if err != nil {
		return nil, err
	}

	if result := s.cachedResult(ctx, fileHash); result != nil {
		return s.record(header.Filename, req.User, providerName, result, fileHash, fileSize, true, "", start)
	}

	result, err := transcriber.Transcribe(ctx, &provider.Request{
		InputFilePath: tempPath,
		Language:      req.Language,
		Prompt:        req.Prompt,
		User:          req.User,
	})
	if s.metrics != nil {
		s.metrics.ObserveTranscription(providerName, err, time.Since(start))
	}
	if err != nil {
		s.recordFailure(header.Filename, req.User, providerName, fileHash, fileSize, err)
		s.logger.Error("transcription failed",
			zap.String("provider", providerName),
			zap.String("file", header.Filename),
			zap.Error(err))
		return nil, errors.NewInternalError("Transcription failed")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, fileHash, result); err != nil {
			s.logger.Warn("cache store failed", zap.Error(err))
		}
	}

	archiveURL := ""
	if s.archive != nil {
		url, err := s.archive.Archive(ctx, tempPath, req.User, fileHash, header.Filename)
		if err != nil {
			s.logger.Warn("archive failed",
				zap.String("file", header.Filename),
				zap.Error(err))
		} else {
			archiveURL = url
		}
	}

	return s.record(header.Filename, req.User, providerName, result, fileHash, fileSize, false, archiveURL, start)
}

// GetTranscription loads one history record.
func (s *TranscriptionServiceImpl) GetTranscription(ctx context.Context, id int64) (*dto.TranscriptionResponse, error) {
	row, err := s.dao.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("load transcription %d: %w", id, err)
	}
	if row == nil || row.DeletedAt != nil {
		return nil, errors.NewNotFoundError("transcription")
	}

	resp := dto.ToTranscriptionResponse(*row)
	return &resp, nil
}

// ListTranscriptions returns one page of history, newest first.
func (s *TranscriptionServiceImpl) ListTranscriptions(ctx context.Context, query dto.ListTranscriptionsQuery) (*dto.PaginatedTranscriptionsResponse, error) {
	rows, total, err := s.dao.List(query.User, query.Offset(), query.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list transcriptions: %w", err)
	}

	return &dto.PaginatedTranscriptionsResponse{
		Transcriptions: dto.ToTranscriptionResponses(rows),
		Pagination:     dto.NewPaginationResponse(query, total),
	}, nil
}

// DeleteTranscription soft-deletes one history record.
func (s *TranscriptionServiceImpl) DeleteTranscription(ctx context.Context, id int64) error {
	if err := s.dao.SoftDelete(id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewNotFoundError("transcription")
		}
		return fmt.Errorf("delete transcription %d: %w", id, err)
	}
	return nil
}

// saveUpload copies the multipart file to a per-request scratch path so
// concurrent uploads never clobber each other.
func (s *TranscriptionServiceImpl) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	name := fmt.Sprintf("upload-%s%s", uuid.New().String()[:8], filepath.Ext(header.Filename))
	path := filepath.Join(s.tempDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (s *TranscriptionServiceImpl) selectProvider(name string) (provider.Transcriber, string, error) {
	if name == "" {
		transcriber, err := s.registry.Default()
		if err != nil {
			return nil, "", errors.NewServiceUnavailableError("no transcription providers registered")
		}
		return transcriber, s.registry.DefaultName(), nil
	}

	transcriber, err := s.registry.Get(name)
	if err != nil {
		return nil, "", errors.NewBadRequestError(fmt.Sprintf("unknown provider %q", name))
	}
	return transcriber, name, nil
}

func (s *TranscriptionServiceImpl) cachedResult(ctx context.Context, fileHash string) *provider.Result {
	if s.cache == nil {
		return nil
	}

	result, err := s.cache.Get(ctx, fileHash)
	if err != nil {
		s.logger.Warn("cache lookup failed", zap.Error(err))
		return nil
	}

	if s.metrics != nil {
		outcome := metrics.CacheMiss
		if result != nil {
			outcome = metrics.CacheHit
		}
		s.metrics.ObserveCacheLookup(outcome)
	}
	return result
}

// record persists the outcome and shapes the response.
func (s *TranscriptionServiceImpl) record(fileName, user, providerName string, result *provider.Result, fileHash string, fileSize int64, cached bool, archiveURL string, start time.Time) (*dto.TranscriptionResponse, error) {
	now := time.Now()
	row := &model.Transcription{
		User:          user,
		FileName:      fileName,
		AudioDuration: result.AudioDuration,
		Text:          result.Text,
		FileHash:      fileHash,
		FileSize:      fileSize,
		Provider:      providerName,
		Language:      result.Language,
		Model:         result.Model,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	id, err := s.dao.Record(row)
	if err != nil {
		return nil, fmt.Errorf("record transcription: %w", err)
	}
	row.ID = id

	resp := dto.ToTranscriptionResponse(*row)
	resp.Cached = cached
	resp.ArchiveURL = archiveURL
	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	return &resp, nil
}

// recordFailure keeps failed runs visible in history. Failed rows never
// block a retry because the dedup lookups skip them.
func (s *TranscriptionServiceImpl) recordFailure(fileName, user, providerName, fileHash string, fileSize int64, cause error) {
	now := time.Now()
	_, err := s.dao.Record(&model.Transcription{
		User:         user,
		FileName:     fileName,
		HasError:     true,
		ErrorMessage: cause.Error(),
		FileHash:     fileHash,
		FileSize:     fileSize,
		Provider:     providerName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		s.logger.Warn("record failed transcription", zap.Error(err))
	}
}
