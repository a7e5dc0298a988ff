package services

import (
	"context"
	"fmt"
	"io"

	"audioscribe/internal/app/converter/export"
	"audioscribe/internal/app/model"
	"audioscribe/internal/app/repository"
)

// exportPageSize is how many rows the export reads from history at a time.
const exportPageSize = 500

// ExportServiceImpl implements ExportService against the history store.
type ExportServiceImpl struct {
	dao repository.TranscriptionDAO
}

// NewExportService creates the XLSX export service.
func NewExportService(dao repository.TranscriptionDAO) ExportService {
	return &ExportServiceImpl{dao: dao}
}

// ExportTranscriptions streams the full history (optionally one user's) to
// w as an XLSX workbook.
func (s *ExportServiceImpl) ExportTranscriptions(ctx context.Context, user string, w io.Writer) error {
	var all []model.Transcription

	for offset := 0; ; offset += exportPageSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		page, total, err := s.dao.List(user, offset, exportPageSize)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		all = append(all, page...)
		if len(page) == 0 || len(all) >= total {
			break
		}
	}

	return export.Write(all, w)
}
