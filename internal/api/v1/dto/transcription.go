package dto

import (
	"time"

	"github.com/samber/lo"

	"audioscribe/internal/app/model"
)

// UploadTranscriptionRequest carries the optional form fields that ride
// along with the uploaded audio file.
type UploadTranscriptionRequest struct {
	User     string `form:"user" binding:"omitempty,max=64"`
	Provider string `form:"provider" binding:"omitempty,max=64"`
	Language string `form:"language" binding:"omitempty,min=2,max=8"`
	Prompt   string `form:"prompt" binding:"omitempty,max=500"`
}

// TranscriptionResponse represents one transcription in API responses.
// The upload endpoint additionally fills the cached flag, archive URL and
// processing time; history reads leave them empty.
type TranscriptionResponse struct {
	ID               int64     `json:"id"`
	User             string    `json:"user,omitempty"`
	FileName         string    `json:"file_name"`
	Status           string    `json:"status"`
	Transcription    string    `json:"transcription"`
	Provider         string    `json:"provider,omitempty"`
	Language         string    `json:"language,omitempty"`
	Model            string    `json:"model,omitempty"`
	Duration         float64   `json:"duration,omitempty"`
	Error            string    `json:"error,omitempty"`
	FileHash         string    `json:"file_hash,omitempty"`
	FileSize         int64     `json:"file_size,omitempty"`
	Cached           bool      `json:"cached,omitempty"`
	ArchiveURL       string    `json:"archive_url,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Transcription statuses. The pipeline is synchronous, so a recorded row
// is always terminal.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ListTranscriptionsQuery represents query parameters for listing history.
type ListTranscriptionsQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	User     string `form:"user" binding:"omitempty,max=64"`
}

// Offset converts the page number into a row offset.
func (q ListTranscriptionsQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// PaginatedTranscriptionsResponse is a page of history plus its metadata.
type PaginatedTranscriptionsResponse struct {
	Transcriptions []TranscriptionResponse `json:"transcriptions"`
	Pagination     PaginationResponse      `json:"pagination"`
}

// PaginationResponse describes where a page sits in the full result set.
type PaginationResponse struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewPaginationResponse computes page metadata from the query and total.
func NewPaginationResponse(query ListTranscriptionsQuery, total int) PaginationResponse {
	totalPages := total / query.PageSize
	if total%query.PageSize != 0 {
		totalPages++
	}
	return PaginationResponse{
		Page:       query.Page,
		PageSize:   query.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    query.Page < totalPages,
		HasPrev:    query.Page > 1 && total > 0,
	}
}

// ToTranscriptionResponse converts a history row to its response DTO.
func ToTranscriptionResponse(t model.Transcription) TranscriptionResponse {
	status := StatusCompleted
	if t.HasError {
		status = StatusFailed
	}
	return TranscriptionResponse{
		ID:            t.ID,
		User:          t.User,
		FileName:      t.FileName,
		Status:        status,
		Transcription: t.Text,
		Provider:      t.Provider,
		Language:      t.Language,
		Model:         t.Model,
		Duration:      t.AudioDuration,
		Error:         t.ErrorMessage,
		FileHash:      t.FileHash,
		FileSize:      t.FileSize,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// ToTranscriptionResponses converts a page of history rows.
func ToTranscriptionResponses(transcriptions []model.Transcription) []TranscriptionResponse {
	return lo.Map(transcriptions, func(t model.Transcription, _ int) TranscriptionResponse {
		return ToTranscriptionResponse(t)
	})
}
