package model

import "time"

// Transcription is one finished transcription run as recorded in history.
// HasError marks runs whose provider call failed; Text is empty in that case
// and ErrorMessage carries the failure.
type Transcription struct {
	ID            int64      `json:"id"`
	User          string     `json:"user"`
	InputDir      string     `json:"input_dir"`
	FileName      string     `json:"file_name"`
	AudioDuration float64    `json:"audio_duration"`
	Text          string     `json:"transcription"`
	HasError      bool       `json:"has_error"`
	ErrorMessage  string     `json:"error_message"`
	FileHash      string     `json:"file_hash,omitempty"`
	FileSize      int64      `json:"file_size,omitempty"`
	Provider      string     `json:"provider,omitempty"`
	Language      string     `json:"language,omitempty"`
	Model         string     `json:"model,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// UserSummary aggregates history per user.
type UserSummary struct {
	User  string `json:"user"`
	Count int    `json:"count"`
}
