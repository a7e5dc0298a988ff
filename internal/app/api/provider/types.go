package provider

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// Transcriber converts a local audio file into text. Implementations own
// any preprocessing they need (format conversion, chunking, upload), so
// callers hand over the file path as-is.
type Transcriber interface {
	// Transcribe runs a single transcription. The context bounds the whole
	// operation including any external process or network call.
	Transcribe(ctx context.Context, request *Request) (*Result, error)

	// Info describes the provider for listings and diagnostics.
	Info() Info

	// HealthCheck verifies the provider is usable right now (binary
	// reachable, server up, credentials accepted).
	HealthCheck(ctx context.Context) error
}

// Type says where the work happens.
type Type string

const (
	TypeLocal  Type = "local"  // runs on this machine
	TypeRemote Type = "remote" // talks to a network service
)

// AudioFormat is a lowercase file extension without the dot.
type AudioFormat string

const (
	FormatWAV  AudioFormat = "wav"
	FormatMP3  AudioFormat = "mp3"
	FormatM4A  AudioFormat = "m4a"
	FormatFLAC AudioFormat = "flac"
	FormatOGG  AudioFormat = "ogg"
	FormatWebM AudioFormat = "webm"
	FormatMP4  AudioFormat = "mp4"
)

// FormatFromFilename derives the audio format from a file extension.
// Unknown extensions come back as-is so callers can report them.
func FormatFromFilename(filename string) AudioFormat {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return AudioFormat(ext)
}

// Request carries one transcription job.
type Request struct {
	// InputFilePath is the absolute or working-dir-relative path of the
	// audio file to transcribe.
	InputFilePath string

	// Language is an ISO 639-1 hint ("en", "zh"). Empty lets the model
	// auto-detect.
	Language string

	// Prompt optionally biases the decoder with expected vocabulary.
	Prompt string

	// Model overrides the provider's default model when non-empty.
	Model string

	// User tags the request for history records.
	User string
}

// Segment is one timed span of recognized speech.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is what a Transcriber returns on success.
type Result struct {
	// Text is the full transcription, whitespace-trimmed.
	Text string

	// Language is the detected or requested language, when known.
	Language string

	// AudioDuration is the length of the source audio in seconds, when
	// the provider reports it. Zero means unknown.
	AudioDuration float64

	// Segments holds timed spans when the provider produces them.
	Segments []Segment

	// ProcessingTime is how long the provider took end to end.
	ProcessingTime time.Duration

	// Model records the model that actually ran.
	Model string
}

// Info describes a provider's capabilities.
type Info struct {
	Name             string        `json:"name"`
	DisplayName      string        `json:"display_name"`
	Type             Type          `json:"type"`
	SupportedFormats []AudioFormat `json:"supported_formats"`
	RequiresInternet bool          `json:"requires_internet"`
	RequiresAPIKey   bool          `json:"requires_api_key"`
	RequiresBinary   bool          `json:"requires_binary"`
	DefaultModel     string        `json:"default_model,omitempty"`
	AvailableModels  []string      `json:"available_models,omitempty"`
}

// SupportsFormat reports whether the provider accepts the given format.
func (i Info) SupportsFormat(format AudioFormat) bool {
	for _, f := range i.SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Error codes shared across providers.
const (
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeAuthFailed        = "AUTH_FAILED"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeProviderError     = "PROVIDER_ERROR"
	ErrCodeInvalidConfig     = "INVALID_CONFIG"
)

// TranscriptionError is a provider failure with enough context to act on.
type TranscriptionError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Provider    string   `json:"provider"`
	Retryable   bool     `json:"retryable"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *TranscriptionError) Error() string {
	return e.Message
}

// NewTranscriptionError builds a non-retryable provider error.
func NewTranscriptionError(code, message, providerName string) *TranscriptionError {
	return &TranscriptionError{
		Code:     code,
		Message:  message,
		Provider: providerName,
	}
}
