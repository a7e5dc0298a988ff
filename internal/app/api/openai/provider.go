package openai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sashabaranov/go-openai"

	"audioscribe/internal/app/api/provider"
	"audioscribe/internal/config"
)

// Config holds the OpenAI transcription settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Language    string
	Prompt      string
	Temperature float32

	// Timeout bounds one API call. Zero picks the package default.
	Timeout time.Duration
}

// RemoteTranscriber sends audio to the OpenAI transcription API. The API
// accepts compressed formats directly, so no local conversion happens here.
type RemoteTranscriber struct {
	client *openai.Client
	config Config
}

// NewRemoteTranscriber builds a remote transcriber, filling in defaults.
func NewRemoteTranscriber(cfg Config) (*RemoteTranscriber, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai provider requires an API key")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultOpenAITimeout
	}

	return &RemoteTranscriber{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Transcribe uploads the file and returns the verbose response so callers
// get duration and segments along with the text.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, request *provider.Request) (*provider.Result, error) {
	start := time.Now()

	if request == nil || request.InputFilePath == "" {
		return nil, provider.NewTranscriptionError(
			provider.ErrCodeFileNotFound, "input file path is required", "openai")
	}
	if _, err := os.Stat(request.InputFilePath); err != nil {
		return nil, provider.NewTranscriptionError(
			provider.ErrCodeFileNotFound,
			fmt.Sprintf("input file not found: %s", request.InputFilePath),
			"openai")
	}

	ctx, cancel := context.WithTimeout(ctx, rt.config.Timeout)
	defer cancel()

	model := rt.config.Model
	if request.Model != "" {
		model = request.Model
	}
	language := rt.config.Language
	if request.Language != "" {
		language = request.Language
	}
	prompt := rt.config.Prompt
	if request.Prompt != "" {
		prompt = request.Prompt
	}

	audioRequest := openai.AudioRequest{
		Model:       model,
		FilePath:    request.InputFilePath,
		Language:    language,
		Prompt:      prompt,
		Temperature: rt.config.Temperature,
		Format:      openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := rt.client.CreateTranscription(ctx, audioRequest)
	if err != nil {
		return nil, rt.wrapAPIError(ctx, err)
	}

	result := &provider.Result{
		Text:           resp.Text,
		Language:       resp.Language,
		AudioDuration:  resp.Duration,
		ProcessingTime: time.Since(start),
		Model:          model,
	}
	if result.Language == "" {
		result.Language = language
	}
	for _, s := range resp.Segments {
		result.Segments = append(result.Segments, provider.Segment{
			ID:    s.ID,
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return result, nil
}

// wrapAPIError maps OpenAI failures onto provider error codes.
func (rt *RemoteTranscriber) wrapAPIError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &provider.TranscriptionError{
			Code:      provider.ErrCodeTimeout,
			Message:   fmt.Sprintf("OpenAI request timed out after %v", rt.config.Timeout),
			Provider:  "openai",
			Retryable: true,
		}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401:
			return &provider.TranscriptionError{
				Code:        provider.ErrCodeAuthFailed,
				Message:     "OpenAI API key is invalid or missing",
				Provider:    "openai",
				Suggestions: []string{"check the OPENAI_API_KEY environment variable"},
			}
		case 429:
			return &provider.TranscriptionError{
				Code:      provider.ErrCodeRateLimited,
				Message:   "OpenAI API rate limit exceeded",
				Provider:  "openai",
				Retryable: true,
				Suggestions: []string{
					"wait a moment and try again",
					"check your OpenAI usage tier",
				},
			}
		case 400, 413, 415:
			return &provider.TranscriptionError{
				Code:     provider.ErrCodeUnsupportedFormat,
				Message:  fmt.Sprintf("OpenAI rejected the audio file: %v", apiErr.Message),
				Provider: "openai",
				Suggestions: []string{
					"check the file format",
					"files above 25MB need to be split",
				},
			}
		default:
			return &provider.TranscriptionError{
				Code:      provider.ErrCodeProviderError,
				Message:   fmt.Sprintf("OpenAI API error: %v", apiErr.Message),
				Provider:  "openai",
				Retryable: apiErr.HTTPStatusCode >= 500,
			}
		}
	}

	return &provider.TranscriptionError{
		Code:      provider.ErrCodeNetworkError,
		Message:   fmt.Sprintf("transcription request failed: %v", err),
		Provider:  "openai",
		Retryable: true,
	}
}

func (rt *RemoteTranscriber) Info() provider.Info {
	return provider.Info{
		Name:        "openai",
		DisplayName: "OpenAI Whisper API",
		Type:        provider.TypeRemote,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatFLAC,
			provider.FormatOGG,
			provider.FormatWebM,
			provider.FormatMP4,
		},
		RequiresInternet: true,
		RequiresAPIKey:   true,
		DefaultModel:     rt.config.Model,
		AvailableModels:  []string{openai.Whisper1},
	}
}

// HealthCheck lists models, which exercises both connectivity and the key.
func (rt *RemoteTranscriber) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := rt.client.ListModels(ctx); err != nil {
		return fmt.Errorf("OpenAI API not reachable: %w", err)
	}
	return nil
}
