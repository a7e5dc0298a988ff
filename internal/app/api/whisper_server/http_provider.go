package whisper_server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"audioscribe/internal/app/api/provider"
	"audioscribe/internal/config"
)

// Config holds the whisper-server connection settings.
type Config struct {
	// BaseURL is the server root, e.g. "http://192.168.1.100:8080".
	BaseURL string

	// InferencePath is the transcription endpoint, default "/inference".
	InferencePath string

	// Timeout bounds one request. Zero picks the package default.
	Timeout time.Duration

	// Language is the default language hint.
	Language string

	// Temperature is the decoding temperature, 0.0 to 1.0.
	Temperature float64

	// Translate asks the server to translate to English.
	Translate bool

	// CustomHeaders go on every request, e.g. for a reverse proxy.
	CustomHeaders map[string]string
}

// ServerTranscriber talks to a self-hosted whisper.cpp server over HTTP.
// The server converts formats itself, so files are uploaded untouched.
type ServerTranscriber struct {
	config Config
	client *http.Client
}

// serverResponse is the whisper-server JSON reply.
type serverResponse struct {
	Text             string          `json:"text,omitempty"`
	Language         string          `json:"language,omitempty"`
	Duration         float64         `json:"duration,omitempty"`
	Segments         []serverSegment `json:"segments,omitempty"`
	DetectedLanguage string          `json:"detected_language,omitempty"`
}

type serverSegment struct {
	ID    int     `json:"id"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewServerTranscriber builds a server transcriber, filling in defaults.
func NewServerTranscriber(cfg Config) (*ServerTranscriber, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("whisper_server provider requires a 'base_url' setting (WHISPER_SERVER_URL)")
	}
	if err := config.ValidateURL(cfg.BaseURL, "whisper_server base_url"); err != nil {
		return nil, err
	}
	if cfg.Temperature < 0.0 || cfg.Temperature > 1.0 {
		return nil, fmt.Errorf("temperature must be between 0.0 and 1.0")
	}

	if cfg.InferencePath == "" {
		cfg.InferencePath = "/inference"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultWhisperServerTimeout
	}

	return &ServerTranscriber{
		config: cfg,
		client: &http.Client{},
	}, nil
}

// Transcribe uploads the file to /inference and parses the JSON reply.
// Empty text is a valid result, silence transcribes to nothing.
func (st *ServerTranscriber) Transcribe(ctx context.Context, request *provider.Request) (*provider.Result, error) {
	start := time.Now()

	if request == nil || request.InputFilePath == "" {
		return nil, provider.NewTranscriptionError(
			provider.ErrCodeFileNotFound, "input file path is required", "whisper_server")
	}
	if _, err := os.Stat(request.InputFilePath); err != nil {
		return nil, provider.NewTranscriptionError(
			provider.ErrCodeFileNotFound,
			fmt.Sprintf("input file not found: %s", request.InputFilePath),
			"whisper_server")
	}

	ctx, cancel := context.WithTimeout(ctx, st.config.Timeout)
	defer cancel()

	language := st.config.Language
	if request.Language != "" {
		language = request.Language
	}

	body, contentType, err := st.buildForm(request.InputFilePath, language)
	if err != nil {
		return nil, provider.NewTranscriptionError(
			provider.ErrCodeProviderError,
			fmt.Sprintf("failed to build upload form: %v", err),
			"whisper_server")
	}

	url := st.config.BaseURL + st.config.InferencePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, provider.NewTranscriptionError(
			provider.ErrCodeProviderError,
			fmt.Sprintf("failed to create request: %v", err),
			"whisper_server")
	}
	httpReq.Header.Set("Content-Type", contentType)
	for key, value := range st.config.CustomHeaders {
		httpReq.Header.Set(key, value)
	}

	resp, err := st.client.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &provider.TranscriptionError{
				Code:      provider.ErrCodeTimeout,
				Message:   fmt.Sprintf("whisper-server request timed out after %v", st.config.Timeout),
				Provider:  "whisper_server",
				Retryable: true,
			}
		}
		return nil, &provider.TranscriptionError{
			Code:      provider.ErrCodeNetworkError,
			Message:   fmt.Sprintf("whisper-server request failed: %v", err),
			Provider:  "whisper_server",
			Retryable: true,
			Suggestions: []string{
				fmt.Sprintf("check that whisper-server is running at %s", st.config.BaseURL),
			},
		}
	}
	defer resp.Body.Close()

	responseData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &provider.TranscriptionError{
			Code:      provider.ErrCodeNetworkError,
			Message:   fmt.Sprintf("failed to read response: %v", err),
			Provider:  "whisper_server",
			Retryable: true,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &provider.TranscriptionError{
			Code:      provider.ErrCodeProviderError,
			Message:   fmt.Sprintf("whisper-server returned status %d: %s", resp.StatusCode, truncate(responseData, 200)),
			Provider:  "whisper_server",
			Retryable: resp.StatusCode >= 500,
		}
	}

	var parsed serverResponse
	if err := json.Unmarshal(responseData, &parsed); err != nil {
		return nil, provider.NewTranscriptionError(
			provider.ErrCodeProviderError,
			fmt.Sprintf("failed to parse whisper-server response: %v", err),
			"whisper_server")
	}

	result := &provider.Result{
		Text:           strings.TrimSpace(parsed.Text),
		Language:       parsed.Language,
		AudioDuration:  parsed.Duration,
		ProcessingTime: time.Since(start),
		Model:          "whisper-server",
	}
	if result.Language == "" {
		result.Language = parsed.DetectedLanguage
	}
	if result.Language == "" {
		result.Language = language
	}
	for _, s := range parsed.Segments {
		result.Segments = append(result.Segments, provider.Segment{
			ID:    s.ID,
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}
	return result, nil
}

// buildForm writes the multipart upload whisper-server expects.
func (st *ServerTranscriber) buildForm(inputFilePath, language string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	file, err := os.Open(inputFilePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %v", err)
	}
	defer file.Close()

	part, err := writer.CreateFormFile("file", filepath.Base(inputFilePath))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %v", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %v", err)
	}

	fields := map[string]string{
		"response_format": "json",
		"temperature":     fmt.Sprintf("%.2f", st.config.Temperature),
	}
	if language != "" {
		fields["language"] = language
	}
	if st.config.Translate {
		fields["translate"] = "true"
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %v", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return body, writer.FormDataContentType(), nil
}

func (st *ServerTranscriber) Info() provider.Info {
	return provider.Info{
		Name:        "whisper_server",
		DisplayName: "Whisper Server (HTTP)",
		Type:        provider.TypeRemote,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatFLAC,
			provider.FormatOGG,
			provider.FormatWebM,
		},
		RequiresInternet: true,
		DefaultModel:     "whisper-server",
		AvailableModels:  []string{"whisper-server"},
	}
}

// HealthCheck probes the server root. Some proxies answer 503 while the
// server behind them works, so that one passes.
func (st *ServerTranscriber) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, st.config.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	for key, value := range st.config.CustomHeaders {
		req.Header.Set(key, value)
	}

	resp, err := st.client.Do(req)
	if err != nil {
		return fmt.Errorf("whisper-server not reachable at %s: %w", st.config.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 && resp.StatusCode != http.StatusServiceUnavailable {
		return fmt.Errorf("whisper-server returned status %d", resp.StatusCode)
	}
	return nil
}

func truncate(data []byte, limit int) string {
	s := strings.TrimSpace(string(data))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
