package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioscribe/internal/app/api/provider"
)

const verboseResponse = `{
	"task": "transcribe",
	"language": "en",
	"duration": 2.5,
	"text": "This is a test transcription",
	"segments": [
		{"id": 0, "start": 0.0, "end": 2.5, "text": "This is a test transcription"}
	]
}`

// newMockServer returns an OpenAI-shaped test server plus a transcriber
// pointed at it.
func newMockServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *RemoteTranscriber) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	rt, err := NewRemoteTranscriber(Config{
		APIKey:  "sk-test-api-key",
		BaseURL: server.URL + "/v1",
	})
	require.NoError(t, err)
	return server, rt
}

// createTempAudioFile writes a minimal WAV header so the upload has a real
// file behind it.
func createTempAudioFile(t *testing.T) string {
	t.Helper()

	wavHeader := []byte{
		0x52, 0x49, 0x46, 0x46, 0x24, 0x00, 0x00, 0x00,
		0x57, 0x41, 0x56, 0x45, 0x66, 0x6D, 0x74, 0x20,
		0x10, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
		0x80, 0x3E, 0x00, 0x00, 0x00, 0x7D, 0x00, 0x00,
		0x02, 0x00, 0x10, 0x00, 0x64, 0x61, 0x74, 0x61,
		0x00, 0x00, 0x00, 0x00,
	}

	path := filepath.Join(t.TempDir(), "test_audio.wav")
	require.NoError(t, os.WriteFile(path, wavHeader, 0o644))
	return path
}

func TestTranscribeSuccess(t *testing.T) {
	var gotModel, gotFormat string
	_, rt := newMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotModel = r.FormValue("model")
		gotFormat = r.FormValue("response_format")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "test_audio.wav", header.Filename)

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(verboseResponse))
	})

	result, err := rt.Transcribe(context.Background(), &provider.Request{
		InputFilePath: createTempAudioFile(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "This is a test transcription", result.Text)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, 2.5, result.AudioDuration)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, 2.5, result.Segments[0].End)
	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "verbose_json", gotFormat)
	assert.Greater(t, result.ProcessingTime, time.Duration(0))
}

func TestTranscribeRequestOverrides(t *testing.T) {
	var gotModel, gotLanguage, gotPrompt string
	_, rt := newMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		gotPrompt = r.FormValue("prompt")

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"task":"transcribe","language":"ja","duration":1.0,"text":"ok"}`))
	})

	_, err := rt.Transcribe(context.Background(), &provider.Request{
		InputFilePath: createTempAudioFile(t),
		Language:      "ja",
		Model:         "whisper-1",
		Prompt:        "technical vocabulary",
	})
	require.NoError(t, err)

	assert.Equal(t, "whisper-1", gotModel)
	assert.Equal(t, "ja", gotLanguage)
	assert.Equal(t, "technical vocabulary", gotPrompt)
}

func TestTranscribeAPIErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantCode      string
		wantRetryable bool
	}{
		{
			name:     "unauthorized",
			status:   http.StatusUnauthorized,
			body:     `{"error": {"message": "Invalid API key", "type": "invalid_request_error"}}`,
			wantCode: provider.ErrCodeAuthFailed,
		},
		{
			name:          "rate limited",
			status:        http.StatusTooManyRequests,
			body:          `{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`,
			wantCode:      provider.ErrCodeRateLimited,
			wantRetryable: true,
		},
		{
			name:     "bad file",
			status:   http.StatusBadRequest,
			body:     `{"error": {"message": "Unsupported file format", "type": "invalid_request_error"}}`,
			wantCode: provider.ErrCodeUnsupportedFormat,
		},
		{
			name:          "server error",
			status:        http.StatusInternalServerError,
			body:          `{"error": {"message": "Internal server error", "type": "server_error"}}`,
			wantCode:      provider.ErrCodeProviderError,
			wantRetryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rt := newMockServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := rt.Transcribe(context.Background(), &provider.Request{
				InputFilePath: createTempAudioFile(t),
			})
			require.Error(t, err)

			var terr *provider.TranscriptionError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tt.wantCode, terr.Code)
			assert.Equal(t, tt.wantRetryable, terr.Retryable)
			assert.Equal(t, "openai", terr.Provider)
		})
	}
}

func TestTranscribeFileNotFound(t *testing.T) {
	rt, err := NewRemoteTranscriber(Config{APIKey: "sk-test-api-key"})
	require.NoError(t, err)

	_, err = rt.Transcribe(context.Background(), &provider.Request{
		InputFilePath: "/non/existent/file.mp3",
	})
	require.Error(t, err)

	var terr *provider.TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, provider.ErrCodeFileNotFound, terr.Code)
}

func TestTranscribeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"text": "too late"}`))
	}))
	t.Cleanup(server.Close)

	rt, err := NewRemoteTranscriber(Config{
		APIKey:  "sk-test-api-key",
		BaseURL: server.URL + "/v1",
		Timeout: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = rt.Transcribe(context.Background(), &provider.Request{
		InputFilePath: createTempAudioFile(t),
	})
	require.Error(t, err)

	var terr *provider.TranscriptionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, provider.ErrCodeTimeout, terr.Code)
	assert.True(t, terr.Retryable)
}

func TestNewRemoteTranscriberRequiresKey(t *testing.T) {
	_, err := NewRemoteTranscriber(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestCreateProviderSettings(t *testing.T) {
	_, err := createProvider(map[string]interface{}{})
	require.Error(t, err, "missing api_key should fail")

	got, err := createProvider(map[string]interface{}{
		"api_key":         "sk-test-api-key",
		"language":        "en",
		"temperature":     0.2,
		"timeout_seconds": 30,
	})
	require.NoError(t, err)

	rt, ok := got.(*RemoteTranscriber)
	require.True(t, ok)
	assert.Equal(t, "en", rt.config.Language)
	assert.InDelta(t, 0.2, float64(rt.config.Temperature), 0.001)
	assert.Equal(t, 30*time.Second, rt.config.Timeout)
}

func TestInfo(t *testing.T) {
	rt, err := NewRemoteTranscriber(Config{APIKey: "sk-test-api-key"})
	require.NoError(t, err)

	info := rt.Info()
	assert.Equal(t, "openai", info.Name)
	assert.Equal(t, provider.TypeRemote, info.Type)
	assert.True(t, info.RequiresInternet)
	assert.True(t, info.RequiresAPIKey)
	assert.True(t, info.SupportsFormat(provider.FormatWebM))
	assert.Equal(t, "whisper-1", info.DefaultModel)
}

func TestHealthCheck(t *testing.T) {
	_, rt := newMockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/models" {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"data": [{"id": "whisper-1", "object": "model"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	assert.NoError(t, rt.HealthCheck(context.Background()))
}

func TestProviderRegistered(t *testing.T) {
	assert.Contains(t, provider.RegisteredTypes(), "openai")
}
