package whisper_cpp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"audioscribe/internal/app/api/provider"
	"audioscribe/internal/app/audio"
	"audioscribe/internal/app/util/files"
	"audioscribe/internal/config"
)

// Config holds the whisper.cpp invocation settings.
type Config struct {
	// BinaryPath points at the whisper.cpp main binary.
	BinaryPath string

	// ModelPath points at a ggml model file.
	ModelPath string

	// Language is the default language hint. Empty means auto-detect.
	Language string

	// Prompt biases the decoder when non-empty.
	Prompt string

	// Timeout bounds one transcription run. Zero picks the package default.
	Timeout time.Duration
}

// LocalTranscriber runs whisper.cpp as a subprocess. The binary only eats
// 16kHz mono WAV, so anything else is converted first.
type LocalTranscriber struct {
	config Config
}

// NewLocalTranscriber builds a local transcriber, filling in defaults.
func NewLocalTranscriber(cfg Config) *LocalTranscriber {
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultWhisperCppTimeout
	}
	return &LocalTranscriber{config: cfg}
}

// Transcribe converts the input to 16kHz WAV when needed, runs the binary
// with a unique output path, and reads the text back. Concurrent calls are
// safe because every run gets its own output file.
func (lt *LocalTranscriber) Transcribe(ctx context.Context, request *provider.Request) (*provider.Result, error) {
	start := time.Now()

	if request == nil || request.InputFilePath == "" {
		return nil, provider.NewTranscriptionError(
			provider.ErrCodeFileNotFound, "input file path is required", "whisper_cpp")
	}
	if _, err := os.Stat(request.InputFilePath); err != nil {
		return nil, provider.NewTranscriptionError(
			provider.ErrCodeFileNotFound,
			fmt.Sprintf("input file not found: %s", request.InputFilePath),
			"whisper_cpp")
	}

	ctx, cancel := context.WithTimeout(ctx, lt.config.Timeout)
	defer cancel()

	inputFilePath, err := lt.ensure16kHzWav(ctx, request.InputFilePath)
	if err != nil {
		return nil, err
	}

	language := lt.config.Language
	if request.Language != "" {
		language = request.Language
	}
	if language == "" {
		language = "auto"
	}

	prompt := lt.config.Prompt
	if request.Prompt != "" {
		prompt = request.Prompt
	}

	// Unique output base keeps parallel runs from clobbering each other.
	outputBase := filepath.Join(os.TempDir(), fmt.Sprintf("whisper_cpp_%d", time.Now().UnixNano()))
	outputFile := outputBase + ".txt"
	defer os.Remove(outputFile)

	args := []string{
		"-m", lt.config.ModelPath,
		"-l", language,
		"-otxt",
		"-f", inputFilePath,
		"-of", outputBase,
	}
	if prompt != "" {
		args = append(args, "--prompt", prompt)
	}

	command := exec.CommandContext(ctx, lt.config.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &provider.TranscriptionError{
				Code:      provider.ErrCodeTimeout,
				Message:   fmt.Sprintf("transcription timed out after %v", lt.config.Timeout),
				Provider:  "whisper_cpp",
				Retryable: true,
			}
		}
		return nil, &provider.TranscriptionError{
			Code:     provider.ErrCodeProviderError,
			Message:  fmt.Sprintf("whisper.cpp failed: %v, stderr: %s", err, strings.TrimSpace(stderr.String())),
			Provider: "whisper_cpp",
		}
	}

	text, err := files.ReadOutputFile(outputFile)
	if err != nil {
		return nil, provider.NewTranscriptionError(
			provider.ErrCodeProviderError,
			fmt.Sprintf("failed to read transcription output: %v", err),
			"whisper_cpp")
	}

	result := &provider.Result{
		Text:           text,
		Language:       language,
		ProcessingTime: time.Since(start),
		Model:          filepath.Base(lt.config.ModelPath),
	}

	// Duration is nice to have but not worth failing the run over.
	if duration, err := audio.GetAudioDuration(ctx, inputFilePath); err == nil {
		result.AudioDuration = duration
	}
	return result, nil
}

// ensure16kHzWav hands back a path whisper.cpp can consume directly.
func (lt *LocalTranscriber) ensure16kHzWav(ctx context.Context, inputFilePath string) (string, error) {
	is16kHzWav, err := audio.Is16kHzWavFile(ctx, inputFilePath)
	if err != nil {
		return "", &provider.TranscriptionError{
			Code:      provider.ErrCodeProviderError,
			Message:   fmt.Sprintf("error checking input file: %v", err),
			Provider:  "whisper_cpp",
			Retryable: true,
		}
	}
	if is16kHzWav {
		return inputFilePath, nil
	}

	converted, err := audio.ConvertTo16kHzWav(ctx, inputFilePath)
	if err != nil {
		return "", &provider.TranscriptionError{
			Code:      provider.ErrCodeProviderError,
			Message:   fmt.Sprintf("error converting input file: %v", err),
			Provider:  "whisper_cpp",
			Retryable: true,
		}
	}
	return converted, nil
}

func (lt *LocalTranscriber) Info() provider.Info {
	return provider.Info{
		Name:        "whisper_cpp",
		DisplayName: "Whisper.cpp (Local)",
		Type:        provider.TypeLocal,
		SupportedFormats: []provider.AudioFormat{
			provider.FormatWAV,
			provider.FormatMP3,
			provider.FormatM4A,
			provider.FormatFLAC,
			provider.FormatOGG,
			provider.FormatWebM,
			provider.FormatMP4,
		},
		RequiresBinary: true,
		DefaultModel:   filepath.Base(lt.config.ModelPath),
		AvailableModels: []string{
			"ggml-tiny.bin", "ggml-base.bin", "ggml-small.bin",
			"ggml-medium.bin", "ggml-large-v2.bin", "ggml-large-v3.bin",
		},
	}
}

// HealthCheck verifies the binary and model exist on disk.
func (lt *LocalTranscriber) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(lt.config.BinaryPath); err != nil {
		return fmt.Errorf("whisper.cpp binary not found at %s", lt.config.BinaryPath)
	}
	if _, err := os.Stat(lt.config.ModelPath); err != nil {
		return fmt.Errorf("whisper model not found at %s", lt.config.ModelPath)
	}
	return nil
}
