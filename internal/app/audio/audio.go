package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"audioscribe/internal/app/model"
)

// convertibleExtensions are the container formats ffmpeg is asked to decode
// when producing whisper input. Browser recordings arrive as webm.
var convertibleExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".wav":  true,
	".webm": true,
	".ogg":  true,
	".flac": true,
	".mp4":  true,
}

// IsConvertible reports whether the file extension is one we hand to ffmpeg.
func IsConvertible(filePath string) bool {
	return convertibleExtensions[strings.ToLower(filepath.Ext(filePath))]
}

// GetAudioDuration returns the duration of an audio file in seconds via
// ffprobe.
func GetAudioDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %w", filePath, err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable ffprobe duration %q: %w", strings.TrimSpace(string(output)), err)
	}
	return duration, nil
}

// Is16kHzWavFile reports whether the file already carries a 16 kHz pcm_s16le
// audio stream, in which case conversion can be skipped.
func Is16kHzWavFile(ctx context.Context, filePath string) (bool, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "quiet", "-print_format", "json", "-show_streams", filePath)
	output, err := cmd.Output()
	if err != nil {
		return false, err
	}

	var probeOutput model.FFProbeOutput
	if err := json.Unmarshal(output, &probeOutput); err != nil {
		return false, err
	}

	for _, stream := range probeOutput.Streams {
		if stream.CodecType == "audio" && stream.CodecName == "pcm_s16le" && stream.SampleRate == 16000 {
			return true, nil
		}
	}

	return false, nil
}

// ConvertTo16kHzWav converts the input to a 16 kHz mono WAV next to it and
// returns the output path. An existing output file is reused.
func ConvertTo16kHzWav(ctx context.Context, inputFilePath string) (string, error) {
	outputFilePath := strings.TrimSuffix(inputFilePath, filepath.Ext(inputFilePath)) + "_16khz.wav"
	if err := convertTo16kHzWav(ctx, inputFilePath, outputFilePath); err != nil {
		return "", err
	}

	return outputFilePath, nil
}

func convertTo16kHzWav(ctx context.Context, inputAudioFilePath, outputWavPath string) error {
	if _, err := os.Stat(outputWavPath); !os.IsNotExist(err) {
		return nil
	}

	if !IsConvertible(inputAudioFilePath) {
		return fmt.Errorf("unsupported audio format %q", filepath.Ext(inputAudioFilePath))
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", inputAudioFilePath, "-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1", outputWavPath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("FFmpeg error: %v, stderr: %s", err, stderr.String())
	}

	return nil
}

// ConvertToMp3 extracts the audio track of a media file into an MP3. An
// existing output file is reused.
func ConvertToMp3(ctx context.Context, fileFullPath string, mp3FilePath string) error {
	if _, err := os.Stat(mp3FilePath); !os.IsNotExist(err) {
		log.Printf("MP3 file already exists for '%s', skipping conversion.\n", fileFullPath)
		return nil
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", fileFullPath, "-vn", "-acodec", "libmp3lame", mp3FilePath)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("FFmpeg error: %v, stderr: %s", err, stderr.String())
	}

	return nil
}
