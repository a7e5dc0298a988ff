package audio

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsConvertible(t *testing.T) {
	tests := []struct {
		name        string
		filePath    string
		convertible bool
	}{
		{"MP3 file", "/test/audio.mp3", true},
		{"M4A file", "/test/audio.m4a", true},
		{"WAV file", "/test/audio.wav", true},
		{"WEBM recording", "/test/temp_audio.webm", true},
		{"OGG file", "/test/audio.ogg", true},
		{"FLAC file", "/test/audio.flac", true},
		{"MP4 container", "/test/video.mp4", true},
		{"uppercase extension", "/test/AUDIO.MP3", true},
		{"text file", "/test/notes.txt", false},
		{"no extension", "/test/audio", false},
		{"trailing dot", "/test/audio.", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.convertible, IsConvertible(tt.filePath))
		})
	}
}

func TestConvertTo16kHzWavUnsupportedFormat(t *testing.T) {
	tempDir := t.TempDir()
	input := filepath.Join(tempDir, "notes.txt")
	require.NoError(t, os.WriteFile(input, []byte("not audio"), 0644))

	_, err := ConvertTo16kHzWav(context.Background(), input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported audio format")
}

func TestConvertTo16kHzWavReusesExistingOutput(t *testing.T) {
	tempDir := t.TempDir()
	input := filepath.Join(tempDir, "clip.mp3")
	require.NoError(t, os.WriteFile(input, []byte("fake"), 0644))

	// Pre-create the expected output; conversion must be skipped entirely,
	// so no ffmpeg is needed.
	existing := filepath.Join(tempDir, "clip_16khz.wav")
	require.NoError(t, os.WriteFile(existing, []byte("wav"), 0644))

	out, err := ConvertTo16kHzWav(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, existing, out)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "wav", string(content))
}

func TestGetAudioDurationWithGeneratedTone(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed, skipping")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed, skipping")
	}

	ctx := context.Background()
	tempDir := t.TempDir()
	wavPath := filepath.Join(tempDir, "tone.wav")

	// Generate a 2 second sine tone as the probe subject.
	gen := exec.CommandContext(ctx, "ffmpeg", "-f", "lavfi", "-i", "sine=frequency=440:duration=2", "-ar", "16000", "-ac", "1", wavPath)
	require.NoError(t, gen.Run())

	duration, err := GetAudioDuration(ctx, wavPath)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, duration, 0.2)

	is16k, err := Is16kHzWavFile(ctx, wavPath)
	require.NoError(t, err)
	assert.True(t, is16k)
}

func TestGetAudioDurationMissingFile(t *testing.T) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed, skipping")
	}

	_, err := GetAudioDuration(context.Background(), filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestConvertToMp3(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed, skipping")
	}

	ctx := context.Background()
	tempDir := t.TempDir()
	wavPath := filepath.Join(tempDir, "tone.wav")
	mp3Path := filepath.Join(tempDir, "tone.mp3")

	gen := exec.CommandContext(ctx, "ffmpeg", "-f", "lavfi", "-i", "sine=frequency=440:duration=1", "-ar", "16000", "-ac", "1", wavPath)
	require.NoError(t, gen.Run())

	require.NoError(t, ConvertToMp3(ctx, wavPath, mp3Path))

	info, err := os.Stat(mp3Path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
