package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProjectRoot(t *testing.T) {
	root, err := GetProjectRoot()
	require.NoError(t, err)
	assert.NotEmpty(t, root)

	_, err = os.Stat(filepath.Join(root, "go.mod"))
	assert.NoError(t, err, "go.mod should exist in project root")
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Idempotent on existing directories
	assert.NoError(t, EnsureDir(dir))
}

func TestListAudioFiles(t *testing.T) {
	tempDir := t.TempDir()

	writeAt := func(name string, modTime time.Time) {
		path := filepath.Join(tempDir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
		require.NoError(t, os.Chtimes(path, modTime, modTime))
	}

	base := time.Now().Add(-time.Hour)
	writeAt("later.mp3", base.Add(30*time.Minute))
	writeAt("earlier.wav", base)
	writeAt("notes.txt", base.Add(10*time.Minute))
	writeAt("clip.webm", base.Add(20*time.Minute))
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "subdir.mp3"), 0755))

	t.Run("all audio extensions, oldest first", func(t *testing.T) {
		found, err := ListAudioFiles(tempDir, "")
		require.NoError(t, err)
		require.Len(t, found, 3)
		assert.Equal(t, "earlier.wav", found[0].Name)
		assert.Equal(t, "clip.webm", found[1].Name)
		assert.Equal(t, "later.mp3", found[2].Name)
	})

	t.Run("single extension filter", func(t *testing.T) {
		found, err := ListAudioFiles(tempDir, ".mp3")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "later.mp3", found[0].Name)
	})

	t.Run("missing directory errors", func(t *testing.T) {
		_, err := ListAudioFiles(filepath.Join(tempDir, "nope"), "")
		assert.Error(t, err)
	})
}

func TestReadOutputFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("  transcribed text \n"), 0644))

	content, err := ReadOutputFile(path)
	require.NoError(t, err)
	assert.Equal(t, "transcribed text", content)

	_, err = ReadOutputFile(filepath.Join(tempDir, "missing.txt"))
	assert.Error(t, err)
}
