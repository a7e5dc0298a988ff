package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteTempAudio writes content to name under a fresh temp dir and returns
// the full path. The bytes are not real audio; use it for code paths that
// only stat, hash or copy the file.
func WriteTempAudio(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

