package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"audioscribe/internal/app/model"
	"audioscribe/internal/app/testutil"
)

func writeAudioDir(t *testing.T, names map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	// Distinct mod times keep the scan order stable.
	when := time.Now().Add(-time.Hour)
	for _, name := range sortedKeys(names) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, names[name], 0o644))
		require.NoError(t, os.Chtimes(path, when, when))
		when = when.Add(time.Minute)
	}
	return dir
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestConvertDirProcessesAllNewFiles(t *testing.T) {
	dir := writeAudioDir(t, map[string][]byte{
		"a.mp3": []byte("audio-a"),
		"b.mp3": []byte("audio-b"),
		"c.mp3": []byte("audio-c"),
	})

	transcriber := testutil.NewMockTranscriber().WithText("spoken words")
	dao := testutil.NewMockDAO()
	c := NewConverter(transcriber, dao, nil)

	summary, err := c.ConvertDir(context.Background(), Options{User: "alice", InputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Scanned)
	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 3, transcriber.CallCount())

	rows := dao.Rows()
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, "alice", row.User)
		assert.Equal(t, "spoken words", row.Text)
		assert.Equal(t, "mock", row.Provider)
		assert.NotEmpty(t, row.FileHash)
		assert.False(t, row.HasError)
	}
}

func TestConvertDirSkipsProcessedFiles(t *testing.T) {
	dir := writeAudioDir(t, map[string][]byte{
		"done.mp3": []byte("audio-done"),
		"new.mp3":  []byte("audio-new"),
	})

	transcriber := testutil.NewMockTranscriber()
	dao := testutil.NewMockDAO()
	_, err := dao.Record(&model.Transcription{
		User: "alice", FileName: "done.mp3", Text: "already here",
	})
	require.NoError(t, err)

	c := NewConverter(transcriber, dao, nil)
	summary, err := c.ConvertDir(context.Background(), Options{User: "alice", InputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Scanned)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, transcriber.CallCount())
	assert.Equal(t, "new.mp3", filepath.Base(transcriber.LastCall().InputFilePath))
}

func TestConvertDirReusesIdenticalContent(t *testing.T) {
	sameBytes := []byte("identical audio payload")
	dir := writeAudioDir(t, map[string][]byte{
		"original.mp3": sameBytes,
		"copy.mp3":     sameBytes,
	})

	transcriber := testutil.NewMockTranscriber().WithText("one transcription")
	dao := testutil.NewMockDAO()
	c := NewConverter(transcriber, dao, nil)

	summary, err := c.ConvertDir(context.Background(), Options{
		User: "alice", InputDir: dir, Parallel: 1,
	})
	require.NoError(t, err)

	// One provider call covers both files.
	assert.Equal(t, 1, transcriber.CallCount())
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.Reused)

	rows := dao.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, rows[0].Text, rows[1].Text)
	assert.Equal(t, rows[0].FileHash, rows[1].FileHash)
}

func TestConvertDirRecordsFailuresAndContinues(t *testing.T) {
	dir := writeAudioDir(t, map[string][]byte{
		"bad.mp3":  []byte("audio-bad"),
		"good.mp3": []byte("audio-good"),
	})

	transcriber := testutil.NewMockTranscriber().
		WithErrorFor(filepath.Join(dir, "bad.mp3"), errors.New("model exploded"))
	dao := testutil.NewMockDAO()
	c := NewConverter(transcriber, dao, nil)

	summary, err := c.ConvertDir(context.Background(), Options{User: "alice", InputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Succeeded)

	var failedRow *model.Transcription
	for _, row := range dao.Rows() {
		if row.HasError {
			r := row
			failedRow = &r
		}
	}
	require.NotNil(t, failedRow)
	assert.Equal(t, "bad.mp3", failedRow.FileName)
	assert.Contains(t, failedRow.ErrorMessage, "model exploded")
	assert.Empty(t, failedRow.Text)
}

func TestConvertDirFailedRunDoesNotBlockRetry(t *testing.T) {
	dir := writeAudioDir(t, map[string][]byte{
		"flaky.mp3": []byte("audio-flaky"),
	})

	dao := testutil.NewMockDAO()
	failing := testutil.NewMockTranscriber().WithError(errors.New("first run broke"))
	_, err := NewConverter(failing, dao, nil).
		ConvertDir(context.Background(), Options{User: "alice", InputDir: dir})
	require.NoError(t, err)

	working := testutil.NewMockTranscriber().WithText("second try worked")
	summary, err := NewConverter(working, dao, nil).
		ConvertDir(context.Background(), Options{User: "alice", InputDir: dir})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 1, summary.Succeeded)

	got, err := dao.GetByFileHash(dao.Rows()[1].FileHash)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second try worked", got.Text)
}

func TestConvertDirLimit(t *testing.T) {
	dir := writeAudioDir(t, map[string][]byte{
		"a.mp3": []byte("audio-a"),
		"b.mp3": []byte("audio-b"),
		"c.mp3": []byte("audio-c"),
	})

	transcriber := testutil.NewMockTranscriber()
	c := NewConverter(transcriber, testutil.NewMockDAO(), nil)

	summary, err := c.ConvertDir(context.Background(), Options{
		User: "alice", InputDir: dir, Limit: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Succeeded)
	assert.Equal(t, 2, transcriber.CallCount())
}

func TestConvertDirParallel(t *testing.T) {
	contents := map[string][]byte{}
	for _, name := range []string{"a.mp3", "b.mp3", "c.mp3", "d.mp3"} {
		contents[name] = []byte("audio-" + name)
	}
	dir := writeAudioDir(t, contents)

	transcriber := testutil.NewMockTranscriber().WithLatency(20 * time.Millisecond)
	dao := testutil.NewMockDAO()
	c := NewConverter(transcriber, dao, nil)

	summary, err := c.ConvertDir(context.Background(), Options{
		User: "alice", InputDir: dir, Parallel: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 4, transcriber.CallCount())
	assert.Len(t, dao.Rows(), 4)
}

func TestConvertDirExtensionFilter(t *testing.T) {
	dir := writeAudioDir(t, map[string][]byte{
		"keep.m4a": []byte("audio-keep"),
		"skip.mp3": []byte("audio-skip"),
	})

	transcriber := testutil.NewMockTranscriber()
	c := NewConverter(transcriber, testutil.NewMockDAO(), nil)

	summary, err := c.ConvertDir(context.Background(), Options{
		User: "alice", InputDir: dir, Extension: ".m4a",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Scanned)
	assert.Equal(t, 1, transcriber.CallCount())
}

func TestConvertDirEmptyDir(t *testing.T) {
	c := NewConverter(testutil.NewMockTranscriber(), testutil.NewMockDAO(), nil)

	summary, err := c.ConvertDir(context.Background(), Options{User: "alice", InputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Scanned)
}

func TestConvertDirMissingDir(t *testing.T) {
	c := NewConverter(testutil.NewMockTranscriber(), testutil.NewMockDAO(), nil)

	_, err := c.ConvertDir(context.Background(), Options{InputDir: "/no/such/dir"})
	require.Error(t, err)
}

func TestCloseForwardsDAOError(t *testing.T) {
	dao := testutil.NewMockDAO().WithCloseError(errors.New("close failed"))
	c := NewConverter(testutil.NewMockTranscriber(), dao, nil)

	assert.EqualError(t, c.Close(), "close failed")
}
