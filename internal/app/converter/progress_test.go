package converter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisabledProgressIsNoOp(t *testing.T) {
	pm := NewProgressManager(ProgressConfig{Enabled: false})
	bar := pm.CreateBar(10, "Transcribing")

	// Must not panic or block.
	bar.Increment()
	bar.Complete()
	pm.Wait()
}

func TestEnabledProgressRenders(t *testing.T) {
	var buf bytes.Buffer
	pm := NewProgressManager(ProgressConfig{Enabled: true, Writer: &buf})

	bar := pm.CreateBar(2, "Transcribing")
	bar.Increment()
	bar.Increment()
	bar.Complete()
	pm.Wait()

	assert.NotEmpty(t, buf.String())
	assert.Contains(t, buf.String(), "Transcribing")
}

func TestIsTTYNonFileWriter(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestShouldShowProgressForced(t *testing.T) {
	assert.True(t, ShouldShowProgress(true))
}

func TestProgressLabel(t *testing.T) {
	assert.Equal(t, "Transcribing (alice)", progressLabel("Transcribing", "alice"))
	assert.Equal(t, "Transcribing", progressLabel("Transcribing", ""))
}
