package artifact

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreCreatesLayout(t *testing.T) {
	base := t.TempDir()
	_, err := NewStore(base)
	require.NoError(t, err)

	for _, dir := range []string{"audio", "reports"} {
		info, err := os.Stat(filepath.Join(base, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestSaveAudio(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.SaveAudio(strings.NewReader("fake wav bytes"), "session.wav")
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, "-session.wav"))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake wav bytes", string(content))
}

func TestSaveAudioStripsDirectoryFromName(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.SaveAudio(strings.NewReader("x"), "../../etc/passwd")
	require.NoError(t, err)
	assert.NotContains(t, path, "..")
	assert.True(t, strings.HasSuffix(path, "-passwd"))
}

func TestPDFPathDeterministic(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	assert.Equal(t, store.PDFPath(id), store.PDFPath(id))
	assert.True(t, strings.HasSuffix(store.PDFPath(id), "report_"+id.String()+".pdf"))
}

func TestPublishPDFReplacesExisting(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	first, err := store.PublishPDF(id, strings.NewReader("version one"))
	require.NoError(t, err)

	second, err := store.PublishPDF(id, strings.NewReader("version two"))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	content, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "version two", string(content))

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(second))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestVerifyPDF(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	id := uuid.New()
	assert.False(t, store.VerifyPDF(""))
	assert.False(t, store.VerifyPDF(store.PDFPath(id)))

	path, err := store.PublishPDF(id, strings.NewReader("content"))
	require.NoError(t, err)
	assert.True(t, store.VerifyPDF(path))

	// truncate to zero bytes
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	assert.False(t, store.VerifyPDF(path))
}

func TestOpen(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := store.PublishPDF(uuid.New(), strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	f, size, err := store.Open(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, int64(len("pdf bytes")), size)
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(content))
}

func TestOpenMissing(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Open(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}
