package output

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEntryFormat(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(dir, "nadra.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nadra.txt"), w.Path())

	n, err := w.WriteEntry("https://www.nadra.gov.pk/a", "# A")
	require.NoError(t, err)
	assert.Equal(t, len("\n\n--- Content from: https://www.nadra.gov.pk/a ---\n\n# A\n\n"), n)

	// Flushed immediately, before Close.
	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Equal(t, "\n\n--- Content from: https://www.nadra.gov.pk/a ---\n\n# A\n\n", string(data))

	_, err = w.WriteEntry("https://www.nadra.gov.pk/b", "")
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, err = w.WriteEntry("https://www.nadra.gov.pk/c", "late")
	assert.ErrorIs(t, err, ErrClosed)

	data, err = os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Equal(t,
		"\n\n--- Content from: https://www.nadra.gov.pk/a ---\n\n# A\n\n"+
			"\n\n--- Content from: https://www.nadra.gov.pk/b ---\n\n\n\n",
		string(data))
}

func TestOpenAppendsToExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "example.txt")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	w, err := Open(dir, "example.txt")
	require.NoError(t, err)
	_, err = w.WriteEntry("https://example.com/", "new")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous run\n\n\n--- Content from: https://example.com/ ---\n\nnew\n\n", string(data))
}

func TestOpenCreatesDirectoryButNotFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	w, err := Open(dir, "x.txt")
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.NoFileExists(t, w.Path())

	require.NoError(t, w.Close())
	assert.NoFileExists(t, w.Path())
}

type flakyFile struct {
	bytes.Buffer
	failNext bool
}

func (f *flakyFile) Write(p []byte) (int, error) {
	if f.failNext {
		f.failNext = false
		return 0, errors.New("disk hiccup")
	}
	return f.Buffer.Write(p)
}

func (f *flakyFile) Close() error { return nil }

func TestWriteEntryRecoversAfterFailure(t *testing.T) {
	w, err := Open(t.TempDir(), "x.txt")
	require.NoError(t, err)
	dst := &flakyFile{failNext: true}
	w.open = func(string) (io.WriteCloser, error) { return dst, nil }

	_, err = w.WriteEntry("https://x.com/a", "first")
	require.Error(t, err)

	_, err = w.WriteEntry("https://x.com/b", "second")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, "\n\n--- Content from: https://x.com/b ---\n\nsecond\n\n", dst.String())
}

func TestWriteEntryOpenFailure(t *testing.T) {
	w, err := Open(t.TempDir(), "x.txt")
	require.NoError(t, err)
	w.open = func(string) (io.WriteCloser, error) { return nil, errors.New("permission denied") }

	_, err = w.WriteEntry("https://x.com/a", "body")
	assert.ErrorContains(t, err, "permission denied")
}
