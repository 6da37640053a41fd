package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrmhx/GopherIndexer/internal/store"
)

func TestStripTrailingTerminatorDotNewline(t *testing.T) {
	assert.Equal(t, "hi", store.StripTrailingTerminator("hi.\n"))
}

func TestStripTrailingTerminatorDotCRLF(t *testing.T) {
	assert.Equal(t, "hi", store.StripTrailingTerminator("hi.\r\n"))
}

func TestStripTrailingTerminatorLoneDot(t *testing.T) {
	assert.Equal(t, "hi", store.StripTrailingTerminator("hi."))
}

func TestStripTrailingTerminatorNoMarker(t *testing.T) {
	assert.Equal(t, "hi", store.StripTrailingTerminator("hi"))
}

func TestWriteCreatesParentDirsAndReturnsSize(t *testing.T) {
	root := t.TempDir()
	n := store.Write(root, "/deep/nested/hello.txt", []byte("hi"), nil)
	assert.Equal(t, 2, n)

	path := store.Path(root, "/deep/nested/hello.txt")
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(contents))
}

func TestWriteTruncatesExistingFile(t *testing.T) {
	root := t.TempDir()
	store.Write(root, "/f.txt", []byte("a long first write"), nil)
	n := store.Write(root, "/f.txt", []byte("short"), nil)
	assert.Equal(t, 5, n)

	path := store.Path(root, "/f.txt")
	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(contents))
}

func TestWriteReturnsZeroOnIOError(t *testing.T) {
	root := t.TempDir()
	// Make the root a regular file so MkdirAll fails underneath it.
	blocked := filepath.Join(root, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	n := store.Write(blocked, "/sub/f.txt", []byte("x"), nil)
	assert.Equal(t, 0, n)
}
