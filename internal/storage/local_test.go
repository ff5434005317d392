package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocalStorage(Config{BasePath: dir, BaseURL: "/api/v1/files"})
	require.NoError(t, err)
	return s, dir
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()
	payload := []byte("%PDF-1.4 test")

	require.NoError(t, s.Save(ctx, "cvs/student-1/cv.pdf", bytes.NewReader(payload), "application/pdf"))

	exists, err := s.Exists(ctx, "cvs/student-1/cv.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Get(ctx, "cvs/student-1/cv.pdf")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	size, err := s.GetSize(ctx, "cvs/student-1/cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), size)

	url, err := s.GetURL(ctx, "cvs/student-1/cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/files/cvs/student-1/cv.pdf", url)
}

func TestLocalStorage_DeleteIsIdempotent(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "logos/a.png", bytes.NewReader([]byte("x")), "image/png"))
	require.NoError(t, s.Delete(ctx, "logos/a.png"))
	require.NoError(t, s.Delete(ctx, "logos/a.png"))

	_, err := s.Get(ctx, "logos/a.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLocalStorage_FailedSaveLeavesNothing(t *testing.T) {
	s, dir := newLocal(t)
	ctx := context.Background()

	err := s.Save(ctx, "cvs/x/broken.pdf", failingReader{}, "application/pdf")
	require.Error(t, err)

	exists, err := s.Exists(ctx, "cvs/x/broken.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := os.ReadDir(filepath.Join(dir, "cvs", "x"))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file must be cleaned up")
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, _ := newLocal(t)
	ctx := context.Background()

	for _, key := range []string{"../etc/passwd", "/abs/path", "", "a/../../b"} {
		err := s.Save(ctx, key, bytes.NewReader([]byte("x")), "text/plain")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
