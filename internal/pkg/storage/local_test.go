package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)
	return s
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	key, err := s.Upload(ctx, strings.NewReader("hello"), "companies/abc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "companies/abc.pdf", key)

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))

	assert.Equal(t, "http://localhost:8080/uploads/companies/abc.pdf", s.GetURL(key))

	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting again is a no-op
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, key := range []string{"../escape.txt", "tasks/../../escape.txt", "", "/"} {
		_, err := s.Upload(ctx, strings.NewReader("x"), key)
		assert.ErrorIs(t, err, ErrInvalidPath, key)
	}
}

func TestLocalStorage_DownloadMissing(t *testing.T) {
	s := newTestStorage(t)
	_, err := s.Download(context.Background(), "employees/missing.png")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
