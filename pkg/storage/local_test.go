package storage_test

import (
	"context"
	"io"
	"testing"

	"go-jobtracker-backend/pkg/storage"

	"github.com/stretchr/testify/assert"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()

	newStore := func(t *testing.T) *storage.LocalStore {
		t.Helper()
		s, err := storage.NewLocalStore(t.TempDir())
		assert.NoError(t, err)
		return s
	}

	t.Run("Should round-trip a file", func(t *testing.T) {
		s := newStore(t)

		err := s.Save(ctx, "resumes/u1-1.pdf", []byte("content"))
		assert.NoError(t, err)

		body, size, err := s.Open(ctx, "resumes/u1-1.pdf")
		assert.NoError(t, err)
		defer body.Close()
		assert.Equal(t, int64(7), size)

		data, err := io.ReadAll(body)
		assert.NoError(t, err)
		assert.Equal(t, []byte("content"), data)
	})

	t.Run("Should create kind subdirectories on demand", func(t *testing.T) {
		s := newStore(t)

		assert.NoError(t, s.Save(ctx, "cover-letters/u1-1.pdf", []byte("x")))

		exists, err := s.Exists(ctx, "cover-letters/u1-1.pdf")
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Should report missing files with ErrNotExist", func(t *testing.T) {
		s := newStore(t)

		_, _, err := s.Open(ctx, "resumes/missing.pdf")
		assert.ErrorIs(t, err, storage.ErrNotExist)

		err = s.Delete(ctx, "resumes/missing.pdf")
		assert.ErrorIs(t, err, storage.ErrNotExist)
	})

	t.Run("Should delete stored files", func(t *testing.T) {
		s := newStore(t)

		assert.NoError(t, s.Save(ctx, "avatars/u1.jpg", []byte("img")))
		assert.NoError(t, s.Delete(ctx, "avatars/u1.jpg"))

		exists, err := s.Exists(ctx, "avatars/u1.jpg")
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Should refuse traversal and absolute paths", func(t *testing.T) {
		s := newStore(t)

		assert.Error(t, s.Save(ctx, "../outside.txt", []byte("x")))
		assert.Error(t, s.Save(ctx, "/etc/passwd", []byte("x")))
		_, _, err := s.Open(ctx, "resumes/../../secret")
		assert.Error(t, err)
	})

	t.Run("Should refuse an empty root", func(t *testing.T) {
		_, err := storage.NewLocalStore("")
		assert.Error(t, err)
	})
}
