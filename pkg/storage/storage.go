// Package storage isolates all attachment I/O behind the FileStore
// interface so the backing store (local disk, S3) is swappable without
// touching record or auth logic.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotExist is returned when the requested path is not on the store.
var ErrNotExist = errors.New("storage: file does not exist")

// FileStore persists attachment bytes under relative paths like
// "resumes/<owner>-<timestamp>.pdf".
type FileStore interface {
	// Save writes data at path, creating parent directories as needed.
	Save(ctx context.Context, path string, data []byte) error
	// Open returns a reader for the file at path along with its size.
	Open(ctx context.Context, path string) (io.ReadCloser, int64, error)
	// Delete removes the file at path. Deleting a missing file returns
	// ErrNotExist.
	Delete(ctx context.Context, path string) error
	// Exists reports whether a file is present at path.
	Exists(ctx context.Context, path string) (bool, error)
}
