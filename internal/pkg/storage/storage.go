package storage

import (
	"context"
	"io"
)

// Storage is a flat blob store addressed by relative slash-separated paths.
type Storage interface {
	Save(ctx context.Context, path string, content io.Reader) error

	// Get returns ErrNotExist (wrapped) when nothing is stored at path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	Delete(ctx context.Context, path string) error
}
