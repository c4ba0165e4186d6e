package storage

import (
	"context"
	"io"
)

// ObjectStorage defines common attachment operations across backends.
// Put returns the public URL clients store in place of the raw payload;
// Resolve maps such a URL back to the backend's object key so it can be
// deleted when the owning row goes away.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Resolve(url string) (string, bool)
	Bucket() string
}

// Storage wraps an ObjectStorage backend with a stable API.
type Storage struct {
	backend ObjectStorage
}

// NewStorage constructs a Storage wrapper for the provided backend.
func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// EnsureBucket ensures the configured bucket exists.
func (s *Storage) EnsureBucket(ctx context.Context) error {
	return s.backend.EnsureBucket(ctx)
}

// Put uploads an object and returns its public URL.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// Get opens a reader for an object.
func (s *Storage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.backend.Get(ctx, key)
}

// Delete removes an object.
func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, key)
}

// Resolve maps a public URL back to an object key. The second return
// is false for URLs this backend did not produce.
func (s *Storage) Resolve(url string) (string, bool) {
	return s.backend.Resolve(url)
}

// Bucket returns the configured bucket (or folder) name.
func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}
