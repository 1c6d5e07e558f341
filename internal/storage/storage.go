// Package storage provides file storage for editing artifacts such as
// exported cut lists and cached amplitude tracks. It defines the
// Storage interface (port) for hexagonal architecture and
// implementations for local disk and S3.
package storage

import (
	"context"
	"io"
)

// Storage defines the interface for temporary staging and artifact
// publication.
type Storage interface {
	// SaveTemp saves data to a temporary file and returns the file path.
	// The name parameter is used as a hint for the filename.
	SaveTemp(ctx context.Context, name string, data io.Reader) (path string, err error)

	// LoadTemp reads a temporary file and returns a reader.
	// The caller is responsible for closing the returned ReadCloser.
	LoadTemp(ctx context.Context, path string) (io.ReadCloser, error)

	// CleanupTemp removes the specified temporary files.
	// It continues cleanup even if some files fail to delete.
	CleanupTemp(ctx context.Context, paths []string) error

	// Upload publishes an artifact under the given key and returns its
	// URL. The local implementation writes under the artifact
	// directory and returns a file URL; S3 returns the object URL.
	Upload(ctx context.Context, key string, data io.Reader) (url string, err error)
}
