// Package storage abstracts the binary file backend used for location
// images and documents.
package storage

import (
	"context"
	"io"
)

// FileUpload describes one file handed to the service layer.
type FileUpload struct {
	FileName string
	Size     int64
	MimeType string
	Content  io.Reader
}

// FileStore uploads and deletes binary objects. Implementations return the
// stored object path from Upload; URL construction is the caller's concern.
type FileStore interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader) (string, error)
	Delete(ctx context.Context, bucket, path string) error
}
