package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSStore is a FileStore backed by Google Cloud Storage buckets.
type GCSStore struct {
	client *gcs.Client
	logger *zap.Logger
}

var _ FileStore = (*GCSStore)(nil)

// NewGCSStore creates a FileStore using application default credentials.
func NewGCSStore(ctx context.Context, logger *zap.Logger) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSStore{client: client, logger: logger}, nil
}

func (s *GCSStore) Upload(ctx context.Context, bucket, path string, r io.Reader) (string, error) {
	w := s.client.Bucket(bucket).Object(path).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		// Close releases the partially written object; its error is secondary.
		_ = w.Close()
		return "", fmt.Errorf("failed to write object %s/%s: %w", bucket, path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object %s/%s: %w", bucket, path, err)
	}

	s.logger.Debug("Uploaded object", zap.String("bucket", bucket), zap.String("path", path))
	return path, nil
}

func (s *GCSStore) Delete(ctx context.Context, bucket, path string) error {
	if err := s.client.Bucket(bucket).Object(path).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s/%s: %w", bucket, path, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
