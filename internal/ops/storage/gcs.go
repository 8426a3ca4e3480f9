// Package storage persists generated export files to a blob store.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/stayops/stayops-backend/pkg/config"
	"github.com/stayops/stayops-backend/pkg/logger"
)

// XLSXContentType is the MIME type for spreadsheet exports
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ObjectStore uploads named byte blobs. The export service depends on
// this rather than on the GCS client directly.
type ObjectStore interface {
	Upload(ctx context.Context, objectName string, data []byte, contentType string) error
	Bucket() string
}

// GCSStore stores objects in a Google Cloud Storage bucket
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
	logger *logger.Logger

	// newWriter lets tests substitute the object writer; nil means the
	// real GCS client.
	newWriter func(ctx context.Context, key, contentType string) io.WriteCloser
}

// NewGCSStore creates a GCS-backed object store. Explicit service
// account JSON in the config wins over Application Default Credentials.
func NewGCSStore(ctx context.Context, cfg *config.StorageConfig, log *logger.Logger) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is not configured")
	}

	var client *storage.Client
	var err error
	if strings.TrimSpace(cfg.CredentialsJSON) != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if _, err := client.Bucket(cfg.Bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("bucket %q not accessible: %w", cfg.Bucket, err)
	}

	return &GCSStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: log,
	}, nil
}

// Upload writes the object under the configured prefix
func (s *GCSStore) Upload(ctx context.Context, objectName string, data []byte, contentType string) error {
	key := s.prefix + objectName
	wc := s.objectWriter(ctx, key, contentType)

	if _, err := wc.Write(data); err != nil {
		// Abandon the upload; without the Close the resumable session
		// and its buffers would leak.
		wc.Close()
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close writer for %s: %w", key, err)
	}

	s.logger.Debug().
		Str("bucket", s.bucket).
		Str("object", key).
		Int("bytes", len(data)).
		Msg("object uploaded")

	return nil
}

func (s *GCSStore) objectWriter(ctx context.Context, key, contentType string) io.WriteCloser {
	if s.newWriter != nil {
		return s.newWriter(ctx, key, contentType)
	}
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	return wc
}

// Bucket returns the configured bucket name
func (s *GCSStore) Bucket() string {
	return s.bucket
}

// Close releases the underlying client
func (s *GCSStore) Close() error {
	return s.client.Close()
}
