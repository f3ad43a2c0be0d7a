package port

import (
	"context"
	"io"

	"finextract/internal/domain"
)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts cloud object storage operations.
// Download returns domain.ErrNotFound when the key does not exist.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}

// ResultCache stores chunk extraction results keyed by backend and content digest.
// Get returns domain.ErrNotFound on a miss.
type ResultCache interface {
	Get(ctx context.Context, backend domain.Backend, digest string) (*domain.ExtractionResult, error)
	Put(ctx context.Context, backend domain.Backend, digest string, result *domain.ExtractionResult) error
}
