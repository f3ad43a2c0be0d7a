package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"finextract/internal/domain"
	"finextract/internal/port"
)

// ResultCache implements port.ResultCache on top of object storage. Each
// chunk result lives under results/<backend>/<digest>.json.
type ResultCache struct {
	storage port.ObjectStorage
	bucket  string
}

// NewResultCache creates a ResultCache writing to bucket.
func NewResultCache(storage port.ObjectStorage, bucket string) *ResultCache {
	return &ResultCache{storage: storage, bucket: bucket}
}

// ResultKey returns the object key of a cached chunk result.
func ResultKey(backend domain.Backend, digest string) string {
	return fmt.Sprintf("results/%s/%s.json", backend, digest)
}

func (c *ResultCache) Get(ctx context.Context, backend domain.Backend, digest string) (*domain.ExtractionResult, error) {
	data, err := c.storage.Download(ctx, c.bucket, ResultKey(backend, digest))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("resultCache.Get: %w", err)
	}
	var res domain.ExtractionResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("resultCache.Get: %w", domain.ErrInvalidResult)
	}
	return &res, nil
}

func (c *ResultCache) Put(ctx context.Context, backend domain.Backend, digest string, result *domain.ExtractionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("resultCache.Put: marshaling: %w", err)
	}
	_, err = c.storage.Upload(ctx, port.UploadInput{
		Bucket:      c.bucket,
		Key:         ResultKey(backend, digest),
		Body:        bytes.NewReader(data),
		ContentType: "application/json",
		Size:        int64(len(data)),
	})
	if err != nil {
		return fmt.Errorf("resultCache.Put: %w", err)
	}
	return nil
}
