package parser

import (
	"context"
	"log"
	"time"

	"finextract/internal/domain"
	"finextract/internal/port"
)

// DefaultRetryDelay is the pause before the single retry.
const DefaultRetryDelay = time.Second

// RetryExtractor retries a failed extraction exactly once after a fixed delay,
// then returns the second error.
type RetryExtractor struct {
	inner port.StatementExtractor
	delay time.Duration
}

// NewRetryExtractor wraps inner with one retry after delay.
func NewRetryExtractor(inner port.StatementExtractor, delay time.Duration) *RetryExtractor {
	if delay < 0 {
		delay = DefaultRetryDelay
	}
	return &RetryExtractor{inner: inner, delay: delay}
}

func (r *RetryExtractor) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractionResult, error) {
	res, err := r.inner.Extract(ctx, input)
	if err == nil {
		return res, nil
	}
	log.Printf("parser.RetryExtractor: %s failed, retrying in %s: %v", input.Describe(), r.delay, err)

	timer := time.NewTimer(r.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return r.inner.Extract(ctx, input)
}
