package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"finextract/internal/domain"
)

// ExtractionRunRepository defines the contract for extraction run persistence.
type ExtractionRunRepository interface {
	Create(ctx context.Context, run *domain.ExtractionRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error)
	List(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error)
	// ListStale returns runs in status that were last updated before olderThan, oldest first.
	ListStale(ctx context.Context, status domain.RunStatus, olderThan time.Time, limit int) ([]domain.ExtractionRun, error)
	MarkProcessing(ctx context.Context, id uuid.UUID, pageCount, chunksTotal int) error
	UpdateProgress(ctx context.Context, id uuid.UUID, chunksDone int) error
	Complete(ctx context.Context, id uuid.UUID, result json.RawMessage, batchCount, txCount int) error
	Fail(ctx context.Context, id uuid.UUID, errMsg string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
