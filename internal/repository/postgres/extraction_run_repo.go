package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"finextract/internal/domain"
	"finextract/internal/port"
)

type extractionRunRepo struct {
	db *sqlx.DB
}

// NewExtractionRunRepo creates a new PostgreSQL-backed ExtractionRunRepository.
func NewExtractionRunRepo(db *sqlx.DB) port.ExtractionRunRepository {
	return &extractionRunRepo{db: db}
}

// listColumns omits the result payload, which can be large.
const listColumns = `id, file_name, file_size, backend, status, page_count, chunks_done, chunks_total,
	s3_bucket, s3_key, error, batch_count, transaction_count, started_at, completed_at, created_at, updated_at`

func (r *extractionRunRepo) Create(ctx context.Context, run *domain.ExtractionRun) error {
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now

	query := `INSERT INTO extraction_runs
		(id, file_name, file_size, backend, status, s3_bucket, s3_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.FileName, run.FileSize, run.Backend, run.Status,
		run.S3Bucket, run.S3Key, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("extractionRunRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error) {
	var run domain.ExtractionRun
	err := r.db.GetContext(ctx, &run, "SELECT * FROM extraction_runs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("extractionRunRepo.GetByID: %w", err)
	}
	return &run, nil
}

func (r *extractionRunRepo) List(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM extraction_runs"); err != nil {
		return nil, 0, fmt.Errorf("extractionRunRepo.List count: %w", err)
	}

	var runs []domain.ExtractionRun
	err := r.db.SelectContext(ctx, &runs,
		`SELECT `+listColumns+` FROM extraction_runs
		 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("extractionRunRepo.List: %w", err)
	}
	return runs, total, nil
}

func (r *extractionRunRepo) ListStale(ctx context.Context, status domain.RunStatus, olderThan time.Time, limit int) ([]domain.ExtractionRun, error) {
	var runs []domain.ExtractionRun
	err := r.db.SelectContext(ctx, &runs,
		`SELECT `+listColumns+` FROM extraction_runs
		 WHERE status = $1 AND updated_at < $2
		 ORDER BY updated_at ASC LIMIT $3`,
		status, olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("extractionRunRepo.ListStale: %w", err)
	}
	return runs, nil
}

func (r *extractionRunRepo) MarkProcessing(ctx context.Context, id uuid.UUID, pageCount, chunksTotal int) error {
	now := time.Now().UTC()
	return r.exec(ctx, "MarkProcessing",
		`UPDATE extraction_runs
		 SET status = $1, page_count = $2, chunks_total = $3, chunks_done = 0,
		     result = NULL, error = '', started_at = $4, completed_at = NULL, updated_at = $4
		 WHERE id = $5`,
		domain.RunStatusProcessing, pageCount, chunksTotal, now, id)
}

func (r *extractionRunRepo) UpdateProgress(ctx context.Context, id uuid.UUID, chunksDone int) error {
	return r.exec(ctx, "UpdateProgress",
		"UPDATE extraction_runs SET chunks_done = $1, updated_at = $2 WHERE id = $3",
		chunksDone, time.Now().UTC(), id)
}

func (r *extractionRunRepo) Complete(ctx context.Context, id uuid.UUID, result json.RawMessage, batchCount, txCount int) error {
	now := time.Now().UTC()
	return r.exec(ctx, "Complete",
		`UPDATE extraction_runs
		 SET status = $1, result = $2, batch_count = $3, transaction_count = $4,
		     chunks_done = chunks_total, error = '', completed_at = $5, updated_at = $5
		 WHERE id = $6`,
		domain.RunStatusCompleted, result, batchCount, txCount, now, id)
}

func (r *extractionRunRepo) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	now := time.Now().UTC()
	return r.exec(ctx, "Fail",
		`UPDATE extraction_runs
		 SET status = $1, error = $2, result = NULL, completed_at = $3, updated_at = $3
		 WHERE id = $4`,
		domain.RunStatusFailed, errMsg, now, id)
}

func (r *extractionRunRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, "Delete", "DELETE FROM extraction_runs WHERE id = $1", id)
}

// exec runs an update or delete addressed to one run and maps a miss to ErrRunNotFound.
func (r *extractionRunRepo) exec(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("extractionRunRepo.%s: %w", op, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}
