package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"finextract/internal/domain"
	"finextract/internal/export"
	"finextract/internal/port"
)

// failWriteTimeout bounds the status write after a run failed, including a
// failure caused by the run's own deadline.
const failWriteTimeout = 10 * time.Second

// Export formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// SubmitInput is the DTO for submitting a statement for extraction.
type SubmitInput struct {
	FileName string
	Content  io.Reader
	Backend  string // empty selects the configured default
}

// ExportFile is a rendered spreadsheet ready to be served.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExtractionConfig holds the settings the extraction service needs.
type ExtractionConfig struct {
	Bucket         string
	MaxFileSize    int64
	DefaultBackend domain.Backend
	RunTimeout     time.Duration
	PresignExpiry  int64
}

// ExtractionService defines the extraction run contract.
type ExtractionService interface {
	Submit(ctx context.Context, input *SubmitInput) (*domain.ExtractionRun, error)
	Process(ctx context.Context, runID uuid.UUID) error
	ReprocessStale(ctx context.Context, status domain.RunStatus, olderThan time.Time, limit int) (int, error)
	GetByID(ctx context.Context, runID uuid.UUID) (*domain.ExtractionRun, error)
	List(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error)
	GetResult(ctx context.Context, runID uuid.UUID) (*domain.ExtractionResult, error)
	SearchTransactions(ctx context.Context, runID uuid.UUID, query string) ([]domain.Transaction, error)
	Export(ctx context.Context, runID uuid.UUID, format string) (*ExportFile, error)
	SourceURL(ctx context.Context, runID uuid.UUID) (string, error)
	Delete(ctx context.Context, runID uuid.UUID) error
}

type extractionService struct {
	runRepo  port.ExtractionRunRepository
	storage  port.ObjectStorage
	pipeline *Pipeline
	cfg      ExtractionConfig
}

// NewExtractionService creates a new ExtractionService implementation.
func NewExtractionService(
	runRepo port.ExtractionRunRepository,
	storage port.ObjectStorage,
	pipeline *Pipeline,
	cfg ExtractionConfig,
) ExtractionService {
	if cfg.DefaultBackend == "" {
		cfg.DefaultBackend = domain.BackendLocal
	}
	return &extractionService{
		runRepo:  runRepo,
		storage:  storage,
		pipeline: pipeline,
		cfg:      cfg,
	}
}

func (s *extractionService) Submit(ctx context.Context, input *SubmitInput) (*domain.ExtractionRun, error) {
	backend, err := s.resolveBackend(input.Backend)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(filepath.Ext(input.FileName), ".pdf") {
		return nil, domain.ErrUnsupportedFileType
	}

	data, err := io.ReadAll(io.LimitReader(input.Content, s.cfg.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyFile
	}
	if int64(len(data)) > s.cfg.MaxFileSize {
		return nil, domain.ErrFileTooLarge
	}
	if http.DetectContentType(data) != domain.ContentTypePDF {
		return nil, domain.ErrUnsupportedFileType
	}

	runID := uuid.New()
	s3Key := fmt.Sprintf("extractions/%s/%s", runID, filepath.Base(input.FileName))

	log.Printf("extractionService.Submit: uploading %s (%d bytes) for run %s with backend %s",
		input.FileName, len(data), runID, backend)

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        bytes.NewReader(data),
		ContentType: domain.ContentTypePDF,
		Size:        int64(len(data)),
	})
	if err != nil {
		log.Printf("extractionService.Submit: S3 upload failed for run %s: %v", runID, err)
		return nil, domain.ErrUploadFailed
	}

	run := &domain.ExtractionRun{
		ID:       runID,
		FileName: input.FileName,
		FileSize: int64(len(data)),
		Backend:  backend,
		Status:   domain.RunStatusPending,
		S3Bucket: s.cfg.Bucket,
		S3Key:    s3Key,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		if delErr := s.storage.Delete(ctx, s.cfg.Bucket, s3Key); delErr != nil {
			log.Printf("extractionService.Submit: failed to remove orphaned upload %s: %v", s3Key, delErr)
		}
		return nil, fmt.Errorf("creating extraction run: %w", err)
	}

	// Copy before launching goroutine so the caller's value is independent of background work
	result := *run

	go s.processInBackground(run.ID)

	return &result, nil
}

func (s *extractionService) resolveBackend(name string) (domain.Backend, error) {
	if name == "" {
		name = string(s.cfg.DefaultBackend)
	}
	backend, ok := domain.ParseBackend(name)
	if !ok || !s.pipeline.Supports(backend) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownBackend, name)
	}
	return backend, nil
}

func (s *extractionService) processInBackground(runID uuid.UUID) {
	ctx := context.Background()
	if s.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RunTimeout)
		defer cancel()
	}

	log.Printf("extractionService.processInBackground: starting run %s", runID)
	if err := s.Process(ctx, runID); err != nil {
		log.Printf("extractionService.processInBackground: run %s ended with error: %v", runID, err)
	}
}

// Process downloads the source of a run, extracts it chunk by chunk and stores
// the merged result. Any failure marks the run failed with the generic
// technical message and is returned with its details.
func (s *extractionService) Process(ctx context.Context, runID uuid.UUID) error {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("loading run: %w", err)
	}

	data, err := s.storage.Download(ctx, run.S3Bucket, run.S3Key)
	if err != nil {
		return s.fail(ctx, runID, fmt.Errorf("downloading source: %w", err))
	}

	plan, err := s.pipeline.Plan(ctx, data)
	if err != nil {
		return s.fail(ctx, runID, fmt.Errorf("splitting document: %w", err))
	}

	if err := s.runRepo.MarkProcessing(ctx, runID, plan.PageCount, len(plan.Chunks)); err != nil {
		return s.fail(ctx, runID, fmt.Errorf("marking run processing: %w", err))
	}
	log.Printf("extractionService.Process: run %s has %d pages in %d chunks", runID, plan.PageCount, len(plan.Chunks))

	progress := func(done, total int) {
		if err := s.runRepo.UpdateProgress(ctx, runID, done); err != nil {
			log.Printf("extractionService.Process: failed to record progress %d/%d for run %s: %v", done, total, runID, err)
		}
	}

	result, err := s.pipeline.Execute(ctx, run.Backend, plan, run.FileName, progress)
	if err != nil {
		return s.fail(ctx, runID, fmt.Errorf("extracting: %w", err))
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return s.fail(ctx, runID, fmt.Errorf("encoding result: %w", err))
	}

	if err := s.runRepo.Complete(ctx, runID, payload, len(result.Batches), len(result.Transactions)); err != nil {
		return s.fail(ctx, runID, fmt.Errorf("saving result: %w", err))
	}

	log.Printf("extractionService.Process: run %s completed with %d batches and %d transactions",
		runID, len(result.Batches), len(result.Transactions))
	return nil
}

// fail logs the cause, stores the generic message on the run and returns cause.
func (s *extractionService) fail(ctx context.Context, runID uuid.UUID, cause error) error {
	log.Printf("extractionService.fail: run %s failed: %v", runID, cause)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failWriteTimeout)
	defer cancel()
	if err := s.runRepo.Fail(writeCtx, runID, domain.TechnicalErrorMessage); err != nil {
		log.Printf("extractionService.fail: failed to update status for run %s: %v", runID, err)
	}
	return cause
}

// ReprocessStale re-runs up to limit runs in status that have not changed since
// olderThan, one at a time. It returns how many completed.
func (s *extractionService) ReprocessStale(ctx context.Context, status domain.RunStatus, olderThan time.Time, limit int) (int, error) {
	runs, err := s.runRepo.ListStale(ctx, status, olderThan, limit)
	if err != nil {
		return 0, fmt.Errorf("listing stale runs: %w", err)
	}

	completed := 0
	for i := range runs {
		if ctx.Err() != nil {
			return completed, ctx.Err()
		}
		log.Printf("extractionService.ReprocessStale: reprocessing run %s (%s since %s)",
			runs[i].ID, runs[i].Status, runs[i].UpdatedAt.Format(time.RFC3339))
		if err := s.Process(ctx, runs[i].ID); err != nil {
			continue
		}
		completed++
	}
	return completed, nil
}

func (s *extractionService) GetByID(ctx context.Context, runID uuid.UUID) (*domain.ExtractionRun, error) {
	return s.runRepo.GetByID(ctx, runID)
}

func (s *extractionService) List(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error) {
	return s.runRepo.List(ctx, offset, limit)
}

func (s *extractionService) GetResult(ctx context.Context, runID uuid.UUID) (*domain.ExtractionResult, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	return run.DecodeResult()
}

func (s *extractionService) SearchTransactions(ctx context.Context, runID uuid.UUID, query string) ([]domain.Transaction, error) {
	res, err := s.GetResult(ctx, runID)
	if err != nil {
		return nil, err
	}
	return domain.FilterTransactions(res.Transactions, strings.TrimSpace(query)), nil
}

func (s *extractionService) Export(ctx context.Context, runID uuid.UUID, format string) (*ExportFile, error) {
	if format == "" {
		format = FormatXLSX
	}
	format = strings.ToLower(format)
	if format != FormatXLSX && format != FormatCSV {
		return nil, domain.ErrInvalidExportFormat
	}

	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	res, err := run.DecodeResult()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	out := &ExportFile{FileName: export.BuildFilename(run.FileName, format)}
	switch format {
	case FormatCSV:
		out.ContentType = export.ContentTypeCSV
		err = export.WriteCSV(&buf, res)
	default:
		out.ContentType = export.ContentTypeXLSX
		err = export.WriteXLSX(&buf, res)
	}
	if err != nil {
		return nil, fmt.Errorf("rendering %s export: %w", format, err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func (s *extractionService) SourceURL(ctx context.Context, runID uuid.UUID) (string, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, run.S3Bucket, run.S3Key, s.cfg.PresignExpiry)
}

func (s *extractionService) Delete(ctx context.Context, runID uuid.UUID) error {
	log.Printf("extractionService.Delete: deleting run %s", runID)

	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, run.S3Bucket, run.S3Key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Printf("extractionService.Delete: failed to delete from S3: %v", err)
		return fmt.Errorf("deleting from storage: %w", err)
	}

	return s.runRepo.Delete(ctx, runID)
}
