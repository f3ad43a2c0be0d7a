package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finextract/internal/domain"
	"finextract/internal/port"
	"finextract/internal/service"
	"finextract/mocks"
)

type extractionFixture struct {
	svc       service.ExtractionService
	runRepo   *mocks.MockExtractionRunRepo
	storage   *mocks.MockObjectStorage
	splitter  *mocks.MockDocumentSplitter
	extractor *mocks.MockStatementExtractor
}

func setupExtractionService(maxFileSize int64) *extractionFixture {
	f := &extractionFixture{
		runRepo:   new(mocks.MockExtractionRunRepo),
		storage:   new(mocks.MockObjectStorage),
		splitter:  new(mocks.MockDocumentSplitter),
		extractor: new(mocks.MockStatementExtractor),
	}
	pipeline := service.NewPipeline(f.splitter, map[domain.Backend]port.StatementExtractor{
		domain.BackendLocal: f.extractor,
	}, nil, 2)
	f.svc = service.NewExtractionService(f.runRepo, f.storage, pipeline, service.ExtractionConfig{
		Bucket:         "test-bucket",
		MaxFileSize:    maxFileSize,
		DefaultBackend: domain.BackendLocal,
		PresignExpiry:  3600,
	})
	return f
}

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

func completedRun(id uuid.UUID) *domain.ExtractionRun {
	debit := 500.0
	credit := 900.0
	res := domain.NewResult(
		[]domain.InvoiceBatch{{Date: "12/01/2024", FactureNumber: "FA-1", TotalRemiseDH: 1000, SoldeNetRemise: 950}},
		[]domain.Transaction{
			{Date: "15/02/2024", Libelle: "VIREMENT CLIENT", Debit: &debit},
			{Date: "01/03/2024", Libelle: "REMISE CARTE", Credit: &credit},
		},
	)
	raw, _ := json.Marshal(res)
	return &domain.ExtractionRun{
		ID:       id,
		FileName: "releve mars.pdf",
		Backend:  domain.BackendLocal,
		Status:   domain.RunStatusCompleted,
		S3Bucket: "test-bucket",
		S3Key:    "extractions/" + id.String() + "/releve mars.pdf",
		Result:   raw,
	}
}

// --- Submit ---

func TestExtractionService_Submit_Success(t *testing.T) {
	f := setupExtractionService(1 << 20)

	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-bucket" &&
			strings.HasPrefix(in.Key, "extractions/") &&
			strings.HasSuffix(in.Key, "/releve.pdf") &&
			in.ContentType == domain.ContentTypePDF &&
			in.Size == int64(len(samplePDF))
	})).Return(&port.UploadOutput{Location: "s3://test-bucket/x"}, nil)
	f.runRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ExtractionRun")).Return(nil)
	// Background goroutine calls - we need to allow these
	f.runRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrRunNotFound).Maybe()

	run, err := f.svc.Submit(context.Background(), &service.SubmitInput{
		FileName: "releve.pdf",
		Content:  bytes.NewReader(samplePDF),
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, "releve.pdf", run.FileName)
	assert.Equal(t, int64(len(samplePDF)), run.FileSize)
	assert.Equal(t, domain.BackendLocal, run.Backend)
	assert.Equal(t, domain.RunStatusPending, run.Status)
	assert.Equal(t, "test-bucket", run.S3Bucket)
	assert.Equal(t, fmt.Sprintf("extractions/%s/releve.pdf", run.ID), run.S3Key)

	// Wait briefly for goroutine to start (not for completion)
	time.Sleep(50 * time.Millisecond)

	f.storage.AssertExpectations(t)
	f.runRepo.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*domain.ExtractionRun"))
}

func TestExtractionService_Submit_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		content  []byte
		backend  string
		wantErr  error
	}{
		{"wrong extension", "releve.txt", samplePDF, "", domain.ErrUnsupportedFileType},
		{"no extension", "releve", samplePDF, "", domain.ErrUnsupportedFileType},
		{"not a pdf", "releve.pdf", []byte("hello, this is plain text"), "", domain.ErrUnsupportedFileType},
		{"empty", "releve.pdf", nil, "", domain.ErrEmptyFile},
		{"too large", "releve.pdf", append(append([]byte{}, samplePDF...), make([]byte, 128)...), "", domain.ErrFileTooLarge},
		{"unknown backend", "releve.pdf", samplePDF, "ocr", domain.ErrUnknownBackend},
		{"unconfigured backend", "releve.pdf", samplePDF, "cloud", domain.ErrUnknownBackend},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupExtractionService(int64(len(samplePDF)) + 16)

			run, err := f.svc.Submit(context.Background(), &service.SubmitInput{
				FileName: tt.fileName,
				Content:  bytes.NewReader(tt.content),
				Backend:  tt.backend,
			})

			assert.Nil(t, run)
			assert.ErrorIs(t, err, tt.wantErr)
			f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
			f.runRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestExtractionService_Submit_UppercaseExtension(t *testing.T) {
	f := setupExtractionService(1 << 20)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.runRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.runRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, domain.ErrRunNotFound).Maybe()

	run, err := f.svc.Submit(context.Background(), &service.SubmitInput{
		FileName: "RELEVE.PDF",
		Content:  bytes.NewReader(samplePDF),
	})

	require.NoError(t, err)
	assert.Equal(t, "RELEVE.PDF", run.FileName)
	time.Sleep(50 * time.Millisecond)
}

func TestExtractionService_Submit_UploadFailure(t *testing.T) {
	f := setupExtractionService(1 << 20)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	run, err := f.svc.Submit(context.Background(), &service.SubmitInput{
		FileName: "releve.pdf",
		Content:  bytes.NewReader(samplePDF),
	})

	assert.Nil(t, run)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	f.runRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExtractionService_Submit_CreateFailureRemovesUpload(t *testing.T) {
	f := setupExtractionService(1 << 20)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	f.runRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))
	f.storage.On("Delete", mock.Anything, "test-bucket", mock.MatchedBy(func(key string) bool {
		return strings.HasSuffix(key, "/releve.pdf")
	})).Return(nil)

	run, err := f.svc.Submit(context.Background(), &service.SubmitInput{
		FileName: "releve.pdf",
		Content:  bytes.NewReader(samplePDF),
	})

	assert.Nil(t, run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating extraction run")
	f.storage.AssertExpectations(t)
}

// --- Process ---

func pendingRun(id uuid.UUID) *domain.ExtractionRun {
	return &domain.ExtractionRun{
		ID:       id,
		FileName: "releve.pdf",
		Backend:  domain.BackendLocal,
		Status:   domain.RunStatusPending,
		S3Bucket: "test-bucket",
		S3Key:    "extractions/" + id.String() + "/releve.pdf",
	}
}

func TestExtractionService_Process_Success(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := pendingRun(id)
	chunks := chunksOf(3)

	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("Download", mock.Anything, run.S3Bucket, run.S3Key).Return(samplePDF, nil)
	f.splitter.On("PageCount", mock.Anything, samplePDF).Return(60, nil)
	f.splitter.On("Split", mock.Anything, samplePDF).Return(chunks, nil)
	f.runRepo.On("MarkProcessing", mock.Anything, id, 60, 3).Return(nil)
	for i, c := range chunks {
		f.extractor.On("Extract", mock.Anything, port.ExtractInput{
			PDFBytes:  c.PDFBytes,
			FileName:  "releve.pdf",
			FirstPage: c.FirstPage,
			LastPage:  c.LastPage,
		}).Return(batchResult(fmt.Sprintf("F%d", i)), nil)
	}
	f.runRepo.On("UpdateProgress", mock.Anything, id, mock.AnythingOfType("int")).Return(nil)
	f.runRepo.On("Complete", mock.Anything, id, mock.MatchedBy(func(raw json.RawMessage) bool {
		var res domain.ExtractionResult
		if err := json.Unmarshal(raw, &res); err != nil || len(res.Batches) != 3 {
			return false
		}
		return res.Batches[0].FactureNumber == "F0" && res.Batches[2].FactureNumber == "F2" && res.Currency == "DH"
	}), 3, 0).Return(nil)

	err := f.svc.Process(context.Background(), id)

	require.NoError(t, err)
	f.runRepo.AssertExpectations(t)
	f.runRepo.AssertNumberOfCalls(t, "UpdateProgress", 3)
	f.runRepo.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractionService_Process_DecodeFailureStoresGenericMessage(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := pendingRun(id)

	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("Download", mock.Anything, run.S3Bucket, run.S3Key).Return(samplePDF, nil)
	f.splitter.On("PageCount", mock.Anything, samplePDF).Return(0, fmt.Errorf("%w: xref missing", domain.ErrPDFDecode))
	f.runRepo.On("Fail", mock.Anything, id, domain.TechnicalErrorMessage).Return(nil)

	err := f.svc.Process(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrPDFDecode)
	f.runRepo.AssertExpectations(t)
	f.runRepo.AssertNotCalled(t, "MarkProcessing", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractionService_Process_ExtractFailure(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := pendingRun(id)
	chunks := chunksOf(1)

	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("Download", mock.Anything, run.S3Bucket, run.S3Key).Return(samplePDF, nil)
	f.splitter.On("PageCount", mock.Anything, samplePDF).Return(2, nil)
	f.splitter.On("Split", mock.Anything, samplePDF).Return(chunks, nil)
	f.runRepo.On("MarkProcessing", mock.Anything, id, 2, 1).Return(nil)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("model returned garbage"))
	f.runRepo.On("Fail", mock.Anything, id, domain.TechnicalErrorMessage).Return(nil)

	err := f.svc.Process(context.Background(), id)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model returned garbage")
	f.runRepo.AssertExpectations(t)
	f.runRepo.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExtractionService_Process_DownloadFailure(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := pendingRun(id)

	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("Download", mock.Anything, run.S3Bucket, run.S3Key).Return(nil, domain.ErrNotFound)
	f.runRepo.On("Fail", mock.Anything, id, domain.TechnicalErrorMessage).Return(nil)

	err := f.svc.Process(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.runRepo.AssertExpectations(t)
}

func TestExtractionService_Process_CancelledContextStillRecordsFailure(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := pendingRun(id)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("Download", mock.Anything, run.S3Bucket, run.S3Key).Return(nil, context.Canceled)
	f.runRepo.On("Fail", mock.MatchedBy(func(c context.Context) bool {
		return c.Err() == nil
	}), id, domain.TechnicalErrorMessage).Return(nil)

	err := f.svc.Process(ctx, id)

	assert.ErrorIs(t, err, context.Canceled)
	f.runRepo.AssertExpectations(t)
}

func TestExtractionService_Process_MarkProcessingFailureFailsRun(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := pendingRun(id)

	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("Download", mock.Anything, run.S3Bucket, run.S3Key).Return(samplePDF, nil)
	f.splitter.On("PageCount", mock.Anything, samplePDF).Return(2, nil)
	f.splitter.On("Split", mock.Anything, samplePDF).Return(chunksOf(1), nil)
	f.runRepo.On("MarkProcessing", mock.Anything, id, 2, 1).Return(errors.New("connection reset"))
	f.runRepo.On("Fail", mock.Anything, id, domain.TechnicalErrorMessage).Return(nil)

	err := f.svc.Process(context.Background(), id)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "marking run processing")
	f.runRepo.AssertExpectations(t)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestExtractionService_Process_CompleteFailureFailsRun(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := pendingRun(id)

	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("Download", mock.Anything, run.S3Bucket, run.S3Key).Return(samplePDF, nil)
	f.splitter.On("PageCount", mock.Anything, samplePDF).Return(2, nil)
	f.splitter.On("Split", mock.Anything, samplePDF).Return(chunksOf(1), nil)
	f.runRepo.On("MarkProcessing", mock.Anything, id, 2, 1).Return(nil)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(batchResult("F0"), nil)
	f.runRepo.On("UpdateProgress", mock.Anything, id, 1).Return(nil)
	f.runRepo.On("Complete", mock.Anything, id, mock.Anything, 1, 0).Return(errors.New("connection reset"))
	f.runRepo.On("Fail", mock.Anything, id, domain.TechnicalErrorMessage).Return(nil)

	err := f.svc.Process(context.Background(), id)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving result")
	f.runRepo.AssertExpectations(t)
}

func TestExtractionService_Process_RunNotFound(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	f.runRepo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrRunNotFound)

	err := f.svc.Process(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrRunNotFound)
	f.runRepo.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything, mock.Anything)
}

// --- ReprocessStale ---

func TestExtractionService_ReprocessStale(t *testing.T) {
	f := setupExtractionService(1 << 20)
	cutoff := time.Now().Add(-time.Hour)
	ok, broken := pendingRun(uuid.New()), pendingRun(uuid.New())
	chunks := chunksOf(1)

	f.runRepo.On("ListStale", mock.Anything, domain.RunStatusFailed, cutoff, 10).
		Return([]domain.ExtractionRun{*ok, *broken}, nil)

	f.runRepo.On("GetByID", mock.Anything, ok.ID).Return(ok, nil)
	f.storage.On("Download", mock.Anything, ok.S3Bucket, ok.S3Key).Return(samplePDF, nil)
	f.splitter.On("PageCount", mock.Anything, samplePDF).Return(1, nil)
	f.splitter.On("Split", mock.Anything, samplePDF).Return(chunks, nil)
	f.runRepo.On("MarkProcessing", mock.Anything, ok.ID, 1, 1).Return(nil)
	f.extractor.On("Extract", mock.Anything, mock.Anything).Return(batchResult("F"), nil)
	f.runRepo.On("UpdateProgress", mock.Anything, ok.ID, 1).Return(nil)
	f.runRepo.On("Complete", mock.Anything, ok.ID, mock.Anything, 1, 0).Return(nil)

	f.runRepo.On("GetByID", mock.Anything, broken.ID).Return(broken, nil)
	f.storage.On("Download", mock.Anything, broken.S3Bucket, broken.S3Key).Return(nil, domain.ErrNotFound)
	f.runRepo.On("Fail", mock.Anything, broken.ID, domain.TechnicalErrorMessage).Return(nil)

	n, err := f.svc.ReprocessStale(context.Background(), domain.RunStatusFailed, cutoff, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f.runRepo.AssertExpectations(t)
}

func TestExtractionService_ReprocessStale_ListError(t *testing.T) {
	f := setupExtractionService(1 << 20)
	f.runRepo.On("ListStale", mock.Anything, domain.RunStatusProcessing, mock.Anything, 5).
		Return(nil, errors.New("db down"))

	n, err := f.svc.ReprocessStale(context.Background(), domain.RunStatusProcessing, time.Now(), 5)

	assert.Zero(t, n)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing stale runs")
}

// --- Results ---

func TestExtractionService_GetResult(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	f.runRepo.On("GetByID", mock.Anything, id).Return(completedRun(id), nil)

	res, err := f.svc.GetResult(context.Background(), id)

	require.NoError(t, err)
	assert.Len(t, res.Batches, 1)
	assert.Len(t, res.Transactions, 2)
	assert.InDelta(t, 1000.0, res.Summary.TotalRemiseDH, 1e-9)
}

func TestExtractionService_GetResult_NotCompleted(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	f.runRepo.On("GetByID", mock.Anything, id).Return(pendingRun(id), nil)

	res, err := f.svc.GetResult(context.Background(), id)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrRunNotCompleted)
}

func TestExtractionService_SearchTransactions(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	f.runRepo.On("GetByID", mock.Anything, id).Return(completedRun(id), nil)

	tests := []struct {
		q    string
		want int
	}{
		{"", 2},
		{"vi", 2},
		{"virement", 1},
		{"  remise ", 1},
		{"03/2024", 1},
		{"cheque", 0},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			txs, err := f.svc.SearchTransactions(context.Background(), id, tt.q)
			require.NoError(t, err)
			assert.Len(t, txs, tt.want)
		})
	}
}

// --- Export ---

func TestExtractionService_Export_XLSX(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	f.runRepo.On("GetByID", mock.Anything, id).Return(completedRun(id), nil)

	out, err := f.svc.Export(context.Background(), id, "")

	require.NoError(t, err)
	assert.Equal(t, "Audit_Factures_Details_releve_mars.xlsx", out.FileName)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out.ContentType)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("PK")))
}

func TestExtractionService_Export_CSV(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	f.runRepo.On("GetByID", mock.Anything, id).Return(completedRun(id), nil)

	out, err := f.svc.Export(context.Background(), id, "CSV")

	require.NoError(t, err)
	assert.Equal(t, "Audit_Factures_Details_releve_mars.csv", out.FileName)
	assert.Equal(t, "text/csv; charset=utf-8", out.ContentType)
	assert.True(t, bytes.HasPrefix(out.Data, []byte("\xEF\xBB\xBF")))
	assert.Contains(t, string(out.Data), "VIREMENT CLIENT")
}

func TestExtractionService_Export_InvalidFormat(t *testing.T) {
	f := setupExtractionService(1 << 20)

	out, err := f.svc.Export(context.Background(), uuid.New(), "pdf")

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrInvalidExportFormat)
	f.runRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestExtractionService_Export_NotCompleted(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	f.runRepo.On("GetByID", mock.Anything, id).Return(pendingRun(id), nil)

	_, err := f.svc.Export(context.Background(), id, "xlsx")

	assert.ErrorIs(t, err, domain.ErrRunNotCompleted)
}

// --- Source, List, Delete ---

func TestExtractionService_SourceURL(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := completedRun(id)
	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("GetPresignedURL", mock.Anything, run.S3Bucket, run.S3Key, int64(3600)).
		Return("https://s3.example.com/signed", nil)

	url, err := f.svc.SourceURL(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "https://s3.example.com/signed", url)
}

func TestExtractionService_List(t *testing.T) {
	f := setupExtractionService(1 << 20)
	runs := []domain.ExtractionRun{*pendingRun(uuid.New())}
	f.runRepo.On("List", mock.Anything, 20, 10).Return(runs, 21, nil)

	got, total, err := f.svc.List(context.Background(), 20, 10)

	require.NoError(t, err)
	assert.Equal(t, 21, total)
	assert.Len(t, got, 1)
}

func TestExtractionService_Delete(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := completedRun(id)
	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("Delete", mock.Anything, run.S3Bucket, run.S3Key).Return(nil)
	f.runRepo.On("Delete", mock.Anything, id).Return(nil)

	err := f.svc.Delete(context.Background(), id)

	require.NoError(t, err)
	f.storage.AssertExpectations(t)
	f.runRepo.AssertExpectations(t)
}

func TestExtractionService_Delete_MissingSourceStillDeletesRun(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := completedRun(id)
	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("Delete", mock.Anything, run.S3Bucket, run.S3Key).Return(domain.ErrNotFound)
	f.runRepo.On("Delete", mock.Anything, id).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), id))
	f.runRepo.AssertExpectations(t)
}

func TestExtractionService_Delete_StorageError(t *testing.T) {
	f := setupExtractionService(1 << 20)
	id := uuid.New()
	run := completedRun(id)
	f.runRepo.On("GetByID", mock.Anything, id).Return(run, nil)
	f.storage.On("Delete", mock.Anything, run.S3Bucket, run.S3Key).Return(errors.New("access denied"))

	err := f.svc.Delete(context.Background(), id)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "deleting from storage")
	f.runRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
