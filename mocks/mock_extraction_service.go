package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finextract/internal/domain"
	"finextract/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Submit(ctx context.Context, input *service.SubmitInput) (*domain.ExtractionRun, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionRun), args.Error(1)
}

func (m *MockExtractionService) Process(ctx context.Context, runID uuid.UUID) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

func (m *MockExtractionService) ReprocessStale(ctx context.Context, status domain.RunStatus, olderThan time.Time, limit int) (int, error) {
	args := m.Called(ctx, status, olderThan, limit)
	return args.Int(0), args.Error(1)
}

func (m *MockExtractionService) GetByID(ctx context.Context, runID uuid.UUID) (*domain.ExtractionRun, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionRun), args.Error(1)
}

func (m *MockExtractionService) List(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExtractionRun), args.Int(1), args.Error(2)
}

func (m *MockExtractionService) GetResult(ctx context.Context, runID uuid.UUID) (*domain.ExtractionResult, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionResult), args.Error(1)
}

func (m *MockExtractionService) SearchTransactions(ctx context.Context, runID uuid.UUID, query string) ([]domain.Transaction, error) {
	args := m.Called(ctx, runID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *MockExtractionService) Export(ctx context.Context, runID uuid.UUID, format string) (*service.ExportFile, error) {
	args := m.Called(ctx, runID, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportFile), args.Error(1)
}

func (m *MockExtractionService) SourceURL(ctx context.Context, runID uuid.UUID) (string, error) {
	args := m.Called(ctx, runID)
	return args.String(0), args.Error(1)
}

func (m *MockExtractionService) Delete(ctx context.Context, runID uuid.UUID) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}
