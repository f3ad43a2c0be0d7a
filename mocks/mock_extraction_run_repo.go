package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"finextract/internal/domain"
)

// MockExtractionRunRepo is a mock implementation of port.ExtractionRunRepository.
type MockExtractionRunRepo struct {
	mock.Mock
}

func (m *MockExtractionRunRepo) Create(ctx context.Context, run *domain.ExtractionRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockExtractionRunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExtractionRun, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionRun), args.Error(1)
}

func (m *MockExtractionRunRepo) List(ctx context.Context, offset, limit int) ([]domain.ExtractionRun, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExtractionRun), args.Int(1), args.Error(2)
}

func (m *MockExtractionRunRepo) ListStale(ctx context.Context, status domain.RunStatus, olderThan time.Time, limit int) ([]domain.ExtractionRun, error) {
	args := m.Called(ctx, status, olderThan, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractionRun), args.Error(1)
}

func (m *MockExtractionRunRepo) MarkProcessing(ctx context.Context, id uuid.UUID, pageCount, chunksTotal int) error {
	args := m.Called(ctx, id, pageCount, chunksTotal)
	return args.Error(0)
}

func (m *MockExtractionRunRepo) UpdateProgress(ctx context.Context, id uuid.UUID, chunksDone int) error {
	args := m.Called(ctx, id, chunksDone)
	return args.Error(0)
}

func (m *MockExtractionRunRepo) Complete(ctx context.Context, id uuid.UUID, result json.RawMessage, batchCount, txCount int) error {
	args := m.Called(ctx, id, result, batchCount, txCount)
	return args.Error(0)
}

func (m *MockExtractionRunRepo) Fail(ctx context.Context, id uuid.UUID, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

func (m *MockExtractionRunRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
