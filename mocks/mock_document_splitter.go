package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"finextract/internal/port"
)

// MockDocumentSplitter is a mock implementation of port.DocumentSplitter.
type MockDocumentSplitter struct {
	mock.Mock
}

func (m *MockDocumentSplitter) PageCount(ctx context.Context, data []byte) (int, error) {
	args := m.Called(ctx, data)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentSplitter) Split(ctx context.Context, data []byte) ([]port.DocumentChunk, error) {
	args := m.Called(ctx, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.DocumentChunk), args.Error(1)
}
