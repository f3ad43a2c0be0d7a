package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"finextract/internal/domain"
	"finextract/internal/port"
)

// MockStatementExtractor is a mock implementation of port.StatementExtractor.
type MockStatementExtractor struct {
	mock.Mock
}

func (m *MockStatementExtractor) Extract(ctx context.Context, input port.ExtractInput) (*domain.ExtractionResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionResult), args.Error(1)
}
