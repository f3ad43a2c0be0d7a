package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"finextract/internal/domain"
)

// MockResultCache is a mock implementation of port.ResultCache.
type MockResultCache struct {
	mock.Mock
}

func (m *MockResultCache) Get(ctx context.Context, backend domain.Backend, digest string) (*domain.ExtractionResult, error) {
	args := m.Called(ctx, backend, digest)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractionResult), args.Error(1)
}

func (m *MockResultCache) Put(ctx context.Context, backend domain.Backend, digest string, result *domain.ExtractionResult) error {
	args := m.Called(ctx, backend, digest, result)
	return args.Error(0)
}
