package vectorstore

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockIndex is a mock implementation of Index using testify/mock.
type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) EnsureIndex(ctx context.Context, name string, dimension int) error {
	args := m.Called(ctx, name, dimension)
	return args.Error(0)
}

func (m *MockIndex) Upsert(ctx context.Context, records []Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockIndex) Fetch(ctx context.Context, ids []string) (map[string]Record, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]Record), args.Error(1)
}

func (m *MockIndex) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
