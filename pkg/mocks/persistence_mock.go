package mocks

import (
	"context"

	"github.com/dukex/operion-assistant/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockPersistence is a mock implementation of persistence.Persistence interface.
type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) GetContext(ctx context.Context, key models.SessionKey) (*models.SessionContext, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.SessionContext), args.Error(1)
}

func (m *MockPersistence) SaveContext(ctx context.Context, session *models.SessionContext) error {
	args := m.Called(ctx, session)

	return args.Error(0)
}

func (m *MockPersistence) DeleteContext(ctx context.Context, key models.SessionKey) error {
	args := m.Called(ctx, key)

	return args.Error(0)
}

func (m *MockPersistence) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}

func (m *MockPersistence) Close(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
