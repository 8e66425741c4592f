package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockRolloverService is a mock implementation of RolloverService
type MockRolloverService struct {
	mock.Mock
}

func (m *MockRolloverService) RolloverWeek(ctx context.Context, week time.Time) (int, error) {
	args := m.Called(ctx, week)
	return args.Int(0), args.Error(1)
}
