package usecases

import (
	"context"

	"netstate-agent/internal/domain/entities"

	"github.com/stretchr/testify/mock"
)

// Mock 구현체들
type MockStateObserver struct {
	mock.Mock
}

func (m *MockStateObserver) Snapshot(ctx context.Context) (*entities.CurrentState, error) {
	args := m.Called(ctx)
	state, _ := args.Get(0).(*entities.CurrentState)
	return state, args.Error(1)
}

type MockStateApplier struct {
	mock.Mock
}

func (m *MockStateApplier) Apply(ctx context.Context, op entities.Operation) error {
	args := m.Called(ctx, op)
	return args.Error(0)
}

// AppliedOperations는 Apply에 전달된 작업을 호출 순서대로 반환합니다
func (m *MockStateApplier) AppliedOperations() []string {
	var ops []string
	for _, call := range m.Calls {
		if call.Method == "Apply" {
			ops = append(ops, call.Arguments.Get(1).(entities.Operation).String())
		}
	}
	return ops
}

type MockSnapshotArchiver struct {
	mock.Mock
}

func (m *MockSnapshotArchiver) Archive(ctx context.Context, state *entities.CurrentState) (string, error) {
	args := m.Called(ctx, state)
	return args.String(0), args.Error(1)
}

type MockStateRequestRepository struct {
	mock.Mock
}

func (m *MockStateRequestRepository) GetPendingRequests(ctx context.Context, nodeName string) ([]entities.StateRequest, error) {
	args := m.Called(ctx, nodeName)
	requests, _ := args.Get(0).([]entities.StateRequest)
	return requests, args.Error(1)
}

func (m *MockStateRequestRepository) GetRequestByID(ctx context.Context, id int) (*entities.StateRequest, error) {
	args := m.Called(ctx, id)
	req, _ := args.Get(0).(*entities.StateRequest)
	return req, args.Error(1)
}

func (m *MockStateRequestRepository) UpdateRequestStatus(ctx context.Context, id int, status entities.RequestStatus, message string) error {
	args := m.Called(ctx, id, status, message)
	return args.Error(0)
}
