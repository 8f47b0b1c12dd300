package usecases

import (
	"context"
	"errors"
	"strings"
	"testing"

	"netstate-agent/internal/domain/entities"
	domainErrors "netstate-agent/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSyncDesiredStatesUseCase_Execute(t *testing.T) {
	tests := []struct {
		name           string
		requests       []entities.StateRequest
		expectedOutput *SyncDesiredStatesOutput
		expectedStatus map[int]entities.RequestStatus
		expectedOps    []string
	}{
		{
			name: "실패한 요청이 이후 요청을 막지 않음",
			requests: []entities.StateRequest{
				{ID: 2, NodeName: "worker-1", Document: "interfaces:\n- name: eth3\n  mtu: 9000\n"},
				{ID: 1, NodeName: "worker-1", Document: "interfaces: [\n"},
			},
			expectedOutput: &SyncDesiredStatesOutput{AppliedCount: 1, FailedCount: 1, TotalCount: 2},
			expectedStatus: map[int]entities.RequestStatus{1: entities.RequestFailed, 2: entities.RequestApplied},
			expectedOps:    []string{"update eth3 (mtu)"},
		},
		{
			name: "해석 실패는 적용하지 않고 실패로 기록",
			requests: []entities.StateRequest{
				{ID: 7, NodeName: "worker-1", Document: "interfaces:\n- name: bond0\n  type: bond\n  link-aggregation:\n    mode: active-backup\n    port:\n    - nowhere\n"},
			},
			expectedOutput: &SyncDesiredStatesOutput{AppliedCount: 0, FailedCount: 1, TotalCount: 1},
			expectedStatus: map[int]entities.RequestStatus{7: entities.RequestFailed},
		},
		{
			name: "노드 이름 없는 요청",
			requests: []entities.StateRequest{
				{ID: 3, Document: "interfaces: []\n"},
			},
			expectedOutput: &SyncDesiredStatesOutput{AppliedCount: 0, FailedCount: 1, TotalCount: 1},
			expectedStatus: map[int]entities.RequestStatus{3: entities.RequestFailed},
		},
		{
			name:           "대기 중인 요청 없음",
			requests:       []entities.StateRequest{},
			expectedOutput: &SyncDesiredStatesOutput{},
			expectedStatus: map[int]entities.RequestStatus{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockStateRequestRepository)
			observer := new(MockStateObserver)
			applier := new(MockStateApplier)
			archiver := new(MockSnapshotArchiver)

			repo.On("GetPendingRequests", mock.Anything, "worker-1").Return(tt.requests, nil)
			repo.On("UpdateRequestStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
			observer.On("Snapshot", mock.Anything).Return(threeNics(), nil)
			applier.On("Apply", mock.Anything, mock.Anything).Return(nil)
			archiver.On("Archive", mock.Anything, mock.Anything).Return("snapshot.yaml", nil)

			apply := newApplyUseCase(observer, applier, archiver, ApplyOptions{})
			useCase := NewSyncDesiredStatesUseCase(repo, apply, apply.logger)

			output, err := useCase.Execute(context.Background(), SyncDesiredStatesInput{NodeName: "worker-1"})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedOutput, output)
			assert.Equal(t, tt.expectedOps, applier.AppliedOperations())

			var updatedIDs []int
			for _, call := range repo.Calls {
				if call.Method != "UpdateRequestStatus" {
					continue
				}
				id := call.Arguments.Int(1)
				status := call.Arguments.Get(2).(entities.RequestStatus)
				message := call.Arguments.String(3)
				updatedIDs = append(updatedIDs, id)

				assert.Equal(t, tt.expectedStatus[id], status)
				if status == entities.RequestFailed {
					assert.NotEmpty(t, message)
				} else {
					assert.Empty(t, message)
				}
			}
			assert.Len(t, updatedIDs, len(tt.expectedStatus))
			for i := 1; i < len(updatedIDs); i++ {
				assert.Less(t, updatedIDs[i-1], updatedIDs[i], "requests must be applied in id order")
			}
		})
	}
}

func TestSyncDesiredStatesUseCase_FailureMessage(t *testing.T) {
	repo := new(MockStateRequestRepository)
	observer := new(MockStateObserver)
	applier := new(MockStateApplier)

	current := entities.NewCurrentState([]entities.Interface{
		withProfileName(nic("eth1", macEth1), "wan"),
		withProfileName(nic("eth2", macEth2), "wan"),
	})
	repo.On("GetPendingRequests", mock.Anything, "worker-1").Return([]entities.StateRequest{
		{ID: 1, NodeName: "worker-1", Document: "interfaces:\n- name: br0\n  type: linux-bridge\n  bridge:\n    port:\n    - name: wan\n"},
	}, nil)
	repo.On("UpdateRequestStatus", mock.Anything, 1, entities.RequestFailed, mock.MatchedBy(func(message string) bool {
		return strings.Contains(message, "AMBIGUOUS_REFERENCE") && strings.Contains(message, "br0")
	})).Return(nil).Once()
	observer.On("Snapshot", mock.Anything).Return(current, nil)

	apply := newApplyUseCase(observer, applier, new(MockSnapshotArchiver), ApplyOptions{})
	useCase := NewSyncDesiredStatesUseCase(repo, apply, apply.logger)

	output, err := useCase.Execute(context.Background(), SyncDesiredStatesInput{NodeName: "worker-1"})

	require.NoError(t, err)
	assert.Equal(t, 1, output.FailedCount)
	repo.AssertExpectations(t)
	applier.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestSyncDesiredStatesUseCase_RepositoryError(t *testing.T) {
	repo := new(MockStateRequestRepository)
	repo.On("GetPendingRequests", mock.Anything, "worker-1").Return(nil, errors.New("connection refused"))

	apply := newApplyUseCase(new(MockStateObserver), new(MockStateApplier), new(MockSnapshotArchiver), ApplyOptions{})
	useCase := NewSyncDesiredStatesUseCase(repo, apply, apply.logger)

	output, err := useCase.Execute(context.Background(), SyncDesiredStatesInput{NodeName: "worker-1"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, domainErrors.IsSystemError(err))
	repo.AssertNotCalled(t, "UpdateRequestStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
