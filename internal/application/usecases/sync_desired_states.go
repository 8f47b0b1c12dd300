package usecases

import (
	"context"
	"sort"

	"netstate-agent/internal/domain/entities"
	"netstate-agent/internal/domain/errors"
	"netstate-agent/internal/domain/interfaces"
	"netstate-agent/internal/infrastructure/document"

	"github.com/sirupsen/logrus"
)

// SyncDesiredStatesUseCase는 노드에 대기 중인 desired state 요청을 순서대로 적용하는 유스케이스입니다
type SyncDesiredStatesUseCase struct {
	repository interfaces.StateRequestRepository
	apply      *ApplyNetworkStateUseCase
	logger     *logrus.Logger
}

// NewSyncDesiredStatesUseCase는 새로운 SyncDesiredStatesUseCase를 생성합니다
func NewSyncDesiredStatesUseCase(
	repo interfaces.StateRequestRepository,
	apply *ApplyNetworkStateUseCase,
	logger *logrus.Logger,
) *SyncDesiredStatesUseCase {
	return &SyncDesiredStatesUseCase{
		repository: repo,
		apply:      apply,
		logger:     logger,
	}
}

// SyncDesiredStatesInput은 유스케이스의 입력 파라미터입니다
type SyncDesiredStatesInput struct {
	NodeName string
}

// SyncDesiredStatesOutput은 유스케이스의 출력 결과입니다
type SyncDesiredStatesOutput struct {
	AppliedCount int
	FailedCount  int
	TotalCount   int
}

// Execute는 대기 중인 요청을 id 순으로 적용하고 결과를 기록합니다.
// 요청 하나의 실패는 이후 요청의 처리를 막지 않습니다.
func (uc *SyncDesiredStatesUseCase) Execute(ctx context.Context, input SyncDesiredStatesInput) (*SyncDesiredStatesOutput, error) {
	requests, err := uc.repository.GetPendingRequests(ctx, input.NodeName)
	if err != nil {
		return nil, errors.NewSystemError("대기 중인 요청 조회 실패", err)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })

	if len(requests) > 0 {
		uc.logger.WithFields(logrus.Fields{
			"node_name": input.NodeName,
			"requests":  len(requests),
		}).Info("처리할 desired state 요청 발견")
	}

	output := &SyncDesiredStatesOutput{TotalCount: len(requests)}
	for i := range requests {
		req := &requests[i]
		if err := uc.process(ctx, req); err != nil {
			req.MarkAsFailed(err.Error())
			output.FailedCount++
			uc.logger.WithFields(logrus.Fields{
				"request_id": req.ID,
				"error":      err,
			}).Error("desired state 요청 적용 실패")
		} else {
			req.MarkAsApplied()
			output.AppliedCount++
		}

		if err := uc.repository.UpdateRequestStatus(ctx, req.ID, req.Status, req.Message); err != nil {
			uc.logger.WithError(err).WithField("request_id", req.ID).Error("요청 상태 업데이트 실패")
		}
	}

	return output, nil
}

func (uc *SyncDesiredStatesUseCase) process(ctx context.Context, req *entities.StateRequest) error {
	if err := req.Validate(); err != nil {
		return errors.NewValidationError("요청 유효성 검증 실패", err)
	}

	desired, err := document.Decode([]byte(req.Document))
	if err != nil {
		return err
	}

	result, err := uc.apply.Execute(ctx, ApplyNetworkStateInput{Desired: desired})
	if err != nil {
		return err
	}

	uc.logger.WithFields(logrus.Fields{
		"request_id": req.ID,
		"operations": result.AppliedCount,
		"snapshot":   result.SnapshotPath,
	}).Info("desired state 요청 적용 성공")
	return nil
}
