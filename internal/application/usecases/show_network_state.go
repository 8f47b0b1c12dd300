package usecases

import (
	"context"

	"netstate-agent/internal/domain/entities"
	"netstate-agent/internal/domain/errors"
	"netstate-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// ShowNetworkStateUseCase는 현재 네트워크 상태를 조회하는 유스케이스입니다
type ShowNetworkStateUseCase struct {
	observer interfaces.StateObserver
	logger   *logrus.Logger
}

// NewShowNetworkStateUseCase는 새로운 ShowNetworkStateUseCase를 생성합니다
func NewShowNetworkStateUseCase(observer interfaces.StateObserver, logger *logrus.Logger) *ShowNetworkStateUseCase {
	return &ShowNetworkStateUseCase{
		observer: observer,
		logger:   logger,
	}
}

// Execute는 현재 상태 스냅샷을 반환합니다.
// names가 주어지면 해당 커널 이름의 인터페이스만 포함하며, 없는 이름은 무시합니다.
func (uc *ShowNetworkStateUseCase) Execute(ctx context.Context, names []string) (*entities.CurrentState, error) {
	current, err := uc.observer.Snapshot(ctx)
	if err != nil {
		return nil, errors.NewSystemError("현재 네트워크 상태 조회 실패", err)
	}

	filtered := current.Filter(names)
	uc.logger.WithFields(logrus.Fields{
		"requested":  names,
		"interfaces": filtered.Len(),
	}).Debug("현재 네트워크 상태 조회")
	return filtered, nil
}
