package interfaces

import (
	"context"

	"netstate-agent/internal/domain/entities"
)

// StateObserver는 시스템의 현재 네트워크 상태를 관측하는 인터페이스입니다
type StateObserver interface {
	// Snapshot은 현재 인터페이스 상태의 스냅샷을 반환합니다
	Snapshot(ctx context.Context) (*entities.CurrentState, error)
}

// StateApplier는 적용 계획의 작업을 시스템에 반영하는 인터페이스입니다
type StateApplier interface {
	// Apply는 작업 하나를 적용합니다
	Apply(ctx context.Context, op entities.Operation) error
}

// SnapshotArchiver는 적용 직전의 현재 상태를 보관하는 인터페이스입니다
type SnapshotArchiver interface {
	// Archive는 스냅샷을 저장하고 저장 위치를 반환합니다
	Archive(ctx context.Context, state *entities.CurrentState) (string, error)
}
