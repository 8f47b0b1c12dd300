package interfaces

import (
	"context"

	"netstate-agent/internal/domain/entities"
)

// StateRequestRepository는 desired state 적용 요청 저장소 인터페이스입니다
type StateRequestRepository interface {
	// GetPendingRequests는 특정 노드의 적용 대기 중인 요청을 id 순으로 조회합니다
	GetPendingRequests(ctx context.Context, nodeName string) ([]entities.StateRequest, error)

	// GetRequestByID는 ID로 요청을 조회합니다
	GetRequestByID(ctx context.Context, id int) (*entities.StateRequest, error)

	// UpdateRequestStatus는 요청의 처리 상태와 메시지를 업데이트합니다
	UpdateRequestStatus(ctx context.Context, id int, status entities.RequestStatus, message string) error
}
