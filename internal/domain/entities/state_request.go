package entities

import (
	"errors"
)

// StateRequest는 데이터베이스에 저장된 desired state 적용 요청입니다
type StateRequest struct {
	ID       int
	NodeName string
	Document string // desired state YAML 문서
	Status   RequestStatus
	Message  string
}

// RequestStatus는 요청의 처리 상태를 나타냅니다
type RequestStatus int

const (
	RequestPending RequestStatus = iota
	RequestApplied
	RequestFailed
)

// String은 데이터베이스에 저장되는 상태 문자열을 반환합니다
func (s RequestStatus) String() string {
	switch s {
	case RequestApplied:
		return "applied"
	case RequestFailed:
		return "failed"
	default:
		return "pending"
	}
}

var (
	ErrEmptyDocument   = errors.New("비어 있는 desired state 문서")
	ErrInvalidNodeName = errors.New("유효하지 않은 노드 이름")
)

// Validate는 StateRequest의 유효성을 검증합니다
func (r *StateRequest) Validate() error {
	if r.NodeName == "" {
		return ErrInvalidNodeName
	}
	if r.Document == "" {
		return ErrEmptyDocument
	}
	return nil
}

// IsPending은 요청이 적용 대기 중인지 확인합니다
func (r *StateRequest) IsPending() bool {
	return r.Status == RequestPending
}

// MarkAsApplied는 요청을 적용 완료 상태로 변경합니다
func (r *StateRequest) MarkAsApplied() {
	r.Status = RequestApplied
	r.Message = ""
}

// MarkAsFailed는 요청을 실패 상태로 변경하고 원인을 기록합니다
func (r *StateRequest) MarkAsFailed(reason string) {
	r.Status = RequestFailed
	r.Message = reason
}
