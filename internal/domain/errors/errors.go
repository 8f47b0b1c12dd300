package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType은 에러의 종류를 나타냅니다
type ErrorType string

const (
	// ErrorTypeValidation은 잘못된 인터페이스 항목을 나타냅니다
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeNotFound는 참조가 어떤 인터페이스와도 일치하지 않음을 나타냅니다
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeAmbiguous는 참조가 둘 이상의 인터페이스와 일치함을 나타냅니다
	ErrorTypeAmbiguous ErrorType = "AMBIGUOUS_REFERENCE"

	// ErrorTypeConflict는 두 컨트롤러가 같은 포트를 요구하는 등의 충돌을 나타냅니다
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeCycle은 의존성 그래프의 순환을 나타냅니다
	ErrorTypeCycle ErrorType = "CYCLE"

	// ErrorTypeSystem은 시스템 레벨 에러를 나타냅니다
	ErrorTypeSystem ErrorType = "SYSTEM"

	// ErrorTypeNetwork는 네트워크 설정 적용 에러를 나타냅니다
	ErrorTypeNetwork ErrorType = "NETWORK"

	// ErrorTypeTimeout은 타임아웃 에러를 나타냅니다
	ErrorTypeTimeout ErrorType = "TIMEOUT"

	// ErrorTypeVerification은 적용 후 상태가 수렴하지 않았음을 나타냅니다
	ErrorTypeVerification ErrorType = "VERIFICATION"
)

// DomainError는 도메인 레벨의 에러를 나타냅니다.
// Interface, Field, Token은 문제가 된 desired state 항목을 가리킵니다.
type DomainError struct {
	Type      ErrorType
	Message   string
	Interface string
	Field     string
	Token     string
	Cause     error
}

// Error는 error 인터페이스를 구현합니다
func (e *DomainError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Type)
	if e.Interface != "" {
		fmt.Fprintf(&b, "interface %s: ", e.Interface)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "%s: ", e.Field)
	}
	b.WriteString(e.Message)
	if e.Token != "" {
		fmt.Fprintf(&b, " (%q)", e.Token)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap은 내부 에러를 반환합니다
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is는 에러 비교를 위한 메서드입니다
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithInterface는 문제가 된 인터페이스 항목을 기록합니다
func (e *DomainError) WithInterface(name string) *DomainError {
	e.Interface = name
	return e
}

// WithField는 문제가 된 필드와 원래 토큰을 기록합니다
func (e *DomainError) WithField(field, token string) *DomainError {
	e.Field = field
	e.Token = token
	return e
}

// 생성자 함수들

// NewValidationError는 유효성 검증 에러를 생성합니다
func NewValidationError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeValidation,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFoundError는 참조 대상을 찾을 수 없는 에러를 생성합니다
func NewNotFoundError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewAmbiguousReferenceError는 참조가 모호한 경우의 에러를 생성합니다
func NewAmbiguousReferenceError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeAmbiguous,
		Message: message,
	}
}

// NewConflictError는 충돌 에러를 생성합니다
func NewConflictError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewCycleError는 의존성 순환 에러를 생성합니다
func NewCycleError(cycle []string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeCycle,
		Message: fmt.Sprintf("dependency cycle between interfaces: %s", strings.Join(cycle, " -> ")),
	}
}

// NewSystemError는 시스템 에러를 생성합니다
func NewSystemError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeSystem,
		Message: message,
		Cause:   cause,
	}
}

// NewNetworkError는 네트워크 관련 에러를 생성합니다
func NewNetworkError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeNetwork,
		Message: message,
		Cause:   cause,
	}
}

// NewTimeoutError는 타임아웃 에러를 생성합니다
func NewTimeoutError(message string) *DomainError {
	return &DomainError{
		Type:    ErrorTypeTimeout,
		Message: message,
	}
}

// NewVerificationError는 검증 실패 에러를 생성합니다
func NewVerificationError(message string, cause error) *DomainError {
	return &DomainError{
		Type:    ErrorTypeVerification,
		Message: message,
		Cause:   cause,
	}
}

// 에러 타입 확인 헬퍼 함수들

// TypeOf는 에러 체인에서 DomainError의 타입을 찾아 반환합니다
func TypeOf(err error) (ErrorType, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type, true
	}
	return "", false
}

func isType(err error, t ErrorType) bool {
	got, ok := TypeOf(err)
	return ok && got == t
}

// IsValidationError는 유효성 검증 에러인지 확인합니다
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsNotFoundError는 참조 대상을 찾을 수 없는 에러인지 확인합니다
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsAmbiguousReferenceError는 모호한 참조 에러인지 확인합니다
func IsAmbiguousReferenceError(err error) bool {
	return isType(err, ErrorTypeAmbiguous)
}

// IsConflictError는 충돌 에러인지 확인합니다
func IsConflictError(err error) bool {
	return isType(err, ErrorTypeConflict)
}

// IsCycleError는 순환 에러인지 확인합니다
func IsCycleError(err error) bool {
	return isType(err, ErrorTypeCycle)
}

// IsSystemError는 시스템 에러인지 확인합니다
func IsSystemError(err error) bool {
	return isType(err, ErrorTypeSystem)
}

// IsNetworkError는 네트워크 에러인지 확인합니다
func IsNetworkError(err error) bool {
	return isType(err, ErrorTypeNetwork)
}

// IsTimeoutError는 타임아웃 에러인지 확인합니다
func IsTimeoutError(err error) bool {
	return isType(err, ErrorTypeTimeout)
}

// IsVerificationError는 검증 실패 에러인지 확인합니다
func IsVerificationError(err error) bool {
	return isType(err, ErrorTypeVerification)
}

// IsResolutionError는 적용 전 검증 단계(해석, 재작성, 그래프)에서 발생한 에러인지 확인합니다
func IsResolutionError(err error) bool {
	t, ok := TypeOf(err)
	if !ok {
		return false
	}
	switch t {
	case ErrorTypeValidation, ErrorTypeNotFound, ErrorTypeAmbiguous, ErrorTypeConflict, ErrorTypeCycle:
		return true
	}
	return false
}
