package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// 호스트네임 패턴
	hostnamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-\.]*[a-zA-Z0-9]$`)
)

// ValidateHostname은 호스트네임이 유효한지 검증
func ValidateHostname(hostname string) error {
	if hostname == "" {
		return fmt.Errorf("호스트네임이 비어있음")
	}

	if len(hostname) > 253 {
		return fmt.Errorf("호스트네임이 너무 김: %d자 (최대 253자)", len(hostname))
	}

	if !hostnamePattern.MatchString(hostname) {
		return fmt.Errorf("잘못된 호스트네임 형식: %s", hostname)
	}

	return nil
}

// ValidateStateDocument는 desired state 문서의 기본 구조를 검증
func ValidateStateDocument(document []byte) error {
	if len(strings.TrimSpace(string(document))) == 0 {
		return fmt.Errorf("빈 문서")
	}

	if !strings.Contains(string(document), "interfaces") {
		return fmt.Errorf("interfaces 섹션이 없음")
	}

	return nil
}

// ValidateDatabaseConfig은 데이터베이스 설정이 유효한지 검증
func ValidateDatabaseConfig(host, port, user, password, database string) error {
	if host == "" {
		return fmt.Errorf("데이터베이스 호스트가 비어있음")
	}

	if port == "" {
		return fmt.Errorf("데이터베이스 포트가 비어있음")
	}

	if user == "" {
		return fmt.Errorf("데이터베이스 사용자가 비어있음")
	}

	if password == "" {
		return fmt.Errorf("데이터베이스 패스워드가 비어있음")
	}

	if database == "" {
		return fmt.Errorf("데이터베이스 이름이 비어있음")
	}

	return nil
}
