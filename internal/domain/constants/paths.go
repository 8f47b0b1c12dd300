package constants

import "time"

// 시스템 경로 상수들
const (
	// 시스템 네트워크 경로
	SysClassNet = "/sys/class/net"

	// 스냅샷 보관 디렉토리
	DefaultSnapshotDir = "/var/lib/netstate/snapshots"
)

// 네트워크 설정 관련 상수들
const (
	// 파일 권한
	SnapshotFilePermission = 0644
	SnapshotDirPermission  = 0755

	// 명령 실행 타임아웃
	DefaultCommandTimeout = 30 * time.Second

	// 적용 후 검증 재시도
	DefaultVerifyRetryCount    = 5
	DefaultVerifyRetryInterval = 1 * time.Second

	// addr_assign_type 값 중 영구 MAC 주소를 나타내는 값
	AddrAssignTypePermanent = "0"
)

// 기본값 상수들
const (
	// 데이터베이스 기본값
	DefaultDBHost = "localhost"
	DefaultDBPort = "3306"
	DefaultDBName = "netstate"

	// 에이전트 기본값
	DefaultPollInterval = 30 * time.Second
	DefaultHealthPort   = "8080"
	DefaultSnapshotKeep = 10
)
