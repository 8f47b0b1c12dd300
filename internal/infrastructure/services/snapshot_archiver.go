package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"netstate-agent/internal/domain/constants"
	"netstate-agent/internal/domain/entities"
	"netstate-agent/internal/domain/errors"
	"netstate-agent/internal/domain/interfaces"
	"netstate-agent/internal/infrastructure/document"

	"github.com/sirupsen/logrus"
)

const (
	snapshotPrefix = "snapshot_"
	snapshotSuffix = ".yaml"
)

// SnapshotArchiver는 적용 직전의 현재 상태를 YAML 파일로 보관합니다.
// 최근 keep개의 파일만 남기고 오래된 스냅샷은 삭제합니다.
type SnapshotArchiver struct {
	fileSystem  interfaces.FileSystem
	clock       interfaces.Clock
	logger      *logrus.Logger
	snapshotDir string
	keep        int
}

// NewSnapshotArchiver는 새로운 SnapshotArchiver를 생성합니다
func NewSnapshotArchiver(
	fs interfaces.FileSystem,
	clock interfaces.Clock,
	logger *logrus.Logger,
	snapshotDir string,
	keep int,
) *SnapshotArchiver {
	return &SnapshotArchiver{
		fileSystem:  fs,
		clock:       clock,
		logger:      logger,
		snapshotDir: snapshotDir,
		keep:        keep,
	}
}

// Archive는 스냅샷을 저장하고 저장 경로를 반환합니다
func (s *SnapshotArchiver) Archive(ctx context.Context, state *entities.CurrentState) (string, error) {
	if err := s.fileSystem.MkdirAll(s.snapshotDir, constants.SnapshotDirPermission); err != nil {
		return "", errors.NewSystemError("스냅샷 디렉토리 생성 실패", err)
	}

	content, err := document.EncodeCurrent(state)
	if err != nil {
		return "", err
	}

	// 파일명 예: snapshot_20250108_150405.123.yaml
	timestamp := s.clock.Now().Format("20060102_150405.000")
	path := filepath.Join(s.snapshotDir, fmt.Sprintf("%s%s%s", snapshotPrefix, timestamp, snapshotSuffix))

	if err := s.fileSystem.WriteFile(path, content, constants.SnapshotFilePermission); err != nil {
		return "", errors.NewSystemError("스냅샷 파일 저장 실패", err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":       path,
		"interfaces": state.Len(),
	}).Info("현재 상태 스냅샷 저장 완료")

	s.prune()
	return path, nil
}

// List는 보관 중인 스냅샷 파일 이름을 오래된 순으로 반환합니다
func (s *SnapshotArchiver) List() ([]string, error) {
	if !s.fileSystem.Exists(s.snapshotDir) {
		return []string{}, nil
	}

	files, err := s.fileSystem.ListFiles(s.snapshotDir)
	if err != nil {
		return nil, errors.NewSystemError("스냅샷 디렉토리 읽기 실패", err)
	}

	snapshots := []string{}
	for _, file := range files {
		if strings.HasPrefix(file, snapshotPrefix) && strings.HasSuffix(file, snapshotSuffix) {
			snapshots = append(snapshots, file)
		}
	}

	// 파일명에 타임스탬프가 포함되어 있으므로 시간순 정렬됨
	sort.Strings(snapshots)
	return snapshots, nil
}

// prune은 keep개를 넘는 오래된 스냅샷을 삭제합니다. 실패는 로그만 남깁니다.
func (s *SnapshotArchiver) prune() {
	snapshots, err := s.List()
	if err != nil {
		s.logger.WithError(err).Warn("스냅샷 목록 조회 실패")
		return
	}

	for len(snapshots) > s.keep {
		path := filepath.Join(s.snapshotDir, snapshots[0])
		if err := s.fileSystem.Remove(path); err != nil {
			s.logger.WithError(err).WithField("path", path).Warn("오래된 스냅샷 삭제 실패")
		} else {
			s.logger.WithField("path", path).Debug("오래된 스냅샷 삭제")
		}
		snapshots = snapshots[1:]
	}
}
